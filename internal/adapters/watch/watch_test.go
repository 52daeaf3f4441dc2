package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWatcher(t *testing.T) {
	Convey("Given a watched dataset file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "players.csv")
		So(os.WriteFile(path, []byte("v1"), 0o600), ShouldBeNil)

		var calls atomic.Int32
		w, err := New(path, func(context.Context, string) { calls.Add(1) },
			WithDebounce(50*time.Millisecond))
		So(err, ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
		time.Sleep(100 * time.Millisecond)

		Convey("When the file is written several times in a burst", func() {
			for i := 0; i < 5; i++ {
				So(os.WriteFile(path, []byte("v2"), 0o600), ShouldBeNil)
			}

			Convey("Then the handler runs once", func() {
				deadline := time.Now().Add(2 * time.Second)
				for calls.Load() == 0 && time.Now().Before(deadline) {
					time.Sleep(10 * time.Millisecond)
				}
				time.Sleep(150 * time.Millisecond)
				So(calls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When a sibling file changes", func() {
			So(os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o600), ShouldBeNil)
			time.Sleep(200 * time.Millisecond)

			Convey("Then the handler is not called", func() {
				So(calls.Load(), ShouldEqual, 0)
			})
		})

		Reset(func() {
			cancel()
			<-done
		})
	})

	Convey("Given a path in a missing directory", t, func() {
		w, err := New(filepath.Join(t.TempDir(), "nope", "players.csv"), func(context.Context, string) {})
		So(err, ShouldBeNil)
		So(w.Run(context.Background()), ShouldNotBeNil)
	})
}
