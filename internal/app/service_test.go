package service_test

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/okian/scout/internal/adapters/mq/worker"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/search"
	. "github.com/smartystreets/goconvey/convey"
)

type testRow struct {
	name    string
	overall float64
}

var abc = []testRow{{"A", 0}, {"B", 1}, {"C", 3}}

func writeDataset(t *testing.T, path string, rows []testRow) {
	t.Helper()
	header := []string{
		"short_name", "age", "value_eur", "wage_eur", "club_name", "player_positions", "player_url",
		"overall", "potential", "pace", "shooting", "passing", "dribbling", "defending", "physic",
	}
	header = append(header, model.FeatureNames[:]...)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create dataset: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write(header)
	for i, r := range rows {
		rec := []string{
			r.name, "25", "1000000", "5000", "Club", "ST",
			"https://example.com/player/" + strconv.Itoa(100+i) + "/",
			"80", "85", "70", "70", "70", "70", "70", "70",
			strconv.FormatFloat(r.overall, 'f', -1, 64), "0", "0", "0", "0", "0", "0", "0",
		}
		_ = w.Write(rec)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func failedReloads(svc *service.Service) int64 {
	st, ok := svc.GetStats()["worker"].(worker.Stats)
	if !ok {
		return -1
	}
	return st.Failed
}

func TestService_New(t *testing.T) {
	Convey("Given a new service that was not started", t, func() {
		svc := service.New(service.WithDataset("missing.csv", "", ""))
		ctx := context.Background()

		Convey("Then it reports loading and has no dataset", func() {
			So(svc.Ready().Status, ShouldEqual, "loading")
			_, err := svc.FindSimilar(ctx, "A", search.NewQuery(1))
			So(errors.Is(err, search.ErrNoDataset), ShouldBeTrue)
		})

		Convey("And reload requests are refused", func() {
			_, _, err := svc.RequestReload(ctx, model.ReasonManual, false)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("And stats report it as stopped", func() {
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a dataset on disk", t, func() {
		path := filepath.Join(t.TempDir(), "players.csv")
		writeDataset(t, path, abc)
		ctx := context.Background()

		Convey("When starting the service", func() {
			svc := service.New(service.WithDataset(path, "", ""))
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it loads the snapshot", func() {
				So(err, ShouldBeNil)
				ready := svc.Ready()
				So(ready.Status, ShouldEqual, "ready")
				So(ready.Rows, ShouldEqual, 3)
				So(ready.Version, ShouldNotBeEmpty)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And searches run against it", func() {
				matches, err := svc.FindSimilar(ctx, "A", search.NewQuery(2))
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 2)
				So(matches[0].Player.Name, ShouldEqual, "B")
				So(matches[1].Player.Name, ShouldEqual, "C")
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When the dataset is missing", func() {
			svc := service.New(service.WithDataset(filepath.Join(t.TempDir(), "nope.csv"), "", ""))
			err := svc.Start(ctx)

			Convey("Then Start fails and the service stays stopped", func() {
				So(err, ShouldNotBeNil)
				So(svc.Ready().Status, ShouldEqual, "loading")
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_RequestReload(t *testing.T) {
	Convey("Given a started service", t, func() {
		path := filepath.Join(t.TempDir(), "players.csv")
		writeDataset(t, path, abc)
		ctx := context.Background()

		svc := service.New(service.WithDataset(path, "csv", ""))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		first := svc.Ready().Version

		Convey("When the file is unchanged", func() {
			id, duplicate, err := svc.RequestReload(ctx, model.ReasonManual, false)

			Convey("Then the request is a duplicate", func() {
				So(err, ShouldBeNil)
				So(duplicate, ShouldBeTrue)
				So(id, ShouldBeEmpty)
			})
		})

		Convey("When the reload is forced", func() {
			id, duplicate, err := svc.RequestReload(ctx, model.ReasonManual, true)

			Convey("Then a new snapshot is published", func() {
				So(err, ShouldBeNil)
				So(duplicate, ShouldBeFalse)
				So(id, ShouldNotBeEmpty)
				So(eventually(func() bool { return svc.Ready().Version != first }), ShouldBeTrue)
				So(svc.Ready().Rows, ShouldEqual, 3)
			})
		})

		Convey("When the file changes", func() {
			writeDataset(t, path, append(abc, testRow{"D", 2}))
			_, duplicate, err := svc.RequestReload(ctx, model.ReasonManual, false)

			Convey("Then the new rows become searchable", func() {
				So(err, ShouldBeNil)
				So(duplicate, ShouldBeFalse)
				So(eventually(func() bool { return svc.Ready().Rows == 4 }), ShouldBeTrue)

				p, err := svc.Lookup(ctx, "D")
				So(err, ShouldBeNil)
				So(p.Row, ShouldEqual, 3)
			})
		})

		Convey("When the new file is broken", func() {
			So(os.WriteFile(path, []byte("short_name\nA\n"), 0o600), ShouldBeNil)
			_, _, err := svc.RequestReload(ctx, model.ReasonManual, false)
			So(err, ShouldBeNil)

			Convey("Then the previous snapshot stays active and the request can be retried", func() {
				So(eventually(func() bool { return failedReloads(svc) == 1 }), ShouldBeTrue)
				So(svc.Ready().Version, ShouldEqual, first)
				So(svc.Ready().Rows, ShouldEqual, 3)

				_, duplicate, err := svc.RequestReload(ctx, model.ReasonManual, false)
				So(err, ShouldBeNil)
				So(duplicate, ShouldBeFalse)
			})
		})
	})
}

func TestService_Watch(t *testing.T) {
	Convey("Given a service watching its dataset", t, func() {
		path := filepath.Join(t.TempDir(), "players.csv")
		writeDataset(t, path, abc)
		ctx := context.Background()

		svc := service.New(
			service.WithDataset(path, "", ""),
			service.WithWatch(true, 20*time.Millisecond),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		So(svc.GetStats()["watchPath"], ShouldNotBeEmpty)

		Convey("When the file is rewritten", func() {
			writeDataset(t, path, append(abc, testRow{"D", 2}, testRow{"E", 4}))

			Convey("Then the snapshot is reloaded without a request", func() {
				So(eventually(func() bool { return svc.Ready().Rows == 5 }), ShouldBeTrue)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		path := filepath.Join(t.TempDir(), "players.csv")
		writeDataset(t, path, abc)
		ctx := context.Background()

		svc := service.New(service.WithDataset(path, "", ""))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, _, err := svc.RequestReload(ctx, model.ReasonManual, true)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})

			Convey("And the last snapshot stays readable", func() {
				_, err := svc.PlayerByID(ctx, "100")
				So(err, ShouldBeNil)
			})

			Convey("And stopping twice is safe", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}
