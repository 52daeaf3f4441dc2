package types_test

import (
	"testing"

	json "github.com/goccy/go-json"

	"github.com/okian/scout/internal/domain/model"
	types "github.com/okian/scout/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromMatches(t *testing.T) {
	Convey("Given domain matches", t, func() {
		ms := []model.Match{
			{Player: model.Player{ID: "1", Name: "A", Age: 20, ValueEUR: 1e6}, Distance: 0.125},
			{Player: model.Player{ID: "2", Name: "B", Age: 30, League: "Serie A"}, Distance: 1.5},
		}

		Convey("When converting to API matches", func() {
			out := types.FromMatches(ms)

			Convey("Then order and fields are preserved", func() {
				So(len(out), ShouldEqual, 2)
				So(out[0].ID, ShouldEqual, "1")
				So(out[0].Distance, ShouldEqual, 0.125)
				So(out[1].League, ShouldEqual, "Serie A")
			})
		})

		Convey("When encoding a match", func() {
			b, err := json.Marshal(types.FromMatches(ms)[0])
			So(err, ShouldBeNil)

			Convey("Then it uses the dataset column names", func() {
				s := string(b)
				So(s, ShouldContainSubstring, `"short_name":"A"`)
				So(s, ShouldContainSubstring, `"distance_score":0.125`)
				So(s, ShouldContainSubstring, `"value_eur":1000000`)
				So(s, ShouldNotContainSubstring, "league_name")
			})
		})
	})

	Convey("Given no players", t, func() {
		So(types.FromPlayers(nil), ShouldBeEmpty)
	})
}
