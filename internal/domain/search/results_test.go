package search_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/search"
	. "github.com/smartystreets/goconvey/convey"
)

func matches() []model.Match {
	return []model.Match{
		{Player: model.Player{Name: "a", Overall: 80, Potential: 90, ValueEUR: 3, Age: 30}, Distance: 0.1},
		{Player: model.Player{Name: "b", Overall: 85, Potential: 85, ValueEUR: 1, Age: 22}, Distance: 0.2},
		{Player: model.Player{Name: "c", Overall: 80, Potential: 88, ValueEUR: 2, Age: 25}, Distance: 0.3},
	}
}

func names(ms []model.Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Player.Name
	}
	return out
}

func TestSortMatches(t *testing.T) {
	Convey("Given matches in distance order", t, func() {
		in := matches()

		Convey("When sorting by overall descending", func() {
			out := search.SortMatches(in, search.SortOverall, true)

			Convey("Then equal keys keep distance order", func() {
				So(names(out), ShouldResemble, []string{"b", "a", "c"})
			})

			Convey("And the input is untouched", func() {
				So(names(in), ShouldResemble, []string{"a", "b", "c"})
			})
		})

		Convey("When sorting by each key", func() {
			So(names(search.SortMatches(in, search.SortValue, false)), ShouldResemble, []string{"b", "c", "a"})
			So(names(search.SortMatches(in, search.SortAge, false)), ShouldResemble, []string{"b", "c", "a"})
			So(names(search.SortMatches(in, search.SortPotential, true)), ShouldResemble, []string{"a", "c", "b"})
			So(names(search.SortMatches(in, search.SortDistance, true)), ShouldResemble, []string{"c", "b", "a"})
		})
	})
}

func TestParseSortKey(t *testing.T) {
	Convey("Given sort key strings", t, func() {
		k, err := search.ParseSortKey("")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, search.SortDistance)

		k, err = search.ParseSortKey(" Value ")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, search.SortValue)

		_, err = search.ParseSortKey("height")
		So(errors.Is(err, search.ErrValidation), ShouldBeTrue)
	})
}

func TestPaginate(t *testing.T) {
	Convey("Given three matches", t, func() {
		in := matches()

		So(names(search.Paginate(in, 0, 2)), ShouldResemble, []string{"a", "b"})
		So(names(search.Paginate(in, 2, 2)), ShouldResemble, []string{"c"})
		So(names(search.Paginate(in, 1, 0)), ShouldResemble, []string{"b", "c"})
		So(search.Paginate(in, 5, 2), ShouldBeEmpty)
		So(names(search.Paginate(in, -1, 1)), ShouldResemble, []string{"a"})
		So(names(search.Paginate(in, 1, math.MaxInt)), ShouldResemble, []string{"b", "c"})
	})
}
