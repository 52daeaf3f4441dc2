package search_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/search"
	. "github.com/smartystreets/goconvey/convey"
)

func player(id, name string, age int, value float64, league string, feats ...float64) model.Player {
	p := model.Player{ID: id, Name: name, Age: age, ValueEUR: value, League: league}
	copy(p.Features[:], feats)
	return p
}

func abcPlayers() []model.Player {
	return []model.Player{
		player("a", "A", 30, 10e6, "X", 0, 0),
		player("b", "B", 24, 5e6, "X", 1, 0),
		player("c", "C", 40, 1e6, "Y", 3, 1),
	}
}

func newEngine(players []model.Player, hasLeague bool, opts ...search.Option) (*search.Engine, *repository.Snapshot) {
	snap, err := repository.NewSnapshot(players, hasLeague, "test")
	So(err, ShouldBeNil)
	opts = append([]search.Option{search.WithMetrics(false)}, opts...)
	return search.NewEngine(search.Static{D: snap}, opts...), snap
}

func euclid(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func TestFindSimilarScenario(t *testing.T) {
	ctx := context.Background()

	Convey("Given players A, B and C", t, func() {
		e, snap := newEngine(abcPlayers(), true)

		Convey("When searching near A with an age ceiling and a league", func() {
			q := search.NewQuery(5).WithMaxAge(30).WithLeague("X")
			res, err := e.FindSimilar(ctx, "A", q)

			Convey("Then only B is returned at the standardized distance", func() {
				So(err, ShouldBeNil)
				So(len(res), ShouldEqual, 1)
				So(res[0].Player.Name, ShouldEqual, "B")
				want := math.Round(euclid(snap.Vector(0), snap.Vector(1))*1000) / 1000
				So(res[0].Distance, ShouldEqual, want)
				So(res[0].Distance, ShouldAlmostEqual, 0.802, 1e-9)
			})
		})

		Convey("When searching by id", func() {
			res, err := e.FindSimilarByID(ctx, "a", search.NewQuery(5))

			Convey("Then every other player is ranked by distance", func() {
				So(err, ShouldBeNil)
				So(len(res), ShouldEqual, 2)
				So(res[0].Player.ID, ShouldEqual, "b")
				So(res[1].Player.ID, ShouldEqual, "c")
				So(res[0].Distance, ShouldBeLessThanOrEqualTo, res[1].Distance)
			})
		})

		Convey("When the reference is unknown", func() {
			_, err := e.FindSimilar(ctx, "Unknown", search.NewQuery(5))
			So(errors.Is(err, search.ErrNotFound), ShouldBeTrue)

			_, err = e.FindSimilarByID(ctx, "zzz", search.NewQuery(5))
			So(errors.Is(err, search.ErrNotFound), ShouldBeTrue)
		})

		Convey("When filters eliminate every candidate", func() {
			_, err := e.FindSimilar(ctx, "A", search.NewQuery(5).WithMaxValue(100))

			Convey("Then the empty pool is reported distinctly", func() {
				So(errors.Is(err, search.ErrEmptyPool), ShouldBeTrue)
				So(errors.Is(err, search.ErrNotFound), ShouldBeFalse)
			})
		})

		Convey("When the league does not exist", func() {
			_, err := e.FindSimilar(ctx, "A", search.NewQuery(5).WithLeague("Z"))
			So(errors.Is(err, search.ErrEmptyPool), ShouldBeTrue)
		})

		Convey("When more results are requested than the pool holds", func() {
			res, err := e.FindSimilar(ctx, "C", search.NewQuery(50))
			So(err, ShouldBeNil)
			So(len(res), ShouldEqual, 2)
		})

		Convey("When the value ceiling is inclusive", func() {
			res, err := e.FindSimilar(ctx, "C", search.NewQuery(5).WithMaxValue(5e6))
			So(err, ShouldBeNil)
			So(len(res), ShouldEqual, 1)
			So(res[0].Player.Name, ShouldEqual, "B")
		})
	})
}

func TestQueryValidation(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine with a result cap", t, func() {
		e, _ := newEngine(abcPlayers(), true, search.WithMaxResultCount(10))

		cases := map[string]search.Query{
			"zero count":     search.NewQuery(0),
			"negative count": search.NewQuery(-3),
			"above the cap":  search.NewQuery(11),
			"negative value": search.NewQuery(1).WithMaxValue(-1),
			"negative age":   search.NewQuery(1).WithMaxAge(-1),
			"empty league":   search.NewQuery(1).WithLeague(""),
		}
		for name, q := range cases {
			Convey("When the query has "+name, func() {
				_, err := e.FindSimilar(ctx, "A", q)
				So(errors.Is(err, search.ErrValidation), ShouldBeTrue)
			})
		}

		Convey("When validation fails and the name is also unknown", func() {
			_, err := e.FindSimilar(ctx, "Unknown", search.NewQuery(0))
			So(errors.Is(err, search.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given a dataset without league information", t, func() {
		e, _ := newEngine(abcPlayers(), false)

		Convey("Then a league filter is rejected", func() {
			_, err := e.FindSimilar(ctx, "A", search.NewQuery(2).WithLeague("X"))
			So(errors.Is(err, search.ErrValidation), ShouldBeTrue)
		})

		Convey("And unfiltered search still works", func() {
			res, err := e.FindSimilar(ctx, "A", search.NewQuery(2))
			So(err, ShouldBeNil)
			So(len(res), ShouldEqual, 2)
		})
	})

	Convey("Given an engine without a dataset", t, func() {
		e := search.NewEngine(search.Static{}, search.WithMetrics(false))
		_, err := e.FindSimilar(ctx, "A", search.NewQuery(1))
		So(errors.Is(err, search.ErrNoDataset), ShouldBeTrue)
	})
}

func randomPlayers(r *rand.Rand, n int) []model.Player {
	leagues := []string{"L1", "L2", "L3"}
	out := make([]model.Player, n)
	for i := range out {
		feats := make([]float64, model.FeatureDim)
		for j := range feats {
			feats[j] = r.Float64()*4 - 2
		}
		// repeated names exercise first-match resolution
		name := fmt.Sprintf("p%d", i%(n-10))
		out[i] = player(fmt.Sprintf("id-%d", i), name, 17+r.Intn(25),
			float64(r.Intn(100))*1e6, leagues[r.Intn(len(leagues))], feats...)
	}
	return out
}

func TestFindSimilarProperties(t *testing.T) {
	ctx := context.Background()

	Convey("Given a random population", t, func() {
		r := rand.New(rand.NewSource(42))
		players := randomPlayers(r, 300)
		e, _ := newEngine(players, true)

		Convey("Then every result satisfies the constraints and ordering", func() {
			for i := 0; i < 200; i++ {
				ref := players[r.Intn(len(players))]
				q := search.NewQuery(1 + r.Intn(40))
				if r.Intn(2) == 0 {
					q = q.WithMaxValue(float64(r.Intn(100)) * 1e6)
				}
				if r.Intn(2) == 0 {
					q = q.WithMaxAge(17 + r.Intn(25))
				}
				if r.Intn(2) == 0 {
					q = q.WithLeague(ref.League)
				}

				res, err := e.FindSimilarByID(ctx, ref.ID, q)
				if errors.Is(err, search.ErrEmptyPool) {
					continue
				}
				So(err, ShouldBeNil)
				So(len(res), ShouldBeGreaterThan, 0)
				So(len(res), ShouldBeLessThanOrEqualTo, q.ResultCount)

				prev := -1.0
				for _, m := range res {
					So(m.Player.ID, ShouldNotEqual, ref.ID)
					So(m.Distance, ShouldBeGreaterThanOrEqualTo, 0)
					So(m.Distance, ShouldBeGreaterThanOrEqualTo, prev)
					prev = m.Distance
					if q.MaxValue != nil {
						So(m.Player.ValueEUR, ShouldBeLessThanOrEqualTo, *q.MaxValue)
					}
					if q.MaxAge != nil {
						So(m.Player.Age, ShouldBeLessThanOrEqualTo, *q.MaxAge)
					}
					if q.League != nil {
						So(m.Player.League, ShouldEqual, *q.League)
					}
				}
			}
		})

		Convey("Then a count above the pool size returns the whole pool", func() {
			ref := players[0]
			q := search.NewQuery(search.DefaultMaxResultCount).WithLeague(ref.League).WithMaxAge(20)
			res, err := e.FindSimilarByID(ctx, ref.ID, q)

			want := 0
			for _, p := range players[1:] {
				if p.League == ref.League && p.Age <= 20 {
					want++
				}
			}
			if want == 0 {
				So(errors.Is(err, search.ErrEmptyPool), ShouldBeTrue)
				return
			}
			So(err, ShouldBeNil)
			So(len(res), ShouldEqual, want)
		})

		Convey("Then results match a brute force ranking", func() {
			_, snap := newEngine(players, true)
			ref := 7
			res, err := e.FindSimilarByID(ctx, players[ref].ID, search.NewQuery(10))
			So(err, ShouldBeNil)

			type cand struct {
				row  int
				dist float64
			}
			var best []cand
			for row := 0; row < snap.Len(); row++ {
				if row == ref {
					continue
				}
				best = append(best, cand{row, euclid(snap.Vector(ref), snap.Vector(row))})
			}
			for i := 0; i < 10; i++ {
				m := i
				for j := i + 1; j < len(best); j++ {
					if best[j].dist < best[m].dist {
						m = j
					}
				}
				best[i], best[m] = best[m], best[i]
				So(res[i].Player.Row, ShouldEqual, best[i].row)
			}
		})

		Convey("Then name lookup resolves the first row with that name", func() {
			p, err := e.Lookup(ctx, "p3")
			So(err, ShouldBeNil)
			So(p.Row, ShouldEqual, 3)

			uncapped, _ := newEngine(players, true, search.WithMaxResultCount(0))
			res, err := uncapped.FindSimilar(ctx, "p3", search.NewQuery(300))
			So(err, ShouldBeNil)
			for _, m := range res {
				So(m.Player.Row, ShouldNotEqual, 3)
			}
			// the duplicate named p3 is a distinct entity and stays a candidate
			found := false
			for _, m := range res {
				if m.Player.Name == "p3" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestFindSimilarDeterministicAcrossReload(t *testing.T) {
	ctx := context.Background()

	Convey("Given two snapshots built from identical content", t, func() {
		r := rand.New(rand.NewSource(7))
		players := randomPlayers(r, 120)
		e1, s1 := newEngine(players, true)
		e2, s2 := newEngine(players, true)
		So(s1.Version, ShouldNotEqual, s2.Version)

		Convey("Then the same query yields identical results", func() {
			q := search.NewQuery(15).WithMaxAge(35)
			for _, p := range players[:20] {
				a, errA := e1.FindSimilarByID(ctx, p.ID, q)
				b, errB := e2.FindSimilarByID(ctx, p.ID, q)
				So(errA, ShouldEqual, errB)
				So(a, ShouldResemble, b)
			}
		})
	})

	Convey("Given duplicated feature vectors", t, func() {
		players := []model.Player{
			player("r", "R", 20, 1, "X", 0, 0),
			player("t1", "T1", 20, 1, "X", 1, 1),
			player("t2", "T2", 20, 1, "X", 1, 1),
			player("t3", "T3", 20, 1, "X", 1, 1),
		}
		e, _ := newEngine(players, true)

		Convey("Then ties are broken by table order", func() {
			for i := 0; i < 10; i++ {
				res, err := e.FindSimilar(ctx, "R", search.NewQuery(2))
				So(err, ShouldBeNil)
				So(res[0].Player.ID, ShouldEqual, "t1")
				So(res[1].Player.ID, ShouldEqual, "t2")
			}
		})
	})
}

func TestPlayers(t *testing.T) {
	ctx := context.Background()

	Convey("Given the A, B, C table", t, func() {
		e, _ := newEngine(abcPlayers(), true)

		Convey("When paging through players", func() {
			page, total, err := e.Players(ctx, 1, 1)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 3)
			So(len(page), ShouldEqual, 1)
			So(page[0].Name, ShouldEqual, "B")
		})

		Convey("When the offset is past the end", func() {
			page, total, err := e.Players(ctx, 10, 5)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 3)
			So(page, ShouldBeEmpty)
		})

		Convey("When limit is zero every remaining player is returned", func() {
			page, _, err := e.Players(ctx, 0, 0)
			So(err, ShouldBeNil)
			So(len(page), ShouldEqual, 3)
		})

		Convey("When limit is larger than any remaining window", func() {
			page, total, err := e.Players(ctx, 1, math.MaxInt)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 3)
			So(len(page), ShouldEqual, 2)
			So(page[0].Name, ShouldEqual, "B")
		})

		Convey("When the offset is negative", func() {
			_, _, err := e.Players(ctx, -1, 5)
			So(errors.Is(err, search.ErrValidation), ShouldBeTrue)
		})

		Convey("When looking up by id", func() {
			p, err := e.PlayerByID(ctx, "c")
			So(err, ShouldBeNil)
			So(p.Name, ShouldEqual, "C")

			_, err = e.PlayerByID(ctx, "nope")
			So(errors.Is(err, search.ErrNotFound), ShouldBeTrue)
		})
	})
}

// swappingProvider hands out each dataset once, in order, then sticks to the last.
type swappingProvider struct {
	sets  []search.Dataset
	calls int
}

func (p *swappingProvider) Dataset() (search.Dataset, bool) {
	d := p.sets[min(p.calls, len(p.sets)-1)]
	p.calls++
	return d, true
}

func TestSimilarReadsOneSnapshot(t *testing.T) {
	ctx := context.Background()

	Convey("Given a provider that swaps to a table without A after the first read", t, func() {
		v1, err := repository.NewSnapshot(abcPlayers(), true, "v1")
		So(err, ShouldBeNil)
		v2, err := repository.NewSnapshot(abcPlayers()[1:], true, "v2")
		So(err, ShouldBeNil)
		p := &swappingProvider{sets: []search.Dataset{v1, v2}}
		e := search.NewEngine(p, search.WithMetrics(false))

		Convey("When searching by name", func() {
			res, err := e.Similar(ctx, "A", search.NewQuery(5))

			Convey("Then the reference and matches come from the first snapshot", func() {
				So(err, ShouldBeNil)
				So(p.calls, ShouldEqual, 1)
				So(res.Reference.ID, ShouldEqual, "a")
				So(len(res.Matches), ShouldEqual, 2)
				So(res.Matches[0].Player.Name, ShouldEqual, "B")
			})
		})

		Convey("When searching by id", func() {
			res, err := e.SimilarByID(ctx, "a", search.NewQuery(1))
			So(err, ShouldBeNil)
			So(res.Reference.Name, ShouldEqual, "A")
			So(len(res.Matches), ShouldEqual, 1)
		})
	})
}
