package search

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/scout/internal/domain/model"
)

// SortKey names a field results can be ordered by.
type SortKey string

// Supported sort keys.
const (
	SortDistance  SortKey = "distance"
	SortOverall   SortKey = "overall"
	SortPotential SortKey = "potential"
	SortValue     SortKey = "value"
	SortAge       SortKey = "age"
)

// ParseSortKey maps a user supplied key to a SortKey. Empty means distance.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortDistance, nil
	case SortDistance, SortOverall, SortPotential, SortValue, SortAge:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", ErrValidation, s)
	}
}

// SortMatches returns a copy of matches ordered by key. Equal keys keep
// their relative order, so distance order breaks ties.
func SortMatches(matches []model.Match, key SortKey, desc bool) []model.Match {
	out := slices.Clone(matches)
	field := func(m model.Match) float64 {
		switch key {
		case SortOverall:
			return float64(m.Player.Overall)
		case SortPotential:
			return float64(m.Player.Potential)
		case SortValue:
			return m.Player.ValueEUR
		case SortAge:
			return float64(m.Player.Age)
		default:
			return m.Distance
		}
	}
	slices.SortStableFunc(out, func(a, b model.Match) int {
		c := cmp.Compare(field(a), field(b))
		if desc {
			return -c
		}
		return c
	})
	return out
}

// Paginate returns the window [offset, offset+limit) of matches. A zero
// limit means everything after offset.
func Paginate(matches []model.Match, offset, limit int) []model.Match {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matches) {
		return []model.Match{}
	}
	end := len(matches)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return matches[offset:end]
}
