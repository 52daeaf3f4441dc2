package repository

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/scout/internal/domain/model"
)

// Column names of the player table.
const (
	colName      = "short_name"
	colAge       = "age"
	colValue     = "value_eur"
	colWage      = "wage_eur"
	colClub      = "club_name"
	colPositions = "player_positions"
	colPlayerURL = "player_url"
	colOverall   = "overall"
	colPotential = "potential"
	colPace      = "pace"
	colShooting  = "shooting"
	colPassing   = "passing"
	colDribbling = "dribbling"
	colDefending = "defending"
	colPhysic    = "physic"

	colLeague  = "league_name"
	colTeamURL = "team_url"
	colID      = "player_id"
)

// maxAge bounds the age column; anything above it is treated as corrupt.
const maxAge = 150

var requiredColumns = append([]string{
	colName, colAge, colValue, colWage, colClub, colPositions, colPlayerURL,
	colOverall, colPotential,
	colPace, colShooting, colPassing, colDribbling, colDefending, colPhysic,
}, model.FeatureNames[:]...)

var urlIDRe = regexp.MustCompile(`/(\d+)(?:/|$)`)

// parsed is the result of turning a Table into players.
type parsed struct {
	players   []model.Player
	rejected  int
	hasLeague bool
}

type columns map[string]int

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c columns) cell(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseTable validates the header and converts records in table order.
// Rows with a missing or non-finite feature, age or value are rejected.
func parseTable(t *Table) (*parsed, error) {
	cols := make(columns, len(t.Columns))
	for i, name := range t.Columns {
		name = strings.TrimSpace(name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if !cols.has(name) {
			return nil, fmt.Errorf("%w: missing required column %q", ErrDataLoad, name)
		}
	}

	out := &parsed{
		players:   make([]model.Player, 0, len(t.Records)),
		hasLeague: cols.has(colLeague),
	}
	seen := make(map[string]int, len(t.Records))
	for line, rec := range t.Records {
		p, ok := parseRecord(cols, rec)
		if !ok {
			out.rejected++
			continue
		}
		p.Row = len(out.players)
		p.ID = playerID(cols, rec, p)
		if prev, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate player id %q at records %d and %d",
				ErrDataLoad, p.ID, prev+1, line+1)
		}
		seen[p.ID] = line
		out.players = append(out.players, p)
	}
	if len(out.players) == 0 {
		return nil, fmt.Errorf("%w: no usable rows (%d rejected)", ErrDataLoad, out.rejected)
	}
	return out, nil
}

func parseRecord(cols columns, rec []string) (model.Player, bool) {
	var p model.Player
	for i, name := range model.FeatureNames {
		v, ok := requiredFloat(cols.cell(rec, name))
		if !ok {
			return p, false
		}
		p.Features[i] = v
	}
	age, ok := requiredFloat(cols.cell(rec, colAge))
	if !ok || age < 0 || age > maxAge || age != math.Trunc(age) {
		return p, false
	}
	value, ok := requiredFloat(cols.cell(rec, colValue))
	if !ok {
		return p, false
	}
	p.Age = int(age)
	p.ValueEUR = value

	var bad bool
	num := func(name string) float64 {
		v, err := optionalFloat(cols.cell(rec, name))
		if err != nil {
			bad = true
		}
		return v
	}
	p.WageEUR = num(colWage)
	p.Overall = int(num(colOverall))
	p.Potential = int(num(colPotential))
	p.Skills = model.Skills{
		Pace:      num(colPace),
		Shooting:  num(colShooting),
		Passing:   num(colPassing),
		Dribbling: num(colDribbling),
		Defending: num(colDefending),
		Physic:    num(colPhysic),
	}
	if bad {
		return p, false
	}

	p.Name = cols.cell(rec, colName)
	p.Club = cols.cell(rec, colClub)
	p.League = cols.cell(rec, colLeague)
	p.PlayerURL = cols.cell(rec, colPlayerURL)
	p.TeamURL = cols.cell(rec, colTeamURL)
	p.Positions = splitPositions(cols.cell(rec, colPositions))
	return p, true
}

// requiredFloat parses s, failing on empty or non-finite input.
func requiredFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// optionalFloat treats empty input as zero.
func optionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func splitPositions(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// playerID prefers the player_id column, then the numeric segment of the
// player URL, then the table position.
func playerID(cols columns, rec []string, p model.Player) string {
	if id := cols.cell(rec, colID); id != "" {
		return id
	}
	if m := urlIDRe.FindStringSubmatch(p.PlayerURL); m != nil {
		return m[1]
	}
	return "row-" + strconv.Itoa(p.Row)
}
