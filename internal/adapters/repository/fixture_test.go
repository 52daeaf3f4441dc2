package repository

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// fixtureRow describes one player row for test tables.
type fixtureRow struct {
	id, name, club, league, url string
	age                         int
	rawAge                      string
	value                       float64
	features                    [8]string
}

func feat(vals ...float64) [8]string {
	var out [8]string
	for i := range out {
		if i < len(vals) {
			out[i] = strconv.FormatFloat(vals[i], 'f', -1, 64)
		}
	}
	return out
}

func fixtureHeader(withLeague, withID bool) []string {
	h := append([]string(nil), requiredColumns...)
	if withLeague {
		h = append(h, colLeague)
	}
	if withID {
		h = append(h, colID)
	}
	return append(h, colTeamURL)
}

func fixtureRecord(header []string, r fixtureRow) []string {
	rec := make([]string, len(header))
	for i, col := range header {
		switch col {
		case colName:
			rec[i] = r.name
		case colAge:
			rec[i] = strconv.Itoa(r.age)
			if r.rawAge != "" {
				rec[i] = r.rawAge
			}
		case colValue:
			rec[i] = strconv.FormatFloat(r.value, 'f', -1, 64)
		case colWage:
			rec[i] = "1000"
		case colClub:
			rec[i] = r.club
		case colPositions:
			rec[i] = "ST, CF"
		case colPlayerURL:
			rec[i] = r.url
		case colOverall:
			rec[i] = "80"
		case colPotential:
			rec[i] = "85"
		case colPace, colShooting, colPassing, colDribbling, colDefending, colPhysic:
			rec[i] = "70"
		case colLeague:
			rec[i] = r.league
		case colID:
			rec[i] = r.id
		case colTeamURL:
			rec[i] = "https://example.com/team/1"
		default:
			for j, name := range featureColumns() {
				if col == name {
					rec[i] = r.features[j]
				}
			}
		}
	}
	return rec
}

func featureColumns() []string {
	return requiredColumns[len(requiredColumns)-8:]
}

func writeCSV(t *testing.T, header []string, rows []fixtureRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "players.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, r := range rows {
		if err := w.Write(fixtureRecord(header, r)); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func sampleRows() []fixtureRow {
	return []fixtureRow{
		{name: "A", club: "Alpha", league: "L1", url: "https://sofifa.com/player/100/a/230009", age: 25, value: 10e6, features: feat(0, 0, 0, 0, 0, 0, 0, 0)},
		{name: "B", club: "Beta", league: "L1", url: "https://sofifa.com/player/200/b/230009", age: 30, value: 5e6, features: feat(1, 0, 0, 0, 0, 0, 0, 0)},
		{name: "C", club: "Gamma", league: "L2", url: "https://sofifa.com/player/300/c/230009", age: 22, value: 20e6, features: feat(3, 0, 0, 0, 0, 0, 0, 0)},
	}
}
