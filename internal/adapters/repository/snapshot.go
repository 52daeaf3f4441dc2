package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/internal/domain/search"
)

// Snapshot is an immutable, fully built dataset: the player table, its
// fitted normalizer, the standardized feature matrix and filter indexes.
type Snapshot struct {
	Version  string
	LoadedAt time.Time
	Source   string
	Rejected int

	players    []model.Player
	normalizer *normalize.Normalizer
	matrix     []float64 // row-major, len(players) x FeatureDim
	byID       map[string]int
	byName     map[string]int
	filters    *search.FilterIndex
}

var _ search.Dataset = (*Snapshot)(nil)

// NewSnapshot builds a snapshot from players in table order. Row fields
// are reassigned to table positions.
func NewSnapshot(players []model.Player, hasLeague bool, source string) (*Snapshot, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no players", ErrDataLoad)
	}
	ps := make([]model.Player, len(players))
	copy(ps, players)

	raw := make([][]float64, len(ps))
	s := &Snapshot{
		Version:  uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		Source:   source,
		players:  ps,
		byID:     make(map[string]int, len(ps)),
		byName:   make(map[string]int, len(ps)),
	}
	for i := range ps {
		ps[i].Row = i
		raw[i] = ps[i].Features[:]
		if _, dup := s.byID[ps[i].ID]; dup {
			return nil, fmt.Errorf("%w: duplicate player id %q", ErrDataLoad, ps[i].ID)
		}
		s.byID[ps[i].ID] = i
		if _, ok := s.byName[ps[i].Name]; !ok {
			s.byName[ps[i].Name] = i
		}
	}

	n, err := normalize.Fit(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	matrix, err := n.TransformMatrix(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	s.normalizer = n
	s.matrix = matrix
	s.filters = search.NewFilterIndex(ps, hasLeague)
	return s, nil
}

// Len returns the number of players.
func (s *Snapshot) Len() int { return len(s.players) }

// Dim returns the feature dimensionality.
func (s *Snapshot) Dim() int { return model.FeatureDim }

// Player returns the player at row.
func (s *Snapshot) Player(row int) model.Player { return s.players[row] }

// Players returns the table. Callers must not modify it.
func (s *Snapshot) Players() []model.Player { return s.players }

// Vector returns the standardized features of row.
func (s *Snapshot) Vector(row int) []float64 {
	off := row * model.FeatureDim
	return s.matrix[off : off+model.FeatureDim : off+model.FeatureDim]
}

// RowByID implements search.Dataset.
func (s *Snapshot) RowByID(id string) (int, bool) {
	row, ok := s.byID[id]
	return row, ok
}

// RowByName implements search.Dataset.
func (s *Snapshot) RowByName(name string) (int, bool) {
	row, ok := s.byName[name]
	return row, ok
}

// Filters implements search.Dataset.
func (s *Snapshot) Filters() *search.FilterIndex { return s.filters }

// HasLeague reports whether the source table carried league names.
func (s *Snapshot) HasLeague() bool { return s.filters.HasLeague() }

// Leagues lists the distinct leagues.
func (s *Snapshot) Leagues() []string { return s.filters.Leagues() }

// Normalizer returns the normalizer fitted on this snapshot's features.
func (s *Snapshot) Normalizer() *normalize.Normalizer { return s.normalizer }
