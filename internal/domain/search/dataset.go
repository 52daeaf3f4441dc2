package search

import "github.com/okian/scout/internal/domain/model"

// Dataset is a read-only view of one loaded table and its standardized
// feature matrix. Implementations must be immutable once published.
type Dataset interface {
	Len() int
	Dim() int
	// Player returns the entity at table position row.
	Player(row int) model.Player
	// Vector returns the standardized features of row. Callers must not modify it.
	Vector(row int) []float64
	// RowByName resolves an exact name to the first matching row in table order.
	RowByName(name string) (int, bool)
	RowByID(id string) (int, bool)
	Filters() *FilterIndex
}

// Provider hands out the dataset queries should run against. The second
// result is false until a dataset has been loaded.
type Provider interface {
	Dataset() (Dataset, bool)
}

// Static wraps a fixed dataset as a Provider.
type Static struct{ D Dataset }

// Dataset implements Provider.
func (s Static) Dataset() (Dataset, bool) { return s.D, s.D != nil }
