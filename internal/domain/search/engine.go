// Package search implements filtered exact nearest-neighbor search over a
// standardized player feature space.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// DefaultMaxResultCount bounds ResultCount unless overridden.
const DefaultMaxResultCount = 100

// Engine answers similarity queries against the dataset of a Provider.
// It holds no per-query state and is safe for concurrent use.
type Engine struct {
	provider   Provider
	validate   *validator.Validate
	log        logger.Logger
	maxResults int
	metrics    bool
}

// NewEngine creates an engine reading datasets from p.
func NewEngine(p Provider, opts ...Option) *Engine {
	e := &Engine{
		provider:   p,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		log:        logger.Nop(),
		maxResults: DefaultMaxResultCount,
		metrics:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxResultCount returns the configured ResultCount cap.
func (e *Engine) MaxResultCount() int { return e.maxResults }

// Result is one similarity search: the resolved reference and its nearest
// neighbors, both read from the same dataset.
type Result struct {
	Reference model.Player
	Matches   []model.Match
}

// FindSimilar returns the players nearest to the one named name that satisfy q.
func (e *Engine) FindSimilar(ctx context.Context, name string, q Query) ([]model.Match, error) {
	res, err := e.Similar(ctx, name, q)
	return res.Matches, err
}

// FindSimilarByID is FindSimilar with the reference resolved by identifier.
func (e *Engine) FindSimilarByID(ctx context.Context, id string, q Query) ([]model.Match, error) {
	res, err := e.SimilarByID(ctx, id, q)
	return res.Matches, err
}

// Similar is FindSimilar that also returns the reference player.
func (e *Engine) Similar(ctx context.Context, name string, q Query) (Result, error) {
	return e.find(ctx, q, "name", name, func(ds Dataset) (int, bool) {
		return ds.RowByName(name)
	})
}

// SimilarByID is Similar with the reference resolved by identifier.
func (e *Engine) SimilarByID(ctx context.Context, id string, q Query) (Result, error) {
	return e.find(ctx, q, "id", id, func(ds Dataset) (int, bool) {
		return ds.RowByID(id)
	})
}

func (e *Engine) find(ctx context.Context, q Query, by, key string, resolve func(Dataset) (int, bool)) (Result, error) {
	start := time.Now()
	res, pool, err := e.search(q, by, key, resolve)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if e.metrics {
		metrics.RecordSearch(outcome(err), latency)
		if err == nil {
			metrics.RecordSearchPool(pool, len(res.Matches))
		}
	}
	if err != nil {
		e.log.Debug(ctx, "similarity search failed",
			logger.String(by, key), logger.Error(err))
		return Result{}, err
	}
	e.log.Debug(ctx, "similarity search",
		logger.String(by, key),
		logger.Int("pool", pool),
		logger.Int("results", len(res.Matches)),
		logger.Float64("latency_ms", latency))
	return res, nil
}

func (e *Engine) search(q Query, by, key string, resolve func(Dataset) (int, bool)) (Result, int, error) {
	ds, ok := e.provider.Dataset()
	if !ok {
		return Result{}, 0, ErrNoDataset
	}
	if err := e.validateQuery(q, ds); err != nil {
		return Result{}, 0, err
	}
	ref, ok := resolve(ds)
	if !ok {
		return Result{}, 0, fmt.Errorf("%w: %s %q", ErrNotFound, by, key)
	}

	pool := ds.Filters().Pool(ref, q)
	if pool.IsEmpty() {
		return Result{}, 0, ErrEmptyPool
	}

	idx := newFlatIndex(ds, pool)
	hits := idx.Search(ds.Vector(ref), q.ResultCount)

	out := make([]model.Match, len(hits))
	for i, h := range hits {
		out[i] = model.Match{
			Player:   ds.Player(int(h.row)),
			Distance: roundDistance(h.dist),
		}
	}
	return Result{Reference: ds.Player(ref), Matches: out}, idx.Len(), nil
}

// Lookup returns the first player named name in table order.
func (e *Engine) Lookup(_ context.Context, name string) (model.Player, error) {
	ds, ok := e.provider.Dataset()
	if !ok {
		return model.Player{}, ErrNoDataset
	}
	row, ok := ds.RowByName(name)
	if !ok {
		return model.Player{}, fmt.Errorf("%w: name %q", ErrNotFound, name)
	}
	return ds.Player(row), nil
}

// PlayerByID returns the player with identifier id.
func (e *Engine) PlayerByID(_ context.Context, id string) (model.Player, error) {
	ds, ok := e.provider.Dataset()
	if !ok {
		return model.Player{}, ErrNoDataset
	}
	row, ok := ds.RowByID(id)
	if !ok {
		return model.Player{}, fmt.Errorf("%w: id %q", ErrNotFound, id)
	}
	return ds.Player(row), nil
}

// Players returns up to limit players starting at offset, in table order,
// and the total number of players.
func (e *Engine) Players(_ context.Context, offset, limit int) ([]model.Player, int, error) {
	ds, ok := e.provider.Dataset()
	if !ok {
		return nil, 0, ErrNoDataset
	}
	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("%w: offset and limit must be non-negative", ErrValidation)
	}
	total := ds.Len()
	if offset >= total {
		return []model.Player{}, total, nil
	}
	end := total
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}
	out := make([]model.Player, 0, end-offset)
	for row := offset; row < end; row++ {
		out = append(out, ds.Player(row))
	}
	return out, total, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrEmptyPool):
		return metrics.OutcomeEmptyPool
	case errors.Is(err, ErrValidation):
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeError
	}
}
