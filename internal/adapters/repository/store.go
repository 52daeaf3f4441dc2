package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scout/internal/domain/search"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Load reads src and builds a snapshot from it.
func Load(ctx context.Context, src Source) (*Snapshot, error) {
	t, err := src.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrDataLoad) || ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.Join(ErrDataLoad, err)
	}
	p, err := parseTable(t)
	if err != nil {
		return nil, err
	}
	snap, err := NewSnapshot(p.players, p.hasLeague, src.Path())
	if err != nil {
		return nil, err
	}
	snap.Rejected = p.rejected
	return snap, nil
}

// SnapshotStore publishes the current Snapshot. Readers take the pointer
// once per query; Reload builds a new snapshot and swaps it atomically.
type SnapshotStore struct {
	src     Source
	log     logger.Logger
	metrics bool

	mu       sync.Mutex // serializes reloads
	snapshot atomic.Pointer[Snapshot]
}

var _ search.Provider = (*SnapshotStore)(nil)

// NewSnapshotStore creates an empty store reading from src.
func NewSnapshotStore(src Source, opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		src:     src,
		log:     logger.Nop(),
		metrics: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the source the store reloads from.
func (s *SnapshotStore) Source() Source { return s.src }

// Current returns the active snapshot, or nil before the first load.
func (s *SnapshotStore) Current() *Snapshot {
	return s.snapshot.Load()
}

// Dataset implements search.Provider.
func (s *SnapshotStore) Dataset() (search.Dataset, bool) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, false
	}
	return snap, true
}

// Reload rebuilds the snapshot from the source and publishes it. On failure
// the previous snapshot stays active.
func (s *SnapshotStore) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	snap, err := Load(ctx, s.src)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if s.metrics {
		metrics.RecordDatasetLoad(err == nil, latency)
	}
	if err != nil {
		s.log.Error(ctx, "dataset load failed",
			logger.String("path", s.src.Path()), logger.Error(err))
		return nil, err
	}

	prev := s.snapshot.Swap(snap)
	if s.metrics {
		metrics.UpdateDataset(snap.Len(), snap.Rejected, len(snap.Leagues()))
	}
	if snap.Rejected > 0 {
		s.log.Warn(ctx, "rows rejected for missing values",
			logger.String("path", snap.Source), logger.Int("rejected", snap.Rejected))
	}
	fields := []logger.Field{
		logger.String("path", snap.Source),
		logger.String("version", snap.Version),
		logger.Int("rows", snap.Len()),
		logger.Bool("has_league", snap.HasLeague()),
		logger.Float64("latency_ms", latency),
	}
	if prev != nil {
		fields = append(fields, logger.String("previous_version", prev.Version))
	}
	s.log.Info(ctx, "dataset snapshot published", fields...)
	return snap, nil
}
