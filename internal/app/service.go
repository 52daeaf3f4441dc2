// Package service wires the dataset store, the reload pipeline and the
// similarity engine into the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scout/internal/adapters/mq/queue"
	"github.com/okian/scout/internal/adapters/mq/worker"
	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/adapters/watch"
	"github.com/okian/scout/internal/domain/dedupe"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/search"
	"github.com/okian/scout/internal/domain/types"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// ErrNotStarted is returned by reload requests made before Start or after Stop.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the similarity service.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.SnapshotStore
	engine  *search.Engine
	deduper dedupe.Deduper
	reloads *queue.InMemoryQueue
	worker  *worker.InMemoryWorker
	watcher *watch.Watcher

	// Configuration
	datasetPath   string
	datasetSource string
	sqliteTable   string
	queueSize     int
	dedupeSize    int
	maxResults    int
	watchDataset  bool
	watchDebounce time.Duration

	// State
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataset sets the dataset path, its source kind and the SQLite table.
// Empty kind and table keep the defaults.
func WithDataset(path, kind, table string) Option {
	return func(s *Service) {
		s.datasetPath = path
		if kind != "" {
			s.datasetSource = kind
		}
		if table != "" {
			s.sqliteTable = table
		}
	}
}

// WithQueueSize sets the maximum number of pending reload requests.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many reload fingerprints are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxResultCount caps the result count of a search. Zero disables the cap.
func WithMaxResultCount(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxResults = n
		}
	}
}

// WithWatch enables reloading when the dataset file changes.
func WithWatch(enabled bool, debounce time.Duration) Option {
	return func(s *Service) {
		s.watchDataset = enabled
		if debounce > 0 {
			s.watchDebounce = debounce
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Nothing is loaded until Start.
func New(opts ...Option) *Service {
	s := &Service{
		datasetSource: repository.SourceAuto,
		sqliteTable:   repository.DefaultSQLiteTable,
		queueSize:     16,
		dedupeSize:    1024,
		maxResults:    search.DefaultMaxResultCount,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = search.NewEngine(s,
		search.WithLogger(s.logger.Named("search")),
		search.WithMaxResultCount(s.maxResults),
	)
	return s
}

// Dataset implements search.Provider over the current snapshot.
func (s *Service) Dataset() (search.Dataset, bool) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return nil, false
	}
	return store.Dataset()
}

// Start loads the dataset and starts the reload worker and, when enabled,
// the file watcher. A failed initial load fails Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting similarity service...",
		logger.String("dataset", s.datasetPath),
		logger.String("source", s.datasetSource),
	)

	src, err := repository.NewSource(s.datasetSource, s.datasetPath, s.sqliteTable)
	if err != nil {
		return fmt.Errorf("dataset source: %w", err)
	}
	store := repository.NewSnapshotStore(src, repository.WithLogger(s.logger.Named("repository")))
	if _, err := store.Reload(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	deduper := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	// The loaded file needs no reload until it changes.
	if fp, err := repository.Fingerprint(s.datasetPath); err == nil {
		deduper.SeenAndRecord(ctx, fp)
	}

	var watcher *watch.Watcher
	if s.watchDataset {
		watcher, err = watch.New(s.datasetPath, s.onDatasetChange,
			watch.WithDebounce(s.watchDebounce),
			watch.WithLogger(s.logger.Named("watch")),
		)
		if err != nil {
			return err
		}
	}

	reloads := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	w := worker.NewInMemoryWorker(reloads, store,
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithDeduper(deduper),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.store, s.deduper, s.reloads, s.worker, s.watcher, s.cancel = store, deduper, reloads, w, watcher, cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		w.Run(runCtx)
	}()
	if watcher != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := watcher.Run(runCtx); err != nil {
				s.logger.Error(runCtx, "dataset watcher stopped", logger.Error(err))
			}
		}()
	}

	s.started = true
	snap := store.Current()
	s.logger.Info(ctx, "similarity service started",
		logger.String("version", snap.Version),
		logger.Int("rows", snap.Len()),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("watch", s.watchDataset),
	)
	return nil
}

// Stop drains the reload pipeline and stops background goroutines. The last
// snapshot stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	reloads, w, cancel := s.reloads, s.worker, s.cancel
	s.mu.Unlock()

	ctx, timeout := context.WithTimeout(context.Background(), stopTimeout)
	defer timeout()
	s.logger.Info(ctx, "stopping similarity service...")

	_ = reloads.Close()
	if err := w.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "reload worker did not stop in time", logger.Error(err))
	}
	cancel()
	s.wg.Wait()

	s.logger.Info(ctx, "similarity service stopped")
}

// RequestReload queues a reload of the dataset. Requests for a file
// fingerprint already pending or loaded are reported as duplicates unless
// force is set.
func (s *Service) RequestReload(ctx context.Context, reason string, force bool) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return "", false, fmt.Errorf("%w: %w", ErrNotStarted, queue.ErrClosed)
	}

	id := uuid.NewString()
	key := "force:" + id
	if !force {
		fp, err := repository.Fingerprint(s.datasetPath)
		if err != nil {
			return "", false, err
		}
		key = fp
	}

	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordReloadDeduplicated()
		s.logger.Debug(ctx, "duplicate reload request skipped",
			logger.String("reason", reason),
			logger.String("fingerprint", key),
		)
		return "", true, nil
	}

	req := model.ReloadRequest{
		ID:          id,
		Path:        s.datasetPath,
		Reason:      reason,
		Fingerprint: key,
		RequestedAt: time.Now(),
	}
	if err := s.reloads.Enqueue(ctx, req); err != nil {
		s.deduper.Unrecord(ctx, key)
		return "", false, fmt.Errorf("enqueue reload: %w", err)
	}
	s.logger.Info(ctx, "reload queued",
		logger.String("request_id", id),
		logger.String("reason", reason),
		logger.Bool("force", force),
	)
	return id, false, nil
}

func (s *Service) onDatasetChange(ctx context.Context, path string) {
	if _, _, err := s.RequestReload(ctx, model.ReasonWatch, false); err != nil {
		s.logger.Warn(ctx, "reload after change not queued",
			logger.String("path", path), logger.Error(err))
	}
}

// Ready describes the active snapshot.
func (s *Service) Ready() types.Ready {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return types.Ready{Status: "loading"}
	}
	snap := store.Current()
	if snap == nil {
		return types.Ready{Status: "loading"}
	}
	return types.Ready{
		Status:   "ready",
		Version:  snap.Version,
		Rows:     snap.Len(),
		LoadedAt: snap.LoadedAt,
	}
}

// FindSimilar runs a similarity search for the first player named name.
func (s *Service) FindSimilar(ctx context.Context, name string, q search.Query) ([]model.Match, error) {
	return s.engine.FindSimilar(ctx, name, q)
}

// FindSimilarByID runs a similarity search for the player with id.
func (s *Service) FindSimilarByID(ctx context.Context, id string, q search.Query) ([]model.Match, error) {
	return s.engine.FindSimilarByID(ctx, id, q)
}

// Similar is FindSimilar that also returns the reference player from the
// same snapshot.
func (s *Service) Similar(ctx context.Context, name string, q search.Query) (search.Result, error) {
	return s.engine.Similar(ctx, name, q)
}

// SimilarByID is Similar with the reference resolved by identifier.
func (s *Service) SimilarByID(ctx context.Context, id string, q search.Query) (search.Result, error) {
	return s.engine.SimilarByID(ctx, id, q)
}

// Lookup returns the first player named name.
func (s *Service) Lookup(ctx context.Context, name string) (model.Player, error) {
	return s.engine.Lookup(ctx, name)
}

// PlayerByID returns the player with id.
func (s *Service) PlayerByID(ctx context.Context, id string) (model.Player, error) {
	return s.engine.PlayerByID(ctx, id)
}

// Players returns a page of players in table order and the total count.
func (s *Service) Players(ctx context.Context, offset, limit int) ([]model.Player, int, error) {
	return s.engine.Players(ctx, offset, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":        s.started,
		"datasetPath":    s.datasetPath,
		"datasetSource":  s.datasetSource,
		"maxResultCount": s.engine.MaxResultCount(),
		"watch":          s.watchDataset,
	}
	if s.watcher != nil {
		stats["watchPath"] = s.watcher.Path()
	}

	if s.store != nil {
		if snap := s.store.Current(); snap != nil {
			stats["dataset"] = map[string]any{
				"version":   snap.Version,
				"rows":      snap.Len(),
				"rejected":  snap.Rejected,
				"hasLeague": snap.HasLeague(),
				"leagues":   len(snap.Leagues()),
				"loadedAt":  snap.LoadedAt,
			}
		}
	}

	if s.started {
		queueLen := s.reloads.Len(ctx)
		stats["queueLength"] = queueLen
		stats["queueCapacity"] = s.reloads.Capacity()
		stats["dedupeSize"] = s.deduper.Size()
		stats["worker"] = s.worker.Stats()

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
