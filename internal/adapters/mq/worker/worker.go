package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scout/internal/adapters/mq/queue"
	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/dedupe"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Reloader rebuilds and publishes the dataset snapshot.
type Reloader interface {
	Reload(ctx context.Context) (*repository.Snapshot, error)
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// Worker processes reload requests one at a time.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current reload to finish.
	Shutdown(ctx context.Context) error
}

// Stats summarizes the work done by a worker.
type Stats struct {
	Processed   int64  `json:"processed"`
	Failed      int64  `json:"failed"`
	LastRequest string `json:"last_request,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

// InMemoryWorker is the single consumer of the reload queue. Running one
// instance serializes reloads.
type InMemoryWorker struct {
	queue    Queue
	reloader Reloader
	dedupe   dedupe.Deduper
	name     string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	processed atomic.Int64
	failed    atomic.Int64
	mu        sync.Mutex
	lastReq   string
	lastErr   string

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading q and reloading through r.
func NewInMemoryWorker(q Queue, r Reloader, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		reloader: r,
		name:     "reload-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			if err := w.process(ctx, r); err != nil {
				w.logger.Error(ctx, "reload failed", logger.Error(err))
			}
		}
	}
}

// Shutdown signals the worker to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Stats returns a copy of the worker counters.
func (w *InMemoryWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		Processed:   w.processed.Load(),
		Failed:      w.failed.Load(),
		LastRequest: w.lastReq,
		LastError:   w.lastErr,
	}
}

func (w *InMemoryWorker) process(ctx context.Context, r queue.Request) error {
	start := time.Now()
	snap, err := w.reloader.Reload(ctx)
	w.processed.Add(1)

	w.mu.Lock()
	w.lastReq = r.ID
	if err != nil {
		w.lastErr = err.Error()
	} else {
		w.lastErr = ""
	}
	w.mu.Unlock()

	if err != nil {
		if w.dedupe != nil && r.Fingerprint != "" {
			w.dedupe.Unrecord(ctx, r.Fingerprint)
		}
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByType("reload_error", "high")
		return fmt.Errorf("reload %s (%s): %w", r.ID, r.Reason, err)
	}

	w.logger.Info(ctx, "reload complete",
		logger.String("request_id", r.ID),
		logger.String("reason", r.Reason),
		logger.String("version", snap.Version),
		logger.Duration("queued_for", start.Sub(r.RequestedAt)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}
