package repository

import "github.com/okian/scout/pkg/logger"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SnapshotStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics toggles Prometheus recording for loads.
func WithMetrics(enabled bool) Option {
	return func(s *SnapshotStore) {
		s.metrics = enabled
	}
}
