package search

import "github.com/okian/scout/pkg/logger"

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMaxResultCount caps Query.ResultCount. Zero disables the cap.
func WithMaxResultCount(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxResults = n
		}
	}
}

// WithMetrics toggles Prometheus recording for searches.
func WithMetrics(enabled bool) Option {
	return func(e *Engine) {
		e.metrics = enabled
	}
}
