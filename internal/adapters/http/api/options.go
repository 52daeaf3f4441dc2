package api

import (
	"time"

	"github.com/okian/scout/pkg/logger"
)

type handlerConfig struct {
	defaultCount int
	maxPageLimit int
}

// Option configures a Server.
type Option func(*Server, *handlerConfig)

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server, _ *handlerConfig) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithRateLimit limits query endpoints to requests per window per client IP.
// requests <= 0 disables limiting.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server, _ *handlerConfig) {
		s.rateLimit = requests
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithDefaultResultCount sets the count used when /similar omits it.
func WithDefaultResultCount(n int) Option {
	return func(_ *Server, c *handlerConfig) {
		if n > 0 {
			c.defaultCount = n
		}
	}
}

// WithMaxPageLimit caps the limit parameter of paginated endpoints.
func WithMaxPageLimit(n int) Option {
	return func(_ *Server, c *handlerConfig) {
		if n > 0 {
			c.maxPageLimit = n
		}
	}
}

// WithLogger sets the API logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server, _ *handlerConfig) {
		if l != nil {
			s.log = l
		}
	}
}
