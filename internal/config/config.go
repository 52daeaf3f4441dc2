// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and SCOUT_ environment variables.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"slices"
)

// Dataset source kinds accepted by dataset_source.
const (
	SourceAuto   = "auto"
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the players table, CSV or SQLite.
	DatasetPath string `koanf:"dataset_path"`

	// DatasetSource selects the reader: auto, csv or sqlite.
	DatasetSource string `koanf:"dataset_source"`

	// SQLiteTable names the table read from a SQLite dataset.
	SQLiteTable string `koanf:"sqlite_table"`

	// WatchDataset reloads the snapshot when the dataset file changes.
	WatchDataset bool `koanf:"watch_dataset"`

	// ReloadQueueSize bounds pending reload requests.
	ReloadQueueSize int `koanf:"reload_queue_size"`

	// DefaultResultCount is used when /similar omits count.
	DefaultResultCount int `koanf:"default_result_count"`

	// MaxResultCount caps the requested result count. Zero disables the cap.
	MaxResultCount int `koanf:"max_result_count"`

	// MaxPageLimit caps the limit parameter of paginated endpoints.
	MaxPageLimit int `koanf:"max_page_limit"`

	// RateLimitRequests per RateLimitWindowSec per client IP. Zero disables limiting.
	RateLimitRequests  int `koanf:"rate_limit_requests"`
	RateLimitWindowSec int `koanf:"rate_limit_window_sec"`

	// CORSAllowedOrigins lists allowed origins; comma separated in env.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		DatasetPath:        "data/players.csv",
		DatasetSource:      SourceAuto,
		SQLiteTable:        "players",
		WatchDataset:       false,
		ReloadQueueSize:    16,
		DefaultResultCount: 20,
		MaxResultCount:     100,
		MaxPageLimit:       100,
		RateLimitRequests:  0,
		RateLimitWindowSec: 60,
		CORSAllowedOrigins: []string{"*"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatasetPath == "":
		return fmt.Errorf("%w: dataset_path must not be empty", ErrInvalidConfig)
	case !slices.Contains([]string{SourceAuto, SourceCSV, SourceSQLite}, c.DatasetSource):
		return fmt.Errorf("%w: dataset_source %q is not one of auto, csv, sqlite", ErrInvalidConfig, c.DatasetSource)
	case c.ReloadQueueSize < 1:
		return fmt.Errorf("%w: reload_queue_size must be at least 1", ErrInvalidConfig)
	case c.DefaultResultCount < 1:
		return fmt.Errorf("%w: default_result_count must be at least 1", ErrInvalidConfig)
	case c.MaxResultCount < 0:
		return fmt.Errorf("%w: max_result_count must not be negative", ErrInvalidConfig)
	case c.MaxResultCount > 0 && c.DefaultResultCount > c.MaxResultCount:
		return fmt.Errorf("%w: default_result_count %d exceeds max_result_count %d",
			ErrInvalidConfig, c.DefaultResultCount, c.MaxResultCount)
	case c.MaxPageLimit < 1:
		return fmt.Errorf("%w: max_page_limit must be at least 1", ErrInvalidConfig)
	case c.RateLimitRequests < 0:
		return fmt.Errorf("%w: rate_limit_requests must not be negative", ErrInvalidConfig)
	case c.RateLimitRequests > 0 && c.RateLimitWindowSec < 1:
		return fmt.Errorf("%w: rate_limit_window_sec must be at least 1", ErrInvalidConfig)
	}
	return nil
}
