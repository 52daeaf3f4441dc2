package config_test

import (
	"errors"
	"testing"

	"github.com/okian/scout/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DatasetSource, convey.ShouldEqual, config.SourceAuto)
			convey.So(cfg.SQLiteTable, convey.ShouldEqual, "players")
			convey.So(cfg.ReloadQueueSize, convey.ShouldEqual, 16)
			convey.So(cfg.DefaultResultCount, convey.ShouldEqual, 20)
			convey.So(cfg.MaxResultCount, convey.ShouldEqual, 100)
			convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty addr", func(c *config.Config) { c.Addr = "" }, "addr must not be empty"},
		{"empty dataset", func(c *config.Config) { c.DatasetPath = "" }, "dataset_path"},
		{"unknown source", func(c *config.Config) { c.DatasetSource = "parquet" }, "dataset_source"},
		{"zero queue", func(c *config.Config) { c.ReloadQueueSize = 0 }, "reload_queue_size"},
		{"zero default count", func(c *config.Config) { c.DefaultResultCount = 0 }, "default_result_count"},
		{"negative max count", func(c *config.Config) { c.MaxResultCount = -1 }, "max_result_count"},
		{"default above max", func(c *config.Config) { c.DefaultResultCount = 200 }, "exceeds"},
		{"zero page limit", func(c *config.Config) { c.MaxPageLimit = 0 }, "max_page_limit"},
		{"negative rate", func(c *config.Config) { c.RateLimitRequests = -5 }, "rate_limit_requests"},
		{"rate without window", func(c *config.Config) {
			c.RateLimitRequests = 10
			c.RateLimitWindowSec = 0
		}, "rate_limit_window_sec"},
	}

	convey.Convey("Given invalid configurations", t, func() {
		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, tc.want)
		}
	})

	convey.Convey("Given an uncapped result count", t, func() {
		cfg := config.New()
		cfg.MaxResultCount = 0
		cfg.DefaultResultCount = 500
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
