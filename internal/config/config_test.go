package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/shopfloor/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.FeedbackLatencyMinMS, convey.ShouldEqual, 500)
			convey.So(cfg.FeedbackLatencyMaxMS, convey.ShouldEqual, 1000)
			convey.So(cfg.ScoreFloor, convey.ShouldEqual, 10)
			convey.So(cfg.ScoreCeiling, convey.ShouldEqual, 95)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then durations are derived from the millisecond fields", func() {
			lo, hi := cfg.FeedbackLatency()
			convey.So(lo, convey.ShouldEqual, 500*time.Millisecond)
			convey.So(hi, convey.ShouldEqual, time.Second)
			convey.So(cfg.FeedbackTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.TokenTTL(), convey.ShouldEqual, 8*time.Hour)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"empty secret", func(c *config.Config) { c.JWTSecret = "" }},
			{"zero ttl", func(c *config.Config) { c.TokenTTLMinutes = 0 }},
			{"inverted latency", func(c *config.Config) { c.FeedbackLatencyMinMS = 900; c.FeedbackLatencyMaxMS = 100 }},
			{"timeout too short", func(c *config.Config) { c.FeedbackTimeoutMS = 1000 }},
			{"floor above ceiling", func(c *config.Config) { c.ScoreFloor = 90; c.ScoreCeiling = 80 }},
			{"zero response cap", func(c *config.Config) { c.MaxResponseChars = 0 }},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New(context.Background())
				tc.mutate(cfg)

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}
