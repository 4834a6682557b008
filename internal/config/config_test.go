package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/volley/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have service defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 100000)
			convey.So(cfg.MaxSessions, convey.ShouldEqual, 10000)
		})

		convey.Convey("Then it should have engine defaults", func() {
			convey.So(cfg.DominantSide, convey.ShouldEqual, "right")
			convey.So(cfg.MinVisibility, convey.ShouldEqual, 0.5)
			convey.So(cfg.MinLandmarks, convey.ShouldEqual, 6)
			convey.So(cfg.SmoothingWindow, convey.ShouldEqual, 5)
			convey.So(cfg.MinPeakSpeed, convey.ShouldEqual, 0.5)
			convey.So(cfg.BoundaryRatio, convey.ShouldEqual, 0.3)
			convey.So(cfg.ClassifierPolicy, convey.ShouldEqual, "geometry")
			convey.So(cfg.MinEventDuration, convey.ShouldEqual, 0.1)
			convey.So(cfg.MaxEventDuration, convey.ShouldEqual, 3.0)
			convey.So(cfg.RallyGapSec, convey.ShouldEqual, 3.0)
			convey.So(cfg.PressureLengthWeight+cfg.PressureErrorWeight+cfg.PressureDifficultyWeight, convey.ShouldAlmostEqual, 1.0, 1e-9)
			convey.So(cfg.HighPressure, convey.ShouldEqual, 0.7)
			convey.So(cfg.HeatmapSize, convey.ShouldEqual, 20)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with out-of-range engine values", t, func() {
		cases := map[string]func(*config.Config){
			"side":       func(c *config.Config) { c.DominantSide = "both" },
			"visibility": func(c *config.Config) { c.MinVisibility = 1.5 },
			"landmarks":  func(c *config.Config) { c.MinLandmarks = 9 },
			"policy":     func(c *config.Config) { c.ClassifierPolicy = "neural" },
			"ratio":      func(c *config.Config) { c.BoundaryRatio = 1 },
			"duration":   func(c *config.Config) { c.MaxEventDuration = 0.05 },
			"queue":      func(c *config.Config) { c.QueueSize = 0 },
			"log level":  func(c *config.Config) { c.LogLevel = "trace" },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)

			convey.Convey("Then "+name+" is rejected as invalid config", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
