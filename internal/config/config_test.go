package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/mitiplan/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ReconcileStrategy, convey.ShouldEqual, "latest")
			convey.So(cfg.PendingTimeoutMS, convey.ShouldEqual, 5000)
			convey.So(cfg.SnapshotQueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.SeenSnapshots, convey.ShouldEqual, 1024)
			convey.So(cfg.EditorID, convey.ShouldNotBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then every config gets its own editor id", func() {
			convey.So(config.New(context.Background()).EditorID, convey.ShouldNotEqual, cfg.EditorID)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid values", t, func() {
		mutations := []func(*config.Config){
			func(c *config.Config) { c.Addr = "" },
			func(c *config.Config) { c.EditorID = "" },
			func(c *config.Config) { c.PendingTimeoutMS = 0 },
			func(c *config.Config) { c.SnapshotQueueSize = -1 },
			func(c *config.Config) { c.Level = -5 },
			func(c *config.Config) { c.ReconcileStrategy = "newest" },
		}
		for _, mutate := range mutations {
			cfg := config.New(context.Background())
			mutate(cfg)
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		}
	})
}
