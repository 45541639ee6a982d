package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tkarimi/residual/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given the config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then defaults should apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Brokers, convey.ShouldResemble, []string{"localhost:9092"})
				convey.So(cfg.TopicGroundTruth, convey.ShouldEqual, "y-true")
				convey.So(cfg.TopicPrediction, convey.ShouldEqual, "y-pred")
				convey.So(cfg.TopicFeatures, convey.ShouldEqual, "features")
				convey.So(cfg.DeliveryMode, convey.ShouldEqual, config.DeliveryAtMostOnce)
				convey.So(cfg.ProduceInterval, convey.ShouldEqual, 10*time.Second)
				convey.So(cfg.RenderInterval, convey.ShouldEqual, 10*time.Second)
				convey.So(cfg.PendingMaxSize, convey.ShouldEqual, 65536)
				convey.So(cfg.PendingTTL, convey.ShouldEqual, 5*time.Minute)
				convey.So(cfg.IDScheme, convey.ShouldEqual, config.IDSchemeUUID)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When loading with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("RESIDUAL_TOPIC_GROUND_TRUTH", "truth")
			_ = os.Setenv("RESIDUAL_DELIVERY_MODE", "at_least_once")
			_ = os.Setenv("RESIDUAL_PENDING_MAX_SIZE", "128")
			_ = os.Setenv("RESIDUAL_PRODUCE_INTERVAL", "250ms")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TopicGroundTruth, convey.ShouldEqual, "truth")
				convey.So(cfg.DeliveryMode, convey.ShouldEqual, config.DeliveryAtLeastOnce)
				convey.So(cfg.PendingMaxSize, convey.ShouldEqual, 128)
				convey.So(cfg.ProduceInterval, convey.ShouldEqual, 250*time.Millisecond)
			})
		})

		convey.Convey("When loading with a YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "residual.yaml")
			yaml := "log_level: debug\nplot_bins: 40\nerror_log_path: /tmp/residual/metric_log.csv\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("RESIDUAL_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.PlotBins, convey.ShouldEqual, 40)
				convey.So(cfg.ErrorLogPath, convey.ShouldEqual, "/tmp/residual/metric_log.csv")
			})
		})

		convey.Convey("When env overrides a file value", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "residual.yaml")
			convey.So(os.WriteFile(path, []byte("plot_bins: 40\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("RESIDUAL_CONFIG", path)
			_ = os.Setenv("RESIDUAL_PLOT_BINS", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.PlotBins, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("RESIDUAL_CONFIG", "/nonexistent/residual.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail with ErrLoadConfig", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, config.ErrLoadConfig.Error())
			})
		})

		convey.Convey("When a value fails validation", func() {
			clearConfigEnvVars()

			convey.Convey("And delivery_mode is unknown", func() {
				_ = os.Setenv("RESIDUAL_DELIVERY_MODE", "exactly_once")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, config.ErrInvalidConfig.Error())
			})

			convey.Convey("And id_scheme is unknown", func() {
				_ = os.Setenv("RESIDUAL_ID_SCHEME", "snowflake")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})

			convey.Convey("And pending_max_size is not positive", func() {
				_ = os.Setenv("RESIDUAL_PENDING_MAX_SIZE", "0")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})

			convey.Convey("And produce_interval is negative", func() {
				_ = os.Setenv("RESIDUAL_PRODUCE_INTERVAL", "-1s")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"RESIDUAL_CONFIG",
		"RESIDUAL_LOG_LEVEL",
		"RESIDUAL_TOPIC_GROUND_TRUTH",
		"RESIDUAL_TOPIC_PREDICTION",
		"RESIDUAL_TOPIC_FEATURES",
		"RESIDUAL_DELIVERY_MODE",
		"RESIDUAL_PRODUCE_INTERVAL",
		"RESIDUAL_RENDER_INTERVAL",
		"RESIDUAL_PENDING_MAX_SIZE",
		"RESIDUAL_PENDING_TTL",
		"RESIDUAL_PLOT_BINS",
		"RESIDUAL_ID_SCHEME",
	} {
		_ = os.Unsetenv(key)
	}
}
