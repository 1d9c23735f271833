package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/bgxboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"BGX_CONFIG", "BGX_ADDR", "BGX_QUEUE_SIZE", "BGX_WORKER_COUNT", "BGX_RESULTS_DIR",
	"BGX_VISIT_STORE", "BGX_RACE_SCHEDULE", "BGX_WATCH_RESULTS", "BGX_LOG_LEVEL", "PORT", "HOST",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bgx.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5001")
				convey.So(cfg.VisitStore, convey.ShouldEqual, "jsonl")
				convey.So(cfg.Categories, convey.ShouldHaveLength, 8)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BGX_ADDR", ":8080")
			_ = os.Setenv("BGX_QUEUE_SIZE", "500")
			_ = os.Setenv("BGX_RESULTS_DIR", "/srv/results")
			_ = os.Setenv("BGX_RACE_SCHEDULE", "varna,vitosha")
			_ = os.Setenv("BGX_WATCH_RESULTS", "false")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.ResultsDir, convey.ShouldEqual, "/srv/results")
				convey.So(cfg.RaceSchedule, convey.ShouldResemble, []string{"varna", "vitosha"})
				convey.So(cfg.WatchResults, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
worker_count: 3
default_category: kids
categories:
  - key: kids
    name: Kids
  - key: adults
    name: Adults
`)
			_ = os.Setenv("BGX_CONFIG", path)
			_ = os.Setenv("BGX_WORKER_COUNT", "7")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values replace defaults and env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 7)
				convey.So(cfg.Categories, convey.ShouldHaveLength, 2)
				convey.So(cfg.Categories[1].Name, convey.ShouldEqual, "Adults")
				convey.So(cfg.DefaultCategory, convey.ShouldEqual, "kids")
				convey.So(cfg.RecentActivityLimit, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			_ = os.Setenv("BGX_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("BGX_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("BGX_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the platform sets PORT and HOST", func() {
			_ = os.Setenv("PORT", "8081")
			_ = os.Setenv("HOST", "127.0.0.1")

			convey.Convey("Then they form the listen address", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "127.0.0.1:8081")
			})

			convey.Convey("Then BGX_ADDR still takes precedence", func() {
				_ = os.Setenv("BGX_ADDR", ":7000")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
			})
		})

		convey.Convey("When only PORT is set", func() {
			_ = os.Setenv("PORT", "9999")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, "0.0.0.0:9999")
		})
	})
}
