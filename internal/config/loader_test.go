package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/woodshed/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"WOODSHED_CONFIG",
		"WOODSHED_ADDR",
		"WOODSHED_DB_PATH",
		"WOODSHED_BROKER_URL",
		"WOODSHED_TEMPO_TOPIC",
		"WOODSHED_ADMISSION_WINDOW_MIN",
		"WOODSHED_LIVE_FEED_BUFFER",
		"WOODSHED_LOG_LEVEL",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.BrokerURL, convey.ShouldEqual, "tcp://localhost:1883")
				convey.So(cfg.TempoTopic, convey.ShouldEqual, "practice/tempo")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("WOODSHED_ADDR", ":8080")
			_ = os.Setenv("WOODSHED_DB_PATH", "/tmp/woodshed-test.db")
			_ = os.Setenv("WOODSHED_BROKER_URL", "tcp://broker.local:1883")
			_ = os.Setenv("WOODSHED_TEMPO_TOPIC", "esp32/midi")
			_ = os.Setenv("WOODSHED_ADMISSION_WINDOW_MIN", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/woodshed-test.db")
				convey.So(cfg.BrokerURL, convey.ShouldEqual, "tcp://broker.local:1883")
				convey.So(cfg.TempoTopic, convey.ShouldEqual, "esp32/midi")
				convey.So(cfg.AdmissionWindowMin, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
db_path: "file.db"
broker_url: "tcp://yaml.local:1883"
admission_window_min: 10
live_feed_buffer: 32
`
			tmpFile := filepath.Join(t.TempDir(), "config.yaml")
			convey.So(os.WriteFile(tmpFile, []byte(yamlContent), 0o600), convey.ShouldBeNil)

			_ = os.Setenv("WOODSHED_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "file.db")
				convey.So(cfg.BrokerURL, convey.ShouldEqual, "tcp://yaml.local:1883")
				convey.So(cfg.AdmissionWindowMin, convey.ShouldEqual, 10)
				convey.So(cfg.LiveFeedBuffer, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			yamlContent := `
addr: ":9090"
broker_url: "tcp://yaml.local:1883"
`
			tmpFile := filepath.Join(t.TempDir(), "config.yaml")
			convey.So(os.WriteFile(tmpFile, []byte(yamlContent), 0o600), convey.ShouldBeNil)

			_ = os.Setenv("WOODSHED_CONFIG", tmpFile)
			_ = os.Setenv("WOODSHED_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.BrokerURL, convey.ShouldEqual, "tcp://yaml.local:1883")
			})
		})

		convey.Convey("When validation fails", func() {
			_ = os.Setenv("WOODSHED_ADMISSION_WINDOW_MIN", "-1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then an invalid config error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv("WOODSHED_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}
