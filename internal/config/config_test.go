package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmehdipour/segment-reports/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given only the embedded defaults", t, func() {
		cfg, err := config.Load("")
		So(err, ShouldBeNil)

		Convey("Then the clustering knobs match the report scripts", func() {
			So(cfg.Clustering.Seed, ShouldEqual, 42)
			So(cfg.Clustering.NInit, ShouldEqual, 10)
			So(cfg.Sakila.K, ShouldEqual, 4)
			So(cfg.Sales.K, ShouldEqual, 5)
			So(cfg.Sales.PlotK, ShouldEqual, 4)
			So(cfg.Sales.MaxIter, ShouldEqual, 500)
		})

		Convey("And durations and squashed sections decode", func() {
			So(cfg.Launcher.ProbeTimeout, ShouldEqual, 500*time.Millisecond)
			So(cfg.Redis.TTL, ShouldEqual, 168*time.Hour)
			So(cfg.ClickHouse.PingTimeout, ShouldEqual, 3*time.Second)
			So(cfg.ClickHouse.Enabled, ShouldBeFalse)
			So(cfg.Sinks.Backoff, ShouldEqual, 250*time.Millisecond)
			So(cfg.Sinks.BreakerOpenFor, ShouldEqual, 30*time.Second)
		})

		Convey("And the defaults validate", func() {
			So(cfg.Validate(), ShouldBeNil)
		})
	})

	Convey("Given a user YAML file", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		err := os.WriteFile(path, []byte("sakila:\n  k: 6\npreview:\n  addr: \"127.0.0.1:9000\"\n"), 0o600)
		So(err, ShouldBeNil)

		cfg, err := config.Load(path)
		So(err, ShouldBeNil)

		Convey("Then it overrides only what it names", func() {
			So(cfg.Sakila.K, ShouldEqual, 6)
			So(cfg.Preview.Addr, ShouldEqual, "127.0.0.1:9000")
			So(cfg.Sales.K, ShouldEqual, 5)
		})
	})

	Convey("Given a missing user file", t, func() {
		cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))

		Convey("Then defaults still load", func() {
			So(err, ShouldBeNil)
			So(cfg.Sakila.K, ShouldEqual, 4)
		})
	})
}

func TestLoadMalformedFile(t *testing.T) {
	Convey("Given a user YAML file with a syntax error", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		So(os.WriteFile(path, []byte("sakila:\n  k: [7\n"), 0o600), ShouldBeNil)

		_, err := config.Load(path)

		Convey("Then loading fails and names the file", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, path)
		})
	})
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SEGRPT_SAKILA_K", "7")
	t.Setenv("SEGRPT_LOG_LEVEL", "debug")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sakila.K != 7 {
		t.Fatalf("expected sakila.k=7 from env, got %d", cfg.Sakila.K)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log.level=debug from env, got %q", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	base, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero k", func(c *config.Config) { c.Sakila.K = 0 }},
		{"zero n_init", func(c *config.Config) { c.Clustering.NInit = 0 }},
		{"empty customer key", func(c *config.Config) { c.Sales.CustomerKey = " " }},
		{"clickhouse without dsn", func(c *config.Config) { c.ClickHouse.Enabled = true; c.ClickHouse.DSN = "" }},
		{"kafka without topic", func(c *config.Config) { c.Kafka.Enabled = true; c.Kafka.Topic = "" }},
		{"bad preview addr", func(c *config.Config) { c.Preview.Addr = "nope" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
