package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/segment-reports/internal/cluster"
	"github.com/jmehdipour/segment-reports/internal/config"
	"github.com/jmehdipour/segment-reports/internal/db"
	"github.com/jmehdipour/segment-reports/internal/kafka"
	"github.com/jmehdipour/segment-reports/internal/logger"
	"github.com/jmehdipour/segment-reports/internal/metrics"
	"github.com/jmehdipour/segment-reports/internal/repository"
	"github.com/jmehdipour/segment-reports/internal/sink"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func connectMySQL(name string, c config.DatabaseConfig) (*sqlx.DB, error) {
	conn, err := db.NewMySQLConnection(db.OptsFrom(c))
	if err != nil {
		return nil, fmt.Errorf("mysql connect %s: %w", name, err)
	}
	logger.Log.Info("mysql connected", zap.String("database", db.DatabaseName(c.DSN)))
	return conn, nil
}

func baseKMeans(c config.ClusteringConfig) cluster.KMeans {
	return cluster.KMeans{NInit: c.NInit, MaxIter: c.MaxIter, Tol: c.Tol, Seed: c.Seed}
}

// buildSinks connects every enabled assignment sink. The returned close func
// is always safe to call.
func buildSinks(cfg config.Config) (sink.Sink, func(), error) {
	var (
		fan     sink.Fanout
		closers []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	if cfg.ClickHouse.Enabled {
		ch, err := db.NewClickHouseConnection(db.OptsFrom(cfg.ClickHouse.DatabaseConfig))
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("clickhouse connect: %w", err)
		}
		closers = append(closers, ch.Close)
		fan = append(fan, sink.NewClickHouse(repository.NewAssignmentsRepository(ch)))
	}
	if cfg.Redis.Enabled {
		rdb, err := db.NewRedisClient(cfg.Redis)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("redis connect: %w", err)
		}
		closers = append(closers, rdb.Close)
		fan = append(fan, sink.NewRedis(rdb, cfg.Redis.KeyPrefix, cfg.Redis.TTL))
	}
	if cfg.Kafka.Enabled {
		p, err := kafka.NewProducerFromConfig(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: time.Duration(cfg.Kafka.BatchTimeoutMs) * time.Millisecond,
		})
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, p.Close)
		fan = append(fan, sink.NewKafka(p))
	}

	if len(fan) == 0 {
		return nil, closeAll, nil
	}
	rc := sink.RetryConfig{
		Attempts:         cfg.Sinks.Attempts,
		Backoff:          cfg.Sinks.Backoff,
		BreakerThreshold: cfg.Sinks.BreakerThreshold,
		BreakerOpenFor:   cfg.Sinks.BreakerOpenFor,
	}
	for i, s := range fan {
		fan[i] = sink.NewRetrying(s, rc)
	}
	logger.Log.Info("assignment sinks enabled", zap.Int("count", len(fan)))
	return fan, closeAll, nil
}

// flushMetrics writes the run's collectors when a textfile is configured.
func flushMetrics(cfg config.Config) error {
	if cfg.Metrics.Textfile == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)
	if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	logger.Log.Info("metrics written", zap.String("path", cfg.Metrics.Textfile))
	return nil
}

// finish joins the run error with the metrics flush, keeping the run error first.
func finish(cfg config.Config, runErr error) error {
	return errors.Join(runErr, flushMetrics(cfg))
}
