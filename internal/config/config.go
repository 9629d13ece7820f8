package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// EnvPrefix is the environment prefix for overrides, e.g. SEGRPT_SAKILA_K=5.
const EnvPrefix = "SEGRPT"

// ---- Root ----

type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Databases  DatabasesConfig  `mapstructure:"databases"`
	Clustering ClusteringConfig `mapstructure:"clustering"`
	Sakila     SakilaConfig     `mapstructure:"sakila"`
	Sales      SalesConfig      `mapstructure:"sales"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Sinks      SinksConfig      `mapstructure:"sinks"`
	Preview    PreviewConfig    `mapstructure:"preview"`
	Launcher   LauncherConfig   `mapstructure:"launcher"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"` // json|console
}

type DatabasesConfig struct {
	Sakila DatabaseConfig `mapstructure:"sakila"`
	Sales  DatabaseConfig `mapstructure:"sales"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type ClusteringConfig struct {
	Seed    uint64  `mapstructure:"seed"`
	NInit   int     `mapstructure:"n_init"`
	MaxIter int     `mapstructure:"max_iter"`
	Tol     float64 `mapstructure:"tol"`
}

type SakilaConfig struct {
	K         int    `mapstructure:"k"`
	OutputDir string `mapstructure:"output_dir"`
}

type SalesConfig struct {
	K           int    `mapstructure:"k"`
	PlotK       int    `mapstructure:"plot_k"`
	MaxIter     int    `mapstructure:"max_iter"`
	CustomerKey string `mapstructure:"customer_key"`
	OutputDir   string `mapstructure:"output_dir"`
}

type ClickHouseConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	DatabaseConfig `mapstructure:",squash"`
}

type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Brokers        []string `mapstructure:"brokers"`
	Topic          string   `mapstructure:"topic"`
	BatchSize      int      `mapstructure:"batch_size"`
	BatchTimeoutMs int      `mapstructure:"batch_timeout_ms"`
}

// SinksConfig applies to every enabled assignment sink.
type SinksConfig struct {
	Attempts         int           `mapstructure:"attempts"`
	Backoff          time.Duration `mapstructure:"backoff"`
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
	BreakerOpenFor   time.Duration `mapstructure:"breaker_open_for"`
}

type PreviewConfig struct {
	Addr     string `mapstructure:"addr"`
	Dir      string `mapstructure:"dir"`
	LogLevel string `mapstructure:"log_level"`
}

type LauncherConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BaseURL      string        `mapstructure:"base_url"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (SEGRPT_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	// a missing user file is fine: defaults + env still apply
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil && !missingFile(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func missingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Validate checks the knobs the pipeline cannot run without.
func (c Config) Validate() error {
	switch {
	case c.Sakila.K < 1:
		return fmt.Errorf("%w: sakila.k must be >= 1, got %d", ErrInvalid, c.Sakila.K)
	case c.Sales.K < 1 || c.Sales.PlotK < 1:
		return fmt.Errorf("%w: sales.k and sales.plot_k must be >= 1", ErrInvalid)
	case c.Clustering.NInit < 1:
		return fmt.Errorf("%w: clustering.n_init must be >= 1", ErrInvalid)
	case c.Clustering.MaxIter < 1 || c.Sales.MaxIter < 1:
		return fmt.Errorf("%w: max_iter must be >= 1", ErrInvalid)
	case strings.TrimSpace(c.Sales.CustomerKey) == "":
		return fmt.Errorf("%w: sales.customer_key is empty", ErrInvalid)
	case c.ClickHouse.Enabled && c.ClickHouse.DSN == "":
		return fmt.Errorf("%w: clickhouse enabled without dsn", ErrInvalid)
	case c.Redis.Enabled && c.Redis.Addr == "":
		return fmt.Errorf("%w: redis enabled without addr", ErrInvalid)
	case c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == ""):
		return fmt.Errorf("%w: kafka enabled without brokers/topic", ErrInvalid)
	}
	if _, _, err := net.SplitHostPort(c.Preview.Addr); err != nil {
		return fmt.Errorf("%w: preview.addr %q: %v", ErrInvalid, c.Preview.Addr, err)
	}
	return nil
}
