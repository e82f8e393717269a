package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures everything slaqd needs at startup. There is no runtime
// reconfiguration: change the environment and restart.
type Config struct {
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Storage    StorageConfig    `yaml:"storage"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PrometheusConfig configures access to the metrics backend.
type PrometheusConfig struct {
	URL            string        `yaml:"url"`
	BearerToken    string        `yaml:"bearerToken"`
	SourceLabel    string        `yaml:"sourceLabel"`
	QueryTimeout   time.Duration `yaml:"queryTimeout"`
	MaxConcurrency int64         `yaml:"maxConcurrency"`
	MaxSamples     int           `yaml:"maxSamples"`
}

// StorageConfig configures the indicator store.
type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

// EvaluationConfig controls the evaluation loop timing and inputs.
type EvaluationConfig struct {
	SignalDirectory string        `yaml:"signalDirectory"`
	SchemaPath      string        `yaml:"schemaPath"`
	ScrapeInterval  time.Duration `yaml:"scrapeInterval"`
	WindowLength    time.Duration `yaml:"windowLength"`
}

// ServerConfig controls the HTTP status and metrics listeners.
type ServerConfig struct {
	HTTPAddress     string        `yaml:"httpAddress"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from an optional YAML file and environment
// overrides. Environment always wins over the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SLAQ_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Prometheus.URL == "" {
		return fmt.Errorf("prometheus URL is required")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage db path is required")
	}

	if c.Evaluation.SignalDirectory == "" {
		return fmt.Errorf("signal directory is required")
	}

	if c.Evaluation.ScrapeInterval <= 0 {
		return fmt.Errorf("scrape interval must be positive, got %v", c.Evaluation.ScrapeInterval)
	}

	// The window is rendered as a PromQL range like [30m]; sub-second or
	// fractional lengths have no representation there.
	if c.Evaluation.WindowLength < time.Second || c.Evaluation.WindowLength%time.Second != 0 {
		return fmt.Errorf("window length must be a whole number of seconds, got %v", c.Evaluation.WindowLength)
	}

	if c.Prometheus.MaxConcurrency < 1 {
		return fmt.Errorf("max concurrency must be at least 1, got %d", c.Prometheus.MaxConcurrency)
	}

	return nil
}

func defaultConfig() Config {
	return Config{
		Prometheus: PrometheusConfig{
			URL:            "http://localhost:9090",
			QueryTimeout:   30 * time.Second,
			MaxConcurrency: 10,
			MaxSamples:     1,
		},
		Storage: StorageConfig{
			DBPath: "slaq.db",
		},
		Evaluation: EvaluationConfig{
			SignalDirectory: "signals",
			SchemaPath:      "schemas/signal_v1.json",
			ScrapeInterval:  60 * time.Second,
			WindowLength:    30 * time.Minute,
		},
		Server: ServerConfig{
			HTTPAddress:     ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SLAQ_PROMETHEUS_URL"); v != "" {
		cfg.Prometheus.URL = v
	}
	if v := os.Getenv("SLAQ_PROMETHEUS_TOKEN"); v != "" {
		cfg.Prometheus.BearerToken = v
	}
	if v := os.Getenv("SLAQ_SOURCE_LABEL"); v != "" {
		cfg.Prometheus.SourceLabel = v
	}
	if v := os.Getenv("SLAQ_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Prometheus.QueryTimeout = d
		}
	}
	if v := os.Getenv("SLAQ_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Prometheus.MaxConcurrency = n
		}
	}
	if v := os.Getenv("SLAQ_MAX_SAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Prometheus.MaxSamples = n
		}
	}
	if v := os.Getenv("SLAQ_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("SLAQ_SIGNAL_DIR"); v != "" {
		cfg.Evaluation.SignalDirectory = v
	}
	if v := os.Getenv("SLAQ_SCHEMA_PATH"); v != "" {
		cfg.Evaluation.SchemaPath = v
	}
	if v := os.Getenv("SLAQ_SCRAPE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Evaluation.ScrapeInterval = d
		}
	}
	if v := os.Getenv("SLAQ_WINDOW_LENGTH"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Evaluation.WindowLength = d
		}
	}
	if v := os.Getenv("SLAQ_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v := os.Getenv("SLAQ_METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("SLAQ_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SLAQ_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
}
