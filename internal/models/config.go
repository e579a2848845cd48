package models

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	DefaultConcurrency    = 10
	DefaultQuality        = 60
	DefaultMinViableBytes = 5 * 1024
	DefaultPdftoppm       = "pdftoppm"
	DefaultServerAddr     = ":8080"
	DefaultRedisPrefix    = "showcase"
	DefaultKafkaTopic     = "showcase.ingest"
)

// DefaultSizes lists the thumbnail edge lengths rendered per submission. The
// first entry is the primary size used for feature extraction.
var DefaultSizes = []int{400, 100, 800, 2000}

// Storage drivers accepted by StorageConfig.Driver.
const (
	DriverDocument = "document"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

type StorageConfig struct {
	Driver        string `yaml:"driver"`
	DSN           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Config struct {
	Input          string        `yaml:"input"`
	Workspace      string        `yaml:"workspace"`
	OutputDir      string        `yaml:"output_dir"`
	Concurrency    int           `yaml:"concurrency"`
	Quality        int           `yaml:"quality"`
	Sizes          []int         `yaml:"sizes"`
	MinViableBytes int64         `yaml:"min_viable_bytes"`
	PdftoppmPath   string        `yaml:"pdftoppm_path"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	ServerAddr     string        `yaml:"server_addr"`
	Storage        StorageConfig `yaml:"storage"`
	Kafka          KafkaConfig   `yaml:"kafka"`
}

func LoadConfig(path string) (*Config, error) {
	const op = "models.LoadConfig"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Input == "" {
		c.Input = "data/submissions.csv"
	}
	if c.Workspace == "" {
		c.Workspace = "static/submissions"
	}
	if c.OutputDir == "" {
		c.OutputDir = "data/prepared"
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Quality == 0 {
		c.Quality = DefaultQuality
	}
	if len(c.Sizes) == 0 {
		c.Sizes = append([]int(nil), DefaultSizes...)
	}
	if c.MinViableBytes == 0 {
		c.MinViableBytes = DefaultMinViableBytes
	}
	if c.PdftoppmPath == "" {
		c.PdftoppmPath = DefaultPdftoppm
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.ServerAddr == "" {
		c.ServerAddr = DefaultServerAddr
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverDocument
	}
	if c.Storage.RedisPrefix == "" {
		c.Storage.RedisPrefix = DefaultRedisPrefix
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = DefaultKafkaTopic
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality must be within 1..100, got %d", c.Quality))
	}
	if len(c.Sizes) == 0 {
		errs = append(errs, errors.New("sizes must not be empty"))
	}
	seen := make(map[int]struct{}, len(c.Sizes))
	for _, size := range c.Sizes {
		if size <= 0 {
			errs = append(errs, fmt.Errorf("size must be positive, got %d", size))
			continue
		}
		if _, ok := seen[size]; ok {
			errs = append(errs, fmt.Errorf("duplicate size %d", size))
		}
		seen[size] = struct{}{}
	}
	switch c.Storage.Driver {
	case DriverDocument:
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redis_addr is required for the redis driver"))
		}
	case DriverSQLite, DriverPgx, DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for the %s driver", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// PrimarySize is the thumbnail size used for dimensions, colour and thumb_name.
func (c *Config) PrimarySize() int {
	return c.Sizes[0]
}
