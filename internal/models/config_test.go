package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "input: export.csv\n"))
	require.NoError(t, err)

	assert.Equal(t, "export.csv", cfg.Input)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, DefaultQuality, cfg.Quality)
	assert.Equal(t, DefaultSizes, cfg.Sizes)
	assert.Equal(t, 400, cfg.PrimarySize())
	assert.Equal(t, int64(DefaultMinViableBytes), cfg.MinViableBytes)
	assert.Equal(t, DriverDocument, cfg.Storage.Driver)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
}

func TestLoadConfigReadsStorage(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
concurrency: 4
sizes: [200, 50]
storage:
  driver: SQLite
  dsn: file:showcase.db
kafka:
  brokers: ["localhost:9092"]
`))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 200, cfg.PrimarySize())
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Config{Concurrency: -1, Quality: 101, Sizes: []int{100, 100, 0}}
	cfg.ApplyDefaults()
	cfg.Storage.Driver = "mongo"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"concurrency", "quality", "duplicate size 100", "size must be positive", "unknown storage driver"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateRequiresDSN(t *testing.T) {
	cfg := Config{Storage: StorageConfig{Driver: DriverPgx}}
	cfg.ApplyDefaults()
	assert.ErrorContains(t, cfg.Validate(), "storage.dsn")

	cfg.Storage = StorageConfig{Driver: DriverRedis}
	cfg.ApplyDefaults()
	assert.ErrorContains(t, cfg.Validate(), "storage.redis_addr")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
