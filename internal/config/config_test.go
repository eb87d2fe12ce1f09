package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, 500*time.Millisecond, cfg.SaveDebounce)
	assert.Equal(t, "0 3 * * *", cfg.BackupCron)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Len(t, cfg.Warnings(), 2)
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "JWT_SECRET=" + testSecret + "\n" +
		"STORE_BACKEND=Memory\n" +
		"KAFKA_BROKERS=k1:9092, k2:9092\n" +
		"SAVE_DEBOUNCE=2s\n" +
		"REDIS_ADDR=localhost:6379\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv tanımlı değişkenleri ezmez
	for _, k := range []string{"JWT_SECRET", "STORE_BACKEND", "KAFKA_BROKERS", "SAVE_DEBOUNCE", "REDIS_ADDR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.SaveDebounce)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("SAVE_DEBOUNCE", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "SAVE_DEBOUNCE")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort: "8080", JWTSecret: testSecret, StoreBackend: "postgres", DatabaseDSN: "dsn",
			AdminListTimeout: time.Second,
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"missing secret":   func(c *Config) { c.JWTSecret = "" },
		"short secret":     func(c *Config) { c.JWTSecret = "kısa" },
		"unknown backend":  func(c *Config) { c.StoreBackend = "sqlite" },
		"mongo without db": func(c *Config) { c.StoreBackend = "mongo" },
		"negative save":    func(c *Config) { c.SaveDebounce = -time.Second },
		"kafka no topic":   func(c *Config) { c.Kafka.Brokers = []string{"k:9092"} },
		"zero admin limit": func(c *Config) { c.AdminListTimeout = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
