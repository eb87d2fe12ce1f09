package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=rasyon port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	LogLevel    string

	// STORE_BACKEND: postgres | mongo | memory
	StoreBackend string
	MongoDB      MongoDBConfig
	Redis        RedisConfig
	Kafka        KafkaConfig

	SaveDebounce     time.Duration
	BackupCron       string
	TaxTablePath     string
	AdminListTimeout time.Duration
}

type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig: Addr boşsa önbellek kapalıdır
type RedisConfig struct {
	Addr     string
	Password string
	TTL      time.Duration
}

// KafkaConfig: Brokers boşsa olaylar yayımlanmaz
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load: ortam değişkenlerini (varsa .env dosyasıyla) okur ve doğrular
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("env dosyası okunamadı %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:  getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		CORSOrigins:  getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "postgres")),
		MongoDB: MongoDBConfig{
			URI:    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGODB_DB_NAME", "rasyon"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "rasyon-events"),
		},
		BackupCron:   getEnv("BACKUP_CRON", "0 3 * * *"),
		TaxTablePath: getEnv("TAX_TABLE_PATH", ""),
	}

	var err error
	if cfg.Redis.TTL, err = getDuration("REDIS_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SaveDebounce, err = getDuration("SAVE_DEBOUNCE", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.AdminListTimeout, err = getDuration("ADMIN_LIST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate: production güvenlik kontrolleri
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config nil")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment değişkeni tanımlanmamış")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET en az 32 karakter olmalıdır")
	}
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT boş olamaz")
	}
	switch c.StoreBackend {
	case "postgres":
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN boş olamaz")
		}
	case "mongo":
		if c.MongoDB.URI == "" || c.MongoDB.DBName == "" {
			return errors.New("MONGODB_URI ve MONGODB_DB_NAME tanımlanmalı")
		}
	case "memory":
	default:
		return fmt.Errorf("bilinmeyen STORE_BACKEND: %q (postgres, mongo, memory)", c.StoreBackend)
	}
	if c.SaveDebounce < 0 {
		return errors.New("SAVE_DEBOUNCE negatif olamaz")
	}
	if c.AdminListTimeout <= 0 {
		return errors.New("ADMIN_LIST_TIMEOUT pozitif olmalı")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("KAFKA_TOPIC boş olamaz")
	}
	return nil
}

// Warnings: varsayılan değerle çalışan ayarlar
func (c *Config) Warnings() []string {
	var out []string
	if c.StoreBackend == "postgres" && c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		out = append(out, "CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için mutlaka kendi domain'ini tanımla.")
	}
	if c.StoreBackend == "memory" {
		out = append(out, "STORE_BACKEND=memory: veriler süreç kapanınca kaybolur.")
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s geçersiz süre: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
