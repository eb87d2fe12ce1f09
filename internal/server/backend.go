package server

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rasyon-backend/internal/config"
	"rasyon-backend/internal/database"
	"rasyon-backend/internal/events"
	"rasyon-backend/internal/repository"
	"rasyon-backend/internal/repository/cache"
	"rasyon-backend/internal/repository/memory"
	"rasyon-backend/internal/repository/mongodb"
	"rasyon-backend/internal/repository/postgres"
)

// OpenRepository: STORE_BACKEND'e göre depo; REDIS_ADDR tanımlıysa durum
// okumaları önbelleğe alınır
func OpenRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, error) {
	var repo repository.Repository
	switch cfg.StoreBackend {
	case "postgres":
		db, err := database.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, log.Named("migrate")); err != nil {
			return nil, err
		}
		repo = postgres.New(db)
	case "mongo":
		r, err := mongodb.New(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, err
		}
		repo = r
	case "memory":
		repo = memory.New()
	default:
		return nil, fmt.Errorf("bilinmeyen STORE_BACKEND: %q", cfg.StoreBackend)
	}
	log.Info("depo hazır", zap.String("backend", cfg.StoreBackend))

	if cfg.Redis.Addr == "" {
		return repo, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		_ = repo.Close(ctx)
		return nil, fmt.Errorf("redis bağlantısı kurulamadı: %w", err)
	}
	log.Info("redis önbelleği açık", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	return cache.Wrap(repo, cache.NewRedisCache(client, cfg.Redis.TTL), log.Named("cache")), nil
}

// OpenPublisher: KAFKA_BROKERS boşsa olaylar yayımlanmaz
func OpenPublisher(cfg *config.Config, log *zap.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.Nop{}
	}
	log.Info("kafka olay yayıncısı açık", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	return events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
}
