package cache

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
)

// Repository durum okumalarını önbellekten karşılar, kayıtta anahtarı siler.
// Önbellek hataları loglanır; asıl depo her zaman doğruluk kaynağıdır.
type Repository struct {
	repository.Repository
	cache *RedisCache
	log   *zap.Logger
}

var _ repository.Repository = (*Repository)(nil)

func Wrap(inner repository.Repository, cache *RedisCache, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{Repository: inner, cache: cache, log: log}
}

func (r *Repository) LoadState(ctx context.Context, userID uint) (models.Snapshot, error) {
	key := r.cache.StateKey(userID)
	raw, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var snap models.Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return snap, nil
		}
		r.log.Warn("önbellekteki durum çözümlenemedi", zap.Uint("user_id", userID))
	case !errors.Is(err, ErrMiss):
		r.log.Warn("önbellek okunamadı", zap.Uint("user_id", userID), zap.Error(err))
	}

	snap, err := r.Repository.LoadState(ctx, userID)
	if err != nil {
		return models.Snapshot{}, err
	}
	if raw, err := json.Marshal(snap); err == nil {
		if err := r.cache.Set(ctx, key, raw); err != nil {
			r.log.Warn("önbelleğe yazılamadı", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return snap, nil
}

func (r *Repository) SaveState(ctx context.Context, userID uint, snap models.Snapshot, sections []models.Section) error {
	if err := r.Repository.SaveState(ctx, userID, snap, sections); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, r.cache.StateKey(userID)); err != nil {
		r.log.Warn("önbellek temizlenemedi", zap.Uint("user_id", userID), zap.Error(err))
	}
	return nil
}

// Close: asıl depo ve redis bağlantısı birlikte kapanır
func (r *Repository) Close(ctx context.Context) error {
	return errors.Join(r.Repository.Close(ctx), r.cache.Client.Close())
}
