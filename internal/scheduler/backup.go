package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rasyon-backend/internal/backup"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
)

// DefaultParallelism: aynı anda yedeklenen kullanıcı sayısı
const DefaultParallelism = 4

// BackupStore: yedek işinin ihtiyaç duyduğu depo yüzeyi
type BackupStore interface {
	repository.UserStore
	repository.StateStore
	repository.BackupStore
}

type BackupResult struct {
	Users   int `json:"users"`
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// BackupJob her kullanıcının durumunu dışa aktarım biçiminde state_backups'a yazar
type BackupJob struct {
	repo        BackupStore
	log         *zap.Logger
	parallelism int
	now         func() time.Time
}

func NewBackupJob(repo BackupStore, log *zap.Logger) *BackupJob {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupJob{repo: repo, log: log, parallelism: DefaultParallelism, now: time.Now}
}

// Run: tek kullanıcının hatası diğerlerini durdurmaz; sadece kullanıcı listesi
// alınamazsa hata döner
func (j *BackupJob) Run(ctx context.Context) (BackupResult, error) {
	users, err := j.repo.ListUsers(ctx)
	if err != nil {
		return BackupResult{}, fmt.Errorf("kullanıcılar listelenemedi: %w", err)
	}

	var saved, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.parallelism)
	for _, u := range users {
		g.Go(func() error {
			ok, err := j.backupUser(gctx, u)
			switch {
			case err != nil:
				failed.Add(1)
				j.log.Error("yedek alınamadı", zap.Uint("user_id", u.ID), zap.Error(err))
			case ok:
				saved.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	res := BackupResult{
		Users:   len(users),
		Saved:   int(saved.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}
	j.log.Info("yedekleme tamamlandı",
		zap.Int("users", res.Users), zap.Int("saved", res.Saved),
		zap.Int("skipped", res.Skipped), zap.Int("failed", res.Failed))
	return res, ctx.Err()
}

func (j *BackupJob) backupUser(ctx context.Context, u models.User) (bool, error) {
	snap, err := j.repo.LoadState(ctx, u.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	data, err := backup.Export(snap, j.now())
	if err != nil {
		return false, err
	}
	err = j.repo.SaveBackup(ctx, &models.StateBackup{
		UserID: u.ID,
		Data:   string(data),
		Size:   len(data),
	})
	return err == nil, err
}
