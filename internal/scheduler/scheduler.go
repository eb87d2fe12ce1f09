// Package scheduler zamanlanmış işler (gece yedeği).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const backupTimeout = 10 * time.Minute

type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    *BackupJob
	logger *zap.Logger
}

func New(spec string, job *BackupJob, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), spec: spec, job: job, logger: logger}
}

// Start işi kaydeder ve cron'u başlatır; geçersiz ifade hata döner
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runBackup); err != nil {
		return fmt.Errorf("geçersiz BACKUP_CRON %q: %w", s.spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("backup_cron", s.spec))
	s.cron.Start()
	return nil
}

// Stop çalışan işlerin bitmesini ctx süresince bekler
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info("stopping scheduler")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler did not stop in time")
	}
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()
	if _, err := s.job.Run(ctx); err != nil {
		s.logger.Error("scheduled backup failed", zap.Error(err))
	}
}
