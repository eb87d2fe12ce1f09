package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/config"
	"rasyon-backend/internal/ledger"
	"rasyon-backend/internal/scheduler"
	"rasyon-backend/internal/server"
	"rasyon-backend/internal/store"
	"rasyon-backend/internal/tax"
	"rasyon-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	for _, w := range cfg.Warnings() {
		baseLogger.Warn(w)
	}

	table := tax.Default()
	if cfg.TaxTablePath != "" {
		if table, err = tax.Load(cfg.TaxTablePath); err != nil {
			baseLogger.Fatal("vergi tablosu okunamadı", zap.String("path", cfg.TaxTablePath), zap.Error(err))
		}
	}

	repo, err := server.OpenRepository(context.Background(), cfg, baseLogger.Named("repo"))
	if err != nil {
		baseLogger.Fatal("depo açılamadı", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("depo kapatılamadı", zap.Error(err))
		}
	}()

	publisher := server.OpenPublisher(cfg, baseLogger.Named("events"))
	defer func() {
		if err := publisher.Close(); err != nil {
			baseLogger.Error("olay yayıncısı kapatılamadı", zap.Error(err))
		}
	}()

	stateSvc := store.NewService(repo, cfg.SaveDebounce, baseLogger.Named("svc.state"))
	ledgerSvc := ledger.NewService(repo, stateSvc, table, publisher, baseLogger.Named("svc.ledger"))
	auditLogger := audit.New(repo, repo, baseLogger.Named("audit"))

	backupJob := scheduler.NewBackupJob(repo, baseLogger.Named("job.backup"))
	sched := scheduler.New(cfg.BackupCron, backupJob, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("zamanlayıcı başlatılamadı", zap.Error(err))
	}

	app := server.New(server.Deps{
		JWTSecret:        cfg.JWTSecret,
		CORSOrigins:      cfg.CORSOrigins,
		AdminListTimeout: cfg.AdminListTimeout,
		Repo:             repo,
		State:            stateSvc,
		Ledger:           ledgerSvc,
		Audit:            auditLogger,
		Events:           publisher,
		TaxTable:         table,
		BackupJob:        backupJob,
		Log:              baseLogger.Named("http"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		baseLogger.Info("server çalışıyor", zap.String("port", cfg.HTTPPort), zap.String("backend", cfg.StoreBackend))
		listenErr <- app.Listen(":" + cfg.HTTPPort)
	}()

	select {
	case <-ctx.Done():
		baseLogger.Info("kapatma sinyali alındı")
	case err := <-listenErr:
		if err != nil {
			baseLogger.Error("http sunucusu durdu", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		baseLogger.Error("http sunucusu düzgün kapatılamadı", zap.Error(err))
	}
	sched.Stop(shutdownCtx)

	// bekleyen debounce kayıtları
	if err := stateSvc.Close(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		baseLogger.Error("bekleyen kayıtlar yazılamadı", zap.Error(err))
	}
	baseLogger.Info("server kapandı")
}
