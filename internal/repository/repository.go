// Package repository kalıcı depolama arayüzleri. Uygulamalar: postgres (gorm),
// mongodb, memory; cache paketi durum okumalarını redis ile önbelleğe alır.
package repository

import (
	"context"
	"errors"

	"rasyon-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("kayıt bulunamadı")
	ErrDuplicate = errors.New("kayıt zaten var")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// StateStore: kullanıcı durum belgesi. SaveState sadece verilen bölümleri yazar
// (birleştirme); sections boşsa tüm bölümler yazılır.
type StateStore interface {
	LoadState(ctx context.Context, userID uint) (models.Snapshot, error)
	SaveState(ctx context.Context, userID uint, snap models.Snapshot, sections []models.Section) error
}

type MonthStore interface {
	LoadMonth(ctx context.Context, userID uint, month string) (models.MonthData, error)
	SaveMonth(ctx context.Context, userID uint, data models.MonthData) error
	ListMonths(ctx context.Context, userID uint) ([]models.MonthData, error)
}

type AuditFilter struct {
	UserID     uint
	EntityType string
	EntityID   string
	Limit      int
}

type AuditStore interface {
	WriteAudit(ctx context.Context, log *models.AuditLog) error
	ListAudit(ctx context.Context, filter AuditFilter) ([]models.AuditLog, error)
}

type BackupStore interface {
	SaveBackup(ctx context.Context, backup *models.StateBackup) error
	ListBackups(ctx context.Context, userID uint, limit int) ([]models.StateBackup, error)
}

type Repository interface {
	UserStore
	StateStore
	MonthStore
	AuditStore
	BackupStore
	Close(ctx context.Context) error
}

// SectionsOrAll: boş liste tüm bölümler anlamına gelir
func SectionsOrAll(sections []models.Section) []models.Section {
	if len(sections) == 0 {
		return models.AllSections
	}
	return sections
}
