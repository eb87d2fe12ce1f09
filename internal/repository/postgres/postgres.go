// Package postgres gorm tabanlı depo (varsayılan arka uç).
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
)

type Repository struct {
	db *gorm.DB
}

var _ repository.Repository = (*Repository)(nil)

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

// ---- Users ----

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, user.Email)
	}
	return err
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// ---- State ----

// stateColumn: bölüm kolonuna işaretçi; kolon adları bölüm adlarıyla aynıdır
func stateColumn(doc *models.StateDocument, sec models.Section) *string {
	switch sec {
	case models.SectionRawIngredients:
		return &doc.RawIngredients
	case models.SectionIntermediateProducts:
		return &doc.IntermediateProducts
	case models.SectionRecipes:
		return &doc.Recipes
	case models.SectionRecipeCategories:
		return &doc.RecipeCategories
	case models.SectionIngredientCategories:
		return &doc.IngredientCategories
	case models.SectionExpenses:
		return &doc.Expenses
	case models.SectionSalesTargets:
		return &doc.SalesTargets
	case models.SectionSettings:
		return &doc.Settings
	}
	return nil
}

func (r *Repository) LoadState(ctx context.Context, userID uint) (models.Snapshot, error) {
	var doc models.StateDocument
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&doc).Error; err != nil {
		return models.Snapshot{}, notFound(err)
	}
	var snap models.Snapshot
	for _, sec := range models.AllSections {
		if err := repository.DecodeSection(&snap, sec, []byte(*stateColumn(&doc, sec))); err != nil {
			return models.Snapshot{}, err
		}
	}
	return snap, nil
}

// SaveState: ilk kayıtta yazılmayan bölümler "null" olur; mevcut satırda
// sadece verilen bölüm kolonları güncellenir
func (r *Repository) SaveState(ctx context.Context, userID uint, snap models.Snapshot, sections []models.Section) error {
	doc := models.StateDocument{UserID: userID}
	for _, sec := range models.AllSections {
		*stateColumn(&doc, sec) = "null"
	}

	sections = repository.SectionsOrAll(sections)
	columns := make([]string, 0, len(sections)+1)
	for _, sec := range sections {
		col := stateColumn(&doc, sec)
		if col == nil {
			return fmt.Errorf("bilinmeyen bölüm: %q", sec)
		}
		raw, err := repository.EncodeSection(snap, sec)
		if err != nil {
			return err
		}
		*col = string(raw)
		columns = append(columns, string(sec))
	}
	columns = append(columns, "updated_at")

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&doc).Error
}

// ---- Months ----

func (r *Repository) LoadMonth(ctx context.Context, userID uint, month string) (models.MonthData, error) {
	var doc models.MonthDocument
	err := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", userID, month).First(&doc).Error
	if err != nil {
		return models.MonthData{}, notFound(err)
	}
	return decodeMonth(doc)
}

func (r *Repository) SaveMonth(ctx context.Context, userID uint, data models.MonthData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	doc := models.MonthDocument{UserID: userID, Month: data.Month, IsClosed: data.IsClosed, Data: string(raw)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_closed", "data", "updated_at"}),
	}).Create(&doc).Error
}

func (r *Repository) ListMonths(ctx context.Context, userID uint) ([]models.MonthData, error) {
	var docs []models.MonthDocument
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("month").Find(&docs).Error; err != nil {
		return nil, err
	}
	out := make([]models.MonthData, 0, len(docs))
	for _, d := range docs {
		m, err := decodeMonth(d)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeMonth(doc models.MonthDocument) (models.MonthData, error) {
	var m models.MonthData
	if err := json.Unmarshal([]byte(doc.Data), &m); err != nil {
		return models.MonthData{}, fmt.Errorf("%s ayı çözümlenemedi: %w", doc.Month, err)
	}
	m.Month = doc.Month
	m.IsClosed = doc.IsClosed
	return m, nil
}

// ---- Audit ----

// WriteAudit: boş önce/sonra verisi jsonb için "null" yazılır
func (r *Repository) WriteAudit(ctx context.Context, log *models.AuditLog) error {
	if log.BeforeData == "" {
		log.BeforeData = "null"
	}
	if log.AfterData == "" {
		log.AfterData = "null"
	}
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *Repository) ListAudit(ctx context.Context, f repository.AuditFilter) ([]models.AuditLog, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// ---- Backups ----

func (r *Repository) SaveBackup(ctx context.Context, b *models.StateBackup) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repository) ListBackups(ctx context.Context, userID uint, limit int) ([]models.StateBackup, error) {
	q := r.db.WithContext(ctx).Order("id DESC")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var backups []models.StateBackup
	if err := q.Find(&backups).Error; err != nil {
		return nil, err
	}
	return backups, nil
}

func (r *Repository) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
