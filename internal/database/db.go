package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rasyon-backend/internal/models"
)

// Open: postgres bağlantısı. Sürücü hataları gorm hatalarına çevrilir
// (ör. unique ihlali -> gorm.ErrDuplicatedKey).
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}
	return db, nil
}

// Migrate: tabloları oluşturur ve eski satırları düzeltir
func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.StateDocument{},
		&models.MonthDocument{},
		&models.AuditLog{},
		&models.StateBackup{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	// Sonradan eklenen bölüm kolonları mevcut satırlarda NULL kalır; jsonb "null" ile doldur
	for _, sec := range models.AllSections {
		res := db.Model(&models.StateDocument{}).
			Where(fmt.Sprintf("%s IS NULL", sec)).
			Update(string(sec), "null")
		if res.Error != nil {
			log.Warn("bölüm kolonu düzeltilemedi", zap.String("column", string(sec)), zap.Error(res.Error))
			continue
		}
		if res.RowsAffected > 0 {
			log.Info("boş bölüm kolonları dolduruldu", zap.String("column", string(sec)), zap.Int64("rows", res.RowsAffected))
		}
	}

	log.Info("Veritabanı migration tamamlandı")
	return nil
}
