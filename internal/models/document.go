package models

import "time"

// StateDocument: kullanıcı başına durum belgesi. Her bölüm ayrı jsonb kolonunda
// tutulur, böylece kayıt sırasında sadece değişen bölümler yazılır (merge).
type StateDocument struct {
	UserID               uint   `gorm:"primaryKey;autoIncrement:false"`
	RawIngredients       string `gorm:"type:jsonb"`
	IntermediateProducts string `gorm:"type:jsonb"`
	Recipes              string `gorm:"type:jsonb"`
	RecipeCategories     string `gorm:"type:jsonb"`
	IngredientCategories string `gorm:"type:jsonb"`
	Expenses             string `gorm:"type:jsonb"`
	SalesTargets         string `gorm:"type:jsonb"`
	Settings             string `gorm:"type:jsonb"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// MonthDocument: kullanıcının aylık defteri (alt koleksiyon karşılığı)
type MonthDocument struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex:idx_user_month;not null"`
	Month     string `gorm:"size:7;uniqueIndex:idx_user_month;not null"` // "2025-03"
	IsClosed  bool   `gorm:"default:false"`
	Data      string `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StateBackup: zamanlanmış yedeklerin saklanması (dışa aktarım JSON'u)
type StateBackup struct {
	ID        uint      `gorm:"primaryKey" json:"id" bson:"_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id" bson:"user_id"`
	Data      string    `gorm:"type:jsonb" json:"-" bson:"data"`
	Size      int       `json:"size" bson:"size"`
	CreatedAt time.Time `gorm:"index" json:"created_at" bson:"created_at"`
}
