package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionImport AuditAction = "import"
	AuditActionClose  AuditAction = "close"
	AuditActionReopen AuditAction = "reopen"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id" bson:"_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at" bson:"created_at"`

	// Hangi kullanıcı?
	UserID   uint   `gorm:"index" json:"user_id" bson:"user_id"`
	UserName string `gorm:"size:100" json:"user_name" bson:"user_name"` // denormalize

	// Hangi entity? (ör: "recipe", "raw_ingredient", "invoice", "month")
	EntityType string `gorm:"size:50;index" json:"entity_type" bson:"entity_type"`
	EntityID   string `gorm:"size:64;index" json:"entity_id" bson:"entity_id"`

	Action      AuditAction `gorm:"size:20" json:"action" bson:"action"`
	Description string      `gorm:"size:255" json:"description" bson:"description"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:jsonb" json:"before_data" bson:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data" bson:"after_data"`
}
