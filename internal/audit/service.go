package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
)

// Entity tipleri
const (
	EntityRawIngredient      = "raw_ingredient"
	EntityIntermediate       = "intermediate_product"
	EntityRecipe             = "recipe"
	EntityRecipeCategory     = "recipe_category"
	EntityIngredientCategory = "ingredient_category"
	EntityExpense            = "expense"
	EntitySalesTarget        = "sales_target"
	EntitySettings           = "settings"
	EntityState              = "state"
	EntityInvoice            = "invoice"
	EntityDailySale          = "daily_sale"
	EntityMonth              = "month"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

type Logger struct {
	store repository.AuditStore
	users repository.UserStore
	log   *zap.Logger
}

// New: users verilirse log satırına kullanıcı adı yazılır
func New(store repository.AuditStore, users repository.UserStore, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{store: store, users: users, log: log}
}

// encode: PostgreSQL jsonb için boş string yerine "null"
func encode(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func (l *Logger) WriteLog(ctx context.Context, opts LogOptions) error {
	if opts.UserName == "" && l.users != nil && opts.UserID != 0 {
		if u, err := l.users.UserByID(ctx, opts.UserID); err == nil {
			opts.UserName = u.Name
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  encode(opts.Before),
		AfterData:   encode(opts.After),
	}
	if err := l.store.WriteAudit(ctx, &entry); err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

// Record: isteği yapan kullanıcı adına yazar; hata kritik değil, sadece loglanır
func (l *Logger) Record(c *fiber.Ctx, opts LogOptions) {
	if l == nil {
		return
	}
	if opts.UserID == 0 {
		opts.UserID, _ = auth.UserID(c)
	}
	if err := l.WriteLog(c.UserContext(), opts); err != nil {
		l.log.Warn("Audit log yazılamadı",
			zap.String("entity_type", opts.EntityType),
			zap.String("entity_id", opts.EntityID),
			zap.Error(err))
	}
}
