package audit

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	Before      json.RawMessage    `json:"before,omitempty"`
	After       json.RawMessage    `json:"after,omitempty"`
}

// rawJSON: saklanan JSON metni yanıtta nesne olarak döner
func rawJSON(s string) json.RawMessage {
	if s == "" || s == "null" {
		return nil
	}
	return json.RawMessage(s)
}

// GET /api/admin/audit-logs?user_id=1&entity_type=recipe&entity_id=x&limit=50
func ListAuditLogsHandler(store repository.AuditStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := repository.AuditFilter{
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			Limit:      defaultListLimit,
		}

		if s := c.Query("user_id"); s != "" {
			uid, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz user_id")
			}
			filter.UserID = uint(uid)
		}
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz limit")
			}
			filter.Limit = min(n, maxListLimit)
		}

		logs, err := store.ListAudit(c.UserContext(), filter)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, log := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          log.ID,
				CreatedAt:   log.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      log.UserID,
				UserName:    log.UserName,
				EntityType:  log.EntityType,
				EntityID:    log.EntityID,
				Action:      log.Action,
				Description: log.Description,
				Before:      rawJSON(log.BeforeData),
				After:       rawJSON(log.AfterData),
			})
		}

		return c.JSON(resp)
	}
}
