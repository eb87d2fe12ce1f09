package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/repository"
	"rasyon-backend/internal/scheduler"
)

const defaultBackupLimit = 50

type BackupResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Size      int    `json:"size"`
	CreatedAt string `json:"created_at"`
}

// GET /api/admin/backups?user_id=1&limit=20
func ListBackupsHandler(store repository.BackupStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var userID uint
		if s := c.Query("user_id"); s != "" {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz user_id")
			}
			userID = uint(id)
		}
		limit := c.QueryInt("limit", defaultBackupLimit)
		if limit <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz limit")
		}

		backups, err := store.ListBackups(c.UserContext(), userID, limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yedekler listelenemedi")
		}

		resp := make([]BackupResponse, 0, len(backups))
		for _, b := range backups {
			resp = append(resp, BackupResponse{
				ID:        b.ID,
				UserID:    b.UserID,
				Size:      b.Size,
				CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/backups/run
func RunBackupHandler(job *scheduler.BackupJob) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := job.Run(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yedekleme çalıştırılamadı")
		}
		return c.JSON(res)
	}
}
