package inventory

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/backup"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/store"
)

// POST /api/raw-ingredients/price-list
// XLSX fiyat listesini yükler; A sütunu hammadde adı, B sütunu birim fiyat
func UploadPriceListHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		updates, err := backup.ParsePriceList(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(updates) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		var report store.PriceUpdateReport
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			next, r, err := st.ApplyPriceUpdates(updates)
			report = r
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		if len(report.Updated) > 0 {
			al.Record(c, audit.LogOptions{
				EntityType:  audit.EntityRawIngredient,
				Action:      models.AuditActionImport,
				Description: fmt.Sprintf("Fiyat listesi yüklendi: %d güncellendi, %d eşleşmedi", len(report.Updated), len(report.Unmatched)),
				After:       report,
			})
		}
		return c.JSON(report)
	}
}
