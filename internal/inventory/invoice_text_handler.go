package inventory

import (
	"errors"
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

type InvoiceTextRequest struct {
	Text  string `json:"text"`  // PDF'ten kopyalanan fatura metni
	Apply bool   `json:"apply"` // false: sadece önizleme
}

type InvoiceTextResponse struct {
	Lines  []backup.InvoiceLine     `json:"lines"`
	Report *store.PriceUpdateReport `json:"report,omitempty"`
}

// POST /api/raw-ingredients/invoice-text
// Tedarikçi faturasındaki birim fiyatları hammaddelere uygular
func InvoiceTextHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body InvoiceTextRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi. 'text' field'ı gönderilmelidir.")
		}
		if strings.TrimSpace(body.Text) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura metni boş olamaz")
		}

		lines, err := backup.ParseInvoiceText(body.Text)
		if errors.Is(err, backup.ErrNoInvoiceTable) {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura tablosu bulunamadı (Stok Kodu | Ürün | ... başlığı gerekli)")
		}
		if err != nil {
			return httperr.From(err)
		}

		resp := InvoiceTextResponse{Lines: lines}
		if !body.Apply || len(lines) == 0 {
			return c.JSON(resp)
		}

		var report store.PriceUpdateReport
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			next, r, err := st.ApplyPriceUpdates(backup.PriceUpdates(lines))
			report = r
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}
		resp.Report = &report

		if len(report.Updated) > 0 {
			al.Record(c, audit.LogOptions{
				EntityType:  audit.EntityRawIngredient,
				Action:      models.AuditActionImport,
				Description: fmt.Sprintf("Fatura fiyatları uygulandı: %d güncellendi, %d eşleşmedi", len(report.Updated), len(report.Unmatched)),
				After:       report,
			})
		}
		return c.JSON(resp)
	}
}
