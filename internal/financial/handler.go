package financial

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/backup"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/ledger"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/money"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InvoiceRequest struct {
	Date        string           `json:"date"` // "2025-03-14"
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Amount      float64          `json:"amount"` // KDV hariç
	VATRate     float64          `json:"vatRate"`
	TaxMethod   models.TaxMethod `json:"taxMethod"` // "vat" | "stopaj" | "none"
}

func (r InvoiceRequest) toModel(id string) models.Invoice {
	return models.Invoice{
		ID:          id,
		Date:        r.Date,
		Description: r.Description,
		Category:    r.Category,
		Amount:      r.Amount,
		VATRate:     r.VATRate,
		TaxMethod:   r.TaxMethod,
	}
}

type DailySaleRequest struct {
	Cash     float64 `json:"cash"`
	Card     float64 `json:"card"`
	MealCard float64 `json:"mealCard"`
	Online   float64 `json:"online"`
}

// MonthListItem: ay listesinde satır detayı olmadan özet
type MonthListItem struct {
	Month        string  `json:"month"`
	IsClosed     bool    `json:"isClosed"`
	InvoiceCount int     `json:"invoiceCount"`
	SalesDays    int     `json:"salesDays"`
	GrossSales   float64 `json:"grossSales"`
}

// -----------------------------------
// AYLAR
// -----------------------------------

// GET /api/months
func ListMonthsHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		months, err := svc.List(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}

		resp := make([]MonthListItem, 0, len(months))
		for _, m := range months {
			item := MonthListItem{
				Month:        m.Month,
				IsClosed:     m.IsClosed,
				InvoiceCount: len(m.Invoices),
				SalesDays:    len(m.DailySales),
			}
			for _, d := range m.DailySales {
				item.GrossSales += d.Total()
			}
			item.GrossSales = money.Round2(item.GrossSales)
			resp = append(resp, item)
		}
		return c.JSON(resp)
	}
}

// GET /api/months/year/:year
func YearOverviewHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}
		ov, err := svc.Year(c.UserContext(), userID, year)
		if err != nil {
			return httperr.From(err)
		}
		return c.JSON(ov)
	}
}

// GET /api/months/:month
func GetMonthHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		m, err := svc.Month(c.UserContext(), userID, c.Params("month"))
		if err != nil {
			return httperr.From(err)
		}
		return c.JSON(m)
	}
}

// GET /api/months/:month/summary
func MonthSummaryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		sum, err := svc.Summary(c.UserContext(), userID, c.Params("month"))
		if err != nil {
			return httperr.From(err)
		}
		return c.JSON(sum)
	}
}

// GET /api/months/:month/export.xlsx
func ExportMonthHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		month := c.Params("month")
		m, err := svc.Month(c.UserContext(), userID, month)
		if err != nil {
			return httperr.From(err)
		}
		sum, err := svc.Summary(c.UserContext(), userID, month)
		if err != nil {
			return httperr.From(err)
		}

		var buf bytes.Buffer
		if err := backup.WriteMonth(&buf, m, sum); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}
		c.Attachment(fmt.Sprintf("defter-%s.xlsx", month))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	}
}

// -----------------------------------
// FATURALAR
// -----------------------------------

// POST /api/months/:month/invoices
func CreateInvoiceHandler(svc *ledger.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body InvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		inv, err := svc.AddInvoice(c.UserContext(), userID, c.Params("month"), body.toModel(""))
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityInvoice,
			EntityID:    inv.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Fatura eklendi: %s %s - %.2f TL", inv.Date, inv.Category, inv.Amount),
			After:       inv,
		})
		return c.Status(fiber.StatusCreated).JSON(inv)
	}
}

// PUT /api/months/:month/invoices/:id
func UpdateInvoiceHandler(svc *ledger.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body InvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		inv, err := svc.UpdateInvoice(c.UserContext(), userID, c.Params("month"), body.toModel(c.Params("id")))
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityInvoice,
			EntityID:    inv.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Fatura güncellendi: %s %s - %.2f TL", inv.Date, inv.Category, inv.Amount),
			After:       inv,
		})
		return c.JSON(inv)
	}
}

// DELETE /api/months/:month/invoices/:id
func DeleteInvoiceHandler(svc *ledger.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		month, id := c.Params("month"), c.Params("id")
		if err := svc.DeleteInvoice(c.UserContext(), userID, month, id); err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityInvoice,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Fatura silindi (%s)", month),
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -----------------------------------
// GÜNLÜK SATIŞLAR
// -----------------------------------

// PUT /api/months/:month/sales/:date
func SetDailySaleHandler(svc *ledger.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body DailySaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		sale, err := svc.SetDailySale(c.UserContext(), userID, c.Params("month"), models.DailySale{
			Date:     c.Params("date"),
			Cash:     body.Cash,
			Card:     body.Card,
			MealCard: body.MealCard,
			Online:   body.Online,
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityDailySale,
			EntityID:    sale.Date,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Günlük satış: %s - %.2f TL", sale.Date, sale.Total()),
			After:       sale,
		})
		return c.JSON(sale)
	}
}

// DELETE /api/months/:month/sales/:date
func DeleteDailySaleHandler(svc *ledger.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		date := c.Params("date")
		if err := svc.DeleteDailySale(c.UserContext(), userID, c.Params("month"), date); err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityDailySale,
			EntityID:    date,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Günlük satış silindi: %s", date),
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -----------------------------------
// AY KAPATMA
// -----------------------------------

// POST /api/months/:month/close
func CloseMonthHandler(svc *ledger.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		m, err := svc.Close(c.UserContext(), userID, c.Params("month"))
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityMonth,
			EntityID:    m.Month,
			Action:      models.AuditActionClose,
			Description: fmt.Sprintf("Ay kapatıldı: %s", m.Month),
		})
		return c.JSON(m)
	}
}

// POST /api/months/:month/reopen
func ReopenMonthHandler(svc *ledger.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		m, err := svc.Reopen(c.UserContext(), userID, c.Params("month"))
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityMonth,
			EntityID:    m.Month,
			Action:      models.AuditActionReopen,
			Description: fmt.Sprintf("Ay yeniden açıldı: %s", m.Month),
		})
		return c.JSON(m)
	}
}
