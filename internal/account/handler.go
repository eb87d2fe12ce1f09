// Package account kullanıcının tüm durum belgesi: okuma, anında kayıt,
// ayarlar ve JSON yedek dışa/içe aktarımı.
package account

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/backup"
	"rasyon-backend/internal/events"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/store"
)

type SaveResponse struct {
	Saved   bool             `json:"saved"`
	Pending []models.Section `json:"pending"`
}

type ImportResponse struct {
	Version              string `json:"version"`
	RawIngredients       int    `json:"rawIngredients"`
	IntermediateProducts int    `json:"intermediateProducts"`
	Recipes              int    `json:"recipes"`
	Expenses             int    `json:"expenses"`
}

// -------------------------
// DURUM
// -------------------------

// GET /api/state
func GetStateHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}
		snap := st.Snapshot()
		snap.Settings = snap.Settings.WithDefaults()
		return c.JSON(snap)
	}
}

// POST /api/state/save
// Bekleyen değişiklikleri debounce süresini beklemeden yazar.
func SaveStateHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		if err := svc.Save(c.UserContext(), userID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt yapılamadı")
		}
		pending := svc.Dirty(userID)
		return c.JSON(SaveResponse{Saved: len(pending) == 0, Pending: pending})
	}
}

// -------------------------
// AYARLAR
// -------------------------

// GET /api/settings
func GetSettingsHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		s, err := svc.Settings(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}
		return c.JSON(s)
	}
}

// PUT /api/settings
func UpdateSettingsHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body models.Settings
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var before, updated models.Settings
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before = st.Settings
			next, s, err := st.UpdateSettings(body)
			updated = s
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntitySettings,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Ayarlar güncellendi: %s (%s)", updated.Company.Name, updated.Company.Type),
			Before:      before,
			After:       updated,
		})
		return c.JSON(updated)
	}
}

// -------------------------
// YEDEK
// -------------------------

// GET /api/export
func ExportHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}

		now := time.Now()
		data, err := backup.Export(st.Snapshot(), now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yedek oluşturulamadı")
		}
		c.Attachment(fmt.Sprintf("rasyon-yedek-%s.json", now.Format(time.DateOnly)))
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Send(data)
	}
}

// importData: multipart "file" alanı varsa o, yoksa istek gövdesi okunur
func importData(c *fiber.Ctx) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if len(c.Body()) == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Yedek dosyası gerekli")
		}
		return c.Body(), nil
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".json") {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Sadece .json dosyası yükleyebilirsiniz")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Dosya okunamadı")
	}
	return data, nil
}

// POST /api/import
// Mevcut durumun tamamı yedekteki durumla değiştirilir.
func ImportHandler(svc *store.Service, pub events.Publisher, al *audit.Logger, log *zap.Logger) fiber.Handler {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		data, err := importData(c)
		if err != nil {
			return err
		}

		doc, err := backup.Import(data)
		if err != nil {
			return httperr.From(err)
		}
		st, err := svc.Replace(c.UserContext(), userID, store.FromSnapshot(doc.Snapshot))
		if err != nil {
			return httperr.From(err)
		}

		resp := ImportResponse{
			Version:              doc.Version,
			RawIngredients:       len(st.RawIngredients),
			IntermediateProducts: len(st.IntermediateProducts),
			Recipes:              len(st.Recipes),
			Expenses:             len(st.Expenses),
		}

		if err := pub.Publish(c.UserContext(), events.Event{
			Type:    events.TypeStateImported,
			UserID:  userID,
			At:      time.Now(),
			Payload: resp,
		}); err != nil {
			log.Warn("olay yayımlanamadı", zap.String("type", events.TypeStateImported), zap.Uint("user_id", userID), zap.Error(err))
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityState,
			EntityID:    fmt.Sprint(userID),
			Action:      models.AuditActionImport,
			Description: fmt.Sprintf("Yedek içe aktarıldı: %d reçete, %d hammadde", resp.Recipes, resp.RawIngredients),
		})
		return c.JSON(resp)
	}
}
