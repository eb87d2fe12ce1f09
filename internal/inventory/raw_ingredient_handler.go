package inventory

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/store"
)

type RawIngredientRequest struct {
	Name       string                 `json:"name"`
	Unit       models.Unit            `json:"unit"`
	Price      float64                `json:"price"`
	Package    *models.PackagePricing `json:"package"` // Opsiyonel: paket fiyatı verilirse birim fiyat hesaplanır
	VATRate    float64                `json:"vatRate"`
	CategoryID string                 `json:"categoryId"`
}

func (r RawIngredientRequest) toModel(id string) models.RawIngredient {
	return models.RawIngredient{
		ID:         id,
		Name:       r.Name,
		Unit:       r.Unit,
		Price:      r.Price,
		Package:    r.Package,
		VATRate:    r.VATRate,
		CategoryID: r.CategoryID,
	}
}

// ----------------------------------------
// HAMMADDELER
// ----------------------------------------

// GET /api/raw-ingredients?category_id=x
func ListRawIngredientsHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}

		categoryID := c.Query("category_id")
		resp := make([]models.RawIngredient, 0, len(st.RawIngredients))
		for _, r := range st.RawIngredients {
			if categoryID != "" && r.CategoryID != categoryID {
				continue
			}
			resp = append(resp, r)
		}
		return c.JSON(resp)
	}
}

func CreateRawIngredientHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body RawIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var created models.RawIngredient
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			next, r, err := st.AddRawIngredient(body.toModel(""))
			created = r
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityRawIngredient,
			EntityID:    created.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Hammadde eklendi: %s - %.2f TL/%s", created.Name, created.Price, created.Unit),
			After:       created,
		})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// UpdateRawIngredientHandler: fiyat değişikliği bağlı ara ürün ve reçetelere yayılır
func UpdateRawIngredientHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body RawIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var before, updated models.RawIngredient
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before, _ = st.RawIngredient(c.Params("id"))
			next, r, err := st.UpdateRawIngredient(body.toModel(c.Params("id")))
			updated = r
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityRawIngredient,
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Hammadde güncellendi: %s", updated.Name),
			Before:      before,
			After:       updated,
		})
		return c.JSON(updated)
	}
}

// DeleteRawIngredientHandler: hammaddeyi kullanan satırlar da silinir
func DeleteRawIngredientHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		id := c.Params("id")

		var before models.RawIngredient
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before, _ = st.RawIngredient(id)
			return st.DeleteRawIngredient(id)
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityRawIngredient,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Hammadde silindi: %s", before.Name),
			Before:      before,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
