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

type IntermediateRequest struct {
	Name               string                  `json:"name"`
	CategoryID         string                  `json:"categoryId"`
	Ingredients        []models.IngredientLine `json:"ingredients"`
	ProductionQuantity float64                 `json:"productionQuantity"`
	ProductionUnit     models.Unit             `json:"productionUnit"`
	PortionWeight      float64                 `json:"portionWeight"`
}

func (r IntermediateRequest) toModel(id string) models.IntermediateProduct {
	return models.IntermediateProduct{
		ID:                 id,
		Name:               r.Name,
		CategoryID:         r.CategoryID,
		Ingredients:        r.Ingredients,
		ProductionQuantity: r.ProductionQuantity,
		ProductionUnit:     r.ProductionUnit,
		PortionWeight:      r.PortionWeight,
	}
}

// ----------------------------------------
// ARA ÜRÜNLER
// ----------------------------------------

func ListIntermediatesHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}
		if st.IntermediateProducts == nil {
			return c.JSON([]models.IntermediateProduct{})
		}
		return c.JSON(st.IntermediateProducts)
	}
}

func CreateIntermediateHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body IntermediateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var created models.IntermediateProduct
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			next, p, err := st.AddIntermediate(body.toModel(""))
			created = p
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityIntermediate,
			EntityID:    created.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Ara ürün eklendi: %s", created.Name),
			After:       created,
		})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// UpdateIntermediateHandler: döngü oluşturan değişiklikler 409 döner
func UpdateIntermediateHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body IntermediateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var before, updated models.IntermediateProduct
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before, _ = st.Intermediate(c.Params("id"))
			next, p, err := st.UpdateIntermediate(body.toModel(c.Params("id")))
			updated = p
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityIntermediate,
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Ara ürün güncellendi: %s", updated.Name),
			Before:      before,
			After:       updated,
		})
		return c.JSON(updated)
	}
}

func DeleteIntermediateHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		id := c.Params("id")

		var before models.IntermediateProduct
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before, _ = st.Intermediate(id)
			return st.DeleteIntermediate(id)
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityIntermediate,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Ara ürün silindi: %s", before.Name),
			Before:      before,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
