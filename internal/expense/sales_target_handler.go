package expense

import (
	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/store"
)

type SalesTargetRequest struct {
	DailyRestaurant int `json:"dailyRestaurant"`
	DailyTakeaway   int `json:"dailyTakeaway"`
}

// -------------------------
// SATIŞ HEDEFLERİ
// -------------------------

func ListSalesTargetsHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}
		if st.SalesTargets == nil {
			return c.JSON([]models.SalesTarget{})
		}
		return c.JSON(st.SalesTargets)
	}
}

// PUT /api/sales-targets/:recipeId (yoksa oluşturur)
func SetSalesTargetHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body SalesTargetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		target := models.SalesTarget{
			RecipeID:        c.Params("recipeId"),
			DailyRestaurant: body.DailyRestaurant,
			DailyTakeaway:   body.DailyTakeaway,
		}
		if _, err := svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			return st.SetSalesTarget(target)
		}); err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType: audit.EntitySalesTarget,
			EntityID:   target.RecipeID,
			Action:     models.AuditActionUpdate,
			After:      target,
		})
		return c.JSON(target)
	}
}

func DeleteSalesTargetHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		recipeID := c.Params("recipeId")
		if _, err := svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			return st.DeleteSalesTarget(recipeID)
		}); err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType: audit.EntitySalesTarget,
			EntityID:   recipeID,
			Action:     models.AuditActionDelete,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
