package recipe

import (
	"bytes"
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

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RecipeRequest struct {
	Name        string                  `json:"name"`
	CategoryID  string                  `json:"categoryId"`
	Ingredients []models.IngredientLine `json:"ingredients"`
	// Sadece oluştururken: çarpan > satış fiyatı > varsayılan çarpan
	CostMultiplier  float64 `json:"costMultiplier"`
	CalculatedPrice float64 `json:"calculatedPrice"`
}

func (r RecipeRequest) toModel(id string) models.Recipe {
	return models.Recipe{
		ID:              id,
		Name:            r.Name,
		CategoryID:      r.CategoryID,
		Ingredients:     r.Ingredients,
		CostMultiplier:  r.CostMultiplier,
		CalculatedPrice: r.CalculatedPrice,
	}
}

type PricingRequest struct {
	Mode  store.PricingMode `json:"mode"` // "multiplier" | "price"
	Value float64           `json:"value"`
}

type OrderRequest struct {
	IDs []string `json:"ids"`
}

// GET /api/recipes?category_id=x
func ListRecipesHandler(svc *store.Service) fiber.Handler {
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
		resp := make([]models.Recipe, 0, len(st.Recipes))
		for _, r := range st.Recipes {
			if categoryID != "" && r.CategoryID != categoryID {
				continue
			}
			resp = append(resp, r)
		}
		return c.JSON(resp)
	}
}

func GetRecipeHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}
		r, ok := st.Recipe(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}
		return c.JSON(r)
	}
}

func CreateRecipeHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body RecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var created models.Recipe
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			next, r, err := st.AddRecipe(body.toModel(""))
			created = r
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityRecipe,
			EntityID:    created.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Reçete eklendi: %s", created.Name),
			After:       created,
		})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

func UpdateRecipeHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body RecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var before, updated models.Recipe
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before, _ = st.Recipe(c.Params("id"))
			next, r, err := st.UpdateRecipe(body.toModel(c.Params("id")))
			updated = r
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityRecipe,
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Reçete güncellendi: %s", updated.Name),
			Before:      before,
			After:       updated,
		})
		return c.JSON(updated)
	}
}

// PUT /api/recipes/:id/pricing
func SetPricingHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body PricingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Mode = store.PricingMode(strings.ToLower(strings.TrimSpace(string(body.Mode))))

		var before, updated models.Recipe
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before, _ = st.Recipe(c.Params("id"))
			next, r, err := st.SetRecipePricing(c.Params("id"), body.Mode, body.Value)
			updated = r
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityRecipe,
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Fiyat güncellendi: %s", updated.Name),
			Before:      before,
			After:       updated,
		})
		return c.JSON(updated)
	}
}

func DeleteRecipeHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		id := c.Params("id")

		var before models.Recipe
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before, _ = st.Recipe(id)
			return st.DeleteRecipe(id)
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityRecipe,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Reçete silindi: %s", before.Name),
			Before:      before,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PUT /api/recipes/order
func ReorderRecipesHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body OrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		st, err := svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			return st.ReorderRecipes(body.IDs)
		})
		if err != nil {
			return httperr.From(err)
		}
		return c.JSON(st.Recipes)
	}
}

// GET /api/recipes/export.xlsx
func ExportRecipesHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}

		var buf bytes.Buffer
		if err := backup.WriteRecipes(&buf, st.Snapshot()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Attachment("receteler.xlsx")
		return c.Send(buf.Bytes())
	}
}
