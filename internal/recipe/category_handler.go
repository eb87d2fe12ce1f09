package recipe

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/store"
)

type CategoryRequest struct {
	Name string `json:"name"`
}

// ----------------------------------------
// REÇETE KATEGORİLERİ
// ----------------------------------------

func ListCategoriesHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}
		if st.RecipeCategories == nil {
			return c.JSON([]models.Category{})
		}
		return c.JSON(st.RecipeCategories)
	}
}

func CreateCategoryHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var created models.Category
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			next, cat, err := st.AddRecipeCategory(body.Name)
			created = cat
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityRecipeCategory,
			EntityID:    created.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Reçete kategorisi eklendi: %s", created.Name),
			After:       created,
		})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

func RenameCategoryHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var renamed models.Category
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			next, cat, err := st.RenameRecipeCategory(c.Params("id"), body.Name)
			renamed = cat
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityRecipeCategory,
			EntityID:    renamed.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Reçete kategorisi güncellendi: %s", renamed.Name),
			After:       renamed,
		})
		return c.JSON(renamed)
	}
}

// DeleteCategoryHandler: kategoriye bağlı reçeteler kategorisiz kalır
func DeleteCategoryHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		id := c.Params("id")
		if _, err := svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			return st.DeleteRecipeCategory(id)
		}); err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType: audit.EntityRecipeCategory,
			EntityID:   id,
			Action:     models.AuditActionDelete,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
