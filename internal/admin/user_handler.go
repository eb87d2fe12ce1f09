package admin

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
)

const countParallelism = 8

// UserStateStore: admin kullanıcı ekranının okuduğu depo yüzeyi
type UserStateStore interface {
	repository.UserStore
	repository.StateStore
}

type UserSummaryResponse struct {
	ID                uint            `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Role              models.UserRole `json:"role"`
	CreatedAt         string          `json:"created_at"`
	RecipeCount       int             `json:"recipe_count"`
	IngredientCount   int             `json:"ingredient_count"`
	IntermediateCount int             `json:"intermediate_count"`
	CountsLoaded      bool            `json:"counts_loaded"` // süre dolarsa false
}

// ----------------------------------------
// KULLANICILAR
// ----------------------------------------

// ListUsersHandler: sayılar paralel yüklenir; timeout dolan kullanıcılar
// sayısız listelenir, istek yine başarılı döner
func ListUsersHandler(repo UserStateStore, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := repo.ListUsers(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		resp := make([]UserSummaryResponse, len(users))
		for i, u := range users {
			resp[i] = UserSummaryResponse{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				Role:      u.Role,
				CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
			}
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(countParallelism)
		for i := range resp {
			g.Go(func() error {
				snap, err := repo.LoadState(ctx, resp[i].ID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return nil
				}
				if ctx.Err() != nil {
					return nil
				}
				resp[i].RecipeCount = len(snap.Recipes)
				resp[i].IngredientCount = len(snap.RawIngredients)
				resp[i].IntermediateCount = len(snap.IntermediateProducts)
				resp[i].CountsLoaded = true
				return nil
			})
		}
		_ = g.Wait()

		return c.JSON(resp)
	}
}

func parseUserID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz kullanıcı ID")
	}
	return uint(id), nil
}

// GET /api/admin/users/:id/state
func GetUserStateHandler(repo UserStateStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseUserID(c)
		if err != nil {
			return err
		}
		user, err := repo.UserByID(c.UserContext(), id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		snap, err := repo.LoadState(c.UserContext(), id)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı verisi okunamadı")
		}
		snap.Settings = snap.Settings.WithDefaults()

		return c.JSON(fiber.Map{
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
			"state": snap,
		})
	}
}
