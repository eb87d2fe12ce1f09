package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/planning"
	"rasyon-backend/internal/store"
	"rasyon-backend/internal/tax"
)

// GET /api/balance/projection
func ProjectionHandler(svc *store.Service, table *tax.Table) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}
		p, err := planning.Project(st.Snapshot(), table)
		if err != nil {
			return httperr.From(err)
		}
		return c.JSON(p)
	}
}
