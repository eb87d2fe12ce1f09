package expense

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/store"
)

type ExpenseRequest struct {
	Name    string                 `json:"name"`
	Group   string                 `json:"group"`
	Kind    models.ExpenseKind     `json:"kind"` // "fixed" | "automated"
	Amount  float64                `json:"amount"`
	Formula *models.ExpenseFormula `json:"formula"` // sadece automated
	VATRate float64                `json:"vatRate"`
}

func (r ExpenseRequest) toModel(id string) models.Expense {
	return models.Expense{
		ID:      id,
		Name:    r.Name,
		Group:   r.Group,
		Kind:    r.Kind,
		Amount:  r.Amount,
		Formula: r.Formula,
		VATRate: r.VATRate,
	}
}

// -------------------------
// GİDERLER
// -------------------------

// GET /api/expenses?group=Personel
func ListExpensesHandler(svc *store.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		st, err := svc.State(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}

		group := c.Query("group")
		resp := make([]models.Expense, 0, len(st.Expenses))
		for _, e := range st.Expenses {
			if group != "" && e.Group != group {
				continue
			}
			resp = append(resp, e)
		}
		return c.JSON(resp)
	}
}

func CreateExpenseHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body ExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var created models.Expense
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			next, e, err := st.AddExpense(body.toModel(""))
			created = e
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityExpense,
			EntityID:    created.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Gider eklendi: %s - %.2f TL", created.Name, created.Amount),
			After:       created,
		})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

func UpdateExpenseHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		var body ExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var before, updated models.Expense
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before, _ = st.Expense(c.Params("id"))
			next, e, err := st.UpdateExpense(body.toModel(c.Params("id")))
			updated = e
			return next, err
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityExpense,
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Gider güncellendi: %s", updated.Name),
			Before:      before,
			After:       updated,
		})
		return c.JSON(updated)
	}
}

func DeleteExpenseHandler(svc *store.Service, al *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		id := c.Params("id")

		var before models.Expense
		_, err = svc.Update(c.UserContext(), userID, func(st store.State) (store.State, error) {
			before, _ = st.Expense(id)
			return st.DeleteExpense(id)
		})
		if err != nil {
			return httperr.From(err)
		}

		al.Record(c, audit.LogOptions{
			EntityType:  audit.EntityExpense,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Gider silindi: %s", before.Name),
			Before:      before,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
