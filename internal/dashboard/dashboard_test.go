package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/planning"
	"rasyon-backend/internal/repository/memory"
	"rasyon-backend/internal/store"
	"rasyon-backend/internal/tax"
)

type staticMonths []models.MonthData

func (s staticMonths) List(context.Context, uint) ([]models.MonthData, error) { return s, nil }

var sampleMonths = staticMonths{
	{Month: "2025-02", DailySales: []models.DailySale{
		{Date: "2025-02-28", Cash: 100, Card: 50},
	}},
	{Month: "2025-03", DailySales: []models.DailySale{
		{Date: "2025-03-03", Cash: 10, Online: 5}, // pazartesi
		{Date: "2025-03-05", Card: 20, MealCard: 7},
		{Date: "2025-03-10", Cash: 1},
	}},
}

func date(s string) time.Time {
	d, _ := time.Parse(time.DateOnly, s)
	return d
}

func TestChartRange(t *testing.T) {
	end := date("2025-03-12") // çarşamba

	period, start, _ := chartRange("daily", 7, end)
	assert.Equal(t, "daily", period)
	assert.Equal(t, "2025-03-06", start.Format(time.DateOnly))

	_, start, _ = chartRange("weekly", 2, end)
	assert.Equal(t, "2025-03-03", start.Format(time.DateOnly))

	_, start, _ = chartRange("monthly", 2, end)
	assert.Equal(t, "2025-02-01", start.Format(time.DateOnly))

	period, _, _ = chartRange("hourly", 3, end)
	assert.Equal(t, "daily", period)
}

func TestBuildChart(t *testing.T) {
	weekly := buildChart(sampleMonths, "weekly", date("2025-02-24"), date("2025-03-12"))
	require.Len(t, weekly.Points, 3)
	assert.Equal(t, "2025-02-24", weekly.Points[0].Label)
	assert.Equal(t, SalesChartPoint{Label: "2025-03-03", Cash: 10, Card: 20, MealCard: 7, Online: 5, Total: 42}, weekly.Points[1])
	assert.Equal(t, 193.0, weekly.GrandTotals.Total)

	monthly := buildChart(sampleMonths, "monthly", date("2025-03-01"), date("2025-03-31"))
	require.Len(t, monthly.Points, 1, "sales before start are skipped")
	assert.Equal(t, 43.0, monthly.Points[0].Total)
}

func TestSalesChartHandler(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uint(1))
		return c.Next()
	})
	app.Get("/sales-chart", SalesChartHandler(sampleMonths))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sales-chart?period=daily&count=10&end=2025-03-05", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out SalesChartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "2025-02-24", out.From)
	assert.Len(t, out.Points, 3)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/sales-chart?count=0", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProjectionHandler(t *testing.T) {
	svc := store.NewService(memory.New(), 0, nil)
	_, err := svc.Update(context.Background(), 1, func(st store.State) (store.State, error) {
		next, r, err := st.AddRecipe(models.Recipe{Name: "Ayran", CalculatedPrice: 11})
		if err != nil {
			return st, err
		}
		return next.SetSalesTarget(models.SalesTarget{RecipeID: r.ID, DailyRestaurant: 10})
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uint(1))
		return c.Next()
	})
	app.Get("/projection", ProjectionHandler(svc, tax.Default()))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/projection", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var p planning.Projection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, models.DefaultWorkingDays*10, p.MonthlyUnits)
	assert.Equal(t, models.DefaultWorkingDays, p.WorkingDays)
}
