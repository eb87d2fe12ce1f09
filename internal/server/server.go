// Package server HTTP uygulamasını ve route tablosunu kurar.
package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"rasyon-backend/internal/account"
	"rasyon-backend/internal/admin"
	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/dashboard"
	"rasyon-backend/internal/events"
	"rasyon-backend/internal/expense"
	"rasyon-backend/internal/financial"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/inventory"
	"rasyon-backend/internal/ledger"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/recipe"
	"rasyon-backend/internal/repository"
	"rasyon-backend/internal/scheduler"
	"rasyon-backend/internal/store"
	"rasyon-backend/internal/tax"
)

type Deps struct {
	JWTSecret        string
	CORSOrigins      string
	AdminListTimeout time.Duration

	Repo      repository.Repository
	State     *store.Service
	Ledger    *ledger.Service
	Audit     *audit.Logger
	Events    events.Publisher
	TaxTable  *tax.Table
	BackupJob *scheduler.BackupJob
	Log       *zap.Logger
}

func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.AdminListTimeout <= 0 {
		d.AdminListTimeout = 10 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:      "rasyon",
		ErrorHandler: httperr.ErrorHandler(d.Log),
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(d.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(d.JWTSecret, d.Repo))
	api.Post("/auth/login", auth.LoginHandler(d.JWTSecret, d.Repo))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(d.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler(d.Repo))

	// Durum, ayarlar, yedek
	protected.Get("/state", account.GetStateHandler(d.State))
	protected.Post("/state/save", account.SaveStateHandler(d.State))
	protected.Get("/settings", account.GetSettingsHandler(d.State))
	protected.Put("/settings", account.UpdateSettingsHandler(d.State, d.Audit))
	protected.Get("/export", account.ExportHandler(d.State))
	protected.Post("/import", account.ImportHandler(d.State, d.Events, d.Audit, d.Log.Named("import")))

	// Hammaddeler
	protected.Get("/raw-ingredients", inventory.ListRawIngredientsHandler(d.State))
	protected.Post("/raw-ingredients", inventory.CreateRawIngredientHandler(d.State, d.Audit))
	protected.Post("/raw-ingredients/price-list", inventory.UploadPriceListHandler(d.State, d.Audit))
	protected.Post("/raw-ingredients/invoice-text", inventory.InvoiceTextHandler(d.State, d.Audit))
	protected.Put("/raw-ingredients/:id", inventory.UpdateRawIngredientHandler(d.State, d.Audit))
	protected.Delete("/raw-ingredients/:id", inventory.DeleteRawIngredientHandler(d.State, d.Audit))

	// Ara ürünler
	protected.Get("/intermediate-products", inventory.ListIntermediatesHandler(d.State))
	protected.Post("/intermediate-products", inventory.CreateIntermediateHandler(d.State, d.Audit))
	protected.Put("/intermediate-products/:id", inventory.UpdateIntermediateHandler(d.State, d.Audit))
	protected.Delete("/intermediate-products/:id", inventory.DeleteIntermediateHandler(d.State, d.Audit))

	protected.Get("/ingredient-categories", inventory.ListCategoriesHandler(d.State))
	protected.Post("/ingredient-categories", inventory.CreateCategoryHandler(d.State, d.Audit))
	protected.Put("/ingredient-categories/:id", inventory.RenameCategoryHandler(d.State, d.Audit))
	protected.Delete("/ingredient-categories/:id", inventory.DeleteCategoryHandler(d.State, d.Audit))

	// Reçeteler (sabit path'ler :id'den önce)
	protected.Get("/recipes", recipe.ListRecipesHandler(d.State))
	protected.Post("/recipes", recipe.CreateRecipeHandler(d.State, d.Audit))
	protected.Put("/recipes/order", recipe.ReorderRecipesHandler(d.State))
	protected.Get("/recipes/export.xlsx", recipe.ExportRecipesHandler(d.State))
	protected.Get("/recipes/:id", recipe.GetRecipeHandler(d.State))
	protected.Put("/recipes/:id", recipe.UpdateRecipeHandler(d.State, d.Audit))
	protected.Put("/recipes/:id/pricing", recipe.SetPricingHandler(d.State, d.Audit))
	protected.Delete("/recipes/:id", recipe.DeleteRecipeHandler(d.State, d.Audit))

	protected.Get("/recipe-categories", recipe.ListCategoriesHandler(d.State))
	protected.Post("/recipe-categories", recipe.CreateCategoryHandler(d.State, d.Audit))
	protected.Put("/recipe-categories/:id", recipe.RenameCategoryHandler(d.State, d.Audit))
	protected.Delete("/recipe-categories/:id", recipe.DeleteCategoryHandler(d.State, d.Audit))

	// Bütçe
	protected.Get("/expenses", expense.ListExpensesHandler(d.State))
	protected.Post("/expenses", expense.CreateExpenseHandler(d.State, d.Audit))
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler(d.State, d.Audit))
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler(d.State, d.Audit))
	protected.Get("/sales-targets", expense.ListSalesTargetsHandler(d.State))
	protected.Put("/sales-targets/:recipeId", expense.SetSalesTargetHandler(d.State, d.Audit))
	protected.Delete("/sales-targets/:recipeId", expense.DeleteSalesTargetHandler(d.State, d.Audit))
	protected.Get("/balance/projection", dashboard.ProjectionHandler(d.State, d.TaxTable))

	// Aylık defter
	protected.Get("/months", financial.ListMonthsHandler(d.Ledger))
	protected.Get("/months/year/:year", financial.YearOverviewHandler(d.Ledger))
	protected.Get("/months/:month", financial.GetMonthHandler(d.Ledger))
	protected.Get("/months/:month/summary", financial.MonthSummaryHandler(d.Ledger))
	protected.Get("/months/:month/export.xlsx", financial.ExportMonthHandler(d.Ledger))
	protected.Post("/months/:month/invoices", financial.CreateInvoiceHandler(d.Ledger, d.Audit))
	protected.Put("/months/:month/invoices/:id", financial.UpdateInvoiceHandler(d.Ledger, d.Audit))
	protected.Delete("/months/:month/invoices/:id", financial.DeleteInvoiceHandler(d.Ledger, d.Audit))
	protected.Put("/months/:month/sales/:date", financial.SetDailySaleHandler(d.Ledger, d.Audit))
	protected.Delete("/months/:month/sales/:date", financial.DeleteDailySaleHandler(d.Ledger, d.Audit))
	protected.Post("/months/:month/close", financial.CloseMonthHandler(d.Ledger, d.Audit))
	protected.Post("/months/:month/reopen", financial.ReopenMonthHandler(d.Ledger, d.Audit))

	// Dashboard
	protected.Get("/dashboard/sales-chart", dashboard.SalesChartHandler(d.Ledger))

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Get("/users", admin.ListUsersHandler(d.Repo, d.AdminListTimeout))
	adminRoutes.Get("/users/:id/state", admin.GetUserStateHandler(d.Repo))
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(d.Repo))
	adminRoutes.Get("/backups", admin.ListBackupsHandler(d.Repo))
	if d.BackupJob != nil {
		adminRoutes.Post("/backups/run", admin.RunBackupHandler(d.BackupJob))
	}

	return app
}
