package account

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasyon-backend/internal/audit"
	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/backup"
	"rasyon-backend/internal/events"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
	"rasyon-backend/internal/repository/memory"
	"rasyon-backend/internal/store"
)

type testEnv struct {
	app  *fiber.App
	repo *memory.Repository
	svc  *store.Service
	pub  *events.Recorder
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	repo := memory.New()
	svc := store.NewService(repo, 0, nil)
	al := audit.New(repo, nil, nil)
	pub := &events.Recorder{}

	app := fiber.New(fiber.Config{ErrorHandler: httperr.ErrorHandler(nil)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uint(1))
		return c.Next()
	})
	app.Get("/state", GetStateHandler(svc))
	app.Post("/state/save", SaveStateHandler(svc))
	app.Get("/settings", GetSettingsHandler(svc))
	app.Put("/settings", UpdateSettingsHandler(svc, al))
	app.Get("/export", ExportHandler(svc))
	app.Post("/import", ImportHandler(svc, pub, al, nil))
	return testEnv{app: app, repo: repo, svc: svc, pub: pub}
}

func do(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestStateAndSettings(t *testing.T) {
	env := newTestEnv(t)

	var snap models.Snapshot
	require.Equal(t, fiber.StatusOK, do(t, env.app, http.MethodGet, "/state", nil, &snap))
	assert.Equal(t, models.DefaultWorkingDays, snap.Settings.WorkingDays)

	var s models.Settings
	require.Equal(t, fiber.StatusOK, do(t, env.app, http.MethodPut, "/settings", models.Settings{
		Company:     models.Company{Name: " Lokanta ", Type: models.CompanyLimited},
		WorkingDays: 26,
	}, &s))
	assert.Equal(t, "Lokanta", s.Company.Name)
	assert.Equal(t, 26, s.WorkingDays)
	assert.Equal(t, float64(models.DefaultRevenueVATRate), s.RevenueVATRate)

	assert.Equal(t, fiber.StatusBadRequest, do(t, env.app, http.MethodPut, "/settings", models.Settings{WorkingDays: 40}, nil))
	assert.Equal(t, fiber.StatusBadRequest, do(t, env.app, http.MethodPut, "/settings", models.Settings{
		Company: models.Company{Type: "anonim"},
	}, nil))

	var got models.Settings
	require.Equal(t, fiber.StatusOK, do(t, env.app, http.MethodGet, "/settings", nil, &got))
	assert.Equal(t, s, got)

	var saved SaveResponse
	require.Equal(t, fiber.StatusOK, do(t, env.app, http.MethodPost, "/state/save", nil, &saved))
	assert.True(t, saved.Saved)
	assert.Empty(t, saved.Pending)

	stored, err := env.repo.LoadState(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 26, stored.Settings.WorkingDays)

	logs, err := env.repo.ListAudit(context.Background(), repository.AuditFilter{EntityType: audit.EntitySettings})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestExportImport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Update(ctx, 1, func(st store.State) (store.State, error) {
		next, _, err := st.AddRawIngredient(models.RawIngredient{Name: "Un", Unit: models.UnitKg, Price: 20})
		if err != nil {
			return st, err
		}
		next, _, err = next.AddRecipe(models.Recipe{Name: "Pide", CalculatedPrice: 120})
		return next, err
	})
	require.NoError(t, err)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/export", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "rasyon-yedek-")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc, err := backup.Import(data)
	require.NoError(t, err)
	assert.Equal(t, backup.Version, doc.Version)
	require.Len(t, doc.Recipes, 1)

	// başka bir kullanıcıya içe aktar
	other := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err = other.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out ImportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, ImportResponse{Version: backup.Version, RawIngredients: 1, Recipes: 1}, out)

	st, err := other.svc.State(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pide", st.Recipes[0].Name)

	require.Len(t, other.pub.Events, 1)
	assert.Equal(t, events.TypeStateImported, other.pub.Events[0].Type)
	assert.WithinDuration(t, time.Now(), other.pub.Events[0].At, time.Minute)

	logs, err := other.repo.ListAudit(ctx, repository.AuditFilter{EntityType: audit.EntityState})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionImport, logs[0].Action)
}

func TestImport_File(t *testing.T) {
	env := newTestEnv(t)

	upload := func(name string, content []byte) int {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/import", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, upload("yedek.json", []byte(`{"recipes":[{"id":"r1","name":"Çorba"}]}`)))
	assert.Equal(t, fiber.StatusBadRequest, upload("yedek.txt", []byte(`{"recipes":[]}`)))
	assert.Equal(t, fiber.StatusBadRequest, upload("yedek.json", []byte(`{"rawIngredients":[]}`)))
	assert.Equal(t, fiber.StatusBadRequest, upload("yedek.json", []byte(`{"recipes":{}}`)))

	st, err := env.svc.State(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, st.Recipes, 1)
	assert.Equal(t, "Çorba", st.Recipes[0].Name)
}

func TestImport_EmptyBody(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, fiber.StatusBadRequest, do(t, env.app, http.MethodPost, "/import", nil, nil))
}
