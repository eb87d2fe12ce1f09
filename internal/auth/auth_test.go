package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository/memory"
)

const testSecret = "test-secret-test-secret-test-secret"

func newTestApp() *fiber.App {
	repo := memory.New()
	app := fiber.New()
	app.Post("/auth/register", RegisterHandler(testSecret, repo))
	app.Post("/auth/login", LoginHandler(testSecret, repo))

	protected := app.Group("", JWTMiddleware(testSecret))
	protected.Get("/auth/me", MeHandler(repo))
	protected.Get("/admin", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

type authResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (*http.Response, authResponse) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out authResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	app := newTestApp()

	resp, first := postJSON(t, app, "/auth/register", RegisterRequest{Name: "Ayşe", Email: " Ayse@Example.com ", Password: "secret1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.RoleAdmin, first.User.Role)
	assert.Equal(t, "ayse@example.com", first.User.Email)
	assert.NotEmpty(t, first.Token)

	resp, second := postJSON(t, app, "/auth/register", RegisterRequest{Name: "Mehmet", Email: "mehmet@example.com", Password: "secret2"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.RoleUser, second.User.Role)

	resp, _ = postJSON(t, app, "/auth/register", RegisterRequest{Name: "Ayşe", Email: "ayse@example.com", Password: "secret3"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", first.Token).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", second.Token).StatusCode)
}

func TestRegister_Validation(t *testing.T) {
	app := newTestApp()
	for _, body := range []RegisterRequest{
		{Name: "", Email: "a@example.com", Password: "secret1"},
		{Name: "A", Email: "not-an-email", Password: "secret1"},
		{Name: "A", Email: "a@example.com", Password: "123"},
	} {
		resp, _ := postJSON(t, app, "/auth/register", body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestLoginAndMe(t *testing.T) {
	app := newTestApp()
	postJSON(t, app, "/auth/register", RegisterRequest{Name: "Ayşe", Email: "ayse@example.com", Password: "secret1"})

	resp, _ := postJSON(t, app, "/auth/login", LoginRequest{Email: "ayse@example.com", Password: "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, login := postJSON(t, app, "/auth/login", LoginRequest{Email: "AYSE@example.com", Password: "secret1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	me := get(t, app, "/auth/me", login.Token)
	require.Equal(t, fiber.StatusOK, me.StatusCode)
	var user UserResponse
	require.NoError(t, json.NewDecoder(me.Body).Decode(&user))
	assert.Equal(t, "Ayşe", user.Name)
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	app := newTestApp()

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/auth/me", "").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/auth/me", "garbage").StatusCode)

	other, err := GenerateToken("another-secret-another-secret-xx", &models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/auth/me", other).StatusCode)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTCustomClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/auth/me", signed).StatusCode)
}
