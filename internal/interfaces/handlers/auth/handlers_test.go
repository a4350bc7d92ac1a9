package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"propview-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func setupAuthTest(t *testing.T) *fiber.App {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	h := &Handlers{
		AdminEmail:        "admin@propview.io",
		AdminPasswordHash: string(hash),
		Secret:            testSecret,
		IsProduction:      false,
	}
	app := fiber.New()
	app.Post("/api/auth/login", h.Login)
	app.Get("/api/auth/me", h.Me)
	app.Post("/api/auth/logout", h.Logout)
	return app
}

func login(t *testing.T, app *fiber.App, email, password string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestLogin_MissingCredentials(t *testing.T) {
	app := setupAuthTest(t)

	body, _ := json.Marshal(map[string]string{"email": "admin@propview.io"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	app := setupAuthTest(t)
	resp := login(t, app, "admin@propview.io", "wrong")
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLogin_WrongEmail(t *testing.T) {
	app := setupAuthTest(t)
	resp := login(t, app, "someone@else.io", "hunter2")
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	app := setupAuthTest(t)
	resp := login(t, app, "admin@propview.io", "hunter2")
	assert.Equal(t, 200, resp.StatusCode)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AdminCookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.NotEmpty(t, session.Value)

	// The cookie authenticates /me.
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(session)
	meResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, meResp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(meResp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "admin", data["role"])
	assert.Equal(t, "admin@propview.io", data["email"])
}

func TestMe_Unauthenticated(t *testing.T) {
	app := setupAuthTest(t)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestMe_BearerToken(t *testing.T) {
	app := setupAuthTest(t)

	token, err := middleware.NewAdminToken(testSecret, "admin@propview.io")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestLogout_ClearsCookie(t *testing.T) {
	app := setupAuthTest(t)

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AdminCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}
