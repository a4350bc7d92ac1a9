package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/admin", RequireAdmin(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"email": AdminEmail(c)})
	})
	return app
}

func TestRequireAdmin_NoToken(t *testing.T) {
	app := protectedApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestRequireAdmin_CookieToken(t *testing.T) {
	app := protectedApp()

	token, err := NewAdminToken(testSecret, "admin@propview.io")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookieName, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequireAdmin_BearerToken(t *testing.T) {
	app := protectedApp()

	token, err := NewAdminToken(testSecret, "admin@propview.io")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequireAdmin_WrongSecret(t *testing.T) {
	app := protectedApp()

	token, err := NewAdminToken("other-secret", "admin@propview.io")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
