package auth

import (
	"propview-backend/internal/middleware"
	"propview-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Handlers implements the single-admin login flow: credentials from config,
// an httpOnly admin_session JWT cookie on success.
type Handlers struct {
	AdminEmail        string
	AdminPasswordHash string
	Secret            string
	IsProduction      bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /api/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, "Email and password required", 400, nil)
	}

	if h.AdminEmail == "" || h.AdminPasswordHash == "" || req.Email != h.AdminEmail {
		return response.Unauthorized(c, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.AdminPasswordHash), []byte(req.Password)); err != nil {
		return response.Unauthorized(c, "Invalid credentials")
	}

	token, err := middleware.NewAdminToken(h.Secret, req.Email)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	c.Cookie(middleware.SessionCookie(token, h.IsProduction))
	return response.Success(c, "Logged in", fiber.Map{"role": "admin"})
}

// Me GET /api/auth/me — used by the frontend session probe.
func (h *Handlers) Me(c *fiber.Ctx) error {
	email, ok := middleware.VerifyAdmin(c, h.Secret)
	if !ok {
		return response.Unauthorized(c, "not admin")
	}
	return response.Success(c, "Authenticated", fiber.Map{"role": "admin", "email": email})
}

// Logout POST /api/auth/logout — clears the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.IsProduction,
		MaxAge:   -1,
	})
	return response.Success(c, "Logged out", nil)
}
