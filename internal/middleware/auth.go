package middleware

import (
	"fmt"
	"strings"
	"time"

	"propview-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AdminCookieName is the httpOnly session cookie set on login.
const AdminCookieName = "admin_session"

const adminEmailLocal = "admin_email"

const sessionTTL = 7 * 24 * time.Hour

// NewAdminToken signs a session token for the single admin.
func NewAdminToken(secret, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"sub":  email,
		"exp":  time.Now().Add(sessionTTL).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// SessionCookie builds the admin_session cookie for a signed token.
func SessionCookie(token string, isProduction bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     AdminCookieName,
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   isProduction,
		MaxAge:   int(sessionTTL.Seconds()),
	}
}

// adminFromRequest reads the admin identity from the session cookie or a
// Bearer header. Returns the admin email and whether the token checked out.
func adminFromRequest(c *fiber.Ctx, secret string) (string, bool) {
	candidates := []string{c.Cookies(AdminCookieName)}
	if auth := c.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		candidates = append(candidates, strings.TrimPrefix(auth, "Bearer "))
	}
	for _, tokenStr := range candidates {
		if tokenStr == "" {
			continue
		}
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			continue
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			continue
		}
		if role, _ := claims["role"].(string); role != "admin" {
			continue
		}
		email, _ := claims["sub"].(string)
		return email, true
	}
	return "", false
}

// RequireAdmin guards admin routes. 401 with the standard error shape.
func RequireAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := adminFromRequest(c, secret)
		if !ok {
			return response.Unauthorized(c, "Auth required")
		}
		c.Locals(adminEmailLocal, email)
		return c.Next()
	}
}

// AdminEmail returns the authenticated admin's email from Locals.
func AdminEmail(c *fiber.Ctx) string {
	if s, ok := c.Locals(adminEmailLocal).(string); ok {
		return s
	}
	return ""
}

// VerifyAdmin exposes the cookie/bearer check for handlers outside the
// guarded groups (e.g. /me probes).
func VerifyAdmin(c *fiber.Ctx, secret string) (string, bool) {
	return adminFromRequest(c, secret)
}
