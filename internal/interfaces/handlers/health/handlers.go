package health

import (
	healthsvc "propview-backend/internal/application/health"
	"propview-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	HealthAdminKey string
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := healthsvc.CollectHealth(c.Context(), h.Rdb, h.DB)
	return c.JSON(result)
}

// Reset GET /health/reset?key=
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if h.HealthAdminKey == "" || c.Query("key") != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	if h.Rdb != nil {
		if err := healthsvc.ResetStats(c.Context(), h.Rdb); err != nil {
			return response.Error(c, "Failed to reset stats", 500, nil)
		}
	}
	return response.Success(c, "Stats reset successfully", nil)
}
