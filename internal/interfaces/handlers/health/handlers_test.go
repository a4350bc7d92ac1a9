package health

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"propview-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHealthHandlers(t *testing.T) (*Handlers, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return &Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: "test-admin-key",
	}, mr
}

func TestReset_Unauthorized(t *testing.T) {
	h, _ := setupHealthHandlers(t)
	app := fiber.New()
	app.Get("/health/reset", h.Reset)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/reset", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Unauthorized", out["error"].(map[string]interface{})["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/health/reset?key=wrong", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestReset_ClearsCounters(t *testing.T) {
	h, _ := setupHealthHandlers(t)
	app := fiber.New()
	app.Get("/health/reset", h.Reset)

	ctx := context.Background()
	require.NoError(t, h.Rdb.Set(ctx, middleware.KeyReqTotal, "5", 0).Err())

	resp, err := app.Test(httptest.NewRequest("GET", "/health/reset?key=test-admin-key", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Stats reset successfully", out["message"])

	_, err = h.Rdb.Get(ctx, middleware.KeyReqTotal).Result()
	assert.Error(t, err)
}

func TestJSON_ReturnsStructure(t *testing.T) {
	h, _ := setupHealthHandlers(t)
	app := fiber.New()
	app.Get("/health/json", h.JSON)

	ctx := context.Background()
	require.NoError(t, h.Rdb.Set(ctx, middleware.KeyReqTotal, "10", 0).Err())
	require.NoError(t, h.Rdb.Set(ctx, middleware.KeyReqErrors, "1", 0).Err())
	require.NoError(t, h.Rdb.Set(ctx, middleware.KeyResTime, "500", 0).Err())
	require.NoError(t, h.Rdb.Set(ctx, middleware.KeyResCount, "10", 0).Err())

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out["status"])

	deps := out["dependencies"].(map[string]interface{})
	redisDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "connected", redisDep["status"])
	dbDep := deps["database"].(map[string]interface{})
	assert.Equal(t, "disconnected", dbDep["status"])

	traffic := out["traffic"].(map[string]interface{})
	assert.EqualValues(t, 10, traffic["totalRequests"])
	assert.Equal(t, "90.0%", traffic["successRate"])
	assert.Equal(t, "50ms", traffic["avgResponseTime"])
}

func TestJSON_NoRedis(t *testing.T) {
	h := &Handlers{Rdb: nil, DB: nil, HealthAdminKey: "k"}
	app := fiber.New()
	app.Get("/health/json", h.JSON)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	deps := out["dependencies"].(map[string]interface{})
	redisDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "disconnected", redisDep["status"])
}
