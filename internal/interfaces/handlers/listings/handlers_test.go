package listings

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	filesvc "propview-backend/internal/application/files"
	listsvc "propview-backend/internal/application/listings"
	"propview-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupListingsTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Listing{}, &models.FileRecord{}))

	files := &filesvc.Service{
		Records: &filesvc.RecordStore{DB: db},
		Assets:  &filesvc.AssetStore{Root: t.TempDir()},
	}
	h := &Handlers{Service: &listsvc.Service{DB: db, Files: files}}

	app := fiber.New()
	app.Post("/api/listings/", h.Create)
	app.Get("/api/listings/", h.GetAll)
	app.Get("/api/listings/by-slug/:slug", h.GetBySlug)
	app.Get("/api/listings/:id", h.GetByID)
	app.Put("/api/listings/:id", h.Update)
	app.Delete("/api/listings/:id", h.Delete)
	return app, db
}

func TestCreateListing_MissingField(t *testing.T) {
	app, _ := setupListingsTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"title":       "Sample",
		"description": "desc",
		"price":       100,
	})
	req := httptest.NewRequest("POST", "/api/listings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "error", result["status"])
	errObj := result["error"].(map[string]interface{})
	assert.Equal(t, "Missing required field: address", errObj["message"])
}

func TestCreateListing_Success(t *testing.T) {
	app, _ := setupListingsTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"title":       "Sample Home",
		"address":     "123 Main St",
		"description": "desc",
		"price":       450000,
		"specs":       map[string]interface{}{"beds": 3, "baths": 2, "propertyType": "Condo"},
	})
	req := httptest.NewRequest("POST", "/api/listings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, "Listing created successfully", result["message"])
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "Draft", data["status"])
	specs := data["specs"].(map[string]interface{})
	assert.Equal(t, "Condo", specs["propertyType"])
}

func TestCreateListing_InvalidPropertyType(t *testing.T) {
	app, _ := setupListingsTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"title":       "Sample",
		"address":     "1 St",
		"description": "desc",
		"price":       1,
		"specs":       map[string]interface{}{"propertyType": "Castle"},
	})
	req := httptest.NewRequest("POST", "/api/listings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetListing_InvalidUUID(t *testing.T) {
	app, _ := setupListingsTest(t)

	req := httptest.NewRequest("GET", "/api/listings/not-a-uuid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetListing_NotFound(t *testing.T) {
	app, _ := setupListingsTest(t)

	req := httptest.NewRequest("GET", "/api/listings/00000000-0000-0000-0000-000000000001", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGetAllListings_EmptyDB(t *testing.T) {
	app, _ := setupListingsTest(t)

	req := httptest.NewRequest("GET", "/api/listings/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "Listings fetched successfully", result["message"])
}

func TestUpdateListing_PartialBody(t *testing.T) {
	app, db := setupListingsTest(t)

	listing := &models.Listing{Title: "Before", Address: "1 A St", Description: "d", Price: 10, Status: models.StatusDraft}
	require.NoError(t, db.Create(listing).Error)

	body, _ := json.Marshal(map[string]interface{}{"title": "After"})
	req := httptest.NewRequest("PUT", "/api/listings/"+listing.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "After", data["title"])
	assert.Equal(t, "1 A St", data["address"])
}

func TestDeleteListing(t *testing.T) {
	app, db := setupListingsTest(t)

	listing := &models.Listing{Title: "Doomed", Address: "9 Gone St", Description: "d", Price: 1, Status: models.StatusDraft}
	require.NoError(t, db.Create(listing).Error)

	req := httptest.NewRequest("DELETE", "/api/listings/"+listing.ID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var count int64
	db.Model(&models.Listing{}).Count(&count)
	assert.EqualValues(t, 0, count)
}
