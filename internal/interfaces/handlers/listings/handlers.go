package listings

import (
	listsvc "propview-backend/internal/application/listings"
	"propview-backend/internal/models"
	"propview-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *listsvc.Service
}

type listingBody struct {
	Title       *string              `json:"title"`
	Address     *string              `json:"address"`
	Description *string              `json:"description"`
	Price       *float64             `json:"price"`
	AgentIDs    []string             `json:"agentIds"`
	FileID      *string              `json:"fileId"`
	Specs       *models.ListingSpecs `json:"specs"`
	Cubicasa    *struct {
		HTML string `json:"html"`
	} `json:"cubicasaInfo"`
}

// Create POST /api/listings
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body listingBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	required := []struct {
		name  string
		value *string
	}{
		{"title", body.Title},
		{"address", body.Address},
		{"description", body.Description},
	}
	for _, f := range required {
		if f.value == nil || *f.value == "" {
			return response.Error(c, "Missing required field: "+f.name, 400, nil)
		}
	}
	if body.Price == nil {
		return response.Error(c, "Missing required field: price", 400, nil)
	}

	in := listsvc.CreateListingInput{
		Title:       *body.Title,
		Address:     *body.Address,
		Description: *body.Description,
		Price:       *body.Price,
		AgentIDs:    body.AgentIDs,
	}
	if body.Specs != nil {
		in.Specs = *body.Specs
	}
	if body.Cubicasa != nil {
		in.CubicasaHTML = body.Cubicasa.HTML
	}

	listing, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing)
}

// GetAll GET /api/listings
func (h *Handlers) GetAll(c *fiber.Ctx) error {
	listings, err := h.Service.GetAll(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Listings fetched successfully", listings)
}

// GetByID GET /api/listings/:id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid listing id", 400, nil)
	}
	listing, err := h.Service.GetByID(c.Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return response.Success(c, "Listing fetched successfully", listing)
}

// GetBySlug GET /api/listings/by-slug/:slug
func (h *Handlers) GetBySlug(c *fiber.Ctx) error {
	listing, err := h.Service.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return response.Success(c, "Listing fetched successfully", listing)
}

// Update PUT /api/listings/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid listing id", 400, nil)
	}
	var body listingBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	in := listsvc.UpdateListingInput{
		Title:       body.Title,
		Address:     body.Address,
		Description: body.Description,
		Price:       body.Price,
		AgentIDs:    body.AgentIDs,
		Specs:       body.Specs,
	}
	if body.FileID != nil {
		fid, err := uuid.Parse(*body.FileID)
		if err != nil {
			return response.Error(c, "Invalid fileId", 400, nil)
		}
		in.FileID = &fid
	}
	if body.Cubicasa != nil {
		in.CubicasaHTML = &body.Cubicasa.HTML
	}

	listing, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return response.Success(c, "Listing updated successfully", listing)
}

// Delete DELETE /api/listings/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid listing id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return h.errorResponse(c, err)
	}
	return response.Success(c, "Listing deleted", nil)
}

func (h *Handlers) errorResponse(c *fiber.Ctx, err error) error {
	switch err {
	case listsvc.ErrListingNotFound:
		return response.Error(c, err.Error(), 404, nil)
	case listsvc.ErrInvalidPropertyType, listsvc.ErrInvalidEmbed:
		return response.Error(c, err.Error(), 400, nil)
	default:
		return response.Error(c, "Internal Server Error", 500, nil)
	}
}
