package preview

import (
	listsvc "propview-backend/internal/application/listings"
	previewsvc "propview-backend/internal/application/preview"
	"propview-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service  *previewsvc.Service
	Listings *listsvc.Service
}

type sendRequest struct {
	ListingID string `json:"listingId"`
	AgentID   string `json:"agentId"`
	Email     string `json:"email"`
	AgentName string `json:"agentName"`
}

// Send POST /api/preview/send
func (h *Handlers) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if req.ListingID == "" {
		return response.Error(c, previewsvc.ErrListingIDRequired.Error(), 400, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing id", 400, nil)
	}

	in := previewsvc.SendInput{
		ListingID: listingID,
		Email:     req.Email,
		AgentName: req.AgentName,
	}
	if req.AgentID != "" {
		agentID, err := uuid.Parse(req.AgentID)
		if err != nil {
			return response.Error(c, "Invalid agent id", 400, nil)
		}
		in.AgentID = &agentID
	}

	result, err := h.Service.SendPreview(c.Context(), in)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return response.Success(c, "Preview sent", result)
}

// BySlug GET /api/preview/slug/:slug returns the full published document for
// the preview page.
func (h *Handlers) BySlug(c *fiber.Ctx) error {
	listing, err := h.Listings.GetPublishedBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		if err == listsvc.ErrListingNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Listing fetched successfully", listing)
}

// PublicBySlug GET /api/public/slug/:slug serves a reduced projection safe
// for the public site.
func (h *Handlers) PublicBySlug(c *fiber.Ctx) error {
	listing, err := h.Listings.GetPublishedBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		if err == listsvc.ErrListingNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	projection := fiber.Map{
		"_id":          listing.ID,
		"title":        listing.Title,
		"address":      listing.Address,
		"description":  listing.Description,
		"specs":        listing.Specs,
		"price":        listing.Price,
		"cubicasaInfo": listing.Cubicasa,
	}
	return response.Success(c, "Listing fetched successfully", projection)
}

func (h *Handlers) errorResponse(c *fiber.Ctx, err error) error {
	switch err {
	case previewsvc.ErrListingIDRequired, previewsvc.ErrAgentEmailRequired:
		return response.Error(c, err.Error(), 400, nil)
	case previewsvc.ErrListingNotFound, previewsvc.ErrAgentNotFound:
		return response.Error(c, err.Error(), 404, nil)
	case previewsvc.ErrAgentEmailMissing:
		return response.Error(c, err.Error(), 422, nil)
	case previewsvc.ErrSendFailed:
		return response.Error(c, err.Error(), 500, nil)
	default:
		return response.Error(c, "Internal Server Error", 500, nil)
	}
}
