package files

import (
	"encoding/json"
	"strings"

	filesvc "propview-backend/internal/application/files"
	"propview-backend/internal/models"
	"propview-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handlers exposes the upload and reconciliation endpoints. Record-returning
// operations respond with the raw record document so the admin frontend can
// use it as its source of truth without unwrapping an envelope.
type Handlers struct {
	Service *filesvc.Service
	Assets  *filesvc.AssetStore
}

// UploadListingMulti POST /api/files/listing/:id/multi
//
// Multipart field "images" carries the files; the parallel "altText" values
// name the destination bucket for each file by position.
func (h *Handlers) UploadListingMulti(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid listing id", 400, nil)
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		return response.Error(c, filesvc.ErrNoFilesUploaded.Error(), 400, nil)
	}
	headers := form.File["images"]
	labels := form.Value["altText"]

	var fileID *uuid.UUID
	if raw := firstValue(form.Value["fileId"]); raw != "" {
		fid, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, "Invalid fileId", 400, nil)
		}
		fileID = &fid
	}

	uploads := make([]filesvc.Upload, 0, len(headers))
	for i, fh := range headers {
		label := ""
		if i < len(labels) {
			label = strings.TrimSpace(labels[i])
		}
		if label == "" {
			// Unlabeled files cannot be filed into a bucket; skip the write.
			continue
		}
		url, err := h.Assets.Store(filesvc.OwnerListing, listingID.String(), fh, c.BaseURL())
		if err != nil {
			log.Error().Err(err).Msg("upload store failed")
			return response.Error(c, "Failed to store uploaded file", 500, nil)
		}
		uploads = append(uploads, filesvc.Upload{URL: url, Label: label})
	}
	if len(uploads) == 0 {
		return response.Error(c, filesvc.ErrAltTextRequired.Error(), 400, nil)
	}

	rec, err := h.Service.AttachListingBatch(c.Context(), listingID, fileID, uploads)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// UploadAgentMulti POST /api/files/agent/:id/multi
func (h *Handlers) UploadAgentMulti(c *fiber.Ctx) error {
	agentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid agent id", 400, nil)
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		return response.Error(c, filesvc.ErrNoFilesUploaded.Error(), 400, nil)
	}
	headers := form.File["images"]
	labels := form.Value["altText"]

	uploads := make([]filesvc.Upload, 0, len(headers))
	for i, fh := range headers {
		label := ""
		if i < len(labels) {
			label = strings.TrimSpace(labels[i])
		}
		url, err := h.Assets.Store(filesvc.OwnerAgent, agentID.String(), fh, c.BaseURL())
		if err != nil {
			log.Error().Err(err).Msg("upload store failed")
			return response.Error(c, "Failed to store uploaded file", 500, nil)
		}
		uploads = append(uploads, filesvc.Upload{URL: url, Label: label})
	}

	rec, err := h.Service.AttachAgentBatch(c.Context(), agentID, uploads)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// ReplaceAgentSlot POST /api/files/agent/:id/replace
//
// Single file field "image" plus an "altText" slot name. The previous
// occupant of the slot, if any, is displaced and its file unlinked.
func (h *Handlers) ReplaceAgentSlot(c *fiber.Ctx) error {
	agentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid agent id", 400, nil)
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, filesvc.ErrNoFilesUploaded.Error(), 400, nil)
	}
	slot := strings.TrimSpace(c.FormValue("altText"))
	if slot == "" {
		return response.Error(c, filesvc.ErrAltTextRequired.Error(), 400, nil)
	}

	url, err := h.Assets.Store(filesvc.OwnerAgent, agentID.String(), fh, c.BaseURL())
	if err != nil {
		log.Error().Err(err).Msg("upload store failed")
		return response.Error(c, "Failed to store uploaded file", 500, nil)
	}

	rec, err := h.Service.ReplaceAgentSlot(c.Context(), agentID, slot, url)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(rec)
}

// RemoveAgentSlot DELETE /api/files/agent/:id/by-alt/:altText
func (h *Handlers) RemoveAgentSlot(c *fiber.Ctx) error {
	agentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid agent id", 400, nil)
	}
	slot := c.Params("altText")

	rec, removed, err := h.Service.RemoveAgentSlot(c.Context(), agentID, slot)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"removed": removed, "record": rec})
}

type finalStateBody struct {
	ListingFiles *models.FileBuckets `json:"listingFiles"`
}

// SaveFinalState PUT /api/files/:listingId
//
// The body is either {"listingFiles": {...buckets...}} or the bucket object
// itself. Whatever arrives becomes the new complete state; files the client
// dropped are unlinked after the record commits.
func (h *Handlers) SaveFinalState(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return response.Error(c, "Invalid listing id", 400, nil)
	}

	var wrapped finalStateBody
	var buckets models.FileBuckets
	if err := json.Unmarshal(c.Body(), &wrapped); err == nil && wrapped.ListingFiles != nil {
		buckets = *wrapped.ListingFiles
	} else if err := json.Unmarshal(c.Body(), &buckets); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	rec, err := h.Service.SaveFinalState(c.Context(), listingID, buckets)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(rec)
}

// UpdateSelected PUT /api/files/:listingId/selected
//
// Expects a JSON array of {url, altText, selected}. Items absent from the
// array are deselected.
func (h *Handlers) UpdateSelected(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return response.Error(c, "Invalid listing id", 400, nil)
	}

	var payload []models.FileItem
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return response.Error(c, "Expected a JSON array of file items", 400, nil)
	}

	rec, err := h.Service.ReconcileSelected(c.Context(), listingID, payload)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(rec)
}

type fromURLBody struct {
	Listing *string `json:"listing"`
	Agent   *string `json:"agent"`
	URL     string  `json:"url"`
	AltText string  `json:"altText"`
}

// AttachFromURL POST /api/files/from-url
func (h *Handlers) AttachFromURL(c *fiber.Ctx) error {
	var body fromURLBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	var listingID, agentID *uuid.UUID
	if body.Listing != nil && *body.Listing != "" {
		id, err := uuid.Parse(*body.Listing)
		if err != nil {
			return response.Error(c, "Invalid listing id", 400, nil)
		}
		listingID = &id
	}
	if body.Agent != nil && *body.Agent != "" {
		id, err := uuid.Parse(*body.Agent)
		if err != nil {
			return response.Error(c, "Invalid agent id", 400, nil)
		}
		agentID = &id
	}

	rec, err := h.Service.AttachFromURL(c.Context(), listingID, agentID, body.URL, body.AltText)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// List GET /api/files?ids=&listing=&agent=&q=
func (h *Handlers) List(c *fiber.Ctx) error {
	var f filesvc.ListFilter
	if raw := c.Query("ids"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return response.Error(c, "Invalid file id in ids", 400, nil)
			}
			f.IDs = append(f.IDs, id)
		}
	}
	if raw := c.Query("listing"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, "Invalid listing id", 400, nil)
		}
		f.ListingID = &id
	}
	if raw := c.Query("agent"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, "Invalid agent id", 400, nil)
		}
		f.AgentID = &id
	}
	f.Query = c.Query("q")

	recs, err := h.Service.List(c.Context(), f)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return c.JSON(recs)
}

// ClearListing DELETE /api/files/:listingId
func (h *Handlers) ClearListing(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return response.Error(c, "Invalid listing id", 400, nil)
	}
	rec, removed, err := h.Service.ClearListingFiles(c.Context(), listingID)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"removed": removed, "record": rec})
}

func firstValue(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}

func (h *Handlers) errorResponse(c *fiber.Ctx, err error) error {
	switch err {
	case filesvc.ErrNoFilesUploaded, filesvc.ErrAltTextRequired,
		filesvc.ErrOwnerRequired, filesvc.ErrURLRequired:
		return response.Error(c, err.Error(), 400, nil)
	case filesvc.ErrRecordNotFound, filesvc.ErrFileIDMismatch:
		return response.Error(c, err.Error(), 404, nil)
	default:
		log.Error().Err(err).Msg("file operation failed")
		return response.Error(c, "Internal Server Error", 500, nil)
	}
}
