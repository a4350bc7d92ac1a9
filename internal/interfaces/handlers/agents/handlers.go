package agents

import (
	"strings"

	agentsvc "propview-backend/internal/application/agents"
	"propview-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *agentsvc.Service
}

type agentBody struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	URL       *string `json:"url"`
	Brokerage *string `json:"brokerage"`
	FileID    *string `json:"fileId"`
}

// Create POST /api/agents
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body agentBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	required := []struct {
		name  string
		value *string
	}{
		{"name", body.Name},
		{"phone", body.Phone},
		{"email", body.Email},
	}
	for _, f := range required {
		if f.value == nil || *f.value == "" {
			return response.Error(c, "Missing required field: "+f.name, 400, nil)
		}
	}

	in := agentsvc.CreateAgentInput{
		Name:  *body.Name,
		Phone: *body.Phone,
		Email: *body.Email,
	}
	if body.URL != nil {
		in.URL = *body.URL
	}
	if body.Brokerage != nil {
		in.Brokerage = *body.Brokerage
	}

	agent, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return response.SuccessCreated(c, "Agent created successfully", agent)
}

// GetAll GET /api/agents?ids=a,b,c
func (h *Handlers) GetAll(c *fiber.Ctx) error {
	var ids []uuid.UUID
	if raw := c.Query("ids"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return response.Error(c, "Invalid agent id in ids", 400, nil)
			}
			ids = append(ids, id)
		}
	}
	agents, err := h.Service.GetAll(c.Context(), ids)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Agents fetched successfully", agents)
}

// GetByID GET /api/agents/:id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid agent id", 400, nil)
	}
	agent, err := h.Service.GetByID(c.Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return response.Success(c, "Agent fetched successfully", agent)
}

// Update PUT /api/agents/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid agent id", 400, nil)
	}
	var body agentBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	in := agentsvc.UpdateAgentInput{
		Name:      body.Name,
		Phone:     body.Phone,
		Email:     body.Email,
		URL:       body.URL,
		Brokerage: body.Brokerage,
	}
	if body.FileID != nil {
		fid, err := uuid.Parse(*body.FileID)
		if err != nil {
			return response.Error(c, "Invalid fileId", 400, nil)
		}
		in.FileID = &fid
	}

	agent, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return response.Success(c, "Agent updated successfully", agent)
}

// Delete DELETE /api/agents/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid agent id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return h.errorResponse(c, err)
	}
	return response.Success(c, "Agent deleted", nil)
}

func (h *Handlers) errorResponse(c *fiber.Ctx, err error) error {
	switch err {
	case agentsvc.ErrAgentNotFound:
		return response.Error(c, err.Error(), 404, nil)
	case agentsvc.ErrInvalidEmail:
		return response.Error(c, err.Error(), 400, nil)
	default:
		return response.Error(c, "Internal Server Error", 500, nil)
	}
}
