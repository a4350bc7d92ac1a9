package agents

import (
	"context"
	"errors"

	filesvc "propview-backend/internal/application/files"
	"propview-backend/internal/models"
	"propview-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAgentNotFound = errors.New("Agent not found")
	ErrInvalidEmail  = errors.New("Invalid agent email")
)

type Service struct {
	DB    *gorm.DB
	Files *filesvc.Service
}

type CreateAgentInput struct {
	Name      string
	Phone     string
	Email     string
	URL       string
	Brokerage string
}

func (s *Service) Create(ctx context.Context, in CreateAgentInput) (*models.Agent, error) {
	if !validation.IsValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	agent := &models.Agent{
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		URL:       in.URL,
		Brokerage: in.Brokerage,
	}
	if err := s.DB.WithContext(ctx).Create(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

// GetAll returns agents newest-first, optionally narrowed to a set of ids.
func (s *Service) GetAll(ctx context.Context, ids []uuid.UUID) ([]models.Agent, error) {
	q := s.DB.WithContext(ctx).Order("created_at DESC")
	if len(ids) > 0 {
		q = q.Where("agent_id IN ?", ids)
	}
	var agents []models.Agent
	if err := q.Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := s.DB.WithContext(ctx).Where("agent_id = ?", id).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

type UpdateAgentInput struct {
	Name      *string
	Phone     *string
	Email     *string
	URL       *string
	Brokerage *string
	FileID    *uuid.UUID
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateAgentInput) (*models.Agent, error) {
	agent, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Email != nil {
		if !validation.IsValidEmail(*in.Email) {
			return nil, ErrInvalidEmail
		}
		updates["email"] = *in.Email
	}
	if in.URL != nil {
		updates["url"] = *in.URL
	}
	if in.Brokerage != nil {
		updates["brokerage"] = *in.Brokerage
	}
	if in.FileID != nil {
		updates["file_id"] = *in.FileID
	}
	if len(updates) == 0 {
		return agent, nil
	}

	if err := s.DB.WithContext(ctx).Model(agent).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the agent and cascades to its file record and assets.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	agent, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Agent{}, "agent_id = ?", agent.ID).Error; err != nil {
		return err
	}
	if s.Files != nil {
		aid := agent.ID
		if err := s.Files.DropOwnerRecord(ctx, nil, &aid); err != nil {
			return err
		}
	}
	return nil
}
