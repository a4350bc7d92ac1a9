package listings

import (
	"context"
	"encoding/json"
	"errors"

	filesvc "propview-backend/internal/application/files"
	"propview-backend/internal/models"
	"propview-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound     = errors.New("Listing not found")
	ErrInvalidPropertyType = errors.New("Invalid property type")
	ErrInvalidEmbed        = errors.New("cubicasaInfo.html must be a single iframe")
)

type Service struct {
	DB    *gorm.DB
	Files *filesvc.Service
}

type CreateListingInput struct {
	Title        string
	Address      string
	Description  string
	Price        float64
	AgentIDs     []string
	Specs        models.ListingSpecs
	CubicasaHTML string
}

func (s *Service) Create(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	if in.Specs.PropertyType == "" {
		in.Specs.PropertyType = "Detached"
	}
	if !validPropertyType(in.Specs.PropertyType) {
		return nil, ErrInvalidPropertyType
	}
	embed, ok := validation.SanitizeIframe(in.CubicasaHTML)
	if !ok {
		return nil, ErrInvalidEmbed
	}

	listing := &models.Listing{
		Title:       in.Title,
		Address:     in.Address,
		Description: in.Description,
		Price:       in.Price,
		AgentIDs:    encodeIDs(in.AgentIDs),
		Specs:       in.Specs,
		Cubicasa:    models.CubicasaInfo{HTML: embed},
		Status:      models.StatusDraft,
	}
	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *Service) GetAll(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", id).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// GetBySlug finds a listing regardless of status (admin view).
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	var listing models.Listing
	if err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// GetPublishedBySlug finds a Published listing only (preview/public pages).
func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	var listing models.Listing
	err := s.DB.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, models.StatusPublished).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

type UpdateListingInput struct {
	Title        *string
	Address      *string
	Description  *string
	Price        *float64
	AgentIDs     []string
	FileID       *uuid.UUID
	Specs        *models.ListingSpecs
	CubicasaHTML *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.AgentIDs != nil {
		updates["agent_ids"] = encodeIDs(in.AgentIDs)
	}
	if in.FileID != nil {
		updates["file_id"] = *in.FileID
	}
	if in.Specs != nil {
		if !validPropertyType(in.Specs.PropertyType) {
			return nil, ErrInvalidPropertyType
		}
		updates["beds"] = in.Specs.Beds
		updates["baths"] = in.Specs.Baths
		updates["garage"] = in.Specs.Garage
		updates["year_built"] = in.Specs.YearBuilt
		updates["living_area"] = in.Specs.LivingArea
		updates["lot_size"] = in.Specs.LotSize
		updates["property_type"] = in.Specs.PropertyType
		updates["property_tax"] = in.Specs.PropertyTax
		updates["tax_year"] = in.Specs.TaxYear
	}
	if in.CubicasaHTML != nil {
		embed, ok := validation.SanitizeIframe(*in.CubicasaHTML)
		if !ok {
			return nil, ErrInvalidEmbed
		}
		updates["cubicasa_html"] = embed
	}
	if len(updates) == 0 {
		return listing, nil
	}

	if err := s.DB.WithContext(ctx).Model(listing).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the listing and cascades to its file record and assets.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	listing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Listing{}, "listing_id = ?", listing.ID).Error; err != nil {
		return err
	}
	if s.Files != nil {
		lid := listing.ID
		if err := s.Files.DropOwnerRecord(ctx, &lid, nil); err != nil {
			return err
		}
	}
	return nil
}

func validPropertyType(pt string) bool {
	for _, t := range models.PropertyTypes {
		if t == pt {
			return true
		}
	}
	return false
}

func encodeIDs(ids []string) datatypes.JSON {
	if ids == nil {
		ids = []string{}
	}
	bs, _ := json.Marshal(ids)
	return datatypes.JSON(bs)
}
