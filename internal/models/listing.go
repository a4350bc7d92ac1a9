package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing statuses. Publish is one-directional: Draft -> Published.
const (
	StatusDraft     = "Draft"
	StatusPublished = "Published"
)

// Property types accepted in ListingSpecs.PropertyType.
var PropertyTypes = []string{"Detached", "Townhome", "Condo"}

// ListingSpecs is the embedded spec block shown on the public page.
type ListingSpecs struct {
	Beds         int     `gorm:"column:beds" json:"beds"`
	Baths        int     `gorm:"column:baths" json:"baths"`
	Garage       int     `gorm:"column:garage" json:"garage"`
	YearBuilt    int     `gorm:"column:year_built" json:"yearBuilt"`
	LivingArea   float64 `gorm:"column:living_area" json:"livingArea"`
	LotSize      float64 `gorm:"column:lot_size" json:"lotSize"`
	PropertyType string  `gorm:"column:property_type;type:varchar(20);default:'Detached'" json:"propertyType"`
	PropertyTax  float64 `gorm:"column:property_tax" json:"propertyTax"`
	TaxYear      int     `gorm:"column:tax_year" json:"taxYear"`
}

// CubicasaInfo carries the sanitized floor-plan iframe fragment.
type CubicasaInfo struct {
	HTML string `gorm:"column:cubicasa_html" json:"html,omitempty"`
}

type Listing struct {
	ID          uuid.UUID      `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Address     string         `gorm:"column:address;not null" json:"address"`
	Description string         `gorm:"column:description;not null" json:"description"`
	Price       float64        `gorm:"column:price;not null" json:"price"`
	AgentIDs    datatypes.JSON `gorm:"column:agent_ids" json:"agentIds"`
	FileID      *uuid.UUID     `gorm:"column:file_id;type:uuid" json:"fileId"`
	Specs       ListingSpecs   `gorm:"embedded" json:"specs"`
	Cubicasa    CubicasaInfo   `gorm:"embedded" json:"cubicasaInfo"`
	Status      string         `gorm:"column:status;type:varchar(20);default:'Draft'" json:"status"`
	Slug        *string        `gorm:"column:slug;uniqueIndex" json:"slug,omitempty"`
	PublishedAt *time.Time     `gorm:"column:published_at" json:"publishedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Listing) TableName() string {
	return "listings"
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
