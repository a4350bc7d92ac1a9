package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bucket labels for listing-owned files. Uploads carry one of these as the
// per-file altText; anything else is not filed.
const (
	BucketImagesAndVideos = "listingimagesAndVideos"
	BucketFloorplans      = "floorplans"
	BucketDocuments       = "listingDocuments"
)

// Agent slot labels. At most one live entry per slot, maintained by
// filter-then-append replace semantics.
const (
	SlotAgentPhoto    = "agent-photo"
	SlotAgentLogo     = "agent-logo"
	SlotBrokerageLogo = "brokerage-logo"
)

// FileItem is one stored file reference inside a bucket or slot.
type FileItem struct {
	URL      string `json:"url"`
	AltText  string `json:"altText"`
	Selected bool   `json:"selected"`
}

// FileBuckets is the single logical bucket object kept at listingFiles[0].
// All sub-arrays default to empty so a freshly created record is well-formed.
type FileBuckets struct {
	ImagesAndVideos []FileItem `json:"listingimagesAndVideos"`
	Floorplans      []FileItem `json:"floorplans"`
	Documents       []FileItem `json:"listingDocuments"`
}

// ByLabel returns the bucket slice for a label, nil if the label is unknown.
func (b *FileBuckets) ByLabel(label string) *[]FileItem {
	switch label {
	case BucketImagesAndVideos:
		return &b.ImagesAndVideos
	case BucketFloorplans:
		return &b.Floorplans
	case BucketDocuments:
		return &b.Documents
	}
	return nil
}

// All returns every item across the three buckets.
func (b *FileBuckets) All() []FileItem {
	out := make([]FileItem, 0, len(b.ImagesAndVideos)+len(b.Floorplans)+len(b.Documents))
	out = append(out, b.ImagesAndVideos...)
	out = append(out, b.Floorplans...)
	out = append(out, b.Documents...)
	return out
}

// FileRecord holds the uploaded-file references for exactly one owner
// (listing XOR agent). The unique indexes back the find-or-create race
// strategy: a concurrent double-create surfaces as a duplicate-key error
// and the loser retries the find.
type FileRecord struct {
	ID           uuid.UUID      `gorm:"column:file_id;type:uuid;primaryKey" json:"_id"`
	ListingID    *uuid.UUID     `gorm:"column:listing_id;type:uuid;uniqueIndex" json:"listing,omitempty"`
	AgentID      *uuid.UUID     `gorm:"column:agent_id;type:uuid;uniqueIndex" json:"agent,omitempty"`
	ListingFiles datatypes.JSON `gorm:"column:listing_files" json:"listingFiles"`
	AgentImages  datatypes.JSON `gorm:"column:agent_images" json:"agentImages"`
	UploadedBy   string         `gorm:"column:uploaded_by" json:"uploadedBy,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (FileRecord) TableName() string {
	return "file_records"
}

func (f *FileRecord) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
