package files

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"propview-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordStore is CRUD over FileRecord documents keyed by owner. Bucket
// mutations are single-row updates so concurrent readers never observe a
// half-applied slot replace or merge.
type RecordStore struct {
	DB *gorm.DB
}

// EncodeBuckets serializes the bucket object as the persisted wire shape:
// an array whose zeroth element is the single logical bucket object.
func EncodeBuckets(b models.FileBuckets) datatypes.JSON {
	bs, _ := json.Marshal([]models.FileBuckets{b})
	return datatypes.JSON(bs)
}

// DecodeBuckets parses a record's listingFiles. ok is false when the
// persisted document is malformed: missing, empty, or its first element is
// not an object (legacy documents created before the typed schema).
func DecodeBuckets(rec *models.FileRecord) (models.FileBuckets, bool) {
	if len(rec.ListingFiles) == 0 {
		return models.FileBuckets{}, false
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(rec.ListingFiles, &raw); err != nil || len(raw) == 0 {
		return models.FileBuckets{}, false
	}
	trimmed := strings.TrimSpace(string(raw[0]))
	if !strings.HasPrefix(trimmed, "{") {
		return models.FileBuckets{}, false
	}
	var b models.FileBuckets
	if err := json.Unmarshal(raw[0], &b); err != nil {
		return models.FileBuckets{}, false
	}
	return b, true
}

// EncodeAgentImages serializes the flat agent slot array.
func EncodeAgentImages(items []models.FileItem) datatypes.JSON {
	if items == nil {
		items = []models.FileItem{}
	}
	bs, _ := json.Marshal(items)
	return datatypes.JSON(bs)
}

// DecodeAgentImages parses a record's agentImages, tolerating missing or
// malformed documents as empty.
func DecodeAgentImages(rec *models.FileRecord) []models.FileItem {
	if len(rec.AgentImages) == 0 {
		return []models.FileItem{}
	}
	var items []models.FileItem
	if err := json.Unmarshal(rec.AgentImages, &items); err != nil || items == nil {
		return []models.FileItem{}
	}
	return items
}

func (r *RecordStore) FindByID(ctx context.Context, id uuid.UUID) (*models.FileRecord, error) {
	var rec models.FileRecord
	if err := r.DB.WithContext(ctx).Where("file_id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByListing returns (nil, nil) when no record exists for the listing.
func (r *RecordStore) FindByListing(ctx context.Context, listingID uuid.UUID) (*models.FileRecord, error) {
	var rec models.FileRecord
	err := r.DB.WithContext(ctx).Where("listing_id = ?", listingID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecordStore) FindByAgent(ctx context.Context, agentID uuid.UUID) (*models.FileRecord, error) {
	var rec models.FileRecord
	err := r.DB.WithContext(ctx).Where("agent_id = ?", agentID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindOrCreateForListing creates a well-formed empty record on first upload.
// Two concurrent first-uploads race here: the unique index on listing_id
// turns the benign double-create into a duplicate-key error, and the loser
// retries the find instead of failing the request.
func (r *RecordStore) FindOrCreateForListing(ctx context.Context, listingID uuid.UUID) (*models.FileRecord, error) {
	rec, err := r.FindByListing(ctx, listingID)
	if err != nil || rec != nil {
		return rec, err
	}
	fresh := &models.FileRecord{
		ListingID:    &listingID,
		ListingFiles: EncodeBuckets(models.FileBuckets{}),
		AgentImages:  EncodeAgentImages(nil),
	}
	if err := r.DB.WithContext(ctx).Create(fresh).Error; err != nil {
		if isDuplicateKey(err) {
			return r.FindByListing(ctx, listingID)
		}
		return nil, err
	}
	return fresh, nil
}

func (r *RecordStore) FindOrCreateForAgent(ctx context.Context, agentID uuid.UUID) (*models.FileRecord, error) {
	rec, err := r.FindByAgent(ctx, agentID)
	if err != nil || rec != nil {
		return rec, err
	}
	fresh := &models.FileRecord{
		AgentID:      &agentID,
		ListingFiles: EncodeBuckets(models.FileBuckets{}),
		AgentImages:  EncodeAgentImages(nil),
	}
	if err := r.DB.WithContext(ctx).Create(fresh).Error; err != nil {
		if isDuplicateKey(err) {
			return r.FindByAgent(ctx, agentID)
		}
		return nil, err
	}
	return fresh, nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique")
}

// RepairShape resets a malformed listingFiles document to a single empty
// bucket object before any merge is attempted. Well-formed records are left
// untouched; the decoded buckets are returned either way.
func (r *RecordStore) RepairShape(ctx context.Context, rec *models.FileRecord) (models.FileBuckets, error) {
	buckets, ok := DecodeBuckets(rec)
	if ok {
		return buckets, nil
	}
	rec.ListingFiles = EncodeBuckets(models.FileBuckets{})
	if err := r.DB.WithContext(ctx).Model(rec).Update("listing_files", rec.ListingFiles).Error; err != nil {
		return models.FileBuckets{}, err
	}
	return models.FileBuckets{}, nil
}

// MergeBuckets appends grouped items to their labeled buckets, preserving
// existing order. Labels absent from the map leave their buckets untouched.
func (r *RecordStore) MergeBuckets(ctx context.Context, rec *models.FileRecord, grouped map[string][]models.FileItem) error {
	buckets, err := r.RepairShape(ctx, rec)
	if err != nil {
		return err
	}
	for label, items := range grouped {
		target := buckets.ByLabel(label)
		if target == nil {
			continue
		}
		*target = append(*target, items...)
	}
	return r.ReplaceFinalState(ctx, rec, buckets)
}

// ReplaceFinalState overwrites listingFiles[0] wholesale with a
// caller-supplied final state. The caller computes any removal diff.
func (r *RecordStore) ReplaceFinalState(ctx context.Context, rec *models.FileRecord, buckets models.FileBuckets) error {
	rec.ListingFiles = EncodeBuckets(buckets)
	return r.DB.WithContext(ctx).Model(rec).Update("listing_files", rec.ListingFiles).Error
}

// ReplaceSingleSlot enforces at-most-one-per-slot for agent images: any
// existing entry with the slot label is filtered out, then the new item is
// appended, all within one row update. Returns the displaced items so the
// caller can unlink their assets.
func (r *RecordStore) ReplaceSingleSlot(ctx context.Context, rec *models.FileRecord, slot string, item models.FileItem) ([]models.FileItem, error) {
	existing := DecodeAgentImages(rec)
	kept := make([]models.FileItem, 0, len(existing)+1)
	var displaced []models.FileItem
	for _, it := range existing {
		if it.AltText == slot {
			displaced = append(displaced, it)
			continue
		}
		kept = append(kept, it)
	}
	kept = append(kept, item)
	rec.AgentImages = EncodeAgentImages(kept)
	if err := r.DB.WithContext(ctx).Model(rec).Update("agent_images", rec.AgentImages).Error; err != nil {
		return nil, err
	}
	return displaced, nil
}

// RemoveBySlot pulls all entries with the given slot label and returns them.
func (r *RecordStore) RemoveBySlot(ctx context.Context, rec *models.FileRecord, slot string) ([]models.FileItem, error) {
	existing := DecodeAgentImages(rec)
	kept := make([]models.FileItem, 0, len(existing))
	var removed []models.FileItem
	for _, it := range existing {
		if it.AltText == slot {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	rec.AgentImages = EncodeAgentImages(kept)
	if err := r.DB.WithContext(ctx).Model(rec).Update("agent_images", rec.AgentImages).Error; err != nil {
		return nil, err
	}
	return removed, nil
}
