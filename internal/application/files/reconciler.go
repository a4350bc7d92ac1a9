package files

import (
	"context"
	"errors"
	"strings"

	"propview-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload is one stored file paired with its positional altText label.
type Upload struct {
	URL   string
	Label string
}

// Service ties HTTP-level upload batches (or declared final states) to
// record mutations and asset cleanup. Record writes always commit before any
// unlink so a crash leaves at worst an orphaned file on disk, never a
// dangling reference in the record.
type Service struct {
	Records *RecordStore
	Assets  *AssetStore
}

// AttachListingBatch files a batch of stored uploads into the listing's
// buckets. Files without a label cannot be filed and are discarded; at least
// one labeled file is required. A caller-supplied fileID must belong to the
// same listing, otherwise the write is rejected to prevent cross-owner
// contamination.
func (s *Service) AttachListingBatch(ctx context.Context, listingID uuid.UUID, fileID *uuid.UUID, uploads []Upload) (*models.FileRecord, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFilesUploaded
	}

	grouped := make(map[string][]models.FileItem)
	for _, up := range uploads {
		label := strings.TrimSpace(up.Label)
		if label == "" {
			continue
		}
		grouped[label] = append(grouped[label], models.FileItem{URL: up.URL, AltText: label})
	}
	if len(grouped) == 0 {
		return nil, ErrAltTextRequired
	}

	var rec *models.FileRecord
	var err error
	if fileID != nil {
		rec, err = s.Records.FindByID(ctx, *fileID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileIDMismatch
		}
		if err != nil {
			return nil, err
		}
		if rec.ListingID == nil || *rec.ListingID != listingID {
			return nil, ErrFileIDMismatch
		}
	} else {
		rec, err = s.Records.FindOrCreateForListing(ctx, listingID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.Records.MergeBuckets(ctx, rec, grouped); err != nil {
		return nil, err
	}
	return rec, nil
}

// AttachAgentBatch appends stored uploads to the agent's flat image array,
// upserting the record. Labels are kept as altText but not required here.
func (s *Service) AttachAgentBatch(ctx context.Context, agentID uuid.UUID, uploads []Upload) (*models.FileRecord, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFilesUploaded
	}
	rec, err := s.Records.FindOrCreateForAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	items := DecodeAgentImages(rec)
	for _, up := range uploads {
		items = append(items, models.FileItem{URL: up.URL, AltText: strings.TrimSpace(up.Label)})
	}
	rec.AgentImages = EncodeAgentImages(items)
	if err := s.Records.DB.WithContext(ctx).Model(rec).Update("agent_images", rec.AgentImages).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// SaveFinalState persists a client-supplied complete replacement of the
// listing's buckets (the edit-page Save), then best-effort unlinks every file
// the replacement dropped.
func (s *Service) SaveFinalState(ctx context.Context, listingID uuid.UUID, incoming models.FileBuckets) (*models.FileRecord, error) {
	prev, err := s.Records.FindByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	nextURLs := make(map[string]struct{})
	for _, it := range incoming.All() {
		nextURLs[it.URL] = struct{}{}
	}

	var removed []string
	if prev != nil {
		prevBuckets, _ := DecodeBuckets(prev)
		for _, it := range prevBuckets.All() {
			if _, keep := nextURLs[it.URL]; !keep && it.URL != "" {
				removed = append(removed, it.URL)
			}
		}
	}

	var rec *models.FileRecord
	if prev == nil {
		rec = &models.FileRecord{
			ListingID:    &listingID,
			ListingFiles: EncodeBuckets(incoming),
			AgentImages:  EncodeAgentImages(nil),
		}
		if err := s.Records.DB.WithContext(ctx).Create(rec).Error; err != nil {
			return nil, err
		}
	} else {
		if _, err := s.Records.RepairShape(ctx, prev); err != nil {
			return nil, err
		}
		if err := s.Records.ReplaceFinalState(ctx, prev, incoming); err != nil {
			return nil, err
		}
		rec = prev
	}

	for _, u := range removed {
		s.Assets.Delete(u)
	}
	return rec, nil
}

// ReconcileSelected toggles which stored items appear in the public
// carousel. Items absent from the payload are forced to selected=false
// rather than erroring (absence means deselect).
func (s *Service) ReconcileSelected(ctx context.Context, listingID uuid.UUID, payload []models.FileItem) (*models.FileRecord, error) {
	rec, err := s.Records.FindByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}

	desired := make(map[string]bool, len(payload))
	for _, it := range payload {
		desired[selectionKey(it.URL, it.AltText)] = it.Selected
	}

	buckets, _ := DecodeBuckets(rec)
	apply := func(items []models.FileItem) {
		for i := range items {
			items[i].Selected = desired[selectionKey(items[i].URL, items[i].AltText)]
		}
	}
	apply(buckets.ImagesAndVideos)
	apply(buckets.Floorplans)
	apply(buckets.Documents)

	if err := s.Records.ReplaceFinalState(ctx, rec, buckets); err != nil {
		return nil, err
	}
	return rec, nil
}

func selectionKey(url, alt string) string {
	return strings.ToLower(url + "__" + alt)
}

// ReplaceAgentSlot stores the new item in the slot, displacing any previous
// occupant in a single row update, then unlinks the displaced assets.
func (s *Service) ReplaceAgentSlot(ctx context.Context, agentID uuid.UUID, slot, url string) (*models.FileRecord, error) {
	if strings.TrimSpace(slot) == "" {
		return nil, ErrAltTextRequired
	}
	rec, err := s.Records.FindOrCreateForAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	displaced, err := s.Records.ReplaceSingleSlot(ctx, rec, slot, models.FileItem{URL: url, AltText: slot})
	if err != nil {
		return nil, err
	}
	for _, it := range displaced {
		s.Assets.Delete(it.URL)
	}
	return rec, nil
}

// RemoveAgentSlot removes all entries for the slot and unlinks their files.
func (s *Service) RemoveAgentSlot(ctx context.Context, agentID uuid.UUID, slot string) (*models.FileRecord, int, error) {
	rec, err := s.Records.FindByAgent(ctx, agentID)
	if err != nil {
		return nil, 0, err
	}
	if rec == nil {
		return nil, 0, ErrRecordNotFound
	}
	removed, err := s.Records.RemoveBySlot(ctx, rec, slot)
	if err != nil {
		return nil, 0, err
	}
	for _, it := range removed {
		s.Assets.Delete(it.URL)
	}
	return rec, len(removed), nil
}

// AttachFromURL files an externally-hosted URL without any upload, upserting
// the owner's record. For listings, unknown labels land in the
// images-and-videos bucket.
func (s *Service) AttachFromURL(ctx context.Context, listingID, agentID *uuid.UUID, url, altText string) (*models.FileRecord, error) {
	if url == "" {
		return nil, ErrURLRequired
	}
	if listingID == nil && agentID == nil {
		return nil, ErrOwnerRequired
	}

	if agentID != nil {
		rec, err := s.Records.FindOrCreateForAgent(ctx, *agentID)
		if err != nil {
			return nil, err
		}
		items := append(DecodeAgentImages(rec), models.FileItem{URL: url, AltText: altText})
		rec.AgentImages = EncodeAgentImages(items)
		if err := s.Records.DB.WithContext(ctx).Model(rec).Update("agent_images", rec.AgentImages).Error; err != nil {
			return nil, err
		}
		return rec, nil
	}

	rec, err := s.Records.FindOrCreateForListing(ctx, *listingID)
	if err != nil {
		return nil, err
	}
	label := altText
	if b := (&models.FileBuckets{}).ByLabel(label); b == nil {
		label = models.BucketImagesAndVideos
	}
	grouped := map[string][]models.FileItem{
		label: {{URL: url, AltText: altText}},
	}
	if err := s.Records.MergeBuckets(ctx, rec, grouped); err != nil {
		return nil, err
	}
	return rec, nil
}

// ClearListingFiles empties the listing's buckets and unlinks everything
// they referenced. Returns how many files were dropped.
func (s *Service) ClearListingFiles(ctx context.Context, listingID uuid.UUID) (*models.FileRecord, int, error) {
	rec, err := s.Records.FindByListing(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	if rec == nil {
		return nil, 0, ErrRecordNotFound
	}
	buckets, _ := DecodeBuckets(rec)
	all := buckets.All()
	if err := s.Records.ReplaceFinalState(ctx, rec, models.FileBuckets{}); err != nil {
		return nil, 0, err
	}
	for _, it := range all {
		s.Assets.Delete(it.URL)
	}
	return rec, len(all), nil
}

// DropOwnerRecord deletes an owner's record and unlinks every referenced
// asset. Used by the listing/agent delete cascade.
func (s *Service) DropOwnerRecord(ctx context.Context, listingID, agentID *uuid.UUID) error {
	var rec *models.FileRecord
	var err error
	switch {
	case listingID != nil:
		rec, err = s.Records.FindByListing(ctx, *listingID)
	case agentID != nil:
		rec, err = s.Records.FindByAgent(ctx, *agentID)
	default:
		return ErrOwnerRequired
	}
	if err != nil || rec == nil {
		return err
	}

	buckets, _ := DecodeBuckets(rec)
	urls := make([]string, 0)
	for _, it := range buckets.All() {
		urls = append(urls, it.URL)
	}
	for _, it := range DecodeAgentImages(rec) {
		urls = append(urls, it.URL)
	}

	if err := s.Records.DB.WithContext(ctx).Delete(&models.FileRecord{}, "file_id = ?", rec.ID).Error; err != nil {
		return err
	}
	for _, u := range urls {
		s.Assets.Delete(u)
	}
	return nil
}

// ListFilter narrows List results. Zero values mean no constraint.
type ListFilter struct {
	IDs       []uuid.UUID
	ListingID *uuid.UUID
	AgentID   *uuid.UUID
	Query     string // case-insensitive match on item altText
}

// List returns records newest-first, optionally filtered.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.FileRecord, error) {
	q := s.Records.DB.WithContext(ctx).Model(&models.FileRecord{})
	if len(f.IDs) > 0 {
		q = q.Where("file_id IN ?", f.IDs)
	}
	if f.ListingID != nil {
		q = q.Where("listing_id = ?", *f.ListingID)
	}
	if f.AgentID != nil {
		q = q.Where("agent_id = ?", *f.AgentID)
	}
	var recs []models.FileRecord
	if err := q.Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	if f.Query == "" {
		return recs, nil
	}

	needle := strings.ToLower(f.Query)
	out := recs[:0]
	for i := range recs {
		if recordMatchesAlt(&recs[i], needle) {
			out = append(out, recs[i])
		}
	}
	return out, nil
}

func recordMatchesAlt(rec *models.FileRecord, needle string) bool {
	buckets, _ := DecodeBuckets(rec)
	for _, it := range buckets.All() {
		if strings.Contains(strings.ToLower(it.AltText), needle) {
			return true
		}
	}
	for _, it := range DecodeAgentImages(rec) {
		if strings.Contains(strings.ToLower(it.AltText), needle) {
			return true
		}
	}
	return false
}
