package files

import (
	"context"
	"testing"

	"propview-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupRecordStore(t *testing.T) *RecordStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FileRecord{}))
	return &RecordStore{DB: db}
}

func TestDecodeBucketsMalformedShapes(t *testing.T) {
	cases := map[string]datatypes.JSON{
		"missing":          nil,
		"empty array":      datatypes.JSON(`[]`),
		"string element":   datatypes.JSON(`["not an object"]`),
		"number element":   datatypes.JSON(`[42]`),
		"not json at all":  datatypes.JSON(`garbage`),
		"top-level object": datatypes.JSON(`{"listingimagesAndVideos":[]}`),
	}
	for name, raw := range cases {
		rec := &models.FileRecord{ListingFiles: raw}
		_, ok := DecodeBuckets(rec)
		assert.False(t, ok, name)
	}
}

func TestDecodeBucketsWellFormed(t *testing.T) {
	rec := &models.FileRecord{
		ListingFiles: EncodeBuckets(models.FileBuckets{
			Floorplans: []models.FileItem{{URL: "/uploads/listing/x/1-plan.pdf", AltText: models.BucketFloorplans}},
		}),
	}
	buckets, ok := DecodeBuckets(rec)
	require.True(t, ok)
	assert.Len(t, buckets.Floorplans, 1)
	assert.Empty(t, buckets.ImagesAndVideos)
	assert.Empty(t, buckets.Documents)
}

func TestRepairShapeResetsMalformed(t *testing.T) {
	store := setupRecordStore(t)
	ctx := context.Background()
	listingID := uuid.New()

	rec := &models.FileRecord{
		ListingID:    &listingID,
		ListingFiles: datatypes.JSON(`["legacy string entry"]`),
		AgentImages:  EncodeAgentImages(nil),
	}
	require.NoError(t, store.DB.Create(rec).Error)

	buckets, err := store.RepairShape(ctx, rec)
	require.NoError(t, err)
	assert.Empty(t, buckets.All())

	reloaded, err := store.FindByListing(ctx, listingID)
	require.NoError(t, err)
	_, ok := DecodeBuckets(reloaded)
	assert.True(t, ok)
}

func TestRepairShapeLeavesWellFormedUntouched(t *testing.T) {
	store := setupRecordStore(t)
	ctx := context.Background()
	listingID := uuid.New()

	rec := &models.FileRecord{
		ListingID: &listingID,
		ListingFiles: EncodeBuckets(models.FileBuckets{
			ImagesAndVideos: []models.FileItem{{URL: "/uploads/listing/x/1-a.jpg", AltText: models.BucketImagesAndVideos}},
		}),
		AgentImages: EncodeAgentImages(nil),
	}
	require.NoError(t, store.DB.Create(rec).Error)

	buckets, err := store.RepairShape(ctx, rec)
	require.NoError(t, err)
	assert.Len(t, buckets.ImagesAndVideos, 1)
}

func TestFindOrCreateForListingIsIdempotent(t *testing.T) {
	store := setupRecordStore(t)
	ctx := context.Background()
	listingID := uuid.New()

	first, err := store.FindOrCreateForListing(ctx, listingID)
	require.NoError(t, err)
	second, err := store.FindOrCreateForListing(ctx, listingID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	store.DB.Model(&models.FileRecord{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestFindByListingAbsentIsNilNil(t *testing.T) {
	store := setupRecordStore(t)
	rec, err := store.FindByListing(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMergeBucketsAppendsAndSkipsUnknownLabels(t *testing.T) {
	store := setupRecordStore(t)
	ctx := context.Background()
	listingID := uuid.New()

	rec, err := store.FindOrCreateForListing(ctx, listingID)
	require.NoError(t, err)

	err = store.MergeBuckets(ctx, rec, map[string][]models.FileItem{
		models.BucketImagesAndVideos: {{URL: "/uploads/listing/x/1-a.jpg", AltText: models.BucketImagesAndVideos}},
		"mystery-label":              {{URL: "/uploads/listing/x/1-b.jpg", AltText: "mystery-label"}},
	})
	require.NoError(t, err)

	buckets, ok := DecodeBuckets(rec)
	require.True(t, ok)
	assert.Len(t, buckets.ImagesAndVideos, 1)
	assert.Len(t, buckets.All(), 1)

	// Append again, order preserved.
	err = store.MergeBuckets(ctx, rec, map[string][]models.FileItem{
		models.BucketImagesAndVideos: {{URL: "/uploads/listing/x/2-c.jpg", AltText: models.BucketImagesAndVideos}},
	})
	require.NoError(t, err)
	buckets, _ = DecodeBuckets(rec)
	require.Len(t, buckets.ImagesAndVideos, 2)
	assert.Equal(t, "/uploads/listing/x/1-a.jpg", buckets.ImagesAndVideos[0].URL)
}

func TestReplaceSingleSlotDisplacesPrevious(t *testing.T) {
	store := setupRecordStore(t)
	ctx := context.Background()
	agentID := uuid.New()

	rec, err := store.FindOrCreateForAgent(ctx, agentID)
	require.NoError(t, err)

	_, err = store.ReplaceSingleSlot(ctx, rec, models.SlotAgentPhoto, models.FileItem{URL: "/uploads/agent/a/1-old.jpg", AltText: models.SlotAgentPhoto})
	require.NoError(t, err)
	displaced, err := store.ReplaceSingleSlot(ctx, rec, models.SlotAgentPhoto, models.FileItem{URL: "/uploads/agent/a/2-new.jpg", AltText: models.SlotAgentPhoto})
	require.NoError(t, err)

	require.Len(t, displaced, 1)
	assert.Equal(t, "/uploads/agent/a/1-old.jpg", displaced[0].URL)

	items := DecodeAgentImages(rec)
	require.Len(t, items, 1)
	assert.Equal(t, "/uploads/agent/a/2-new.jpg", items[0].URL)
}

func TestReplaceSingleSlotKeepsOtherSlots(t *testing.T) {
	store := setupRecordStore(t)
	ctx := context.Background()
	agentID := uuid.New()

	rec, err := store.FindOrCreateForAgent(ctx, agentID)
	require.NoError(t, err)

	_, err = store.ReplaceSingleSlot(ctx, rec, models.SlotAgentLogo, models.FileItem{URL: "/uploads/agent/a/1-logo.png", AltText: models.SlotAgentLogo})
	require.NoError(t, err)
	_, err = store.ReplaceSingleSlot(ctx, rec, models.SlotAgentPhoto, models.FileItem{URL: "/uploads/agent/a/2-photo.jpg", AltText: models.SlotAgentPhoto})
	require.NoError(t, err)

	items := DecodeAgentImages(rec)
	assert.Len(t, items, 2)
}

func TestRemoveBySlot(t *testing.T) {
	store := setupRecordStore(t)
	ctx := context.Background()
	agentID := uuid.New()

	rec, err := store.FindOrCreateForAgent(ctx, agentID)
	require.NoError(t, err)
	_, err = store.ReplaceSingleSlot(ctx, rec, models.SlotBrokerageLogo, models.FileItem{URL: "/uploads/agent/a/1-b.png", AltText: models.SlotBrokerageLogo})
	require.NoError(t, err)

	removed, err := store.RemoveBySlot(ctx, rec, models.SlotBrokerageLogo)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Empty(t, DecodeAgentImages(rec))

	// Nothing left to remove.
	removed, err = store.RemoveBySlot(ctx, rec, models.SlotBrokerageLogo)
	require.NoError(t, err)
	assert.Nil(t, removed)
}
