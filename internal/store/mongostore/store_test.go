package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/internal/store"
	"github.com/tournevent/ups/pkg/shipper"
	"go.mongodb.org/mongo-driver/bson"
)

// newIntegrationStore connects to the server named by MONGO_URI and uses a
// throwaway database.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := Connect(ctx, Config{URI: uri, Database: "ups_test_" + uuid.NewString()[:8], Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() {
		_ = s.col.Database().Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func testLabel(tracking string) (store.LabelRecord, store.Attachment) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := store.LabelRecord{
		ShipmentID:                   "SHIP-1",
		Carrier:                      "ups",
		TrackingNumber:               tracking,
		ShipmentIdentificationNumber: tracking + "AA1",
		Cost:                         decimal.RequireFromString("15.50"),
		Currency:                     "USD",
		CreatedAt:                    now,
	}
	att := store.Attachment{Name: tracking + "_" + rec.ShipmentIdentificationNumber + "_.gif", ContentType: "image/gif", Data: []byte("GIF89a"), CreatedAt: now}
	return rec, att
}

func TestDocument_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rec := store.LabelRecord{
		ShipmentID:                   "SHIP-1",
		Carrier:                      "ups",
		TrackingNumber:               "1Z999",
		ShipmentIdentificationNumber: "1Z999AA1",
		Cost:                         decimal.RequireFromString("12.50"),
		Currency:                     "USD",
		CreatedAt:                    now,
	}
	att := store.Attachment{Name: "1Z999_1Z999AA1_.gif", ContentType: "image/gif", Data: []byte("GIF89a"), CreatedAt: now}

	raw, err := bson.Marshal(toDocument(rec, att))
	require.NoError(t, err)

	var doc labelDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got, err := doc.record()
	require.NoError(t, err)
	assert.Equal(t, "SHIP-1", got.ShipmentID)
	assert.Equal(t, "1Z999", got.TrackingNumber)
	assert.True(t, rec.Cost.Equal(got.Cost))
	assert.True(t, now.Equal(got.CreatedAt))

	atts := doc.attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, "SHIP-1", atts[0].ShipmentID)
	assert.Equal(t, []byte("GIF89a"), atts[0].Data)
	assert.NotEmpty(t, atts[0].ID)
}

func TestDocument_UsesShipmentIDAsKey(t *testing.T) {
	raw, err := bson.Marshal(toDocument(store.LabelRecord{ShipmentID: "SHIP-9", Cost: decimal.Zero}, store.Attachment{}))
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "SHIP-9", m["_id"])
}

func TestDocument_InvalidCost(t *testing.T) {
	_, err := labelDocument{ShipmentID: "SHIP-1", Cost: "abc"}.record()
	assert.Error(t, err)
}

func TestStore_SaveLabel_Duplicate(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	rec, att := testLabel("1Z999")
	require.NoError(t, s.SaveLabel(ctx, rec, att))

	rec2, att2 := testLabel("1Z000")
	err := s.SaveLabel(ctx, rec2, att2)

	var dupErr *shipper.DuplicateLabelError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "SHIP-1", dupErr.ShipmentID)
	assert.Equal(t, "1Z999", dupErr.TrackingNumber)

	got, err := s.Label(ctx, "SHIP-1")
	require.NoError(t, err)
	assert.Equal(t, "1Z999", got.TrackingNumber)

	atts, err := s.Attachments(ctx, "SHIP-1")
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "1Z999_1Z999AA1_.gif", atts[0].Name)
}

func TestStore_Label_NotFound(t *testing.T) {
	s := newIntegrationStore(t)

	_, err := s.Label(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	atts, err := s.Attachments(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, atts)
}
