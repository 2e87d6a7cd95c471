package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/erazemk/eventstock/internal/snapshot"
)

func sampleDocument() *snapshot.Document {
	at := snapshot.Timestamp{Time: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	doc := snapshot.NewDocument()
	doc.StockItems["TABLE001"] = snapshot.ItemRecord{
		ItemID: "TABLE001", Name: "Round Table", Quantity: 25,
		Category: "Furniture", Unit: "pieces", CreatedAt: at, UpdatedAt: at,
	}
	doc.Events["EVT002"] = snapshot.EventRecord{
		EventID: "EVT002", Name: "Wedding Reception", Date: "2024-04-20",
		Location: "Grand Ballroom", StockAllocations: map[string]int{"TABLE001": 10},
		CreatedAt: at,
	}
	return doc
}

func TestRecordConversionRoundTrip(t *testing.T) {
	want := sampleDocument()

	got, err := fromRecord(toRecord(want))
	require.NoError(t, err)

	require.Len(t, got.StockItems, 1)
	require.Len(t, got.Events, 1)
	assert.Equal(t, want.StockItems["TABLE001"], got.StockItems["TABLE001"])
	assert.Equal(t, want.Events["EVT002"], got.Events["EVT002"])
}

func TestToRecordCopiesAllocations(t *testing.T) {
	doc := sampleDocument()

	record := toRecord(doc)
	record.Events["EVT002"].StockAllocations["TABLE001"] = 99

	assert.Equal(t, 10, doc.Events["EVT002"].StockAllocations["TABLE001"])
}

func TestFromRecordInitializesAllocations(t *testing.T) {
	record := &snapshotDoc{
		ID:     currentID,
		Events: map[string]eventDoc{"E": {EventID: "E", Name: "Bare"}},
	}

	doc, err := fromRecord(record)
	require.NoError(t, err)

	assert.NotNil(t, doc.Events["E"].StockAllocations)
	assert.NotNil(t, doc.StockItems)
}

func TestRecordKeepsNanosecondsThroughBSON(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC)
	want := sampleDocument()
	item := want.StockItems["TABLE001"]
	item.CreatedAt = snapshot.Timestamp{Time: at}
	item.UpdatedAt = snapshot.Timestamp{Time: at.Add(time.Nanosecond)}
	want.StockItems["TABLE001"] = item

	raw, err := bson.Marshal(toRecord(want))
	require.NoError(t, err)
	var record snapshotDoc
	require.NoError(t, bson.Unmarshal(raw, &record))
	got, err := fromRecord(&record)
	require.NoError(t, err)

	assert.True(t, got.StockItems["TABLE001"].CreatedAt.Equal(at), "created_at = %s", got.StockItems["TABLE001"].CreatedAt)
	assert.True(t, got.StockItems["TABLE001"].UpdatedAt.Equal(at.Add(time.Nanosecond)))
	assert.True(t, got.Events["EVT002"].CreatedAt.Equal(want.Events["EVT002"].CreatedAt.Time))
}

func TestFromRecordRejectsBadTimestamp(t *testing.T) {
	record := &snapshotDoc{
		ID:         currentID,
		StockItems: map[string]itemDoc{"A": {ItemID: "A", CreatedAt: "yesterday"}},
	}

	_, err := fromRecord(record)
	assert.Error(t, err)
}

// TestStoreAgainstServer needs a reachable MongoDB, given by MONGODB_URI.
func TestStoreAgainstServer(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := New(ctx, uri, "eventstock_test")
	require.NoError(t, err)
	s.collName = "ledger_snapshots_" + time.Now().Format("20060102150405")
	t.Cleanup(func() {
		_ = s.collection().Drop(context.Background())
		_ = s.Close(context.Background())
	})

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.NoError(t, s.Save(ctx, sampleDocument()))
	require.NoError(t, s.Save(ctx, sampleDocument()))

	doc, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 25, doc.StockItems["TABLE001"].Quantity)
	assert.Equal(t, 10, doc.Events["EVT002"].StockAllocations["TABLE001"])
	assert.True(t, doc.StockItems["TABLE001"].CreatedAt.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))
}
