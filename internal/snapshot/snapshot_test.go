package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(created time.Time) *Document {
	doc := NewDocument()
	doc.StockItems["CHAIR001"] = ItemRecord{
		ItemID:    "CHAIR001",
		Name:      "เก้าอี้พับ / Folding Chair",
		Quantity:  100,
		Category:  "Furniture",
		Unit:      "pieces",
		CreatedAt: Timestamp{created},
		UpdatedAt: Timestamp{created.Add(time.Minute)},
	}
	doc.Events["CONF2026"] = EventRecord{
		EventID:          "CONF2026",
		Name:             "Tech Conference 2026",
		Date:             "2026-03-15",
		Location:         "BITEC Bangkok",
		StockAllocations: map[string]int{"CHAIR001": 100},
		CreatedAt:        Timestamp{created},
	}
	return doc
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339 utc", "2026-03-15T10:20:30Z", time.Date(2026, 3, 15, 10, 20, 30, 0, time.UTC)},
		{"rfc3339 nano offset", "2026-03-15T10:20:30.5+07:00", time.Date(2026, 3, 15, 3, 20, 30, 500000000, time.UTC)},
		{"zone-less micros", "2026-03-15T10:20:30.123456", time.Date(2026, 3, 15, 10, 20, 30, 123456000, time.Local)},
		{"zone-less seconds", "2026-03-15T10:20:30", time.Date(2026, 3, 15, 10, 20, 30, 0, time.Local)},
		{"space separator", "2026-03-15 10:20:30", time.Date(2026, 3, 15, 10, 20, 30, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestEncodeKeepsNonASCII(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleDocument(time.Now())))

	out := buf.String()
	assert.Contains(t, out, "เก้าอี้พับ")
	assert.NotContains(t, out, `\u0e40`)
	assert.Contains(t, out, "\n  \"events\"")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	created := time.Date(2026, 1, 10, 9, 0, 0, 123456789, time.UTC)
	doc := sampleDocument(created)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))

	got, err := Decode(&buf)
	require.NoError(t, err)

	item := got.StockItems["CHAIR001"]
	assert.Equal(t, doc.StockItems["CHAIR001"].Name, item.Name)
	assert.Equal(t, 100, item.Quantity)
	assert.True(t, created.Equal(item.CreatedAt.Time))
	assert.True(t, created.Add(time.Minute).Equal(item.UpdatedAt.Time))

	event := got.Events["CONF2026"]
	assert.Equal(t, map[string]int{"CHAIR001": 100}, event.StockAllocations)
	assert.True(t, created.Equal(event.CreatedAt.Time))
}

func TestDecodeLegacyDocument(t *testing.T) {
	legacy := `{
  "stock_items": {
    "MIC001": {"item_id": "MIC001", "name": "Microphone", "quantity": 25,
               "category": "Audio Equipment", "created_at": "2026-01-15T10:20:30.123456"}
  },
  "events": {
    "WEDDING001": {"event_id": "WEDDING001", "name": "Wedding", "date": "2026-04-20",
                   "location": "Grand Palace Hotel"}
  }
}`
	doc, err := Decode(strings.NewReader(legacy))
	require.NoError(t, err)

	item := doc.StockItems["MIC001"]
	assert.Empty(t, item.Unit)
	assert.False(t, item.CreatedAt.IsZero())
	assert.True(t, item.UpdatedAt.IsZero())

	event := doc.Events["WEDDING001"]
	assert.NotNil(t, event.StockAllocations)
	assert.True(t, event.CreatedAt.IsZero())
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"stock_items": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding snapshot")
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"garbage", `{"stock_items":{},"events":{}} this is not json`},
		{"second document", `{"stock_items":{}}{"events":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "decoding snapshot")
		})
	}
}

func TestDecodeAllowsTrailingWhitespace(t *testing.T) {
	doc, err := Decode(strings.NewReader("{\"stock_items\":{},\"events\":{}}\n\n  "))
	require.NoError(t, err)
	assert.Empty(t, doc.StockItems)
}

func TestDecodeBadTimestamp(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"stock_items": {"A": {"item_id": "A", "created_at": "soon"}}}`))
	assert.Error(t, err)
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	doc, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFileStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	store := NewFileStore(path)
	ctx := context.Background()

	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, sampleDocument(created)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Len(t, doc.StockItems, 1)
	assert.Len(t, doc.Events, 1)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestFileStoreMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestNewFileStoreDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultFilename, NewFileStore("").Path)
}
