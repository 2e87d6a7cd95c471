// Package snapshot defines the persisted form of the ledger: a flat document
// with items and events keyed by id, its JSON encoding, and the stores that
// hold it between runs.
package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultFilename is the snapshot file used when none is configured.
const DefaultFilename = "stock_data.json"

// Document is the full serialized state of the ledger.
type Document struct {
	StockItems map[string]ItemRecord  `json:"stock_items"`
	Events     map[string]EventRecord `json:"events"`
}

// ItemRecord is the persisted form of a stock item.
type ItemRecord struct {
	ItemID    string    `json:"item_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// EventRecord is the persisted form of an event.
type EventRecord struct {
	EventID          string         `json:"event_id"`
	Name             string         `json:"name"`
	Date             string         `json:"date"`
	Location         string         `json:"location"`
	StockAllocations map[string]int `json:"stock_allocations"`
	CreatedAt        Timestamp      `json:"created_at"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		StockItems: make(map[string]ItemRecord),
		Events:     make(map[string]EventRecord),
	}
}

// Store persists and retrieves snapshot documents.
//
// Load returns a nil document and a nil error when the store holds no prior
// state.
type Store interface {
	Save(ctx context.Context, doc *Document) error
	Load(ctx context.Context) (*Document, error)
}

// Timestamp is a point in time written as ISO-8601 text.
type Timestamp struct {
	time.Time
}

// Zone-less layouts accepted when reading timestamps. Older snapshot files
// carry local wall-clock times without an offset.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses an ISO-8601 timestamp with or without a zone offset.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: not ISO-8601", s)
}

// String formats the timestamp as RFC 3339 with nanoseconds.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Null and empty strings leave
// the timestamp zero.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("parsing timestamp %s: expected string", s)
	}
	parsed, err := ParseTimestamp(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
