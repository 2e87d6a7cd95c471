// Package mongostore keeps ledger snapshots in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/eventstock/internal/snapshot"
)

// DefaultCollection is the collection snapshots are written to.
const DefaultCollection = "ledger_snapshots"

// currentID is the _id of the single snapshot document.
const currentID = "current"

// Timestamps are kept as RFC 3339 strings. BSON dates only hold
// milliseconds and the ledger records nanoseconds.
type itemDoc struct {
	ItemID    string    `bson:"item_id"`
	Name      string    `bson:"name"`
	Quantity  int       `bson:"quantity"`
	Category  string    `bson:"category"`
	Unit      string `bson:"unit,omitempty"`
	CreatedAt string `bson:"created_at"`
	UpdatedAt string `bson:"updated_at"`
}

type eventDoc struct {
	EventID          string         `bson:"event_id"`
	Name             string         `bson:"name"`
	Date             string         `bson:"date"`
	Location         string         `bson:"location"`
	StockAllocations map[string]int `bson:"stock_allocations"`
	CreatedAt        string         `bson:"created_at"`
}

type snapshotDoc struct {
	ID         string              `bson:"_id"`
	StockItems map[string]itemDoc  `bson:"stock_items"`
	Events     map[string]eventDoc `bson:"events"`
	SavedAt    time.Time           `bson:"saved_at"`
}

// Store implements snapshot.Store on MongoDB.
type Store struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// New connects to MongoDB at uri and verifies the connection.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &Store{
		client:   client,
		dbName:   dbName,
		collName: DefaultCollection,
	}, nil
}

func (s *Store) collection() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(s.collName)
}

// Save replaces the stored snapshot with doc.
func (s *Store) Save(ctx context.Context, doc *snapshot.Document) error {
	record := toRecord(doc)
	record.SavedAt = time.Now().UTC()

	_, err := s.collection().ReplaceOne(ctx,
		bson.M{"_id": currentID}, record,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot to mongodb: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil if none has been saved.
func (s *Store) Load(ctx context.Context) (*snapshot.Document, error) {
	var record snapshotDoc
	err := s.collection().FindOne(ctx, bson.M{"_id": currentID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot from mongodb: %w", err)
	}
	doc, err := fromRecord(&record)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot from mongodb: %w", err)
	}
	return doc, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toRecord(doc *snapshot.Document) *snapshotDoc {
	record := &snapshotDoc{
		ID:         currentID,
		StockItems: make(map[string]itemDoc, len(doc.StockItems)),
		Events:     make(map[string]eventDoc, len(doc.Events)),
	}
	for id, item := range doc.StockItems {
		record.StockItems[id] = itemDoc{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Category:  item.Category,
			Unit:      item.Unit,
			CreatedAt: item.CreatedAt.String(),
			UpdatedAt: item.UpdatedAt.String(),
		}
	}
	for id, event := range doc.Events {
		allocations := make(map[string]int, len(event.StockAllocations))
		for itemID, qty := range event.StockAllocations {
			allocations[itemID] = qty
		}
		record.Events[id] = eventDoc{
			EventID:          event.EventID,
			Name:             event.Name,
			Date:             event.Date,
			Location:         event.Location,
			StockAllocations: allocations,
			CreatedAt:        event.CreatedAt.String(),
		}
	}
	return record
}

func fromRecord(record *snapshotDoc) (*snapshot.Document, error) {
	doc := snapshot.NewDocument()
	for id, item := range record.StockItems {
		createdAt, err := parseTimestamp(item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", id, err)
		}
		updatedAt, err := parseTimestamp(item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", id, err)
		}
		doc.StockItems[id] = snapshot.ItemRecord{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Category:  item.Category,
			Unit:      item.Unit,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		}
	}
	for id, event := range record.Events {
		createdAt, err := parseTimestamp(event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", id, err)
		}
		allocations := event.StockAllocations
		if allocations == nil {
			allocations = make(map[string]int)
		}
		doc.Events[id] = snapshot.EventRecord{
			EventID:          event.EventID,
			Name:             event.Name,
			Date:             event.Date,
			Location:         event.Location,
			StockAllocations: allocations,
			CreatedAt:        createdAt,
		}
	}
	return doc, nil
}

func parseTimestamp(s string) (snapshot.Timestamp, error) {
	if s == "" {
		return snapshot.Timestamp{}, nil
	}
	t, err := snapshot.ParseTimestamp(s)
	if err != nil {
		return snapshot.Timestamp{}, err
	}
	return snapshot.Timestamp{Time: t}, nil
}
