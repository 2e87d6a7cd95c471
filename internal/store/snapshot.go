package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/eventstock/internal/snapshot"
)

// snapshotSavedKey marks that a snapshot has been written at least once, so
// an empty ledger can be told apart from a database that never held one.
const snapshotSavedKey = "snapshot_saved_at"

// SaveSnapshot replaces the stored ledger snapshot with doc in a single
// transaction.
func SaveSnapshot(ctx context.Context, db *sql.DB, doc *snapshot.Document) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"event_allocations", "events", "stock_items"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for id, item := range doc.StockItems {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO stock_items (item_id, name, quantity, category, unit, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, item.Name, item.Quantity, item.Category, item.Unit,
			item.CreatedAt.String(), item.UpdatedAt.String(),
		)
		if err != nil {
			return fmt.Errorf("saving item %s: %w", id, err)
		}
	}

	for id, event := range doc.Events {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (event_id, name, date, location, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, event.Name, event.Date, event.Location, event.CreatedAt.String(),
		)
		if err != nil {
			return fmt.Errorf("saving event %s: %w", id, err)
		}
		for itemID, quantity := range event.StockAllocations {
			if quantity <= 0 {
				continue
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO event_allocations (event_id, item_id, quantity) VALUES (?, ?, ?)`,
				id, itemID, quantity,
			)
			if err != nil {
				return fmt.Errorf("saving allocation %s/%s: %w", id, itemID, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		snapshotSavedKey, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("marking snapshot saved: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored ledger snapshot, or nil if none has ever
// been saved.
func LoadSnapshot(ctx context.Context, db *sql.DB) (*snapshot.Document, error) {
	savedAt, err := GetSetting(ctx, db, snapshotSavedKey)
	if err != nil {
		return nil, err
	}
	if savedAt == "" {
		return nil, nil
	}

	doc := snapshot.NewDocument()

	rows, err := db.QueryContext(ctx,
		`SELECT item_id, name, quantity, category, unit, created_at, updated_at FROM stock_items`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec snapshot.ItemRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&rec.ItemID, &rec.Name, &rec.Quantity, &rec.Category, &rec.Unit, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if rec.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("item %s: %w", rec.ItemID, err)
		}
		if rec.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("item %s: %w", rec.ItemID, err)
		}
		doc.StockItems[rec.ItemID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}

	eventRows, err := db.QueryContext(ctx,
		`SELECT event_id, name, date, location, created_at FROM events`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	defer eventRows.Close()

	for eventRows.Next() {
		rec := snapshot.EventRecord{StockAllocations: make(map[string]int)}
		var createdAt string
		if err := eventRows.Scan(&rec.EventID, &rec.Name, &rec.Date, &rec.Location, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if rec.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("event %s: %w", rec.EventID, err)
		}
		doc.Events[rec.EventID] = rec
	}
	if err := eventRows.Err(); err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}

	allocRows, err := db.QueryContext(ctx,
		`SELECT event_id, item_id, quantity FROM event_allocations`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading allocations: %w", err)
	}
	defer allocRows.Close()

	for allocRows.Next() {
		var eventID, itemID string
		var quantity int
		if err := allocRows.Scan(&eventID, &itemID, &quantity); err != nil {
			return nil, fmt.Errorf("scanning allocation: %w", err)
		}
		if rec, ok := doc.Events[eventID]; ok {
			rec.StockAllocations[itemID] = quantity
		}
	}
	return doc, allocRows.Err()
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

// SnapshotStore keeps ledger snapshots in the SQLite database.
type SnapshotStore struct {
	DB *sql.DB
}

// Save implements snapshot.Store.
func (s *SnapshotStore) Save(ctx context.Context, doc *snapshot.Document) error {
	return SaveSnapshot(ctx, s.DB, doc)
}

// Load implements snapshot.Store.
func (s *SnapshotStore) Load(ctx context.Context) (*snapshot.Document, error) {
	return LoadSnapshot(ctx, s.DB)
}
