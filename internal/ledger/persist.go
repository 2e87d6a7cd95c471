package ledger

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/erazemk/eventstock/internal/model"
	"github.com/erazemk/eventstock/internal/snapshot"
)

// Snapshot returns the ledger's full state as a flat document.
func (l *Ledger) Snapshot() *snapshot.Document {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc := snapshot.NewDocument()
	for id, item := range l.items {
		doc.StockItems[id] = snapshot.ItemRecord{
			ItemID:    item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Category:  item.Category,
			Unit:      item.Unit,
			CreatedAt: snapshot.Timestamp{Time: item.CreatedAt},
			UpdatedAt: snapshot.Timestamp{Time: item.UpdatedAt},
		}
	}
	for id, event := range l.events {
		doc.Events[id] = snapshot.EventRecord{
			EventID:          event.ID,
			Name:             event.Name,
			Date:             event.Date,
			Location:         event.Location,
			StockAllocations: maps.Clone(event.Allocations),
			CreatedAt:        snapshot.Timestamp{Time: event.CreatedAt},
		}
	}
	return doc
}

// Restore adds every item and event in doc to the ledger, keeping the
// timestamps recorded in the document. Existing state is not cleared, so an
// id already present fails with ErrDuplicateID. The whole document is
// checked before anything is added.
func (l *Ledger) Restore(doc *snapshot.Document) error {
	if doc == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	itemIDs := slices.Sorted(maps.Keys(doc.StockItems))
	eventIDs := slices.Sorted(maps.Keys(doc.Events))

	for _, id := range itemIDs {
		if _, ok := l.items[id]; ok {
			return &DuplicateIDError{Kind: "item", ID: id}
		}
		if q := doc.StockItems[id].Quantity; q < 0 {
			return fmt.Errorf("%w: item %s has quantity %d", ErrInvalidQuantity, id, q)
		}
	}
	for _, id := range eventIDs {
		if _, ok := l.events[id]; ok {
			return &DuplicateIDError{Kind: "event", ID: id}
		}
	}

	for _, id := range itemIDs {
		rec := doc.StockItems[id]
		item := model.NewStockItem(id, rec.Name, rec.Quantity, rec.Category, rec.Unit)
		if !rec.CreatedAt.IsZero() {
			item.CreatedAt = rec.CreatedAt.Time
		}
		if !rec.UpdatedAt.IsZero() {
			item.UpdatedAt = rec.UpdatedAt.Time
		}
		l.items[id] = item
	}
	for _, id := range eventIDs {
		rec := doc.Events[id]
		event := model.NewEvent(id, rec.Name, rec.Date, rec.Location)
		for itemID, quantity := range rec.StockAllocations {
			if quantity > 0 {
				event.Allocations[itemID] = quantity
			}
		}
		if !rec.CreatedAt.IsZero() {
			event.CreatedAt = rec.CreatedAt.Time
		}
		l.events[id] = event
	}
	return nil
}

// SaveSnapshot writes the ledger's state to store. Saves are serialized, so
// a document built later is never overwritten by an earlier one. The state
// lock is released before the store is written.
func (l *Ledger) SaveSnapshot(ctx context.Context, store snapshot.Store) error {
	l.saveMu.Lock()
	defer l.saveMu.Unlock()

	if err := store.Save(ctx, l.Snapshot()); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores state from store. It reports false, and changes
// nothing, when the store holds no prior state.
func (l *Ledger) LoadSnapshot(ctx context.Context, store snapshot.Store) (bool, error) {
	doc, err := store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("loading snapshot: %w", err)
	}
	if doc == nil {
		return false, nil
	}
	if err := l.Restore(doc); err != nil {
		return false, err
	}
	return true, nil
}
