// Package ledger owns the stock items and events and every rule for moving
// quantity between the shared pool and event reservations.
//
// A Ledger is safe for concurrent use. Each operation holds one lock for its
// validation and mutation, so an allocation's two writes are never observed
// apart. Values handed out are copies of the ledger's state.
package ledger

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/erazemk/eventstock/internal/model"
)

// DefaultLowStockThreshold is the threshold used when callers have no
// preference. Items strictly below it are reported.
const DefaultLowStockThreshold = 10

// Ledger is the aggregate root for items and events.
type Ledger struct {
	mu     sync.Mutex
	saveMu sync.Mutex
	items  map[string]*model.StockItem
	events map[string]*model.Event
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		items:  make(map[string]*model.StockItem),
		events: make(map[string]*model.Event),
	}
}

// AddItem registers a new stock item. The unit defaults to "pieces".
func (l *Ledger) AddItem(id, name string, quantity int, category, unit string) (*model.StockItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[id]; ok {
		return nil, &DuplicateIDError{Kind: "item", ID: id}
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: initial quantity %d is negative", ErrInvalidQuantity, quantity)
	}

	item := model.NewStockItem(id, name, quantity, category, unit)
	l.items[id] = item
	c := *item
	return &c, nil
}

// GetItem returns the item with id, or nil if there is none.
func (l *Ledger) GetItem(id string) *model.StockItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[id]
	if !ok {
		return nil
	}
	c := *item
	return &c
}

// UpdateQuantity adds delta to an item's pool quantity. It reports false if
// the item does not exist and fails without changing anything if the result
// would be negative or overflow.
func (l *Ledger) UpdateQuantity(id string, delta int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[id]
	if !ok {
		return false, nil
	}
	if delta > 0 && item.Quantity > math.MaxInt-delta {
		return false, fmt.Errorf("%w: adding %d to %s would overflow", ErrInvalidQuantity, delta, id)
	}
	if item.Quantity+delta < 0 {
		return false, &InsufficientStockError{
			ItemID:    item.ID,
			Name:      item.Name,
			Current:   item.Quantity,
			Requested: -delta,
		}
	}

	item.AdjustQuantity(delta)
	return true, nil
}

// RemoveItem deletes an item. Reservations that reference it are kept and
// ignored from then on.
func (l *Ledger) RemoveItem(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[id]; !ok {
		return false
	}
	delete(l.items, id)
	return true
}

// ListItems returns all items ordered by id, limited to category when it is
// not empty.
func (l *Ledger) ListItems(category string) []model.StockItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.collectItems(func(item *model.StockItem) bool {
		return category == "" || item.Category == category
	})
}

// LowStock returns the items whose pool quantity is below threshold.
func (l *Ledger) LowStock(threshold int) []model.StockItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.collectItems(func(item *model.StockItem) bool {
		return item.Quantity < threshold
	})
}

func (l *Ledger) collectItems(keep func(*model.StockItem) bool) []model.StockItem {
	items := make([]model.StockItem, 0, len(l.items))
	for _, item := range l.items {
		if keep(item) {
			items = append(items, *item)
		}
	}
	slices.SortFunc(items, func(a, b model.StockItem) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return items
}

// CreateEvent registers a new event with no reservations. The date is free
// text and is not validated.
func (l *Ledger) CreateEvent(id, name, date, location string) (*model.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.events[id]; ok {
		return nil, &DuplicateIDError{Kind: "event", ID: id}
	}

	event := model.NewEvent(id, name, date, location)
	l.events[id] = event
	return event.Clone(), nil
}

// GetEvent returns the event with id, or nil if there is none.
func (l *Ledger) GetEvent(id string) *model.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	event, ok := l.events[id]
	if !ok {
		return nil
	}
	return event.Clone()
}

// ListEvents returns all events ordered by id.
func (l *Ledger) ListEvents() []model.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := make([]model.Event, 0, len(l.events))
	for _, event := range l.events {
		events = append(events, *event.Clone())
	}
	slices.SortFunc(events, func(a, b model.Event) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return events
}

// DeleteEvent removes an event. Events that still hold reservations must be
// emptied first so no quantity leaves the books.
func (l *Ledger) DeleteEvent(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	event, ok := l.events[id]
	if !ok {
		return false, nil
	}
	if n := len(event.Allocations); n > 0 {
		return false, fmt.Errorf("%w: %s has %d reservations", ErrEventHasAllocations, id, n)
	}
	delete(l.events, id)
	return true, nil
}

// AllocateStock moves quantity of an item from the pool into an event's
// reservation. It reports false if either the event or the item is unknown.
func (l *Ledger) AllocateStock(eventID, itemID string, quantity int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	event, ok := l.events[eventID]
	if !ok {
		return false, nil
	}
	item, ok := l.items[itemID]
	if !ok {
		return false, nil
	}
	if quantity <= 0 {
		return false, fmt.Errorf("%w: allocation of %d", ErrInvalidQuantity, quantity)
	}
	if event.Reserved(itemID) > math.MaxInt-quantity {
		return false, fmt.Errorf("%w: reservation of %s for %s would overflow", ErrInvalidQuantity, itemID, eventID)
	}
	if item.Quantity < quantity {
		return false, &InsufficientStockError{
			ItemID:    item.ID,
			Name:      item.Name,
			Current:   item.Quantity,
			Requested: quantity,
		}
	}

	item.AdjustQuantity(-quantity)
	event.Reserve(itemID, quantity)
	return true, nil
}

// DeallocateStock returns quantity of an item from an event's reservation to
// the pool. It reports false if either the event or the item is unknown.
//
// The pool is credited with the full quantity even when the event holds less
// than that; the reservation is then removed rather than going negative.
func (l *Ledger) DeallocateStock(eventID, itemID string, quantity int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	event, ok := l.events[eventID]
	if !ok {
		return false, nil
	}
	item, ok := l.items[itemID]
	if !ok {
		return false, nil
	}
	if quantity <= 0 {
		return false, fmt.Errorf("%w: deallocation of %d", ErrInvalidQuantity, quantity)
	}
	if item.Quantity > math.MaxInt-quantity {
		return false, fmt.Errorf("%w: returning %d to %s would overflow", ErrInvalidQuantity, quantity, itemID)
	}

	item.AdjustQuantity(quantity)
	event.Release(itemID, quantity)
	return true, nil
}

// EventSummary returns the event with its reservations resolved against the
// current items, or nil if the event is unknown. Reservations for removed
// items are skipped.
func (l *Ledger) EventSummary(eventID string) *model.EventSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	event, ok := l.events[eventID]
	if !ok {
		return nil
	}

	summary := &model.EventSummary{
		Event:          *event.Clone(),
		AllocatedItems: []model.AllocatedItem{},
	}
	for itemID, quantity := range event.Allocations {
		item, ok := l.items[itemID]
		if !ok {
			continue
		}
		summary.AllocatedItems = append(summary.AllocatedItems, model.AllocatedItem{
			ItemID:   itemID,
			Name:     item.Name,
			Quantity: quantity,
			Unit:     item.Unit,
		})
	}
	slices.SortFunc(summary.AllocatedItems, func(a, b model.AllocatedItem) int {
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	return summary
}

// Totals returns the pool quantity of an item and the sum reserved for it
// across all events.
func (l *Ledger) Totals(itemID string) (pool, reserved int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[itemID]
	if !ok {
		return 0, 0, false
	}
	for _, event := range l.events {
		reserved += event.Reserved(itemID)
	}
	return item.Quantity, reserved, true
}

// Stats returns the number of items and events held.
func (l *Ledger) Stats() (items, events int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.items), len(l.events)
}
