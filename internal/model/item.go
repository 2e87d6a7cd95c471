package model

import (
	"fmt"
	"time"
)

// DefaultUnit is the unit label used when none is given.
const DefaultUnit = "pieces"

// StockItem is a named, quantified resource in the shared pool.
// Quantity is the unreserved amount; reservations live on events.
type StockItem struct {
	ID        string    `json:"item_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStockItem creates an item with both timestamps set to now.
// No bounds are checked here.
func NewStockItem(id, name string, quantity int, category, unit string) *StockItem {
	if unit == "" {
		unit = DefaultUnit
	}
	now := time.Now()
	return &StockItem{
		ID:        id,
		Name:      name,
		Quantity:  quantity,
		Category:  category,
		Unit:      unit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AdjustQuantity adds delta (which may be negative) to the quantity.
func (i *StockItem) AdjustQuantity(delta int) {
	i.Quantity += delta
	i.UpdatedAt = time.Now()
}

// String renders the item the way the console tools list it.
func (i StockItem) String() string {
	return fmt.Sprintf("%s (%s): %d %s - %s", i.Name, i.ID, i.Quantity, i.Unit, i.Category)
}
