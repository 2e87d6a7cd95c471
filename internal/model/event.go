package model

import (
	"maps"
	"time"
)

// Event is a named occasion that reserves item quantities out of the pool.
// Every value in Allocations is positive.
type Event struct {
	ID          string         `json:"event_id"`
	Name        string         `json:"name"`
	Date        string         `json:"date"`
	Location    string         `json:"location"`
	Allocations map[string]int `json:"stock_allocations"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewEvent creates an event with no reservations.
func NewEvent(id, name, date, location string) *Event {
	return &Event{
		ID:          id,
		Name:        name,
		Date:        date,
		Location:    location,
		Allocations: make(map[string]int),
		CreatedAt:   time.Now(),
	}
}

// Reserve adds quantity to the reservation for itemID.
// Availability is the caller's concern.
func (e *Event) Reserve(itemID string, quantity int) {
	if e.Allocations == nil {
		e.Allocations = make(map[string]int)
	}
	e.Allocations[itemID] += quantity
}

// Release subtracts quantity from the reservation for itemID. A missing
// reservation is left alone; a reservation that drops to zero or below is
// removed rather than going negative.
func (e *Event) Release(itemID string, quantity int) {
	current, ok := e.Allocations[itemID]
	if !ok {
		return
	}
	if current-quantity <= 0 {
		delete(e.Allocations, itemID)
		return
	}
	e.Allocations[itemID] = current - quantity
}

// Reserved returns the quantity of itemID held by the event.
func (e *Event) Reserved(itemID string) int {
	return e.Allocations[itemID]
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	c := *e
	c.Allocations = maps.Clone(e.Allocations)
	if c.Allocations == nil {
		c.Allocations = make(map[string]int)
	}
	return &c
}

// String renders the event the way the console tools list it.
func (e Event) String() string {
	return e.Name + " (" + e.ID + ") - " + e.Date + " at " + e.Location
}
