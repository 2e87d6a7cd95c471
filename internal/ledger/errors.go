package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned when creating an item or event whose id is taken.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInsufficientStock is returned when an operation would drive an
	// item's pool quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for quantities the operation cannot accept.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrEventHasAllocations is returned when deleting an event that still
	// holds reservations.
	ErrEventHasAllocations = errors.New("event still holds allocations")
)

// DuplicateIDError identifies the collection and id that collided.
type DuplicateIDError struct {
	Kind string // "item" or "event"
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s with id %s already exists", e.Kind, e.ID)
}

// Is reports whether target is ErrDuplicateID.
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// InsufficientStockError carries the amounts involved in a rejected reduction.
type InsufficientStockError struct {
	ItemID    string
	Name      string
	Current   int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: have %d, need %d", e.Name, e.Current, e.Requested)
}

// Is reports whether target is ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
