package model

// AllocatedItem is one resolved reservation in an event summary.
type AllocatedItem struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// EventSummary is an event together with its resolved reservations.
// Reservations whose item no longer exists are left out.
type EventSummary struct {
	Event          Event           `json:"event"`
	AllocatedItems []AllocatedItem `json:"allocated_items"`
}
