package model

import "testing"

func TestNewStockItemDefaultsUnit(t *testing.T) {
	item := NewStockItem("CHAIR001", "Folding Chair", 200, "Furniture", "")
	if item.Unit != DefaultUnit {
		t.Errorf("expected unit %q, got %q", DefaultUnit, item.Unit)
	}
	if !item.CreatedAt.Equal(item.UpdatedAt) {
		t.Error("expected created_at and updated_at to match on creation")
	}
}

func TestAdjustQuantity(t *testing.T) {
	item := NewStockItem("MIC001", "Microphone", 25, "Audio Equipment", "pieces")
	before := item.UpdatedAt

	item.AdjustQuantity(-30)
	if item.Quantity != -5 {
		t.Errorf("expected quantity -5, got %d", item.Quantity)
	}
	if item.UpdatedAt.Before(before) {
		t.Error("expected updated_at to move forward")
	}
}

func TestStockItemString(t *testing.T) {
	item := NewStockItem("TABLE001", "Round Table", 80, "Furniture", "pieces")
	want := "Round Table (TABLE001): 80 pieces - Furniture"
	if got := item.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
