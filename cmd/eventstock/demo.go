package main

import (
	"context"
	"fmt"
	"io"

	"github.com/erazemk/eventstock/internal/config"
	"github.com/erazemk/eventstock/internal/ledger"
	"github.com/erazemk/eventstock/internal/snapshot"
)

// demoLowStockThreshold is the threshold the demo reports against.
const demoLowStockThreshold = 20

type demoItem struct {
	id, name string
	quantity int
	category string
}

type demoAllocation struct {
	eventID, itemID string
	quantity        int
}

var (
	demoItems = []demoItem{
		{"CHAIR001", "เก้าอี้พับ / Folding Chair", 200, "Furniture"},
		{"TABLE001", "โต๊ะกลม / Round Table", 80, "Furniture"},
		{"MIC001", "ไมโครโฟน / Microphone", 25, "Audio Equipment"},
		{"PROJ001", "เครื่องฉาย / Projector", 15, "Visual Equipment"},
		{"SCREEN001", "จอภาพ / Screen", 15, "Visual Equipment"},
	}

	demoAllocations = []demoAllocation{
		{"CONF2026", "CHAIR001", 100},
		{"CONF2026", "TABLE001", 30},
		{"CONF2026", "MIC001", 10},
		{"CONF2026", "PROJ001", 5},
		{"CONF2026", "SCREEN001", 5},
		{"WEDDING001", "CHAIR001", 50},
		{"WEDDING001", "TABLE001", 15},
	}
)

// seedDemo fills l with the sample conference and wedding.
func seedDemo(l *ledger.Ledger) error {
	for _, it := range demoItems {
		if _, err := l.AddItem(it.id, it.name, it.quantity, it.category, "pieces"); err != nil {
			return err
		}
	}
	if _, err := l.CreateEvent("CONF2026", "งานประชุมเทคโนโลยี / Tech Conference 2026", "2026-03-15", "BITEC Bangkok"); err != nil {
		return err
	}
	if _, err := l.CreateEvent("WEDDING001", "งานแต่งงาน / Wedding Ceremony", "2026-04-20", "Grand Palace Hotel"); err != nil {
		return err
	}
	for _, a := range demoAllocations {
		ok, err := l.AllocateStock(a.eventID, a.itemID, a.quantity)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("allocating %s to %s: unknown event or item", a.itemID, a.eventID)
		}
	}
	return nil
}

// runDemo seeds a fresh ledger, prints what it holds and writes it to the
// configured snapshot file.
func runDemo(cfg *config.Config, w io.Writer) error {
	l := ledger.New()
	if err := seedDemo(l); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}

	fmt.Fprintln(w, "Stock items:")
	for _, item := range l.ListItems("") {
		fmt.Fprintf(w, "  - %s\n", item)
	}

	fmt.Fprintln(w, "\nEvents:")
	for _, event := range l.ListEvents() {
		fmt.Fprintf(w, "  - %s\n", event)
	}

	summary := l.EventSummary("CONF2026")
	fmt.Fprintf(w, "\n%s summary:\n", summary.Event.Name)
	fmt.Fprintf(w, "  Date: %s\n  Location: %s\n", summary.Event.Date, summary.Event.Location)
	for _, a := range summary.AllocatedItems {
		fmt.Fprintf(w, "  - %s: %d %s\n", a.Name, a.Quantity, a.Unit)
	}

	fmt.Fprintf(w, "\nLow stock (threshold %d):\n", demoLowStockThreshold)
	low := l.LowStock(demoLowStockThreshold)
	if len(low) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, item := range low {
		fmt.Fprintf(w, "  ! %s\n", item)
	}

	store := snapshot.NewFileStore(cfg.Storage.SnapshotFile)
	if err := l.SaveSnapshot(context.Background(), store); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nSnapshot written to %s\n", store.Path)
	return nil
}
