package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/eventstock/internal/snapshot"
)

type failingStore struct{ err error }

func (s failingStore) Save(context.Context, *snapshot.Document) error { return s.err }

func (s failingStore) Load(context.Context) (*snapshot.Document, error) { return nil, s.err }

// gatedStore blocks its first Save until release is closed and keeps the
// last document written.
type gatedStore struct {
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
	last  *snapshot.Document
}

func newGatedStore() *gatedStore {
	return &gatedStore{entered: make(chan struct{}), release: make(chan struct{})}
}

func (s *gatedStore) Save(_ context.Context, doc *snapshot.Document) error {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()

	if first {
		close(s.entered)
		<-s.release
	}

	s.mu.Lock()
	s.last = doc
	s.mu.Unlock()
	return nil
}

func (s *gatedStore) Load(context.Context) (*snapshot.Document, error) { return nil, nil }

func (s *gatedStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func populatedLedger(t *testing.T) *Ledger {
	t.Helper()

	l := New()
	items := []struct {
		id, name, category string
		qty                int
	}{
		{"CHAIR001", "เก้าอี้พับ / Folding Chair", "Furniture", 200},
		{"TABLE001", "โต๊ะกลม / Round Table", "Furniture", 80},
		{"MIC001", "ไมโครโฟน / Microphone", "Audio Equipment", 25},
	}
	for _, it := range items {
		_, err := l.AddItem(it.id, it.name, it.qty, it.category, "pieces")
		require.NoError(t, err)
	}
	_, err := l.CreateEvent("CONF2026", "งานประชุมเทคโนโลยี / Tech Conference 2026", "2026-03-15", "BITEC Bangkok")
	require.NoError(t, err)
	_, err = l.CreateEvent("WEDDING001", "Wedding Ceremony", "2026-04-20", "Grand Palace Hotel")
	require.NoError(t, err)

	for _, a := range []struct {
		event, item string
		qty         int
	}{
		{"CONF2026", "CHAIR001", 100},
		{"CONF2026", "MIC001", 10},
		{"WEDDING001", "CHAIR001", 50},
		{"WEDDING001", "TABLE001", 15},
	} {
		ok, err := l.AllocateStock(a.event, a.item, a.qty)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return l
}

func TestSnapshotRoundTripThroughFile(t *testing.T) {
	original := populatedLedger(t)
	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), snapshot.DefaultFilename))
	ctx := context.Background()

	require.NoError(t, original.SaveSnapshot(ctx, store))

	restored := New()
	ok, err := restored.LoadSnapshot(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)

	wantItems := original.ListItems("")
	gotItems := restored.ListItems("")
	require.Len(t, gotItems, len(wantItems))
	for i, want := range wantItems {
		got := gotItems[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Quantity, got.Quantity)
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.Unit, got.Unit)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at for %s", want.ID)
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updated_at for %s", want.ID)
	}

	wantEvents := original.ListEvents()
	gotEvents := restored.ListEvents()
	require.Len(t, gotEvents, len(wantEvents))
	for i, want := range wantEvents {
		got := gotEvents[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Date, got.Date)
		assert.Equal(t, want.Location, got.Location)
		assert.Equal(t, want.Allocations, got.Allocations)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at for %s", want.ID)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	l := New()
	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), "none.json"))

	ok, err := l.LoadSnapshot(context.Background(), store)
	require.NoError(t, err)
	assert.False(t, ok)

	items, events := l.Stats()
	assert.Zero(t, items)
	assert.Zero(t, events)
}

func TestLoadSnapshotMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"stock_items": {`), 0o644))

	_, err := New().LoadSnapshot(context.Background(), snapshot.NewFileStore(path))
	assert.Error(t, err)
}

func TestLoadSnapshotIsAdditive(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), snapshot.DefaultFilename))
	require.NoError(t, populatedLedger(t).SaveSnapshot(ctx, store))

	l := New()
	_, err := l.AddItem("SCREEN001", "Screen", 15, "Visual Equipment", "")
	require.NoError(t, err)

	ok, err := l.LoadSnapshot(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)

	items, events := l.Stats()
	assert.Equal(t, 4, items)
	assert.Equal(t, 2, events)

	_, err = l.LoadSnapshot(ctx, store)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestRestoreDuplicateAppliesNothing(t *testing.T) {
	doc := populatedLedger(t).Snapshot()

	l := New()
	_, err := l.CreateEvent("WEDDING001", "Existing", "", "")
	require.NoError(t, err)

	err = l.Restore(doc)
	require.ErrorIs(t, err, ErrDuplicateID)

	items, events := l.Stats()
	assert.Zero(t, items)
	assert.Equal(t, 1, events)
	assert.Equal(t, "Existing", l.GetEvent("WEDDING001").Name)
}

func TestRestoreDefaultsMissingFields(t *testing.T) {
	created := time.Date(2025, 12, 1, 8, 30, 0, 0, time.UTC)
	doc := snapshot.NewDocument()
	doc.StockItems["MIC001"] = snapshot.ItemRecord{
		Name:      "Microphone",
		Quantity:  25,
		Category:  "Audio Equipment",
		CreatedAt: snapshot.Timestamp{Time: created},
	}
	doc.Events["E1"] = snapshot.EventRecord{
		Name:             "Event",
		StockAllocations: map[string]int{"MIC001": 5, "GONE": 0},
	}

	l := New()
	require.NoError(t, l.Restore(doc))

	item := l.GetItem("MIC001")
	require.NotNil(t, item)
	assert.Equal(t, "MIC001", item.ID)
	assert.Equal(t, "pieces", item.Unit)
	assert.True(t, created.Equal(item.CreatedAt))
	assert.False(t, item.UpdatedAt.IsZero())

	event := l.GetEvent("E1")
	require.NotNil(t, event)
	assert.Equal(t, map[string]int{"MIC001": 5}, event.Allocations)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRestoreRejectsNegativeQuantity(t *testing.T) {
	doc := snapshot.NewDocument()
	doc.StockItems["BAD"] = snapshot.ItemRecord{Name: "Bad", Quantity: -3}

	l := New()
	assert.ErrorIs(t, l.Restore(doc), ErrInvalidQuantity)
	assert.Nil(t, l.GetItem("BAD"))
}

func TestSnapshotStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	l := populatedLedger(t)

	err := l.SaveSnapshot(context.Background(), failingStore{err: boom})
	assert.ErrorIs(t, err, boom)

	ok, err := New().LoadSnapshot(context.Background(), failingStore{err: boom})
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestSnapshotIsDetached(t *testing.T) {
	l := populatedLedger(t)
	doc := l.Snapshot()

	rec := doc.Events["CONF2026"]
	rec.StockAllocations["CHAIR001"] = 1

	assert.Equal(t, 100, l.GetEvent("CONF2026").Reserved("CHAIR001"))
}

func TestSaveSnapshotSerializesWrites(t *testing.T) {
	l := New()
	store := newGatedStore()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, l.SaveSnapshot(context.Background(), store))
	}()
	<-store.entered

	_, err := l.AddItem("CHAIR001", "Folding Chair", 200, "Furniture", "pieces")
	require.NoError(t, err)
	go func() {
		defer wg.Done()
		assert.NoError(t, l.SaveSnapshot(context.Background(), store))
	}()

	// The second save waits for the first instead of reaching the store.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, store.Calls())

	close(store.release)
	wg.Wait()

	assert.Equal(t, 2, store.Calls())
	require.NotNil(t, store.last)
	assert.Len(t, store.last.StockItems, 1)
}
