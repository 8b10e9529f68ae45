package store

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/prodline/internal/clock"
	slotdomain "github.com/smallbiznis/prodline/internal/slot/domain"
	slotrepo "github.com/smallbiznis/prodline/internal/slot/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type note struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

var dbSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", dbSeq)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&slotdomain.Slot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func newTestStore(t *testing.T) *Store[note] {
	t.Helper()
	gdb := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return New[note]("notes", gdb, slotrepo.Provide(), clk, zap.NewNop())
}

func TestListEmptySlot(t *testing.T) {
	s := newTestStore(t)

	items, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %d items", len(items))
	}
}

func TestInsertPrependOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, note{ID: "a", Name: "first"}, Prepend); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	items, err := s.Insert(ctx, note{ID: "b", Name: "second"}, Prepend)
	if err != nil {
		t.Fatalf("insert b: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("unexpected order: %v", items)
	}
}

func TestInsertAppendOrdersOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, note{ID: "a"}, Append); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	items, err := s.Insert(ctx, note{ID: "b"}, Append)
	if err != nil {
		t.Fatalf("insert b: %v", err)
	}

	if items[0].ID != "a" || items[1].ID != "b" {
		t.Fatalf("unexpected order: %v", items)
	}
}

func TestRoundTripPreservesOrderAndFields(t *testing.T) {
	gdb := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	repo := slotrepo.Provide()
	ctx := context.Background()

	writer := New[note]("notes", gdb, repo, clk, zap.NewNop())
	want := []note{
		{ID: "n1", Name: "bolts", Qty: 40},
		{ID: "n2", Name: "nuts", Qty: 7},
		{ID: "n3", Name: "washers", Qty: 0},
	}
	if _, err := writer.Replace(ctx, want); err != nil {
		t.Fatalf("replace: %v", err)
	}

	// A fresh store over the same slot must see the committed list.
	reader := New[note]("notes", gdb, repo, clk, zap.NewNop())
	got, err := reader.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestUpdateKeepsPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Replace(ctx, []note{{ID: "a"}, {ID: "b"}, {ID: "c"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	items, err := s.Update(ctx,
		func(n note) bool { return n.ID == "b" },
		func(n note) note { n.Qty = 99; return n },
	)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if items[1].ID != "b" || items[1].Qty != 99 {
		t.Fatalf("update did not keep position: %v", items)
	}
}

func TestUpdateMissReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, note{ID: "a"}, Append); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Update(ctx,
		func(n note) bool { return n.ID == "zz" },
		func(n note) note { return n },
	); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertMergesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Replace(ctx, []note{{ID: "a", Qty: 1}, {ID: "b", Qty: 2}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	items, err := s.Upsert(ctx,
		func(n note) bool { return n.ID == "a" },
		func(n note) note { n.Qty = 5; return n },
		note{ID: "c"},
		Prepend,
	)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(items) != 2 || items[0].Qty != 5 {
		t.Fatalf("expected merge in place, got %v", items)
	}
}

func TestUpsertInsertsWhenNoMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	items, err := s.Upsert(ctx,
		func(n note) bool { return false },
		func(n note) note { return n },
		note{ID: "new"},
		Prepend,
	)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(items) != 1 || items[0].ID != "new" {
		t.Fatalf("expected inserted record, got %v", items)
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, note{ID: "a"}, Append); err != nil {
		t.Fatalf("insert: %v", err)
	}
	items, err := s.Remove(ctx, func(n note) bool { return n.ID == "zz" })
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected untouched list, got %v", items)
	}
}

func TestMalformedPayloadReadsEmpty(t *testing.T) {
	gdb := newTestDB(t)
	repo := slotrepo.Provide()
	ctx := context.Background()

	err := repo.Put(ctx, gdb, &slotdomain.Slot{
		SlotKey:   "notes",
		Payload:   datatypes.JSON([]byte(`{"not":"a list"`)),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	s := New[note]("notes", gdb, repo, clock.System(), zap.NewNop())
	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list from malformed payload, got %v", items)
	}

	// The next write must recover the slot.
	items, err = s.Insert(ctx, note{ID: "a"}, Prepend)
	if err != nil {
		t.Fatalf("insert after malformed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected recovered list, got %v", items)
	}
}

func TestPersistIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := []note{{ID: "a", Qty: 1}, {ID: "b", Qty: 2}}
	if _, err := s.Replace(ctx, want); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := s.Replace(ctx, want); err != nil {
		t.Fatalf("replace again: %v", err)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected list after repeated persist: %v", got)
	}
}

func TestRestoreThenPersistKeepsPayloadBytes(t *testing.T) {
	gdb := newTestDB(t)
	repo := slotrepo.Provide()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first := New[note]("notes", gdb, repo, clk, zap.NewNop())
	if _, err := first.Replace(ctx, []note{{ID: "a", Name: "Flour", Qty: 3}, {ID: "b", Name: "Sugar", Qty: 1}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	before, err := repo.Get(ctx, gdb, "notes")
	if err != nil || before == nil {
		t.Fatalf("read slot: %v %v", before, err)
	}

	// A fresh store over the same slot restores the payload; a no-op
	// mutation writes it back. The stored bytes must not change.
	second := New[note]("notes", gdb, repo, clk, zap.NewNop())
	if _, err := second.Mutate(ctx, func(items []note) ([]note, error) {
		return items, nil
	}); err != nil {
		t.Fatalf("mutate: %v", err)
	}

	after, err := repo.Get(ctx, gdb, "notes")
	if err != nil || after == nil {
		t.Fatalf("read slot again: %v %v", after, err)
	}
	if !bytes.Equal(before.Payload, after.Payload) {
		t.Fatalf("payload changed across restore and persist:\nbefore %s\nafter  %s", before.Payload, after.Payload)
	}
}
