// ABOUTME: Tests for raw memory operations
// ABOUTME: Verifies append, pagination ordering, text edits, and lookups

package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/harper/recall/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory(4)
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustCreateConversation(t *testing.T, store *Store, id string) {
	t.Helper()
	if err := store.CreateConversation(id, "test", time.Now().UTC()); err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
}

func TestAppendRawMemory_AssignsIncreasingIDs(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	ts := time.Now().UTC()
	first, err := store.AppendRawMemory("conv_a", models.SenderUser, "hello", ts)
	if err != nil {
		t.Fatalf("AppendRawMemory() error = %v", err)
	}
	second, err := store.AppendRawMemory("conv_a", models.SenderModel, "hi there", ts)
	if err != nil {
		t.Fatalf("AppendRawMemory() error = %v", err)
	}

	if second <= first {
		t.Errorf("ids not increasing: first=%d second=%d", first, second)
	}
}

func TestAppendRawMemory_Validation(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	if _, err := store.AppendRawMemory("conv_a", models.Sender("system"), "x", time.Now().UTC()); err == nil {
		t.Error("append with unknown sender should fail")
	}
	if _, err := store.AppendRawMemory("conv_a", models.SenderUser, "  ", time.Now().UTC()); err == nil {
		t.Error("append with blank text should fail")
	}
}

func TestPageRawMemories_OrderedByTimestampDesc(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.AppendRawMemory("conv_a", models.SenderUser, "turn", base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("AppendRawMemory() error = %v", err)
		}
	}

	page, err := store.PageRawMemories("conv_a", 2, 0)
	if err != nil {
		t.Fatalf("PageRawMemories() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page length = %d, want 2", len(page))
	}
	if !page[0].Timestamp.After(page[1].Timestamp) {
		t.Errorf("page not ordered by timestamp desc: %v then %v", page[0].Timestamp, page[1].Timestamp)
	}

	// Second page continues where the first left off.
	next, err := store.PageRawMemories("conv_a", 2, 2)
	if err != nil {
		t.Fatalf("PageRawMemories(offset=2) error = %v", err)
	}
	if len(next) != 2 {
		t.Fatalf("second page length = %d, want 2", len(next))
	}
	if !page[1].Timestamp.After(next[0].Timestamp) {
		t.Error("pages overlap or are out of order")
	}
}

func TestPageRawMemories_ScopedToConversation(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")
	mustCreateConversation(t, store, "conv_b")

	ts := time.Now().UTC()
	if _, err := store.AppendRawMemory("conv_a", models.SenderUser, "a only", ts); err != nil {
		t.Fatalf("AppendRawMemory() error = %v", err)
	}

	page, err := store.PageRawMemories("conv_b", 10, 0)
	if err != nil {
		t.Fatalf("PageRawMemories() error = %v", err)
	}
	if len(page) != 0 {
		t.Errorf("conv_b page length = %d, want 0", len(page))
	}
}

func TestUpdateRawMemoryText(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	id, err := store.AppendRawMemory("conv_a", models.SenderUser, "orignal", time.Now().UTC())
	if err != nil {
		t.Fatalf("AppendRawMemory() error = %v", err)
	}

	if err := store.UpdateRawMemoryText(id, "original"); err != nil {
		t.Fatalf("UpdateRawMemoryText() error = %v", err)
	}

	memory, err := store.GetRawMemory(id)
	if err != nil {
		t.Fatalf("GetRawMemory() error = %v", err)
	}
	if memory.Text != "original" {
		t.Errorf("Text = %q, want %q", memory.Text, "original")
	}
}

func TestUpdateRawMemoryText_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateRawMemoryText(999, "new text")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("UpdateRawMemoryText(999) error = %v, want ErrNotFound", err)
	}
}

func TestGetRawMemory_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRawMemory(42)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetRawMemory(42) error = %v, want ErrNotFound", err)
	}
}

func TestLatestRawMemoryID(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	latest, err := store.LatestRawMemoryID("conv_a")
	if err != nil {
		t.Fatalf("LatestRawMemoryID() error = %v", err)
	}
	if latest != 0 {
		t.Errorf("empty conversation latest = %d, want 0", latest)
	}

	id, err := store.AppendRawMemory("conv_a", models.SenderUser, "hello", time.Now().UTC())
	if err != nil {
		t.Fatalf("AppendRawMemory() error = %v", err)
	}

	latest, err = store.LatestRawMemoryID("conv_a")
	if err != nil {
		t.Fatalf("LatestRawMemoryID() error = %v", err)
	}
	if latest != id {
		t.Errorf("latest = %d, want %d", latest, id)
	}
}
