// ABOUTME: Tests for conversation header operations
// ABOUTME: Verifies creation, thresholds persistence, and cascade delete

package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/harper/recall/internal/models"
)

func TestCreateAndGetConversation(t *testing.T) {
	store := newTestStore(t)

	ts := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	if err := store.CreateConversation("conv_a", "Trip planning", ts); err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	conv, err := store.GetConversation("conv_a")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if conv.Name != "Trip planning" {
		t.Errorf("Name = %q, want %q", conv.Name, "Trip planning")
	}
	if conv.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d, want 0", conv.TotalTokens)
	}
	if conv.OneThirdID != 0 || conv.TwoThirdsID != 0 {
		t.Errorf("fresh conversation has watermarks: %d, %d", conv.OneThirdID, conv.TwoThirdsID)
	}
	if conv.CompactionRequired {
		t.Error("fresh conversation should not require compaction")
	}
}

func TestGetConversation_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetConversation("missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetConversation(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListConversations_MostRecentFirst(t *testing.T) {
	store := newTestStore(t)

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := store.CreateConversation("conv_old", "old", older); err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
	if err := store.CreateConversation("conv_new", "new", newer); err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	conversations, err := store.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
	if len(conversations) != 2 {
		t.Fatalf("ListConversations() length = %d, want 2", len(conversations))
	}
	if conversations[0].ID != "conv_new" {
		t.Errorf("first conversation = %q, want conv_new", conversations[0].ID)
	}
}

func TestRenameConversation(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	if err := store.RenameConversation("conv_a", "Better name"); err != nil {
		t.Fatalf("RenameConversation() error = %v", err)
	}

	conv, err := store.GetConversation("conv_a")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if conv.Name != "Better name" {
		t.Errorf("Name = %q, want %q", conv.Name, "Better name")
	}

	err = store.RenameConversation("missing", "x")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("RenameConversation(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSetConversationProfile(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	schema := `{"type":"object"}`
	instruction := "Answer briefly."
	if err := store.SetConversationProfile("conv_a", schema, instruction); err != nil {
		t.Fatalf("SetConversationProfile() error = %v", err)
	}

	conv, err := store.GetConversation("conv_a")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if conv.ResponseSchema != schema {
		t.Errorf("ResponseSchema = %q, want %q", conv.ResponseSchema, schema)
	}
	if conv.SystemInstruction != instruction {
		t.Errorf("SystemInstruction = %q, want %q", conv.SystemInstruction, instruction)
	}
}

func TestSaveThresholds_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	conv, err := store.GetConversation("conv_a")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}

	conv.TotalTokens = 50000
	conv.OneThirdID = 12
	conv.TwoThirdsID = 30
	conv.CompactionRequired = true
	if err := store.SaveThresholds(conv); err != nil {
		t.Fatalf("SaveThresholds() error = %v", err)
	}

	loaded, err := store.GetConversation("conv_a")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if loaded.TotalTokens != 50000 {
		t.Errorf("TotalTokens = %d, want 50000", loaded.TotalTokens)
	}
	if loaded.OneThirdID != 12 || loaded.TwoThirdsID != 30 {
		t.Errorf("watermarks = %d, %d, want 12, 30", loaded.OneThirdID, loaded.TwoThirdsID)
	}
	if !loaded.CompactionRequired {
		t.Error("CompactionRequired should persist as true")
	}
}

func TestSaveThresholds_RejectsReversedWatermarks(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	conv, err := store.GetConversation("conv_a")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	conv.OneThirdID = 30
	conv.TwoThirdsID = 12

	if err := store.SaveThresholds(conv); err == nil {
		t.Error("SaveThresholds() with reversed watermarks should fail")
	}
}

func TestMarkCompactionHandled(t *testing.T) {
	store := newTestStore(t)
	mustCreateConversation(t, store, "conv_a")

	conv, _ := store.GetConversation("conv_a")
	conv.CompactionRequired = true
	if err := store.SaveThresholds(conv); err != nil {
		t.Fatalf("SaveThresholds() error = %v", err)
	}

	if err := store.MarkCompactionHandled("conv_a"); err != nil {
		t.Fatalf("MarkCompactionHandled() error = %v", err)
	}

	loaded, err := store.GetConversation("conv_a")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if loaded.CompactionRequired {
		t.Error("CompactionRequired should be cleared")
	}
}

func TestDeleteConversation_Cascades(t *testing.T) {
	store := newTestStore(t)

	ids, err := store.AppendExchange("conv_a", "question", "answer", time.Now().UTC())
	if err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}
	if err := store.MarkIndexed(ids.CondensedID, "indexed summary", []float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("MarkIndexed() error = %v", err)
	}

	if err := store.DeleteConversation("conv_a"); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}

	if _, err := store.GetConversation("conv_a"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("header should be gone, got %v", err)
	}
	if _, err := store.GetRawMemory(ids.UserID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("raw memories should be gone, got %v", err)
	}
	if _, err := store.GetCondensed(ids.CondensedID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("condensed memories should be gone, got %v", err)
	}

	matches, err := store.SearchText("conv_a", "indexed", 10)
	if err != nil {
		t.Fatalf("SearchText() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("FTS matches after delete = %d, want 0", len(matches))
	}
}
