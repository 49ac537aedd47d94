// ABOUTME: Tests for the engine facade
// ABOUTME: Exchange writes, token tracking, retrieval, and cutoff deletes end to end
package core

import (
	"context"
	"testing"
	"time"

	"github.com/harper/recall/internal/models"
	"github.com/harper/recall/internal/storage/sqlite"
)

func newTestEngine(t *testing.T) (*Engine, *sqlite.Store) {
	t.Helper()
	store := newRetrieverStore(t)
	embedder := &stubEmbedder{fixed: []float32{0.5, 0.5, 0, 0}}
	pipeline := NewPipeline(store, &stubSummarizer{}, embedder, testPipelineConfig())
	retriever := NewHybridRetriever(store, embedder)
	tracker := NewTokenThresholdTracker(3000)

	engine := NewEngine(store, pipeline, retriever, tracker)
	engine.Start(context.Background())
	t.Cleanup(engine.Stop)
	return engine, store
}

func TestEngineAppendExchange(t *testing.T) {
	engine, store := newTestEngine(t)

	ids, err := engine.AppendExchange("conv_eng00001", "what is Go?", "Go is a programming language.", 0)
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}

	user, err := store.GetRawMemory(ids.UserID)
	if err != nil {
		t.Fatalf("GetRawMemory(user): %v", err)
	}
	if user.Sender != models.SenderUser {
		t.Errorf("user sender = %s", user.Sender)
	}

	waitFor(t, 2*time.Second, func() bool {
		c, err := store.GetCondensed(ids.CondensedID)
		return err == nil && c.Indexed()
	})
}

func TestEngineRecordsTokenUsage(t *testing.T) {
	engine, store := newTestEngine(t)

	ids, err := engine.AppendExchange("conv_eng00002", "long question", "long answer", 1200)
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}

	conv, err := engine.Header("conv_eng00002")
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if conv.TotalTokens != 1200 {
		t.Errorf("TotalTokens = %d, want 1200", conv.TotalTokens)
	}
	if conv.OneThirdID != ids.ModelID {
		t.Errorf("OneThirdID = %d, want %d", conv.OneThirdID, ids.ModelID)
	}
	if conv.CompactionRequired {
		t.Error("compaction flag raised below two thirds")
	}

	// Cross two thirds on the next exchange.
	ids2, err := engine.AppendExchange("conv_eng00002", "more", "more still", 2100)
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}
	conv, err = engine.Header("conv_eng00002")
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if conv.TwoThirdsID != ids2.ModelID {
		t.Errorf("TwoThirdsID = %d, want %d", conv.TwoThirdsID, ids2.ModelID)
	}
	if !conv.CompactionRequired {
		t.Error("compaction flag should be raised past two thirds")
	}

	// Watermarks persist across reads and the flag clears on request.
	if err := engine.MarkCompactionHandled("conv_eng00002"); err != nil {
		t.Fatalf("MarkCompactionHandled: %v", err)
	}
	conv, err = store.GetConversation("conv_eng00002")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if conv.CompactionRequired {
		t.Error("compaction flag still raised after MarkCompactionHandled")
	}
	if conv.OneThirdID != ids.ModelID || conv.TwoThirdsID != ids2.ModelID {
		t.Error("watermarks must survive compaction handling")
	}
}

func TestEngineRetrieveAfterCondensation(t *testing.T) {
	engine, store := newTestEngine(t)

	ids, err := engine.AppendExchange("conv_eng00003", "tell me about cats", "Cats sleep sixteen hours a day.", 0)
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		c, err := store.GetCondensed(ids.CondensedID)
		return err == nil && c.Indexed()
	})

	results, err := engine.RetrieveRelevant(context.Background(), "conv_eng00003", "cats sleep", 5)
	if err != nil {
		t.Fatalf("RetrieveRelevant: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Memory.RawMemoryID != ids.ModelID {
		t.Errorf("retrieved memory for turn %d, want %d", results[0].Memory.RawMemoryID, ids.ModelID)
	}
}

func TestEngineDeleteFrom(t *testing.T) {
	engine, store := newTestEngine(t)

	first, err := engine.AppendExchange("conv_eng00004", "keep this", "kept answer", 0)
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}
	second, err := engine.AppendExchange("conv_eng00004", "regret this", "regretted answer", 0)
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}

	if err := engine.DeleteFrom("conv_eng00004", second.UserID); err != nil {
		t.Fatalf("DeleteFrom: %v", err)
	}

	if _, err := store.GetRawMemory(first.ModelID); err != nil {
		t.Errorf("turn before the cutoff was deleted: %v", err)
	}
	if _, err := store.GetRawMemory(second.UserID); err == nil {
		t.Error("turn at the cutoff survived the delete")
	}
	if _, err := store.GetCondensedByRawMemoryID(second.ModelID); err == nil {
		t.Error("condensed row past the cutoff survived the delete")
	}
}
