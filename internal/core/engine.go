// ABOUTME: Engine facade wiring storage, condensation, retrieval, and token tracking
// ABOUTME: Single entry point consumed by the CLI commands and MCP handlers
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/harper/recall/internal/models"
	"github.com/harper/recall/internal/storage/sqlite"
)

// Engine ties the pieces of the memory system together. Writing an
// exchange is synchronous and durable; condensation of the model turn
// happens in the background and never blocks or fails the write.
type Engine struct {
	store     *sqlite.Store
	pipeline  *Pipeline
	retriever *HybridRetriever
	tracker   *TokenThresholdTracker
}

func NewEngine(store *sqlite.Store, pipeline *Pipeline, retriever *HybridRetriever, tracker *TokenThresholdTracker) *Engine {
	return &Engine{
		store:     store,
		pipeline:  pipeline,
		retriever: retriever,
		tracker:   tracker,
	}
}

// Start brings up the background pipeline, including the resweep of
// turns left unindexed by a previous run.
func (e *Engine) Start(ctx context.Context) {
	if e.pipeline != nil {
		e.pipeline.Start(ctx)
	}
}

// Stop shuts the background pipeline down.
func (e *Engine) Stop() {
	if e.pipeline != nil {
		e.pipeline.Stop()
	}
}

// AppendExchange records one user/model exchange. The raw turns, the
// conversation header, and the NEW condensed placeholder land in one
// transaction; the model turn is then handed to the pipeline. When
// totalTokens is positive it is folded into the threshold tracker so
// watermark crossings are pinned to this exchange's model turn.
func (e *Engine) AppendExchange(conversationID, userText, modelText string, totalTokens int) (*sqlite.ExchangeIDs, error) {
	ids, err := e.store.AppendExchange(conversationID, userText, modelText, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if e.pipeline != nil {
		e.pipeline.Enqueue(ids.ModelID)
	}

	if totalTokens > 0 {
		if err := e.RecordUsage(conversationID, totalTokens, ids.ModelID); err != nil {
			return ids, fmt.Errorf("record token usage: %w", err)
		}
	}
	return ids, nil
}

// RecordUsage applies a cumulative token count to the conversation
// header and persists any watermark transitions.
func (e *Engine) RecordUsage(conversationID string, totalTokens int, latestRawID int64) error {
	conv, err := e.store.GetConversation(conversationID)
	if err != nil {
		return err
	}
	if latestRawID == 0 {
		latestRawID, err = e.store.LatestRawMemoryID(conversationID)
		if err != nil {
			return err
		}
	}
	if e.tracker.Apply(conv, totalTokens, latestRawID) {
		return e.store.SaveThresholds(conv)
	}
	return nil
}

// RetrieveRelevant returns the k condensed memories most relevant to
// the query, hybrid keyword prefilter plus cosine rerank.
func (e *Engine) RetrieveRelevant(ctx context.Context, conversationID, query string, k int) ([]models.RetrievedMemory, error) {
	return e.retriever.RetrieveRelevant(ctx, conversationID, query, k)
}

// Header returns the conversation header including watermarks and the
// compaction flag.
func (e *Engine) Header(conversationID string) (*models.Conversation, error) {
	return e.store.GetConversation(conversationID)
}

// MarkCompactionHandled lowers the compaction flag after the consumer
// has compacted its context.
func (e *Engine) MarkCompactionHandled(conversationID string) error {
	return e.store.MarkCompactionHandled(conversationID)
}

// DeleteFrom removes every raw turn with ID >= cutoffID along with the
// condensed memories and index entries derived from them. Used to
// rewind a conversation before regenerating a response.
func (e *Engine) DeleteFrom(conversationID string, cutoffID int64) error {
	return e.store.DeleteFrom(conversationID, cutoffID)
}

// PendingCount reports how many model turns still await condensation.
func (e *Engine) PendingCount() (int, error) {
	return e.store.PendingCount()
}

// Store exposes the underlying store for operations the facade does
// not wrap, such as paging raw history or conversation management.
func (e *Engine) Store() *sqlite.Store {
	return e.store
}
