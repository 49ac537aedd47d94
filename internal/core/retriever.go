// ABOUTME: Hybrid retrieval over condensed memories
// ABOUTME: FTS5 keyword prefilter widened by 5x, then cosine rerank of candidates
package core

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/harper/recall/internal/models"
	"github.com/harper/recall/internal/storage/sqlite"
)

// Embedder turns text into an embedding vector. Satisfied by llm.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// minPrefilter is the floor on the keyword prefilter breadth so small k
// values still rerank a meaningful candidate pool.
const minPrefilter = 50

// HybridRetriever answers relevance queries in two stages: a full-text
// prefilter over summaries narrows the candidate set, then cosine
// similarity against the query embedding reranks the survivors.
type HybridRetriever struct {
	store    *sqlite.Store
	embedder Embedder
}

func NewHybridRetriever(store *sqlite.Store, embedder Embedder) *HybridRetriever {
	return &HybridRetriever{store: store, embedder: embedder}
}

// RetrieveRelevant returns up to k condensed memories from the
// conversation ranked by semantic similarity to the query. Only
// INDEXED memories participate; rows still awaiting condensation are
// invisible. Embedding failures degrade to an empty result set rather
// than failing the caller's turn.
func (r *HybridRetriever) RetrieveRelevant(ctx context.Context, conversationID, query string, k int) ([]models.RetrievedMemory, error) {
	if k <= 0 || query == "" {
		return nil, nil
	}

	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[retriever] embedding failed, returning no results: %v", err)
		return nil, nil
	}

	breadth := 5 * k
	if breadth < minPrefilter {
		breadth = minPrefilter
	}

	matches, err := r.store.SearchText(conversationID, query, breadth)
	if err != nil {
		return nil, fmt.Errorf("keyword prefilter: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	candidates, err := r.store.GetCondensedByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	results := make([]models.RetrievedMemory, 0, len(candidates))
	for _, cand := range candidates {
		score, err := CosineSimilarity(queryVector, cand.Vector)
		if err != nil {
			// Mixed dimensions mean the embedding model changed
			// underneath the store. Surface it instead of silently
			// ranking garbage.
			return nil, fmt.Errorf("score memory %d: %w", cand.ID, err)
		}
		results = append(results, models.RetrievedMemory{Memory: cand, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Memory.Timestamp.After(results[j].Memory.Timestamp)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
