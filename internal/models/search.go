// ABOUTME: Search result structures for hybrid cold-memory retrieval
// ABOUTME: Used by the retriever, CLI, and MCP tools
package models

import "time"

// RetrievedMemory is one hybrid-retrieval hit: a condensed memory and
// its cosine similarity to the query vector.
type RetrievedMemory struct {
	Memory CondensedMemory `json:"memory"`
	Score  float64         `json:"score"`
}

// TextMatch is a full-text prefilter candidate: the condensed memory
// row id with its BM25-derived rank (higher is better).
type TextMatch struct {
	ID        int64     `json:"id"`
	Rank      float64   `json:"rank"`
	Timestamp time.Time `json:"timestamp"`
}
