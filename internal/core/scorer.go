// ABOUTME: Vector similarity scoring for hybrid retrieval reranking
// ABOUTME: Full cosine similarity; stored vectors are not assumed normalized
package core

import (
	"fmt"
	"math"

	"github.com/harper/recall/internal/models"
)

// CosineSimilarity returns the cosine of the angle between two vectors
// in [-1, 1]. Quantization does not preserve norms, so the full cosine
// is computed rather than a dot product over pre-normalized vectors. A
// length mismatch is a configuration error and is never truncated away.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", models.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
