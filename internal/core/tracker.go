// ABOUTME: Token threshold tracking against the model context window
// ABOUTME: Pins one-third and two-thirds watermarks and raises the compaction flag
package core

import "github.com/harper/recall/internal/models"

// TokenThresholdTracker watches cumulative token usage for a
// conversation and pins watermark message IDs the first time usage
// crosses one third and two thirds of the context window. Watermarks
// never move once set, and the compaction flag stays raised until a
// consumer explicitly clears it.
type TokenThresholdTracker struct {
	maxContextTokens int
}

func NewTokenThresholdTracker(maxContextTokens int) *TokenThresholdTracker {
	return &TokenThresholdTracker{maxContextTokens: maxContextTokens}
}

// Apply folds a new cumulative token count into the conversation
// header. latestRawID is the most recent raw memory ID in the
// conversation; it becomes the watermark for any threshold crossed by
// this update. Returns true when the header changed and needs saving.
func (t *TokenThresholdTracker) Apply(conv *models.Conversation, totalTokens int, latestRawID int64) bool {
	changed := false

	// Token counts only grow; a lower count from a lagging caller is
	// ignored rather than allowed to rewind the watermarks.
	if totalTokens > conv.TotalTokens {
		conv.TotalTokens = totalTokens
		changed = true
	}

	oneThird := t.maxContextTokens / 3
	twoThirds := 2 * t.maxContextTokens / 3

	if conv.OneThirdID == 0 && conv.TotalTokens > oneThird {
		conv.OneThirdID = latestRawID
		changed = true
	}
	if conv.TwoThirdsID == 0 && conv.TotalTokens > twoThirds {
		conv.TwoThirdsID = latestRawID
		conv.CompactionRequired = true
		changed = true
	}

	return changed
}

// MaxContextTokens reports the context window this tracker was built for.
func (t *TokenThresholdTracker) MaxContextTokens() int {
	return t.maxContextTokens
}
