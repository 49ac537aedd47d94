// ABOUTME: Sentinel errors shared across the memory engine
// ABOUTME: Checked with errors.Is at package boundaries
package models

import "errors"

var (
	// ErrNotFound is returned when a referenced id does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidVector is returned for empty vectors or vectors whose
	// length disagrees with the store's configured dimensionality
	ErrInvalidVector = errors.New("invalid vector")

	// ErrDimensionMismatch is returned when two vectors of different
	// lengths are compared
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
