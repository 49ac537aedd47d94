// ABOUTME: Tests for int8 vector quantization
// ABOUTME: Verifies round-trip accuracy within quantization error

package models

import (
	"errors"
	"math"
	"testing"
)

func TestPackVector_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		vector []float32
	}{
		{"small positive", []float32{0.1, 0.2, 0.3, 0.4}},
		{"mixed signs", []float32{-0.5, 0.0, 0.5, 1.0, -1.0}},
		{"constant", []float32{0.7, 0.7, 0.7}},
		{"single element", []float32{42.0}},
		{"wide range", []float32{-100, -50, 0, 50, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := PackVector(tt.vector)
			if err != nil {
				t.Fatalf("PackVector() error = %v", err)
			}

			got, err := UnpackVector(blob)
			if err != nil {
				t.Fatalf("UnpackVector() error = %v", err)
			}

			if len(got) != len(tt.vector) {
				t.Fatalf("round-trip length = %d, want %d", len(got), len(tt.vector))
			}

			// Quantization error is bounded by half a step, where a
			// step is (max-min)/255.
			minV, maxV := tt.vector[0], tt.vector[0]
			for _, v := range tt.vector {
				minV = min(minV, v)
				maxV = max(maxV, v)
			}
			tolerance := float64(maxV-minV)/255.0 + 1e-6

			for i := range got {
				diff := math.Abs(float64(got[i] - tt.vector[i]))
				if diff > tolerance {
					t.Errorf("element %d: got %f, want %f (±%f)", i, got[i], tt.vector[i], tolerance)
				}
			}
		})
	}
}

func TestPackVector_Empty(t *testing.T) {
	_, err := PackVector(nil)
	if !errors.Is(err, ErrInvalidVector) {
		t.Errorf("PackVector(nil) error = %v, want ErrInvalidVector", err)
	}
}

func TestUnpackVector_ShortBlob(t *testing.T) {
	for _, n := range []int{0, 4, 8} {
		_, err := UnpackVector(make([]byte, n))
		if !errors.Is(err, ErrInvalidVector) {
			t.Errorf("UnpackVector(%d bytes) error = %v, want ErrInvalidVector", n, err)
		}
	}
}

func TestVectorDimension(t *testing.T) {
	blob, err := PackVector([]float32{1, 2, 3})
	if err != nil {
		t.Fatalf("PackVector() error = %v", err)
	}

	if dim := VectorDimension(blob); dim != 3 {
		t.Errorf("VectorDimension() = %d, want 3", dim)
	}

	if dim := VectorDimension(nil); dim != 0 {
		t.Errorf("VectorDimension(nil) = %d, want 0", dim)
	}
}
