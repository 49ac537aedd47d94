// ABOUTME: Linear int8 quantization for embedding vectors stored as BLOBs
// ABOUTME: Blob layout is a float32 scale + float32 offset header, then one int8 per dimension
package models

import (
	"encoding/binary"
	"fmt"
	"math"
)

// vectorHeaderSize is the byte size of the scale+offset prefix
const vectorHeaderSize = 8

// PackVector quantizes a float32 vector into an int8 blob.
// Values are mapped linearly onto [-128, 127] around the midpoint of
// the vector's range, with scale and offset stored in the header so
// the quantization is self-describing.
func PackVector(vector []float32) ([]byte, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("cannot pack empty vector: %w", ErrInvalidVector)
	}

	minV, maxV := vector[0], vector[0]
	for _, v := range vector {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	offset := (minV + maxV) / 2
	scale := (maxV - minV) / 255

	blob := make([]byte, vectorHeaderSize+len(vector))
	binary.LittleEndian.PutUint32(blob[0:], math.Float32bits(scale))
	binary.LittleEndian.PutUint32(blob[4:], math.Float32bits(offset))

	for i, v := range vector {
		q := int32(0)
		if scale != 0 {
			q = int32(math.Round(float64((v - offset) / scale)))
		}
		if q < -128 {
			q = -128
		}
		if q > 127 {
			q = 127
		}
		blob[vectorHeaderSize+i] = byte(int8(q))
	}

	return blob, nil
}

// UnpackVector dequantizes an int8 blob back into a float32 vector.
// Values are recovered within quantization error of the originals.
func UnpackVector(blob []byte) ([]float32, error) {
	if len(blob) <= vectorHeaderSize {
		return nil, fmt.Errorf("vector blob too short (%d bytes): %w", len(blob), ErrInvalidVector)
	}

	scale := math.Float32frombits(binary.LittleEndian.Uint32(blob[0:]))
	offset := math.Float32frombits(binary.LittleEndian.Uint32(blob[4:]))

	vector := make([]float32, len(blob)-vectorHeaderSize)
	for i := range vector {
		q := int8(blob[vectorHeaderSize+i])
		vector[i] = float32(q)*scale + offset
	}

	return vector, nil
}

// VectorDimension returns the dimensionality encoded in a blob
func VectorDimension(blob []byte) int {
	if len(blob) <= vectorHeaderSize {
		return 0
	}
	return len(blob) - vectorHeaderSize
}
