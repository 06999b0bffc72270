package ai

import "math"

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector; the original is not modified.
func NormalizeVector(v []float32) []float32 {
	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	// Normalize
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// DotProduct calculates the dot product of two vectors.
// Extra dimensions of the longer vector are ignored.
func DotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// CosineDistance returns 1 - cos(a, b) for unit vectors a and b.
// The result lies in [0, 2].
func CosineDistance(a, b []float32) float64 {
	return 1 - float64(DotProduct(a, b))
}
