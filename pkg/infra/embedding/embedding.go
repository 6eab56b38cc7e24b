package embedding

import (
	"context"
	"math"
)

// Creator produces an embedding vector for a piece of text.
type Creator interface {
	Generate(ctx context.Context, text string) ([]float64, error)
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// empty or their dimensions differ.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
