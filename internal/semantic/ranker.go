package semantic

import "math"

// Cosine returns the cosine similarity of two vectors, in [-1, 1]. Nil, empty
// or mismatched-length inputs score 0 instead of erroring; this is the single
// comparison primitive every ranking feature builds on.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
