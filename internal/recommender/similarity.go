package recommender

import "math"

// cosineSimilarity computes dot(a,b) / (||a|| * ||b||). A zero-magnitude
// vector yields 0 rather than a division error: a degenerate embedding
// must not crash ranking.
func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// meanVector computes the element-wise arithmetic mean of the given
// vectors. Averaging is order-independent, so the order in which liked
// movies resolved does not affect the result.
func meanVector(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}

	mean := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := 0; i < len(mean) && i < len(v); i++ {
			mean[i] += v[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}
	return mean
}
