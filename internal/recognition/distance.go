package recognition

import (
	"math"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// EuclideanDistance returns the L2 distance between two encodings.
// Vectors of different or zero length are infinitely far apart.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return math.Sqrt(sum)
}

// Distances computes the distance from query to every identity, in index order.
func Distances(query []float64, index []domain.Identity) []float64 {
	out := make([]float64, len(index))
	for i, id := range index {
		out[i] = EuclideanDistance(query, id.Encoding)
	}
	return out
}
