package knn

import "math"

// DistanceFunc computes the distance between two vectors of equal length.
type DistanceFunc func(a, b []float64) float64

// Distances maps metric names to distance functions.
var Distances = map[string]DistanceFunc{
	"cosine":    CosineDistance,
	"euclidean": Euclidean,
}

// CosineDistance returns 1 - cos(a, b). When either vector has zero norm the
// similarity is taken as 0, so the distance is 1.
func CosineDistance(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	d := 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	// rounding can push identical vectors slightly below zero
	if d < 0 {
		return 0
	}
	return d
}

// Euclidean computes the L2 distance between two vectors.
func Euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
