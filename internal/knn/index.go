// Package knn provides multi-hot label encoding and a brute-force
// nearest-neighbour index over the encoded vectors.
package knn

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmptyIndex is returned when fitting or querying an index with no rows.
	ErrEmptyIndex = errors.New("knn: index has no vectors")
	// ErrDimensionMismatch is returned when vector widths disagree.
	ErrDimensionMismatch = errors.New("knn: vector dimension mismatch")
)

// Neighbor holds a fitted row's position and its distance to the query.
type Neighbor struct {
	ID       int
	Distance float64
}

// Index is an exact nearest-neighbour index. Rows are identified by their
// position in the slice passed to Fit.
type Index struct {
	distance  DistanceFunc
	vectors   [][]float64
	dimension int
}

// NewIndex creates an index using the named metric ("cosine" or "euclidean").
func NewIndex(metric string) (*Index, error) {
	fn, ok := Distances[metric]
	if !ok {
		return nil, fmt.Errorf("knn: unknown metric %q", metric)
	}
	return &Index{distance: fn}, nil
}

// Fit replaces the indexed rows with vectors.
func (idx *Index) Fit(vectors [][]float64) error {
	if len(vectors) == 0 {
		return ErrEmptyIndex
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("row %d has %d columns, want %d: %w", i, len(v), dim, ErrDimensionMismatch)
		}
	}
	idx.vectors = vectors
	idx.dimension = dim
	return nil
}

// KNeighbors returns the k rows closest to query, nearest first. Equal
// distances keep row order. k larger than the row count returns every row.
func (idx *Index) KNeighbors(query []float64, k int) ([]Neighbor, error) {
	if len(idx.vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query has %d columns, want %d: %w", len(query), idx.dimension, ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, fmt.Errorf("knn: k must be positive, got %d", k)
	}

	neighbors := make([]Neighbor, len(idx.vectors))
	for i, v := range idx.vectors {
		neighbors[i] = Neighbor{ID: i, Distance: idx.distance(query, v)}
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if k > len(neighbors) {
		k = len(neighbors)
	}
	return neighbors[:k], nil
}

// Len reports the number of fitted rows.
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Dimension reports the width of the fitted vectors.
func (idx *Index) Dimension() int {
	return idx.dimension
}
