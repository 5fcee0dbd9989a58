package knn

import "sort"

// Binarizer turns sets of labels into multi-hot vectors. Each column of the
// vector corresponds to one label of the fitted vocabulary, in sorted order.
type Binarizer struct {
	classes []string
	columns map[string]int
}

// NewBinarizer creates an unfitted Binarizer.
func NewBinarizer() *Binarizer {
	return &Binarizer{columns: make(map[string]int)}
}

// Fit builds the vocabulary from every label found in labelSets.
func (b *Binarizer) Fit(labelSets [][]string) {
	seen := make(map[string]struct{})
	for _, labels := range labelSets {
		for _, l := range labels {
			seen[l] = struct{}{}
		}
	}

	b.classes = make([]string, 0, len(seen))
	for l := range seen {
		b.classes = append(b.classes, l)
	}
	sort.Strings(b.classes)

	b.columns = make(map[string]int, len(b.classes))
	for i, l := range b.classes {
		b.columns[l] = i
	}
}

// FitTransform fits the vocabulary and encodes every label set.
func (b *Binarizer) FitTransform(labelSets [][]string) [][]float64 {
	b.Fit(labelSets)
	vectors := make([][]float64, len(labelSets))
	for i, labels := range labelSets {
		vectors[i], _ = b.Transform(labels)
	}
	return vectors
}

// Transform encodes labels against the fitted vocabulary. Labels outside the
// vocabulary do not set any column; they are returned in unknown, in input
// order and without duplicates.
func (b *Binarizer) Transform(labels []string) (vec []float64, unknown []string) {
	vec = make([]float64, len(b.classes))
	reported := make(map[string]struct{})
	for _, l := range labels {
		col, ok := b.columns[l]
		if !ok {
			if _, dup := reported[l]; !dup {
				reported[l] = struct{}{}
				unknown = append(unknown, l)
			}
			continue
		}
		vec[col] = 1
	}
	return vec, unknown
}

// Classes returns the fitted vocabulary in column order.
func (b *Binarizer) Classes() []string {
	out := make([]string, len(b.classes))
	copy(out, b.classes)
	return out
}

// Dimension is the width of the vectors produced by Transform.
func (b *Binarizer) Dimension() int {
	return len(b.classes)
}
