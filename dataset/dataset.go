// Package dataset holds binary-labelled tabular data and loads it from CSV or
// XLSX tables.
package dataset

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalid is returned when rows and labels break the dataset invariants.
var ErrInvalid = errors.New("dataset: invalid")

// Dataset is an ordered sequence of feature vectors paired with labels in
// {0, 1}. Every vector has the same dimensionality. A Dataset is treated as
// read-only once built; Subset and Concat share row slices but never write
// through them.
type Dataset struct {
	Features [][]float64
	Labels   []int
}

// New validates features and labels and wraps them in a Dataset.
func New(features [][]float64, labels []int) (Dataset, error) {
	if len(features) != len(labels) {
		return Dataset{}, fmt.Errorf("%w: %d feature rows but %d labels", ErrInvalid, len(features), len(labels))
	}

	if len(features) == 0 {
		return Dataset{}, fmt.Errorf("%w: no rows", ErrInvalid)
	}

	dim := len(features[0])
	if dim == 0 {
		return Dataset{}, fmt.Errorf("%w: rows have no features", ErrInvalid)
	}

	for i, row := range features {
		if len(row) != dim {
			return Dataset{}, fmt.Errorf("%w: row %d has %d features, want %d", ErrInvalid, i, len(row), dim)
		}
	}

	for i, label := range labels {
		if label != 0 && label != 1 {
			return Dataset{}, fmt.Errorf("%w: label %d at row %d is not 0 or 1", ErrInvalid, label, i)
		}
	}

	return Dataset{Features: features, Labels: labels}, nil
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Labels) }

// Dim returns the feature dimensionality, zero for an empty dataset.
func (d Dataset) Dim() int {
	if len(d.Features) == 0 {
		return 0
	}

	return len(d.Features[0])
}

// ClassCount returns the number of distinct label values present.
func (d Dataset) ClassCount() int {
	seen := make(map[int]struct{}, 2)
	for _, label := range d.Labels {
		seen[label] = struct{}{}
	}

	return len(seen)
}

// HasBothClasses reports whether both labels occur.
func (d Dataset) HasBothClasses() bool {
	return slices.Contains(d.Labels, 0) && slices.Contains(d.Labels, 1)
}

// Subset returns the rows at indices, in that order.
func (d Dataset) Subset(indices []int) Dataset {
	features := make([][]float64, len(indices))
	labels := make([]int, len(indices))

	for i, idx := range indices {
		features[i] = d.Features[idx]
		labels[i] = d.Labels[idx]
	}

	return Dataset{Features: features, Labels: labels}
}

// Concat appends the rows of others after the rows of d.
func Concat(d Dataset, others ...Dataset) (Dataset, error) {
	features := append([][]float64(nil), d.Features...)
	labels := append([]int(nil), d.Labels...)

	for _, o := range others {
		if o.Len() > 0 && d.Len() > 0 && o.Dim() != d.Dim() {
			return Dataset{}, fmt.Errorf("%w: cannot concatenate %d and %d features", ErrInvalid, d.Dim(), o.Dim())
		}

		features = append(features, o.Features...)
		labels = append(labels, o.Labels...)
	}

	return New(features, labels)
}
