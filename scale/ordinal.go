package scale

import (
	"fmt"
	"math"
)

// Ordinal maps a fixed, ordered list of categories onto evenly spaced unit
// positions index/(n-1). A single category projects to 0.5.
type Ordinal struct {
	categories []string
	index      map[string]int
}

var _ Scale = (*Ordinal)(nil)

// NewOrdinal creates an ordinal scale. The list must be non-empty and free
// of duplicates; its order is preserved.
func NewOrdinal(categories []string) (*Ordinal, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no ordinal categories", ErrInvalidConfiguration)
	}
	o := &Ordinal{
		categories: append([]string(nil), categories...),
		index:      make(map[string]int, len(categories)),
	}
	for i, c := range o.categories {
		if _, dup := o.index[c]; dup {
			return nil, fmt.Errorf("%w: duplicate ordinal category %q", ErrInvalidConfiguration, c)
		}
		o.index[c] = i
	}
	return o, nil
}

// Kind implements Scale.
func (o *Ordinal) Kind() Kind { return KindOrdinal }

// Domain implements Scale.
func (o *Ordinal) Domain() (lo, hi float64) { return 0, float64(len(o.categories) - 1) }

// Len returns the number of categories.
func (o *Ordinal) Len() int { return len(o.categories) }

// Categories returns a copy of the category list.
func (o *Ordinal) Categories() []string {
	return append([]string(nil), o.categories...)
}

// Project implements Scale, treating v as a category index.
func (o *Ordinal) Project(v float64) float64 {
	n := len(o.categories)
	if n == 1 {
		return 0.5
	}
	return v / float64(n-1)
}

// TryProject projects a category. It reports false when the category is
// unknown.
func (o *Ordinal) TryProject(category string) (float64, bool) {
	i, ok := o.index[category]
	if !ok {
		return 0, false
	}
	return o.Project(float64(i)), true
}

// ProjectCategory is like TryProject but returns ErrNotFound for an unknown
// category.
func (o *Ordinal) ProjectCategory(category string) (float64, error) {
	u, ok := o.TryProject(category)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, category)
	}
	return u, nil
}

// Unproject implements Scale. It returns the nearest category index clamped
// to [0, n-1].
func (o *Ordinal) Unproject(u float64) float64 {
	return float64(o.IndexAt(u))
}

// IndexAt returns the index of the category nearest to u.
func (o *Ordinal) IndexAt(u float64) int {
	n := len(o.categories)
	if n == 1 || !finite(u) {
		return 0
	}
	i := int(math.Round(u * float64(n-1)))
	return max(0, min(i, n-1))
}

// Category returns the category nearest to u.
func (o *Ordinal) Category(u float64) string {
	return o.categories[o.IndexAt(u)]
}
