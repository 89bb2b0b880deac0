package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidVariance is returned when an explained-variance fraction is outside [0, 1]
var ErrInvalidVariance = errors.New("explained variance must be within [0, 1]")

// Metadata describes the data-driven components that accompany a confound
// table. It is a pure lookup structure and is never mutated by selection.
type Metadata struct {
	// Variance maps CompCor component column names to their explained-variance fraction
	Variance map[string]float64
	// Noise maps independent-component names to their noise classification
	Noise map[string]bool
	// Mixing holds the independent-component time courses, one column per component
	Mixing *Table
}

// Validate checks that every variance fraction is a finite value in [0, 1]
func (m *Metadata) Validate() error {
	if m == nil {
		return nil
	}

	for name, v := range m.Variance {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s=%g", ErrInvalidVariance, name, v)
		}
	}

	return nil
}

// ExplainedVariance returns the variance fraction of a component
func (m *Metadata) ExplainedVariance(name string) (float64, bool) {
	if m == nil {
		return 0, false
	}

	v, ok := m.Variance[name]

	return v, ok
}

// Components returns the CompCor component names in lexical order
func (m *Metadata) Components() []string {
	if m == nil {
		return nil
	}

	names := make([]string, 0, len(m.Variance))
	for name := range m.Variance {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// IsNoise reports whether an independent component was classified as noise
func (m *Metadata) IsNoise(name string) bool {
	if m == nil {
		return false
	}

	return m.Noise[name]
}

// NoiseComponents returns the mixing-table columns classified as noise, in
// mixing-table order
func (m *Metadata) NoiseComponents() []string {
	if m == nil || m.Mixing == nil {
		return nil
	}

	var names []string
	for _, name := range m.Mixing.Names() {
		if m.Noise[name] {
			names = append(names, name)
		}
	}

	return names
}

// ScrubMask flags frames for exclusion, true where a frame is excluded
type ScrubMask []bool

// Excluded returns the number of excluded frames
func (m ScrubMask) Excluded() int {
	n := 0
	for _, excluded := range m {
		if excluded {
			n++
		}
	}

	return n
}

// Indices returns the excluded frame indices in ascending order
func (m ScrubMask) Indices() []int {
	indices := make([]int, 0, m.Excluded())
	for i, excluded := range m {
		if excluded {
			indices = append(indices, i)
		}
	}

	return indices
}

// Clone returns an independent copy of the mask
func (m ScrubMask) Clone() ScrubMask {
	if m == nil {
		return nil
	}

	out := make(ScrubMask, len(m))
	copy(out, m)

	return out
}
