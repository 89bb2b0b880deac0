// Package expand derives the derivative and quadratic terms of confound
// regressors.
//
// Suffix naming follows fMRIprep: <base>_derivative1, <base>_power2 and
// <base>_derivative1_power2.
package expand

import (
	"strings"

	"github.com/ethpandaops/confounds/pkg/table"
)

// Level selects which derived terms accompany a base regressor
type Level string

const (
	// LevelBasic keeps only the raw regressors
	LevelBasic Level = "basic"
	// LevelDerivatives adds first backward differences
	LevelDerivatives Level = "derivatives"
	// LevelPower2 adds elementwise squares
	LevelPower2 Level = "power2"
	// LevelFull adds derivatives, squares and squared derivatives
	LevelFull Level = "full"
)

// Levels returns every supported level
func Levels() []Level {
	return []Level{LevelBasic, LevelDerivatives, LevelPower2, LevelFull}
}

// Valid reports whether the level is supported
func (l Level) Valid() bool {
	switch l {
	case LevelBasic, LevelDerivatives, LevelPower2, LevelFull:
		return true
	default:
		return false
	}
}

// Suffix identifies a derived term
type Suffix string

const (
	// SuffixDerivative marks the first backward difference
	SuffixDerivative Suffix = "_derivative1"
	// SuffixPower2 marks the elementwise square
	SuffixPower2 Suffix = "_power2"
	// SuffixDerivativePower2 marks the square of the first backward difference
	SuffixDerivativePower2 Suffix = "_derivative1_power2"
)

// Suffixes returns the derived terms of a level in output group order
func (l Level) Suffixes() []Suffix {
	switch l {
	case LevelDerivatives:
		return []Suffix{SuffixDerivative}
	case LevelPower2:
		return []Suffix{SuffixPower2}
	case LevelFull:
		return []Suffix{SuffixDerivative, SuffixPower2, SuffixDerivativePower2}
	case LevelBasic:
		return nil
	default:
		return nil
	}
}

// Names returns the base names followed by one group per derived term, each
// group in base order
func Names(base []string, level Level) []string {
	suffixes := level.Suffixes()
	names := make([]string, 0, len(base)*(1+len(suffixes)))
	names = append(names, base...)

	for _, suffix := range suffixes {
		for _, name := range base {
			names = append(names, name+string(suffix))
		}
	}

	return names
}

// Parse splits a derived column name into its base name and suffix.
// ok is false for names without a derived suffix.
func Parse(name string) (base string, suffix Suffix, ok bool) {
	// longest suffix first: _derivative1_power2 also ends in _power2
	for _, s := range []Suffix{SuffixDerivativePower2, SuffixDerivative, SuffixPower2} {
		if trimmed, found := strings.CutSuffix(name, string(s)); found && trimmed != "" {
			return trimmed, s, true
		}
	}

	return name, "", false
}

// Parent returns the column a derived term is computed from. The squared
// derivative is computed from the derivative column.
func Parent(name string) (string, bool) {
	base, suffix, ok := Parse(name)
	if !ok {
		return "", false
	}

	if suffix == SuffixDerivativePower2 {
		return base + string(SuffixDerivative), true
	}

	return base, true
}

// Derivative returns the first backward difference. Frame 0 has no prior
// frame and is set to 0.
func Derivative(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}

	return out
}

// Square returns the elementwise square
func Square(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * v
	}

	return out
}

// Series computes a derived term directly from the base series
func Series(base []float64, suffix Suffix) []float64 {
	switch suffix {
	case SuffixDerivative:
		return Derivative(base)
	case SuffixPower2:
		return Square(base)
	case SuffixDerivativePower2:
		return Square(Derivative(base))
	default:
		out := make([]float64, len(base))
		copy(out, base)

		return out
	}
}

// FromParent computes a derived term from the column returned by Parent
func FromParent(parent []float64, suffix Suffix) []float64 {
	if suffix == SuffixDerivative {
		return Derivative(parent)
	}

	return Square(parent)
}

// Expand returns the derived columns of every base column at the given level,
// grouped by term in the same order as Names
func Expand(base []table.Column, level Level) []table.Column {
	suffixes := level.Suffixes()
	out := make([]table.Column, 0, len(base)*len(suffixes))

	for _, suffix := range suffixes {
		for _, col := range base {
			out = append(out, table.Column{
				Name:   col.Name + string(suffix),
				Values: Series(col.Values, suffix),
			})
		}
	}

	return out
}
