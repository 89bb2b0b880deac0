package expand

import (
	"testing"

	"github.com/ethpandaops/confounds/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	tests := []struct {
		name     string
		base     []string
		level    Level
		expected []string
	}{
		{
			name:     "basic",
			base:     []string{"csf", "white_matter"},
			level:    LevelBasic,
			expected: []string{"csf", "white_matter"},
		},
		{
			name:     "derivatives",
			base:     []string{"csf", "white_matter"},
			level:    LevelDerivatives,
			expected: []string{"csf", "white_matter", "csf_derivative1", "white_matter_derivative1"},
		},
		{
			name:     "power2",
			base:     []string{"global_signal"},
			level:    LevelPower2,
			expected: []string{"global_signal", "global_signal_power2"},
		},
		{
			name:  "full",
			base:  []string{"csf", "white_matter"},
			level: LevelFull,
			expected: []string{
				"csf", "white_matter",
				"csf_derivative1", "white_matter_derivative1",
				"csf_power2", "white_matter_power2",
				"csf_derivative1_power2", "white_matter_derivative1_power2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Names(tt.base, tt.level))
		})
	}
}

func TestNamesMotionFull(t *testing.T) {
	base := []string{"trans_x", "trans_y", "trans_z", "rot_x", "rot_y", "rot_z"}
	assert.Len(t, Names(base, LevelFull), 24)
}

func TestParse(t *testing.T) {
	tests := []struct {
		input  string
		base   string
		suffix Suffix
		ok     bool
	}{
		{"trans_x_derivative1_power2", "trans_x", SuffixDerivativePower2, true},
		{"trans_x_derivative1", "trans_x", SuffixDerivative, true},
		{"csf_power2", "csf", SuffixPower2, true},
		{"csf", "csf", "", false},
		{"_power2", "_power2", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			base, suffix, ok := Parse(tt.input)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.suffix, suffix)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParent(t *testing.T) {
	parent, ok := Parent("rot_z_derivative1_power2")
	require.True(t, ok)
	assert.Equal(t, "rot_z_derivative1", parent)

	parent, ok = Parent("rot_z_power2")
	require.True(t, ok)
	assert.Equal(t, "rot_z", parent)

	_, ok = Parent("rot_z")
	assert.False(t, ok)
}

func TestSeries(t *testing.T) {
	base := []float64{1, 3, 2, 6}

	assert.Equal(t, []float64{0, 2, -1, 4}, Series(base, SuffixDerivative))
	assert.Equal(t, []float64{1, 9, 4, 36}, Series(base, SuffixPower2))
	assert.Equal(t, []float64{0, 4, 1, 16}, Series(base, SuffixDerivativePower2))
	assert.Equal(t, Series(base, SuffixDerivativePower2), FromParent(Derivative(base), SuffixDerivativePower2))

	// inputs are never modified
	assert.Equal(t, []float64{1, 3, 2, 6}, base)
}

func TestDerivativeEdgeCases(t *testing.T) {
	assert.Empty(t, Derivative(nil))
	assert.Equal(t, []float64{0}, Derivative([]float64{42}))
}

func TestExpand(t *testing.T) {
	base := []table.Column{
		{Name: "csf", Values: []float64{1, 2}},
		{Name: "white_matter", Values: []float64{-1, 1}},
	}

	derived := Expand(base, LevelFull)
	require.Len(t, derived, 6)

	names := make([]string, len(derived))
	for i, col := range derived {
		names[i] = col.Name
	}
	assert.Equal(t, Names([]string{"csf", "white_matter"}, LevelFull)[2:], names)
	assert.Equal(t, []float64{0, 2}, derived[1].Values)
	assert.Equal(t, []float64{0, 4}, derived[5].Values)

	assert.Empty(t, Expand(base, LevelBasic))
}

func TestLevelValid(t *testing.T) {
	for _, level := range Levels() {
		assert.True(t, level.Valid())
	}
	assert.False(t, Level("cubic").Valid())
}
