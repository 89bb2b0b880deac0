package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		columns       []Column
		expectedError error
		expectedNames []string
		expectedRows  int
	}{
		{
			name: "ordered columns",
			columns: []Column{
				{Name: "trans_x", Values: []float64{1, 2, 3}},
				{Name: "csf", Values: []float64{4, 5, 6}},
			},
			expectedNames: []string{"trans_x", "csf"},
			expectedRows:  3,
		},
		{
			name:          "empty table",
			expectedNames: []string{},
		},
		{
			name: "duplicate column",
			columns: []Column{
				{Name: "csf", Values: []float64{1}},
				{Name: "csf", Values: []float64{2}},
			},
			expectedError: ErrDuplicateColumn,
		},
		{
			name: "length mismatch",
			columns: []Column{
				{Name: "csf", Values: []float64{1, 2}},
				{Name: "white_matter", Values: []float64{2}},
			},
			expectedError: ErrLengthMismatch,
		},
		{
			name:          "unnamed column",
			columns:       []Column{{Values: []float64{1}}},
			expectedError: ErrEmptyColumnName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.columns...)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedNames, tbl.Names())
			assert.Equal(t, tt.expectedRows, tbl.Frames())
			assert.Equal(t, len(tt.expectedNames), tbl.Len())
		})
	}
}

func TestTableLookup(t *testing.T) {
	tbl, err := New(
		Column{Name: "a", Values: []float64{1, 2}},
		Column{Name: "b", Values: []float64{3, 4}},
	)
	require.NoError(t, err)

	values, ok := tbl.Column("b")
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4}, values)

	_, ok = tbl.Column("c")
	assert.False(t, ok)

	assert.True(t, tbl.Has("a"))
	assert.Equal(t, 1, tbl.Position("b"))
	assert.Equal(t, -1, tbl.Position("c"))
	assert.Equal(t, []string{"c", "d"}, tbl.Missing("a", "c", "b", "d"))

	names := tbl.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, tbl.Names())
}

func TestMetadata(t *testing.T) {
	mixing, err := New(
		Column{Name: "aroma_ic_01", Values: []float64{1}},
		Column{Name: "aroma_ic_02", Values: []float64{1}},
		Column{Name: "aroma_ic_03", Values: []float64{1}},
	)
	require.NoError(t, err)

	meta := &Metadata{
		Variance: map[string]float64{"t_comp_cor_00": 0.2, "a_comp_cor_00": 0.4},
		Noise:    map[string]bool{"aroma_ic_03": true, "aroma_ic_01": true},
		Mixing:   mixing,
	}

	require.NoError(t, meta.Validate())
	assert.Equal(t, []string{"a_comp_cor_00", "t_comp_cor_00"}, meta.Components())
	assert.Equal(t, []string{"aroma_ic_01", "aroma_ic_03"}, meta.NoiseComponents())
	assert.True(t, meta.IsNoise("aroma_ic_03"))
	assert.False(t, meta.IsNoise("aroma_ic_02"))

	v, ok := meta.ExplainedVariance("a_comp_cor_00")
	assert.True(t, ok)
	assert.InDelta(t, 0.4, v, 1e-12)

	var nilMeta *Metadata
	assert.Nil(t, nilMeta.Components())
	assert.Nil(t, nilMeta.NoiseComponents())
	assert.NoError(t, nilMeta.Validate())
}

func TestMetadataValidate(t *testing.T) {
	for _, v := range []float64{-0.1, 1.5, math.NaN()} {
		meta := &Metadata{Variance: map[string]float64{"a_comp_cor_00": v}}
		assert.ErrorIs(t, meta.Validate(), ErrInvalidVariance)
	}
}

func TestScrubMask(t *testing.T) {
	mask := ScrubMask{false, true, true, false, true}

	assert.Equal(t, 3, mask.Excluded())
	assert.Equal(t, []int{1, 2, 4}, mask.Indices())

	clone := mask.Clone()
	clone[0] = true
	assert.False(t, mask[0])
	assert.Nil(t, ScrubMask(nil).Clone())
}
