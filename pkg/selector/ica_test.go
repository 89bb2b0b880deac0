package selector

import (
	"testing"

	"github.com/ethpandaops/confounds/internal/testutil"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/ethpandaops/confounds/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icaEntry(mode strategy.Mode) strategy.Entry {
	return strategy.Entry{Category: strategy.CategoryICA, Params: strategy.Params{Mode: mode}}
}

func TestICABasic(t *testing.T) {
	tbl, meta := testutil.ConfoundTable(t, testutil.WithICA(6, 5, 2, 4))

	out, err := NewICA().Select(Input{Table: tbl, Metadata: meta}, icaEntry(strategy.ModeBasic))
	require.NoError(t, err)

	regs, ok := out.(Regressors)
	require.True(t, ok)
	assert.Equal(t, []string{testutil.ICAName(2), testutil.ICAName(4), testutil.ICAName(5)}, regs.Names)

	for _, name := range regs.Names {
		expected, _ := meta.Mixing.Column(name)
		assert.Equal(t, expected, regs.Series[name])
	}
}

func TestICAFull(t *testing.T) {
	tbl, meta := testutil.ConfoundTable(t, testutil.WithICA(6, 1))

	out, err := NewICA().Select(Input{Table: tbl, Metadata: meta}, icaEntry(strategy.ModeFull))
	require.NoError(t, err)

	sub, ok := out.(Substitution)
	require.True(t, ok)
	assert.Equal(t, strategy.CategoryICA, sub.Category)
	assert.NotEmpty(t, sub.Reason)
}

func TestICAFullNeedsNoMixing(t *testing.T) {
	tbl, _ := testutil.ConfoundTable(t)

	out, err := NewICA().Select(Input{Table: tbl}, icaEntry(strategy.ModeFull))
	require.NoError(t, err)
	assert.IsType(t, Substitution{}, out)
}

func TestICABasicErrors(t *testing.T) {
	tbl, _ := testutil.ConfoundTable(t, testutil.WithFrames(20))

	short, err := table.New(table.Column{Name: testutil.ICAName(1), Values: []float64{1, 2}})
	require.NoError(t, err)

	tests := []struct {
		name          string
		meta          *table.Metadata
		expectedError error
	}{
		{"no metadata", nil, strategy.ErrMissingDependency},
		{"no mixing", &table.Metadata{}, strategy.ErrMissingDependency},
		{"frame mismatch", &table.Metadata{Mixing: short, Noise: map[string]bool{testutil.ICAName(1): true}}, ErrFrameMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewICA().Select(Input{Table: tbl, Metadata: tt.meta}, icaEntry(strategy.ModeBasic))
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestICABasicWithoutNoise(t *testing.T) {
	tbl, meta := testutil.ConfoundTable(t, testutil.WithICA(4))

	_, err := NewICA().Select(Input{Table: tbl, Metadata: meta}, icaEntry(strategy.ModeBasic))
	assert.ErrorIs(t, err, strategy.ErrMissingDependency)
}
