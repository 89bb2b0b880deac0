package regressors

import (
	"math"
	"testing"

	"github.com/ethpandaops/confounds/internal/testutil"
	"github.com/ethpandaops/confounds/pkg/expand"
	"github.com/ethpandaops/confounds/pkg/selector"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/ethpandaops/confounds/pkg/table"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(opts Options) *Engine {
	return NewEngine(logrus.New(), selector.NewRegistry(), strategy.DefaultDefaults(), opts)
}

func motion(level expand.Level) strategy.Strategy {
	return strategy.New(strategy.Entry{Category: strategy.CategoryMotion, Params: strategy.Params{Level: level}})
}

func preset(t *testing.T, name string) strategy.Strategy {
	t.Helper()

	s, err := strategy.Preset(name)
	require.NoError(t, err)

	return s
}

func TestResolveMotionBasic(t *testing.T) {
	tbl, meta := testutil.ConfoundTable(t)

	set, err := newEngine(Options{}).Resolve(motion(expand.LevelBasic), tbl, meta)
	require.NoError(t, err)

	assert.Equal(t, testutil.MotionColumns, set.Names)
	require.Equal(t, tbl.Frames(), set.Frames())

	for _, name := range testutil.MotionColumns {
		expected, _ := tbl.Column(name)
		got, _ := set.Column(name)
		assert.Equal(t, expected, got, name)
	}
}

func TestResolveMotionFull(t *testing.T) {
	tests := []struct {
		name string
		opts []testutil.TableOption
	}{
		{"synthesized", nil},
		{"precomputed by fmriprep", []testutil.TableOption{testutil.WithDerivatives()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, meta := testutil.ConfoundTable(t, tt.opts...)

			set, err := newEngine(Options{}).Resolve(motion(expand.LevelFull), tbl, meta)
			require.NoError(t, err)
			require.Len(t, set.Names, 24)
			assert.Equal(t, expand.Names(testutil.MotionColumns, expand.LevelFull), set.Names)

			for _, base := range testutil.MotionColumns {
				values, _ := tbl.Column(base)

				derivative, _ := set.Column(base + string(expand.SuffixDerivative))
				assert.Zero(t, derivative[0], base)
				for i := 1; i < len(values); i++ {
					assert.InDelta(t, values[i]-values[i-1], derivative[i], 1e-12)
				}

				power2, _ := set.Column(base + string(expand.SuffixPower2))
				squaredDerivative, _ := set.Column(base + string(expand.SuffixDerivativePower2))
				for i := range values {
					assert.InDelta(t, values[i]*values[i], power2[i], 1e-12)
					assert.InDelta(t, derivative[i]*derivative[i], squaredDerivative[i], 1e-12)
				}
			}
		})
	}
}

func TestResolveDemeanIsIdempotent(t *testing.T) {
	tbl, meta := testutil.ConfoundTable(t)

	set, err := newEngine(Options{Demean: true}).Resolve(preset(t, strategy.PresetMinimalGlob), tbl, meta)
	require.NoError(t, err)

	for _, name := range set.Names {
		values, _ := set.Column(name)
		assert.InDeltaSlice(t, values, Demean(values, nil), 1e-9, name)
	}
}

func TestResolveICAFull(t *testing.T) {
	tbl, meta := testutil.ConfoundTable(t, testutil.WithICA(6, 1, 3))

	set, err := newEngine(Options{}).Resolve(preset(t, strategy.PresetICAAROMA), tbl, meta)
	require.NoError(t, err)

	assert.True(t, set.Directive.UsePreDenoised)
	assert.Equal(t, strategy.CategoryICA, set.Directive.Category)
	assert.Equal(t, []string{"cosine00", "cosine01", "cosine02", "csf", "white_matter"}, set.Names)

	for _, g := range set.Groups {
		assert.NotEqual(t, strategy.CategoryICA, g.Category)
	}
}

func TestResolveICABasic(t *testing.T) {
	tbl, meta := testutil.ConfoundTable(t, testutil.WithICA(6, 1, 3))

	s := strategy.New(
		strategy.Entry{Category: strategy.CategoryMotion, Params: strategy.Params{Level: expand.LevelBasic}},
		strategy.Entry{Category: strategy.CategoryICA, Params: strategy.Params{Mode: strategy.ModeBasic}},
	)

	set, err := newEngine(Options{}).Resolve(s, tbl, meta)
	require.NoError(t, err)

	assert.False(t, set.Directive.UsePreDenoised)
	assert.Equal(t, append(append([]string{}, testutil.MotionColumns...), testutil.ICAName(1), testutil.ICAName(3)), set.Names)
}

func TestResolveScrubbing(t *testing.T) {
	fd := []float64{math.NaN(), 0.1, 0.2, 0.9, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 1.2, 0.1, 0.1}
	dvars := []float64{math.NaN(), 1, 1, 1, 1, 1, 1, 2.5, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	tbl, meta := testutil.ConfoundTable(t, testutil.WithFrameQuality(fd, dvars))

	set, err := newEngine(Options{Demean: true}).Resolve(preset(t, strategy.PresetScrubbing), tbl, meta)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 4, 5, 6, 7, 15}, set.Mask.Indices())
	assert.Len(t, set.Names, 24+3+8+6)

	require.Len(t, set.Groups, 4)
	assert.Equal(t, strategy.CategoryScrub, set.Groups[3].Category)
	assert.Len(t, set.Groups[3].Names, 6)
}

func TestResolveIsDeterministic(t *testing.T) {
	tbl, meta := testutil.ConfoundTable(t,
		testutil.WithComponents(
			testutil.Component{Name: "a_comp_cor_00", Variance: 0.3},
			testutil.Component{Name: "a_comp_cor_01", Variance: 0.3},
			testutil.Component{Name: "a_comp_cor_02", Variance: 0.2},
		),
	)

	s := preset(t, strategy.PresetCompCor)
	e := newEngine(Options{Demean: true})

	first, err := e.Resolve(s, tbl, meta)
	require.NoError(t, err)
	second, err := e.Resolve(s, tbl, meta)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first.Names, "a_comp_cor_00")
	assert.Contains(t, first.Names, "a_comp_cor_01")
	assert.NotContains(t, first.Names, "a_comp_cor_02")
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name          string
		strategy      strategy.Strategy
		opts          []testutil.TableOption
		meta          *table.Metadata
		expectedError error
	}{
		{
			name: "ica full with motion",
			strategy: strategy.New(
				strategy.Entry{Category: strategy.CategoryMotion},
				strategy.Entry{Category: strategy.CategoryICA, Params: strategy.Params{Mode: strategy.ModeFull}},
			),
			expectedError: strategy.ErrInvalidStrategy,
		},
		{
			name:          "scrub without frame quality",
			strategy:      strategy.New(strategy.Entry{Category: strategy.CategoryScrub}),
			opts:          []testutil.TableOption{testutil.WithoutFrameQuality()},
			expectedError: strategy.ErrMissingDependency,
		},
		{
			name:          "missing motion column",
			strategy:      motion(expand.LevelBasic),
			opts:          []testutil.TableOption{testutil.WithoutColumns("trans_z")},
			expectedError: selector.ErrMissingColumn,
		},
		{
			name:          "compcor without components",
			strategy:      preset(t, strategy.PresetCompCor),
			expectedError: selector.ErrInsufficientComponents,
		},
		{
			name:          "invalid metadata",
			strategy:      motion(expand.LevelBasic),
			meta:          &table.Metadata{Variance: map[string]float64{"a_comp_cor_00": 1.5}},
			expectedError: table.ErrInvalidVariance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, meta := testutil.ConfoundTable(t, tt.opts...)
			if tt.meta != nil {
				meta = tt.meta
			}

			set, err := newEngine(Options{}).Resolve(tt.strategy, tbl, meta)
			require.ErrorIs(t, err, tt.expectedError)
			assert.Nil(t, set)
		})
	}
}

func TestResolveNilTable(t *testing.T) {
	_, err := newEngine(Options{}).Resolve(motion(expand.LevelBasic), nil, nil)
	assert.ErrorIs(t, err, ErrNilTable)
}
