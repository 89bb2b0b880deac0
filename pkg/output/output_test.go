package output

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethpandaops/confounds/pkg/batch"
	"github.com/ethpandaops/confounds/pkg/loader"
	"github.com/ethpandaops/confounds/pkg/regressors"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/ethpandaops/confounds/pkg/table"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet() *regressors.RegressorSet {
	return &regressors.RegressorSet{
		Names:  []string{"csf", "motion_outlier_00"},
		Matrix: [][]float64{{0.5, 0}, {-1.25, 1}, {1e-7, 0}},
		Groups: []regressors.Group{
			{Category: strategy.CategoryWMCSF, Names: []string{"csf"}},
			{Category: strategy.CategoryScrub, Names: []string{"motion_outlier_00"}},
		},
		Mask: table.ScrubMask{false, true, false},
	}
}

func sampleResult(t *testing.T, input string) *batch.Result {
	t.Helper()

	paths, err := loader.ResolvePaths(input)
	require.NoError(t, err)

	return &batch.Result{RunID: "run-1", Input: input, Paths: paths, Set: sampleSet()}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, sampleSet()))

	assert.Equal(t, "csf\tmotion_outlier_00\n0.5\t0\n-1.25\t1\n1e-07\t0\n", buf.String())
}

func TestNamer(t *testing.T) {
	tests := []struct {
		name          string
		template      string
		data          NameData
		expected      string
		expectedError error
	}{
		{
			name:     "default template",
			template: DefaultNameTemplate,
			data:     NameData{Stem: "sub-01_task-rest_desc-confounds_timeseries", Strategy: "minimal_glob"},
			expected: "sub-01_task-rest_desc-minimalglob_confounds.tsv",
		},
		{
			name:     "default template legacy name",
			template: DefaultNameTemplate,
			data:     NameData{Stem: "sub-01_desc-confounds_regressors", Strategy: "scrubbing"},
			expected: "sub-01_desc-scrubbing_confounds.tsv",
		},
		{
			name:     "sprig functions and subdirectory",
			template: `{{ .RunID | trunc 4 }}/{{ .Stem | upper }}_{{ .Regressors }}.tsv`,
			data:     NameData{Stem: "sub-02", RunID: "abcdef", Regressors: 30},
			expected: "abcd/SUB-02_30.tsv",
		},
		{
			name:          "empty",
			template:      `{{ "" }}`,
			expectedError: ErrInvalidName,
		},
		{
			name:          "escapes output directory",
			template:      `../{{ .Stem }}.tsv`,
			data:          NameData{Stem: "x"},
			expectedError: ErrInvalidName,
		},
		{
			name:          "absolute",
			template:      `/tmp/{{ .Stem }}.tsv`,
			data:          NameData{Stem: "x"},
			expectedError: ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			namer, err := NewNamer(tt.template)
			require.NoError(t, err)

			name, err := namer.Name(tt.data)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestNewNamerInvalid(t *testing.T) {
	_, err := NewNamer("{{ .Stem ")
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	cfg := Config{NameTemplate: "{{"}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidTemplate)
	assert.NoError(t, (&Config{}).Validate())
}

func TestWriter(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(logrus.New(), Config{Dir: filepath.Join(dir, "out")}, "minimal")
	require.NoError(t, err)

	result := sampleResult(t, "/data/sub-01_task-rest_desc-confounds_timeseries.tsv")
	require.NoError(t, w.Write(context.Background(), result))

	path, err := w.Path(result)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "sub-01_task-rest_desc-minimal_confounds.tsv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "csf\tmotion_outlier_00\n0.5\t0\n-1.25\t1\n1e-07\t0\n", string(content))
}

func TestReport(t *testing.T) {
	ok := sampleResult(t, "/data/sub-01_desc-confounds_timeseries.tsv")

	substituted := sampleResult(t, "/data/sub-02_desc-confounds_timeseries.tsv")
	substituted.Set.Directive = regressors.Directive{UsePreDenoised: true, Category: strategy.CategoryICA}

	failed := &batch.Result{Input: "/data/sub-03_desc-confounds_timeseries.tsv", Stage: batch.StageResolve, Err: errors.New("missing column: csf")}

	report := &Report{
		StrategyName: "custom",
		Strategy: strategy.New(
			strategy.Entry{Category: strategy.CategoryWMCSF},
			strategy.Entry{Category: strategy.CategoryScrub, Params: strategy.Params{Mode: strategy.ModeFull}},
		),
		Summary: &batch.Summary{
			RunID:   "2f1c",
			Started: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Elapsed: 1500 * time.Millisecond,
			Results: []*batch.Result{ok, substituted, failed},
		},
		Outputs: map[string]string{ok.Input: "out/sub-01.tsv"},
	}

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))
	out := buf.String()

	assert.Contains(t, out, "# Confound Regressors")
	assert.Contains(t, out, "`2f1c`")
	assert.Contains(t, out, "scrub(mode=full)")
	assert.Contains(t, out, "wm_csf=1, scrub=1")
	assert.Contains(t, out, "`out/sub-01.tsv`")
	assert.Contains(t, out, "sub-02_space-MNI152NLin6Asym_desc-smoothAROMAnonaggr_bold.nii.gz")
	assert.Contains(t, out, "## Failures")
	assert.Contains(t, out, "missing column: csf")
}
