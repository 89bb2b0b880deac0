package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/ethpandaops/confounds/pkg/expand"
	"github.com/ethpandaops/confounds/pkg/table"
	"github.com/stretchr/testify/require"
)

// MotionColumns are the fMRIprep rigid-body motion parameters
//
//nolint:gochecknoglobals // fixture data
var MotionColumns = []string{"trans_x", "trans_y", "trans_z", "rot_x", "rot_y", "rot_z"}

// Component is a CompCor fixture component
type Component struct {
	Name     string
	Variance float64
}

// TableConfig holds configuration for creating a synthetic confound table
type TableConfig struct {
	Frames           int
	Cosines          int
	Components       []Component
	FD               []float64
	DVARS            []float64
	OmitFrameQuality bool
	OmitColumns      map[string]bool
	Derivatives      bool
	ICAComponents    int
	NoiseComponents  []int
}

// TableOption is a functional option for customizing test tables
type TableOption func(*TableConfig)

// WithFrames sets the number of frames
func WithFrames(n int) TableOption {
	return func(cfg *TableConfig) {
		cfg.Frames = n
	}
}

// WithCosines sets the number of discrete cosine basis columns
func WithCosines(n int) TableOption {
	return func(cfg *TableConfig) {
		cfg.Cosines = n
	}
}

// WithComponents adds CompCor columns and their explained variance, in table order
func WithComponents(components ...Component) TableOption {
	return func(cfg *TableConfig) {
		cfg.Components = append(cfg.Components, components...)
	}
}

// WithFrameQuality sets the framewise displacement and standardized DVARS series
func WithFrameQuality(fd, dvars []float64) TableOption {
	return func(cfg *TableConfig) {
		cfg.FD = fd
		cfg.DVARS = dvars
		cfg.Frames = len(fd)
	}
}

// WithoutFrameQuality omits the framewise displacement and DVARS columns
func WithoutFrameQuality() TableOption {
	return func(cfg *TableConfig) {
		cfg.OmitFrameQuality = true
	}
}

// WithoutColumns omits named columns from the table
func WithoutColumns(names ...string) TableOption {
	return func(cfg *TableConfig) {
		if cfg.OmitColumns == nil {
			cfg.OmitColumns = make(map[string]bool)
		}
		for _, name := range names {
			cfg.OmitColumns[name] = true
		}
	}
}

// WithDerivatives adds fMRIprep's precomputed derivative and power2 columns,
// with n/a (NaN) in the first frame of derivatives as fMRIprep writes them
func WithDerivatives() TableOption {
	return func(cfg *TableConfig) {
		cfg.Derivatives = true
	}
}

// WithICA adds an n-column mixing table; noise lists the 1-based indices
// classified as noise
func WithICA(n int, noise ...int) TableOption {
	return func(cfg *TableConfig) {
		cfg.ICAComponents = n
		cfg.NoiseComponents = noise
	}
}

// ICAName returns the mixing-table column name of a 1-based component index
func ICAName(index int) string {
	return fmt.Sprintf("aroma_ic_%02d", index)
}

// Signal returns a deterministic non-constant series for column seed
func Signal(frames, seed int) []float64 {
	values := make([]float64, frames)
	for i := range values {
		values[i] = math.Sin(float64(i)*0.37+float64(seed)) + 0.1*float64(seed)
	}

	return values
}

// ConfoundTable builds a synthetic fMRIprep confound table and its metadata
func ConfoundTable(t testing.TB, opts ...TableOption) (*table.Table, *table.Metadata) {
	t.Helper()

	cfg := &TableConfig{Frames: 20, Cosines: 3}
	for _, opt := range opts {
		opt(cfg)
	}

	var cols []table.Column
	seed := 0
	add := func(name string, values []float64) {
		seed++
		if cfg.OmitColumns[name] {
			return
		}
		if values == nil {
			values = Signal(cfg.Frames, seed)
		}
		cols = append(cols, table.Column{Name: name, Values: values})
	}

	base := []string{"global_signal", "csf", "white_matter"}
	for _, name := range base {
		add(name, nil)
	}

	if !cfg.OmitFrameQuality {
		fd, dvars := cfg.FD, cfg.DVARS
		if fd == nil {
			fd = constant(cfg.Frames, 0.1)
			dvars = constant(cfg.Frames, 1.0)
			fd[0], dvars[0] = math.NaN(), math.NaN()
		}
		add("std_dvars", dvars)
		add("framewise_displacement", fd)
	}

	variance := make(map[string]float64, len(cfg.Components))
	for _, comp := range cfg.Components {
		add(comp.Name, nil)
		variance[comp.Name] = comp.Variance
	}

	for i := 0; i < cfg.Cosines; i++ {
		add(fmt.Sprintf("cosine%02d", i), nil)
	}

	for _, name := range MotionColumns {
		add(name, nil)
	}

	if cfg.Derivatives {
		cols = append(cols, derived(cols, append(append([]string{}, base...), MotionColumns...))...)
	}

	tbl, err := table.New(cols...)
	require.NoError(t, err)

	meta := &table.Metadata{Variance: variance}

	if cfg.ICAComponents > 0 {
		mixing := make([]table.Column, cfg.ICAComponents)
		for i := range mixing {
			mixing[i] = table.Column{Name: ICAName(i + 1), Values: Signal(cfg.Frames, 100+i)}
		}

		meta.Mixing, err = table.New(mixing...)
		require.NoError(t, err)

		meta.Noise = make(map[string]bool, len(cfg.NoiseComponents))
		for _, idx := range cfg.NoiseComponents {
			meta.Noise[ICAName(idx)] = true
		}
	}

	return tbl, meta
}

func derived(cols []table.Column, names []string) []table.Column {
	byName := make(map[string][]float64, len(cols))
	for _, col := range cols {
		byName[col.Name] = col.Values
	}

	var out []table.Column
	for _, name := range names {
		values, ok := byName[name]
		if !ok {
			continue
		}

		d := expand.Derivative(values)
		d[0] = math.NaN()

		out = append(out,
			table.Column{Name: name + string(expand.SuffixDerivative), Values: d},
			table.Column{Name: name + string(expand.SuffixPower2), Values: expand.Square(values)},
		)
	}

	return out
}

func constant(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}

	return values
}
