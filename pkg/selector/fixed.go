package selector

import (
	"github.com/ethpandaops/confounds/pkg/expand"
	"github.com/ethpandaops/confounds/pkg/strategy"
)

// Base column sets of the fixed-name categories
var (
	//nolint:gochecknoglobals // fixed fMRIprep column names
	motionColumns = []string{"trans_x", "trans_y", "trans_z", "rot_x", "rot_y", "rot_z"}
	//nolint:gochecknoglobals // fixed fMRIprep column names
	wmcsfColumns = []string{"csf", "white_matter"}
	//nolint:gochecknoglobals // fixed fMRIprep column names
	globalColumns = []string{"global_signal"}
)

// Fixed selects a fixed base column set plus its expansion terms. The base
// columns must exist; derived terms may be synthesized later.
type Fixed struct {
	category strategy.Category
	base     []string
}

// NewMotion selects the six rigid-body motion parameters
func NewMotion() *Fixed {
	return &Fixed{category: strategy.CategoryMotion, base: motionColumns}
}

// NewWMCSF selects the white matter and CSF mean signals
func NewWMCSF() *Fixed {
	return &Fixed{category: strategy.CategoryWMCSF, base: wmcsfColumns}
}

// NewGlobal selects the whole-brain mean signal
func NewGlobal() *Fixed {
	return &Fixed{category: strategy.CategoryGlobal, base: globalColumns}
}

// Category implements Selector
func (f *Fixed) Category() strategy.Category {
	return f.category
}

// Base returns the base column names
func (f *Fixed) Base() []string {
	out := make([]string, len(f.base))
	copy(out, f.base)

	return out
}

// Select implements Selector
func (f *Fixed) Select(in Input, entry strategy.Entry) (Selection, error) {
	if err := requireColumns(f.category, in.Table, f.base); err != nil {
		return nil, err
	}

	level := entry.Level
	if level == "" {
		level = expand.LevelBasic
	}

	return Regressors{Names: expand.Names(f.base, level)}, nil
}
