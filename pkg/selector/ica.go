package selector

import (
	"fmt"

	"github.com/ethpandaops/confounds/pkg/strategy"
)

// ICA selects ICA-AROMA noise components.
//
// In basic mode the mixing-table columns classified as noise become ordinary
// regressors. In full mode nothing is regressed; the selection is a
// Substitution telling the caller to use the non-aggressively denoised image.
type ICA struct{}

// NewICA creates the ICA selector
func NewICA() *ICA {
	return &ICA{}
}

// Category implements Selector
func (a *ICA) Category() strategy.Category {
	return strategy.CategoryICA
}

// Select implements Selector
func (a *ICA) Select(in Input, entry strategy.Entry) (Selection, error) {
	if entry.Mode == strategy.ModeFull {
		return Substitution{
			Category: strategy.CategoryICA,
			Reason:   "use the ICA-AROMA denoised image instead of regressing noise components",
		}, nil
	}

	if in.Metadata == nil || in.Metadata.Mixing == nil {
		return nil, fmt.Errorf("%w: category %s basic mode requires the ICA mixing table",
			strategy.ErrMissingDependency, strategy.CategoryICA)
	}

	mixing := in.Metadata.Mixing
	if mixing.Frames() != in.Table.Frames() {
		return nil, fmt.Errorf("%w: category %s: mixing table has %d frames, confounds have %d",
			ErrFrameMismatch, strategy.CategoryICA, mixing.Frames(), in.Table.Frames())
	}

	names := in.Metadata.NoiseComponents()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: category %s basic mode requires components classified as noise",
			strategy.ErrMissingDependency, strategy.CategoryICA)
	}

	series := make(map[string][]float64, len(names))
	for _, name := range names {
		values, _ := mixing.Column(name)
		series[name] = values
	}

	return Regressors{Names: names, Series: series}, nil
}
