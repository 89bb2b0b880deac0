package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethpandaops/confounds/pkg/strategy"
)

// Family tags of fMRIprep CompCor component columns
const (
	anatomicalPrefix = "a_comp_cor_"
	temporalPrefix   = "t_comp_cor_"
)

// varianceTolerance absorbs rounding when comparing cumulative variance to the target
const varianceTolerance = 1e-9

// CompCor selects anatomical and/or temporal CompCor components ranked by
// explained variance.
//
// Components are kept in descending order of explained variance until their
// cumulative variance reaches the entry's VarianceTarget or MaxComponents
// components are kept, whichever comes first. The defaults for both bounds
// (strategy.DefaultVarianceTarget and strategy.DefaultMaxComponents) are
// chosen values, not taken from the method description.
type CompCor struct{}

// NewCompCor creates the CompCor selector
func NewCompCor() *CompCor {
	return &CompCor{}
}

// Category implements Selector
func (c *CompCor) Category() strategy.Category {
	return strategy.CategoryCompCor
}

// Component is a CompCor component with its explained variance
type Component struct {
	Name     string
	Variance float64
}

// Select implements Selector
func (c *CompCor) Select(in Input, entry strategy.Entry) (Selection, error) {
	ranked, err := c.Rank(in, entry.Mask)
	if err != nil {
		return nil, err
	}

	kept := Truncate(ranked, entry.VarianceTarget, entry.MaxComponents)

	names := make([]string, len(kept))
	for i, comp := range kept {
		names[i] = comp.Name
	}

	return Regressors{Names: names}, nil
}

// Rank returns the components of a mask family sorted by explained variance,
// descending. Ties keep table column order.
func (c *CompCor) Rank(in Input, mask strategy.Mask) ([]Component, error) {
	prefixes := familyPrefixes(mask)

	var comps []Component
	total := 0.0

	for _, name := range in.Metadata.Components() {
		if !hasAnyPrefix(name, prefixes) {
			continue
		}

		if !in.Table.Has(name) {
			return nil, fmt.Errorf("%w: category %s: component %s is described in metadata but absent from the table",
				ErrMissingColumn, strategy.CategoryCompCor, name)
		}

		v, _ := in.Metadata.ExplainedVariance(name)
		comps = append(comps, Component{Name: name, Variance: v})
		total += v
	}

	if len(comps) == 0 || total <= 0 {
		return nil, fmt.Errorf("%w: category %s: no %s components with explained variance",
			ErrInsufficientComponents, strategy.CategoryCompCor, mask)
	}

	sort.SliceStable(comps, func(i, j int) bool {
		return in.Table.Position(comps[i].Name) < in.Table.Position(comps[j].Name)
	})
	sort.SliceStable(comps, func(i, j int) bool {
		return comps[i].Variance > comps[j].Variance
	})

	return comps, nil
}

// Truncate keeps the ranked prefix whose cumulative variance first reaches
// target, capped at maxComponents
func Truncate(ranked []Component, target float64, maxComponents int) []Component {
	cumulative := 0.0

	for i, comp := range ranked {
		if maxComponents > 0 && i >= maxComponents {
			return ranked[:i]
		}

		cumulative += comp.Variance
		if cumulative >= target-varianceTolerance {
			return ranked[:i+1]
		}
	}

	return ranked
}

func familyPrefixes(mask strategy.Mask) []string {
	switch mask {
	case strategy.MaskAnatomical:
		return []string{anatomicalPrefix}
	case strategy.MaskTemporal:
		return []string{temporalPrefix}
	case strategy.MaskCombined:
		return []string{anatomicalPrefix, temporalPrefix}
	default:
		return nil
	}
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}

	return false
}
