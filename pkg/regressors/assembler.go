// Package regressors assembles per-category selections into the final
// regressor matrix
package regressors

import (
	"errors"
	"fmt"
	"math"

	"github.com/ethpandaops/confounds/pkg/expand"
	"github.com/ethpandaops/confounds/pkg/selector"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/ethpandaops/confounds/pkg/table"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnknownSelection is returned for a Selection variant the assembler does not handle
	ErrUnknownSelection = errors.New("unknown selection")
	// ErrNilTable is returned when no confound table is supplied
	ErrNilTable = errors.New("confound table is nil")
)

// Options configures assembly
type Options struct {
	// Demean subtracts each column's mean from every frame
	Demean bool `yaml:"demean" default:"true"`
	// MeanOverRetained computes the mean over frames the scrub mask retains
	MeanOverRetained bool `yaml:"meanOverRetained"`
}

// Directive tells the caller how to denoise beyond regression
type Directive struct {
	// UsePreDenoised is set when the caller must use the pre-denoised image
	UsePreDenoised bool
	Category       strategy.Category
	Reason         string
}

// Group lists the columns a category contributed to the set
type Group struct {
	Category strategy.Category
	Names    []string
}

// RegressorSet is the resolved design: names, a frames × regressors matrix in
// row-major order, the combined scrub mask and the substitution directive.
type RegressorSet struct {
	Names     []string
	Matrix    [][]float64
	Groups    []Group
	Mask      table.ScrubMask
	Directive Directive
}

// Frames returns the number of rows
func (r *RegressorSet) Frames() int {
	return len(r.Matrix)
}

// Column returns a copy of the named regressor
func (r *RegressorSet) Column(name string) ([]float64, bool) {
	for j, n := range r.Names {
		if n != name {
			continue
		}

		out := make([]float64, len(r.Matrix))
		for i, row := range r.Matrix {
			out[i] = row[j]
		}

		return out, true
	}

	return nil, false
}

// Contribution is one category's selection, in strategy order
type Contribution struct {
	Category  strategy.Category
	Selection selector.Selection
}

// Assembler combines selections into a RegressorSet
type Assembler struct {
	log  logrus.FieldLogger
	opts Options
}

// NewAssembler creates an assembler
func NewAssembler(log logrus.FieldLogger, opts Options) *Assembler {
	return &Assembler{
		log:  log.WithField("component", "assembler"),
		opts: opts,
	}
}

// Assemble builds the regressor set. Columns keep the order in which they were
// first contributed; a name contributed twice appears once. Names that are
// neither supplied by a selector nor present in the table are synthesized from
// the column they derive from.
func (a *Assembler) Assemble(tbl *table.Table, contributions []Contribution) (*RegressorSet, error) {
	if tbl == nil {
		return nil, ErrNilTable
	}

	set := &RegressorSet{}
	supplied := make(map[string][]float64)
	seen := make(map[string]bool)

	for _, c := range contributions {
		switch sel := c.Selection.(type) {
		case selector.Regressors:
			group := Group{Category: c.Category}

			for _, name := range sel.Names {
				if seen[name] {
					continue
				}
				seen[name] = true

				set.Names = append(set.Names, name)
				group.Names = append(group.Names, name)

				if values, ok := sel.Series[name]; ok {
					supplied[name] = values
				}
			}

			if len(sel.Names) == 0 && c.Category == strategy.CategoryHighPass {
				a.log.Warn("No discrete cosine columns in confound table, high_pass contributes nothing")
			}

			set.Groups = append(set.Groups, group)
			set.Mask = mergeMask(set.Mask, sel.Mask)
		case selector.Substitution:
			set.Directive = Directive{
				UsePreDenoised: true,
				Category:       sel.Category,
				Reason:         sel.Reason,
			}
		default:
			return nil, fmt.Errorf("%w: category %s: %T", ErrUnknownSelection, c.Category, c.Selection)
		}
	}

	columns, err := a.resolve(tbl, set.Names, supplied)
	if err != nil {
		return nil, err
	}

	if a.opts.Demean {
		var retained table.ScrubMask
		if a.opts.MeanOverRetained {
			retained = set.Mask
		}

		for j := range columns {
			columns[j] = Demean(columns[j], retained)
		}
	}

	set.Matrix = rows(columns, tbl.Frames())

	a.log.WithFields(logrus.Fields{
		"regressors": len(set.Names),
		"frames":     tbl.Frames(),
		"scrubbed":   set.Mask.Excluded(),
		"substitute": set.Directive.UsePreDenoised,
	}).Debug("Assembled regressor set")

	return set, nil
}

// resolve returns the values of every name, column-major
func (a *Assembler) resolve(tbl *table.Table, names []string, supplied map[string][]float64) ([][]float64, error) {
	plan := newDerivationPlan()

	for _, name := range names {
		if _, ok := supplied[name]; ok || tbl.Has(name) {
			continue
		}

		if _, ok := expand.Parent(name); !ok {
			return nil, fmt.Errorf("%w: %s", selector.ErrMissingColumn, name)
		}

		if err := plan.require(name); err != nil {
			return nil, err
		}
	}

	synthesized := make(map[string][]float64)

	var lookup func(name string) ([]float64, error)
	lookup = func(name string) ([]float64, error) {
		if values, ok := supplied[name]; ok {
			return sanitize(values), nil
		}

		if values, ok := tbl.Column(name); ok {
			return sanitize(values), nil
		}

		if values, ok := synthesized[name]; ok {
			return values, nil
		}

		parent, ok := plan.parent(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", selector.ErrMissingColumn, name)
		}

		parentValues, err := lookup(parent)
		if err != nil {
			return nil, fmt.Errorf("%w (derived from %v)", err, plan.roots(name))
		}

		_, suffix, _ := expand.Parse(name)
		values := expand.FromParent(parentValues, suffix)
		synthesized[name] = values

		a.log.WithFields(logrus.Fields{
			"column": name,
			"parent": parent,
		}).Trace("Synthesized derived column")

		return values, nil
	}

	columns := make([][]float64, len(names))
	for j, name := range names {
		values, err := lookup(name)
		if err != nil {
			return nil, err
		}

		if len(values) != tbl.Frames() {
			return nil, fmt.Errorf("%w: %s has %d frames, table has %d", selector.ErrFrameMismatch, name, len(values), tbl.Frames())
		}

		columns[j] = values
	}

	return columns, nil
}

// Demean returns values minus their mean. The mean is taken over frames the
// mask retains; a nil mask retains every frame. Every frame is shifted.
func Demean(values []float64, mask table.ScrubMask) []float64 {
	sum, n := 0.0, 0
	for i, v := range values {
		if i < len(mask) && mask[i] {
			continue
		}
		sum += v
		n++
	}

	out := make([]float64, len(values))
	copy(out, values)

	if n == 0 {
		return out
	}

	mean := sum / float64(n)
	for i := range out {
		out[i] -= mean
	}

	return out
}

// sanitize returns a copy with undefined values replaced by 0
func sanitize(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			out[i] = v
		}
	}

	return out
}

// mergeMask excludes a frame when either mask excludes it
func mergeMask(a, b table.ScrubMask) table.ScrubMask {
	if b == nil {
		return a
	}

	if a == nil {
		return b.Clone()
	}

	out := a.Clone()
	for i, excluded := range b {
		if i < len(out) {
			out[i] = out[i] || excluded
		}
	}

	return out
}

func rows(columns [][]float64, frames int) [][]float64 {
	matrix := make([][]float64, frames)
	for i := range matrix {
		row := make([]float64, len(columns))
		for j, col := range columns {
			row[j] = col[i]
		}
		matrix[i] = row
	}

	return matrix
}
