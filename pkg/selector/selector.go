// Package selector maps each noise category to the regressor columns it
// contributes
package selector

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/ethpandaops/confounds/pkg/table"
)

var (
	// ErrSelectorNotRegistered is returned when no selector handles a category
	ErrSelectorNotRegistered = errors.New("no selector registered for category")
	// ErrMissingColumn is returned when an expected column is absent from the table
	ErrMissingColumn = errors.New("missing column")
	// ErrInsufficientComponents is returned when a CompCor family has nothing to select
	ErrInsufficientComponents = errors.New("insufficient components")
	// ErrFrameMismatch is returned when an auxiliary table's frame count differs from the confounds
	ErrFrameMismatch = errors.New("frame count mismatch")
)

// Input is the read-only data every selector works from
type Input struct {
	Table    *table.Table
	Metadata *table.Metadata
}

// Selector resolves one category into a Selection
type Selector interface {
	// Category returns the category this selector handles
	Category() strategy.Category

	// Select returns the category's contribution for validated parameters
	Select(in Input, entry strategy.Entry) (Selection, error)
}

// Selection is the outcome of a selector: either Regressors or Substitution.
// Callers must handle both.
type Selection interface {
	selection()
}

// Regressors lists the columns a category contributes, in output order.
// Series holds values for columns that are not in the confound table; every
// other name is read from the table or synthesized by the assembler.
type Regressors struct {
	Names  []string
	Series map[string][]float64
	Mask   table.ScrubMask
}

func (Regressors) selection() {}

// Substitution tells the caller to denoise by swapping in a pre-denoised
// image instead of regressing this category's signal
type Substitution struct {
	Category strategy.Category
	Reason   string
}

func (Substitution) selection() {}

// Registry maps categories to their selectors
type Registry struct {
	mu        sync.RWMutex
	selectors map[strategy.Category]Selector
}

// NewRegistry returns a registry holding the built-in selector of every category
func NewRegistry() *Registry {
	r := &Registry{
		selectors: make(map[strategy.Category]Selector),
	}

	r.Register(NewMotion())
	r.Register(NewHighPass())
	r.Register(NewWMCSF())
	r.Register(NewGlobal())
	r.Register(NewCompCor())
	r.Register(NewICA())
	r.Register(NewScrub())

	return r
}

// Register adds or replaces the selector for its category
func (r *Registry) Register(s Selector) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selectors[s.Category()] = s
}

// Lookup returns the selector for a category
func (r *Registry) Lookup(c strategy.Category) (Selector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.selectors[c]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSelectorNotRegistered, c)
	}

	return s, nil
}

// Binding pairs a validated strategy entry with its selector
type Binding struct {
	Entry    strategy.Entry
	Selector Selector
}

// Bind resolves every entry of a strategy to its selector, in strategy order
func (r *Registry) Bind(s strategy.Strategy) ([]Binding, error) {
	bindings := make([]Binding, 0, len(s.Entries))

	for _, e := range s.Entries {
		sel, err := r.Lookup(e.Category)
		if err != nil {
			return nil, err
		}

		bindings = append(bindings, Binding{Entry: e, Selector: sel})
	}

	return bindings, nil
}

// Select runs the bound selector
func (b Binding) Select(in Input) (Selection, error) {
	return b.Selector.Select(in, b.Entry)
}

// requireColumns fails with ErrMissingColumn on the first name absent from the table
func requireColumns(c strategy.Category, tbl *table.Table, names []string) error {
	if missing := tbl.Missing(names...); len(missing) > 0 {
		return fmt.Errorf("%w: category %s: %s", ErrMissingColumn, c, missing[0])
	}

	return nil
}
