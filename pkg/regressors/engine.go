package regressors

import (
	"fmt"

	"github.com/ethpandaops/confounds/pkg/selector"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/ethpandaops/confounds/pkg/table"
	"github.com/sirupsen/logrus"
)

// Engine resolves a strategy against one confound table
type Engine struct {
	log       logrus.FieldLogger
	registry  *selector.Registry
	defaults  strategy.Defaults
	assembler *Assembler
}

// NewEngine creates an engine. A nil registry uses the built-in selectors.
func NewEngine(log logrus.FieldLogger, registry *selector.Registry, defaults strategy.Defaults, opts Options) *Engine {
	if registry == nil {
		registry = selector.NewRegistry()
	}

	return &Engine{
		log:       log.WithField("component", "engine"),
		registry:  registry,
		defaults:  defaults,
		assembler: NewAssembler(log, opts),
	}
}

// Resolve validates s, runs the selector of every category in strategy order
// and assembles the result. The first error aborts resolution.
func (e *Engine) Resolve(s strategy.Strategy, tbl *table.Table, meta *table.Metadata) (*RegressorSet, error) {
	if tbl == nil {
		return nil, ErrNilTable
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}

	validated, err := strategy.Validate(s, e.defaults, tbl)
	if err != nil {
		return nil, err
	}

	bindings, err := e.registry.Bind(validated)
	if err != nil {
		return nil, err
	}

	in := selector.Input{Table: tbl, Metadata: meta}
	contributions := make([]Contribution, 0, len(bindings))

	for _, b := range bindings {
		sel, err := b.Select(in)
		if err != nil {
			return nil, err
		}

		contributions = append(contributions, Contribution{Category: b.Entry.Category, Selection: sel})
	}

	set, err := e.assembler.Assemble(tbl, contributions)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble regressors: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"categories": validated.Categories(),
		"regressors": len(set.Names),
	}).Debug("Resolved strategy")

	return set, nil
}
