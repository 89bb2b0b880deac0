package regressors

import (
	"fmt"
	"sort"

	"github.com/ethpandaops/confounds/pkg/expand"
	"github.com/heimdalr/dag"
)

// derivationPlan is the graph of columns the assembler has to synthesize.
// Each edge runs from a column to a term derived from it, so a squared
// derivative hangs off the derivative, which hangs off the base column.
type derivationPlan struct {
	graph *dag.DAG
}

func newDerivationPlan() *derivationPlan {
	return &derivationPlan{graph: dag.NewDAG()}
}

// require adds name and every column it is derived from
func (p *derivationPlan) require(name string) error {
	if _, err := p.graph.GetVertex(name); err == nil {
		return nil
	}

	if err := p.graph.AddVertexByID(name, name); err != nil {
		return fmt.Errorf("failed to add vertex %s: %w", name, err)
	}

	parent, ok := expand.Parent(name)
	if !ok {
		return nil
	}

	if err := p.require(parent); err != nil {
		return err
	}

	if err := p.graph.AddEdge(parent, name); err != nil {
		return fmt.Errorf("invalid derivation %s -> %s: %w", parent, name, err)
	}

	return nil
}

// parent returns the column name is computed from
func (p *derivationPlan) parent(name string) (string, bool) {
	parents, err := p.graph.GetParents(name)
	if err != nil || len(parents) == 0 {
		return "", false
	}

	for id := range parents {
		return id, true
	}

	return "", false
}

// roots returns the columns of the plan that have to come from the table,
// sorted by name
func (p *derivationPlan) roots(name string) []string {
	ancestors, err := p.graph.GetAncestors(name)
	if err != nil {
		return nil
	}

	var out []string
	for id := range ancestors {
		if _, ok := p.parent(id); !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)

	return out
}
