package selector

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ethpandaops/confounds/pkg/strategy"
)

// cosinePrefix names fMRIprep's discrete cosine basis columns (cosine00, cosine01, ...)
const cosinePrefix = "cosine"

// HighPass selects the discrete cosine basis regressors
type HighPass struct{}

// NewHighPass creates the high-pass selector
func NewHighPass() *HighPass {
	return &HighPass{}
}

// Category implements Selector
func (h *HighPass) Category() strategy.Category {
	return strategy.CategoryHighPass
}

// Select implements Selector. A table without cosine columns yields an empty
// selection rather than an error.
func (h *HighPass) Select(in Input, _ strategy.Entry) (Selection, error) {
	type basis struct {
		name  string
		index int
	}

	var found []basis
	for _, name := range in.Table.Names() {
		if idx, ok := cosineIndex(name); ok {
			found = append(found, basis{name: name, index: idx})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].index < found[j].index
	})

	names := make([]string, len(found))
	for i, b := range found {
		names[i] = b.name
	}

	return Regressors{Names: names}, nil
}

// cosineIndex parses the basis index of a cosine column
func cosineIndex(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, cosinePrefix)
	if !ok || digits == "" {
		return 0, false
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	idx, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	return idx, true
}
