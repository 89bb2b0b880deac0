// Package strategy defines denoising strategies and validates them against the
// compatibility rules between noise categories
package strategy

import (
	"strings"

	"github.com/ethpandaops/confounds/pkg/expand"
)

// Category identifies a family of noise regressors
type Category string

const (
	// CategoryMotion selects the six rigid-body motion parameters
	CategoryMotion Category = "motion"
	// CategoryHighPass selects the discrete cosine basis regressors
	CategoryHighPass Category = "high_pass"
	// CategoryWMCSF selects the white matter and CSF mean signals
	CategoryWMCSF Category = "wm_csf"
	// CategoryGlobal selects the whole-brain mean signal
	CategoryGlobal Category = "global"
	// CategoryCompCor selects anatomical or temporal CompCor components
	CategoryCompCor Category = "compcor"
	// CategoryICA selects ICA-AROMA noise components
	CategoryICA Category = "ica"
	// CategoryScrub selects frame-censoring indicator regressors
	CategoryScrub Category = "scrub"
)

// Categories returns every recognized category
func Categories() []Category {
	return []Category{
		CategoryMotion,
		CategoryHighPass,
		CategoryWMCSF,
		CategoryGlobal,
		CategoryCompCor,
		CategoryICA,
		CategoryScrub,
	}
}

// Valid reports whether the category is recognized
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}

	return false
}

// Mask selects the CompCor component family
type Mask string

const (
	// MaskAnatomical selects aCompCor components
	MaskAnatomical Mask = "anatomical"
	// MaskTemporal selects tCompCor components
	MaskTemporal Mask = "temporal"
	// MaskCombined selects both families, ranked together
	MaskCombined Mask = "combined"
)

// Valid reports whether the mask is supported
func (m Mask) Valid() bool {
	return m == MaskAnatomical || m == MaskTemporal || m == MaskCombined
}

// Mode selects between the basic and full behaviour of ICA and scrubbing
type Mode string

const (
	// ModeBasic is the plain behaviour of a category
	ModeBasic Mode = "basic"
	// ModeFull is the extended behaviour of a category
	ModeFull Mode = "full"
)

// Valid reports whether the mode is supported
func (m Mode) Valid() bool {
	return m == ModeBasic || m == ModeFull
}

// Params holds the per-category parameters. Zero values are replaced by
// defaults during validation; fields a category does not accept must be left
// unset.
type Params struct {
	Level          expand.Level `yaml:"level,omitempty"`
	Mask           Mask         `yaml:"mask,omitempty"`
	Mode           Mode         `yaml:"mode,omitempty"`
	FDThreshold    float64      `yaml:"fdThreshold,omitempty"`
	DVARSThreshold float64      `yaml:"dvarsThreshold,omitempty"`
	MinRunLength   int          `yaml:"minRunLength,omitempty"`
	VarianceTarget float64      `yaml:"varianceTarget,omitempty"`
	MaxComponents  int          `yaml:"maxComponents,omitempty"`
}

// Entry is one category of a strategy with its parameters
type Entry struct {
	Category Category `yaml:"category"`
	Params   `yaml:",inline"`
}

// String renders the category and its set parameters, e.g. motion(level=full)
func (e Entry) String() string {
	var set []string
	for _, f := range fields(e) {
		if f.set {
			set = append(set, f.name+"="+f.value)
		}
	}

	if len(set) == 0 {
		return string(e.Category)
	}

	return string(e.Category) + "(" + strings.Join(set, ", ") + ")"
}

// Strategy is an ordered set of categories. The order of entries is the
// column order of the assembled regressors.
type Strategy struct {
	Entries []Entry
}

// New builds a strategy from entries in order
func New(entries ...Entry) Strategy {
	out := make([]Entry, len(entries))
	copy(out, entries)

	return Strategy{Entries: out}
}

// Categories returns the category identifiers in strategy order
func (s Strategy) Categories() []Category {
	out := make([]Category, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Category
	}

	return out
}

// Has reports whether the strategy includes a category
func (s Strategy) Has(c Category) bool {
	_, ok := s.Get(c)

	return ok
}

// Get returns the entry of a category
func (s Strategy) Get(c Category) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Category == c {
			return e, true
		}
	}

	return Entry{}, false
}

// Clone returns a copy whose entries can be modified independently
func (s Strategy) Clone() Strategy {
	return New(s.Entries...)
}

// ICAFull reports whether the strategy substitutes the pre-denoised image for
// ICA regression
func (s Strategy) ICAFull() bool {
	e, ok := s.Get(CategoryICA)

	return ok && e.Mode == ModeFull
}
