package strategy

import (
	"sort"

	"github.com/ethpandaops/confounds/pkg/expand"
)

// Preset names
const (
	PresetMinimal     = "minimal"
	PresetMinimalGlob = "minimal_glob"
	PresetScrubbing   = "scrubbing"
	PresetCompCor     = "compcor"
	PresetICAAROMA    = "ica_aroma"
)

// presets returns the named strategies
func presets() map[string]Strategy {
	return map[string]Strategy{
		PresetMinimal: New(
			Entry{Category: CategoryMotion, Params: Params{Level: expand.LevelFull}},
			Entry{Category: CategoryHighPass},
			Entry{Category: CategoryWMCSF, Params: Params{Level: expand.LevelBasic}},
		),
		PresetMinimalGlob: New(
			Entry{Category: CategoryMotion, Params: Params{Level: expand.LevelFull}},
			Entry{Category: CategoryHighPass},
			Entry{Category: CategoryWMCSF, Params: Params{Level: expand.LevelBasic}},
			Entry{Category: CategoryGlobal, Params: Params{Level: expand.LevelBasic}},
		),
		PresetScrubbing: New(
			Entry{Category: CategoryMotion, Params: Params{Level: expand.LevelFull}},
			Entry{Category: CategoryHighPass},
			Entry{Category: CategoryWMCSF, Params: Params{Level: expand.LevelFull}},
			Entry{Category: CategoryScrub, Params: Params{Mode: ModeFull}},
		),
		PresetCompCor: New(
			Entry{Category: CategoryMotion, Params: Params{Level: expand.LevelFull}},
			Entry{Category: CategoryHighPass},
			Entry{Category: CategoryCompCor, Params: Params{Mask: MaskAnatomical}},
		),
		PresetICAAROMA: New(
			Entry{Category: CategoryHighPass},
			Entry{Category: CategoryWMCSF, Params: Params{Level: expand.LevelBasic}},
			Entry{Category: CategoryICA, Params: Params{Mode: ModeFull}},
		),
	}
}

// Presets returns the preset names in lexical order
func Presets() []string {
	all := presets()

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Preset returns a copy of a named strategy
func Preset(name string) (Strategy, error) {
	s, ok := presets()[name]
	if !ok {
		return Strategy{}, &StrategyError{Rule: RuleUnknownPreset, Value: name}
	}

	return s, nil
}

// Spec is the declarative form of a strategy as written in configuration.
// Categories listed explicitly replace the preset's entry for the same
// category, or are appended after the preset's entries.
type Spec struct {
	Preset     string  `yaml:"preset,omitempty"`
	Categories []Entry `yaml:"categories,omitempty"`
}

// Name identifies the strategy in output names: the preset, or "custom" when
// categories are listed without one
func (s Spec) Name() string {
	if s.Preset != "" {
		return s.Preset
	}

	return "custom"
}

// Build resolves the declaration into a strategy. The result still has to pass Validate.
func (s Spec) Build() (Strategy, error) {
	var out Strategy

	if s.Preset != "" {
		preset, err := Preset(s.Preset)
		if err != nil {
			return Strategy{}, err
		}
		out = preset
	}

	// only preset entries are replaced, so explicit duplicates still reach Validate
	fromPreset := len(out.Entries)
	overridden := make(map[int]bool, fromPreset)

	for _, e := range s.Categories {
		replaced := false
		for i := 0; i < fromPreset; i++ {
			if out.Entries[i].Category == e.Category && !overridden[i] {
				out.Entries[i] = e
				overridden[i] = true
				replaced = true

				break
			}
		}

		if !replaced {
			out.Entries = append(out.Entries, e)
		}
	}

	return out, nil
}
