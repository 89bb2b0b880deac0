package strategy

import (
	"strconv"
)

// Frame-quality columns scrubbing depends on
const (
	ColumnFramewiseDisplacement = "framewise_displacement"
	ColumnStdDVARS              = "std_dvars"
)

// ColumnSet reports which columns a confound table provides
type ColumnSet interface {
	Has(name string) bool
}

// exclusionRule forbids a category, in a given mode, from coexisting with others
type exclusionRule struct {
	category  Category
	mode      Mode
	conflicts []Category
	reason    string
}

// exclusionRules lists the mutual-exclusion table. ICA full mode denoises by
// substituting the pre-denoised image, so regressing motion or CompCor on top
// would denoise twice.
func exclusionRules() []exclusionRule {
	return []exclusionRule{
		{
			category:  CategoryICA,
			mode:      ModeFull,
			conflicts: []Category{CategoryMotion, CategoryCompCor},
			reason:    "the pre-denoised image already removes this signal",
		},
	}
}

// companionRules lists the table columns each category requires
func companionRules() map[Category][]string {
	return map[Category][]string{
		CategoryScrub: {ColumnFramewiseDisplacement, ColumnStdDVARS},
	}
}

// Validate checks a strategy and returns a copy with every unset parameter
// filled from defaults. Checks run in order and stop at the first violation:
// recognized and unique categories, parameter domains, mutual exclusion, then
// companion columns. The companion check is skipped when columns is nil.
func Validate(s Strategy, defaults Defaults, columns ColumnSet) (Strategy, error) {
	if len(s.Entries) == 0 {
		return Strategy{}, &StrategyError{Rule: RuleEmpty, Reason: "no categories selected"}
	}

	seen := make(map[Category]bool, len(s.Entries))
	for _, e := range s.Entries {
		if !e.Category.Valid() {
			return Strategy{}, &StrategyError{Rule: RuleUnknownCategory, Value: string(e.Category)}
		}

		if seen[e.Category] {
			return Strategy{}, &StrategyError{Rule: RuleDuplicateCategory, Category: e.Category}
		}
		seen[e.Category] = true
	}

	out := s.Clone()
	for i := range out.Entries {
		out.Entries[i] = defaults.withDefaults(out.Entries[i])

		if err := checkParams(out.Entries[i]); err != nil {
			return Strategy{}, err
		}
	}

	for _, rule := range exclusionRules() {
		e, ok := out.Get(rule.category)
		if !ok || e.Mode != rule.mode {
			continue
		}

		for _, conflict := range rule.conflicts {
			if out.Has(conflict) {
				return Strategy{}, &StrategyError{
					Rule:     RuleMutualExclusion,
					Category: rule.category,
					Field:    "mode",
					Value:    string(rule.mode),
					Reason:   "cannot be combined with " + string(conflict) + ": " + rule.reason,
				}
			}
		}
	}

	if columns == nil {
		return out, nil
	}

	companions := companionRules()
	for _, e := range out.Entries {
		var missing []string
		for _, col := range companions[e.Category] {
			if !columns.Has(col) {
				missing = append(missing, col)
			}
		}

		if len(missing) > 0 {
			return Strategy{}, &DependencyError{Category: e.Category, Columns: missing}
		}
	}

	return out, nil
}

// paramField describes one parameter of an entry for domain checks
type paramField struct {
	name  string
	set   bool
	valid bool
	value string
}

func fields(e Entry) []paramField {
	return []paramField{
		{"level", e.Level != "", e.Level.Valid(), string(e.Level)},
		{"mask", e.Mask != "", e.Mask.Valid(), string(e.Mask)},
		{"mode", e.Mode != "", e.Mode.Valid(), string(e.Mode)},
		{"fdThreshold", e.FDThreshold != 0, e.FDThreshold > 0, formatFloat(e.FDThreshold)},
		{"dvarsThreshold", e.DVARSThreshold != 0, e.DVARSThreshold > 0, formatFloat(e.DVARSThreshold)},
		{"minRunLength", e.MinRunLength != 0, e.MinRunLength >= 1, strconv.Itoa(e.MinRunLength)},
		{"varianceTarget", e.VarianceTarget != 0, e.VarianceTarget > 0 && e.VarianceTarget <= 1, formatFloat(e.VarianceTarget)},
		{"maxComponents", e.MaxComponents != 0, e.MaxComponents >= 1, strconv.Itoa(e.MaxComponents)},
	}
}

// accepted lists the parameters each category takes
func accepted(c Category) map[string]bool {
	switch c {
	case CategoryMotion, CategoryWMCSF, CategoryGlobal:
		return map[string]bool{"level": true}
	case CategoryCompCor:
		return map[string]bool{"mask": true, "varianceTarget": true, "maxComponents": true}
	case CategoryICA:
		return map[string]bool{"mode": true}
	case CategoryScrub:
		return map[string]bool{"mode": true, "fdThreshold": true, "dvarsThreshold": true, "minRunLength": true}
	case CategoryHighPass:
		return map[string]bool{}
	default:
		return map[string]bool{}
	}
}

func checkParams(e Entry) error {
	allowed := accepted(e.Category)

	for _, f := range fields(e) {
		if !f.set {
			continue
		}

		if !allowed[f.name] {
			return &StrategyError{
				Rule:     RuleParameterDomain,
				Category: e.Category,
				Field:    f.name,
				Value:    f.value,
				Reason:   "parameter not accepted by this category",
			}
		}

		if !f.valid {
			return &StrategyError{
				Rule:     RuleParameterDomain,
				Category: e.Category,
				Field:    f.name,
				Value:    f.value,
				Reason:   "value out of range",
			}
		}
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
