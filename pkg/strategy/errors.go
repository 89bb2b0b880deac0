package strategy

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy errors
var (
	// ErrInvalidStrategy is returned when a strategy breaks a compatibility rule
	ErrInvalidStrategy = errors.New("invalid strategy")
	// ErrMissingDependency is returned when a category's companion columns are absent
	ErrMissingDependency = errors.New("missing dependency")
)

// Rule names the compatibility rule a strategy violated
type Rule string

const (
	// RuleUnknownCategory is violated by an unrecognized category identifier
	RuleUnknownCategory Rule = "unknown_category"
	// RuleDuplicateCategory is violated when a category appears twice
	RuleDuplicateCategory Rule = "duplicate_category"
	// RuleParameterDomain is violated by a parameter outside its enumeration or range
	RuleParameterDomain Rule = "parameter_domain"
	// RuleMutualExclusion is violated by two categories that cannot coexist
	RuleMutualExclusion Rule = "mutual_exclusion"
	// RuleUnknownPreset is violated by an unrecognized preset name
	RuleUnknownPreset Rule = "unknown_preset"
	// RuleEmpty is violated by a strategy without categories
	RuleEmpty Rule = "empty"
)

// StrategyError carries the first rule a strategy violated
type StrategyError struct {
	Rule     Rule
	Category Category
	Field    string
	Value    string
	Reason   string
}

// Error implements error
func (e *StrategyError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s", ErrInvalidStrategy, e.Rule)

	if e.Category != "" {
		fmt.Fprintf(&b, ": category %q", string(e.Category))
	}

	if e.Field != "" {
		fmt.Fprintf(&b, " %s=%q", e.Field, e.Value)
	} else if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}

	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}

	return b.String()
}

// Unwrap allows errors.Is(err, ErrInvalidStrategy)
func (e *StrategyError) Unwrap() error {
	return ErrInvalidStrategy
}

// DependencyError names the companion columns a category needs but the table lacks
type DependencyError struct {
	Category Category
	Columns  []string
}

// Error implements error
func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: category %q requires columns %s", ErrMissingDependency, string(e.Category), strings.Join(e.Columns, ", "))
}

// Unwrap allows errors.Is(err, ErrMissingDependency)
func (e *DependencyError) Unwrap() error {
	return ErrMissingDependency
}
