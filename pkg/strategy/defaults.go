package strategy

import (
	"errors"
	"fmt"

	"github.com/ethpandaops/confounds/pkg/expand"
)

const (
	// DefaultFDThreshold is the framewise displacement, in mm, above which a
	// frame is censored
	DefaultFDThreshold = 0.5
	// DefaultDVARSThreshold is the standardized DVARS above which a frame is
	// censored
	DefaultDVARSThreshold = 1.5
	// DefaultMinRunLength is the shortest run of retained frames kept between
	// two censored frames when scrubbing in full mode
	DefaultMinRunLength = 5
	// DefaultVarianceTarget is the cumulative explained variance at which
	// CompCor selection stops. It matches the 50% criterion fMRIprep uses to
	// decide which components to retain; the source method leaves the value
	// open, so it is overridable per strategy.
	DefaultVarianceTarget = 0.5
	// DefaultMaxComponents caps the number of CompCor components kept even if
	// the variance target is not reached. Also a chosen value, overridable.
	DefaultMaxComponents = 10
)

var (
	// ErrInvalidDefaults is returned when a configured default is out of range
	ErrInvalidDefaults = errors.New("invalid strategy defaults")
)

// Defaults are the process-wide values used for parameters a strategy leaves
// unset
type Defaults struct {
	FDThreshold    float64 `yaml:"fdThreshold" default:"0.5"`
	DVARSThreshold float64 `yaml:"dvarsThreshold" default:"1.5"`
	MinRunLength   int     `yaml:"minRunLength" default:"5"`
	VarianceTarget float64 `yaml:"varianceTarget" default:"0.5"`
	MaxComponents  int     `yaml:"maxComponents" default:"10"`
}

// DefaultDefaults returns the documented defaults
func DefaultDefaults() Defaults {
	return Defaults{
		FDThreshold:    DefaultFDThreshold,
		DVARSThreshold: DefaultDVARSThreshold,
		MinRunLength:   DefaultMinRunLength,
		VarianceTarget: DefaultVarianceTarget,
		MaxComponents:  DefaultMaxComponents,
	}
}

// Validate checks that each default is usable
func (d *Defaults) Validate() error {
	switch {
	case d.FDThreshold <= 0:
		return fmt.Errorf("%w: fdThreshold must be positive", ErrInvalidDefaults)
	case d.DVARSThreshold <= 0:
		return fmt.Errorf("%w: dvarsThreshold must be positive", ErrInvalidDefaults)
	case d.MinRunLength < 1:
		return fmt.Errorf("%w: minRunLength must be at least 1", ErrInvalidDefaults)
	case d.VarianceTarget <= 0 || d.VarianceTarget > 1:
		return fmt.Errorf("%w: varianceTarget must be within (0, 1]", ErrInvalidDefaults)
	case d.MaxComponents < 1:
		return fmt.Errorf("%w: maxComponents must be at least 1", ErrInvalidDefaults)
	}

	return nil
}

// defaultLevel is the expansion level used when a category omits one
func defaultLevel(c Category) expand.Level {
	if c == CategoryMotion {
		return expand.LevelFull
	}

	return expand.LevelBasic
}

// withDefaults fills the unset parameters a category accepts
func (d Defaults) withDefaults(e Entry) Entry {
	switch e.Category {
	case CategoryMotion, CategoryWMCSF, CategoryGlobal:
		if e.Level == "" {
			e.Level = defaultLevel(e.Category)
		}
	case CategoryCompCor:
		if e.Mask == "" {
			e.Mask = MaskAnatomical
		}
		if e.VarianceTarget == 0 {
			e.VarianceTarget = d.VarianceTarget
		}
		if e.MaxComponents == 0 {
			e.MaxComponents = d.MaxComponents
		}
	case CategoryICA:
		if e.Mode == "" {
			e.Mode = ModeFull
		}
	case CategoryScrub:
		if e.Mode == "" {
			e.Mode = ModeFull
		}
		if e.FDThreshold == 0 {
			e.FDThreshold = d.FDThreshold
		}
		if e.DVARSThreshold == 0 {
			e.DVARSThreshold = d.DVARSThreshold
		}
		if e.MinRunLength == 0 {
			e.MinRunLength = d.MinRunLength
		}
	case CategoryHighPass:
	}

	return e
}
