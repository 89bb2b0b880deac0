// Package loader reads fMRIprep derivatives into confound tables and metadata
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnrecognizedPath is returned for a path that is neither a BOLD image nor a confounds file
	ErrUnrecognizedPath = errors.New("unrecognized fMRIprep path")
	// ErrMalformedTable is returned when a TSV cannot be parsed
	ErrMalformedTable = errors.New("malformed table")
	// ErrMalformedSidecar is returned when a confounds JSON sidecar cannot be parsed
	ErrMalformedSidecar = errors.New("malformed sidecar")
	// ErrMalformedNoiseList is returned when the AROMA noise list cannot be parsed
	ErrMalformedNoiseList = errors.New("malformed noise component list")
)

// fMRIprep file name fragments
const (
	suffixTimeseries  = "_desc-confounds_timeseries.tsv"
	suffixLegacy      = "_desc-confounds_regressors.tsv"
	suffixMixing      = "_desc-MELODIC_mixing.tsv"
	suffixNoiseICs    = "_AROMAnoiseICs.csv"
	suffixPreDenoised = "_desc-smoothAROMAnonaggr_bold.nii.gz"
	entitySpace       = "_space-"

	// aromaSpace is the only space ICA-AROMA writes its outputs in
	aromaSpace = "MNI152NLin6Asym"
)

// Paths locates every file that belongs to one BOLD run
type Paths struct {
	Confounds   string
	Sidecar     string
	Mixing      string
	NoiseICs    string
	PreDenoised string
}

// ResolvePaths maps a BOLD image or a confounds TSV to the files fMRIprep
// writes next to it. For a BOLD image the current confounds name is preferred
// and the legacy regressors name is used when only it exists on disk.
func ResolvePaths(path string) (Paths, error) {
	dir, file := filepath.Split(path)

	var prefix, confounds string

	switch {
	case strings.HasSuffix(file, ".nii") || strings.HasSuffix(file, ".nii.gz"):
		idx := strings.Index(file, entitySpace)
		if idx < 0 {
			return Paths{}, fmt.Errorf("%w: %s has no space entity", ErrUnrecognizedPath, path)
		}

		prefix = file[:idx]
		confounds = filepath.Join(dir, prefix+suffixTimeseries)

		if _, err := os.Stat(confounds); err != nil {
			legacy := filepath.Join(dir, prefix+suffixLegacy)
			if _, legacyErr := os.Stat(legacy); legacyErr == nil {
				confounds = legacy
			}
		}
	case strings.HasSuffix(file, suffixTimeseries):
		prefix = strings.TrimSuffix(file, suffixTimeseries)
		confounds = path
	case strings.HasSuffix(file, suffixLegacy):
		prefix = strings.TrimSuffix(file, suffixLegacy)
		confounds = path
	default:
		return Paths{}, fmt.Errorf("%w: %s", ErrUnrecognizedPath, path)
	}

	return Paths{
		Confounds:   confounds,
		Sidecar:     strings.TrimSuffix(confounds, ".tsv") + ".json",
		Mixing:      filepath.Join(dir, prefix+suffixMixing),
		NoiseICs:    filepath.Join(dir, prefix+suffixNoiseICs),
		PreDenoised: filepath.Join(dir, prefix+entitySpace+aromaSpace+suffixPreDenoised),
	}, nil
}

// Stem returns the confounds file name without its extension
func (p Paths) Stem() string {
	return strings.TrimSuffix(filepath.Base(p.Confounds), ".tsv")
}
