package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethpandaops/confounds/pkg/table"
	"github.com/sirupsen/logrus"
)

// Loader reads a run's confound table and the metadata around it
type Loader struct {
	log logrus.FieldLogger
}

// New creates a loader
func New(log logrus.FieldLogger) *Loader {
	return &Loader{log: log.WithField("component", "loader")}
}

// Load reads the confounds TSV and, when present, the sidecar, the MELODIC
// mixing matrix and the AROMA noise list. Only the confounds TSV is required;
// selectors report the metadata they are missing.
func (l *Loader) Load(paths Paths) (*table.Table, *table.Metadata, error) {
	tbl, err := readFile(paths.Confounds, ReadTSV)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read confounds: %w", err)
	}

	meta := &table.Metadata{}
	log := l.log.WithField("confounds", paths.Confounds)

	variance, err := optional(paths.Sidecar, ReadSidecar)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sidecar: %w", err)
	}
	if variance == nil {
		log.WithField("path", paths.Sidecar).Debug("No confounds sidecar, CompCor metadata unavailable")
	}
	meta.Variance = variance

	mixing, err := optional(paths.Mixing, ReadMixing)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read mixing matrix: %w", err)
	}
	meta.Mixing = mixing

	noise, err := optional(paths.NoiseICs, ReadNoiseICs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read noise components: %w", err)
	}
	meta.Noise = noise

	if mixing == nil || noise == nil {
		log.Debug("No ICA-AROMA outputs, non-aggressive ICA unavailable")
	}

	if err := meta.Validate(); err != nil {
		return nil, nil, err
	}

	log.WithFields(logrus.Fields{
		"columns": tbl.Len(),
		"frames":  tbl.Frames(),
	}).Debug("Loaded confound table")

	return tbl, meta, nil
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T

	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}

	return out, nil
}

// optional reads path, returning the zero value when it does not exist
func optional[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	out, err := readFile(path, read)
	if errors.Is(err, os.ErrNotExist) {
		var zero T
		return zero, nil
	}

	return out, err
}
