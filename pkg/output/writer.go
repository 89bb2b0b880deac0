package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethpandaops/confounds/pkg/batch"
	"github.com/sirupsen/logrus"
)

// Config configures where results are written
type Config struct {
	// Dir is the directory regressor tables are written to
	Dir string `yaml:"dir" default:"."`
	// NameTemplate names each table; DefaultNameTemplate when empty
	NameTemplate string `yaml:"nameTemplate"`
	// Report is the markdown report path, relative to Dir; empty disables it
	Report string `yaml:"report"`
}

// Validate checks the output configuration
func (c *Config) Validate() error {
	if _, err := NewNamer(c.template()); err != nil {
		return err
	}

	return nil
}

func (c *Config) template() string {
	if c.NameTemplate == "" {
		return DefaultNameTemplate
	}

	return c.NameTemplate
}

// Writer writes each resolved file as a TSV
type Writer struct {
	log      logrus.FieldLogger
	dir      string
	namer    *Namer
	strategy string
}

// NewWriter creates a writer for results of the named strategy
func NewWriter(log logrus.FieldLogger, cfg Config, strategyName string) (*Writer, error) {
	namer, err := NewNamer(cfg.template())
	if err != nil {
		return nil, err
	}

	return &Writer{
		log:      log.WithField("component", "output"),
		dir:      cfg.Dir,
		namer:    namer,
		strategy: strategyName,
	}, nil
}

// Path returns where a result is written
func (w *Writer) Path(r *batch.Result) (string, error) {
	data := NameData{
		Stem:     r.Paths.Stem(),
		Strategy: w.strategy,
		RunID:    r.RunID,
	}
	if r.Set != nil {
		data.Regressors = len(r.Set.Names)
	}

	name, err := w.namer.Name(data)
	if err != nil {
		return "", err
	}

	return filepath.Join(w.dir, name), nil
}

// Write writes a resolved file. Its signature matches batch.Sink.
func (w *Writer) Write(_ context.Context, r *batch.Result) error {
	path, err := w.Path(r)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteTSV(f, r.Set); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	w.log.WithFields(logrus.Fields{
		"input":  r.Input,
		"output": path,
	}).Debug("Wrote regressors")

	return nil
}
