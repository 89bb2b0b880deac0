// Package output writes resolved regressors and batch reports
package output

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var (
	// ErrInvalidName is returned when a rendered output name is empty or escapes the output directory
	ErrInvalidName = errors.New("invalid output name")
	// ErrInvalidTemplate is returned when the name template cannot be parsed
	ErrInvalidTemplate = errors.New("invalid name template")
)

// DefaultNameTemplate names outputs after the confounds file and the strategy
const DefaultNameTemplate = `{{ .Stem | trimSuffix "_timeseries" | trimSuffix "_regressors" | trimSuffix "_desc-confounds" }}_desc-{{ .Strategy | replace "_" "" }}_confounds.tsv`

// NameData is what a name template can reference
type NameData struct {
	// Stem is the confounds file name without extension
	Stem       string
	Strategy   string
	RunID      string
	Regressors int
}

// Namer renders output file names with Sprig functions
type Namer struct {
	tmpl *template.Template
}

// NewNamer parses a name template
func NewNamer(text string) (*Namer, error) {
	tmpl, err := template.New("name").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	return &Namer{tmpl: tmpl}, nil
}

// Name renders the template. The result must be a relative path that stays
// inside the output directory.
func (n *Namer) Name(data NameData) (string, error) {
	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute name template: %w", err)
	}

	name := strings.TrimSpace(buf.String())
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}

	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}

	return clean, nil
}
