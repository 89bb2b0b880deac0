// Package table holds the in-memory confound table produced by fMRIprep and
// the sidecar metadata that describes its data-driven components.
package table

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyColumnName is returned when a column has no name
	ErrEmptyColumnName = errors.New("column name is required")
	// ErrDuplicateColumn is returned when two columns share a name
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrLengthMismatch is returned when columns have different frame counts
	ErrLengthMismatch = errors.New("column length does not match frame count")
)

// Column is a named time series, one value per frame
type Column struct {
	Name   string
	Values []float64
}

// Table is an ordered, read-only mapping from column name to time series.
// All columns share the same frame count.
type Table struct {
	names  []string
	index  map[string]int
	values [][]float64
	frames int
}

// New builds a table from columns in the given order
func New(columns ...Column) (*Table, error) {
	t := &Table{
		names:  make([]string, 0, len(columns)),
		index:  make(map[string]int, len(columns)),
		values: make([][]float64, 0, len(columns)),
	}

	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("%w: column %d", ErrEmptyColumnName, i)
		}

		if _, exists := t.index[col.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, col.Name)
		}

		if i == 0 {
			t.frames = len(col.Values)
		} else if len(col.Values) != t.frames {
			return nil, fmt.Errorf("%w: %s has %d frames, expected %d", ErrLengthMismatch, col.Name, len(col.Values), t.frames)
		}

		t.index[col.Name] = len(t.names)
		t.names = append(t.names, col.Name)
		t.values = append(t.values, col.Values)
	}

	return t, nil
}

// Names returns the column names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)

	return names
}

// Frames returns the number of time frames
func (t *Table) Frames() int {
	return t.frames
}

// Len returns the number of columns
func (t *Table) Len() int {
	return len(t.names)
}

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]

	return ok
}

// Position returns the column's index in table order, or -1
func (t *Table) Position(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}

	return -1
}

// Column returns the series for name. The returned slice is shared with the
// table and must not be modified.
func (t *Table) Column(name string) ([]float64, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}

	return t.values[i], true
}

// Missing returns the names that are not columns of the table, in input order
func (t *Table) Missing(names ...string) []string {
	var missing []string

	for _, name := range names {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}

	return missing
}
