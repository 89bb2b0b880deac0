package loader

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ethpandaops/confounds/pkg/table"
)

// missingValue is how fMRIprep writes undefined cells
const missingValue = "n/a"

// compCorTag marks CompCor components in the sidecar
const compCorTag = "comp_cor_"

// ComponentName returns the mixing-table column name of a 1-based independent component
func ComponentName(index int) string {
	return fmt.Sprintf("aroma_ic_%02d", index)
}

// ReadTSV parses a tab-separated confounds table with a header row. Empty and
// n/a cells become NaN.
func ReadTSV(r io.Reader) (*table.Table, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMalformedTable)
	}

	header := records[0]
	cols := make([]table.Column, len(header))
	for j, name := range header {
		cols[j] = table.Column{Name: strings.TrimSpace(name), Values: make([]float64, 0, len(records)-1)}
	}

	for i, record := range records[1:] {
		for j, cell := range record {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %w", ErrMalformedTable, i+1, cols[j].Name, err)
			}

			cols[j].Values = append(cols[j].Values, v)
		}
	}

	tbl, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}

	return tbl, nil
}

// ReadMixing parses a headerless MELODIC mixing matrix, one column per
// component, naming columns by their 1-based component index
func ReadMixing(r io.Reader) (*table.Table, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty mixing matrix", ErrMalformedTable)
	}

	cols := make([]table.Column, len(records[0]))
	for j := range cols {
		cols[j] = table.Column{Name: ComponentName(j + 1), Values: make([]float64, 0, len(records))}
	}

	for i, record := range records {
		for j, cell := range record {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: mixing row %d component %d: %w", ErrMalformedTable, i, j+1, err)
			}

			cols[j].Values = append(cols[j].Values, v)
		}
	}

	return table.New(cols...)
}

// ReadNoiseICs parses the comma-separated, 1-based indices of components
// classified as noise
func ReadNoiseICs(r io.Reader) (map[string]bool, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	noise := make(map[string]bool)

	for _, field := range strings.FieldsFunc(string(raw), func(c rune) bool {
		return c == ',' || c == '\n' || c == '\r' || c == ' ' || c == '\t'
	}) {
		idx, err := strconv.Atoi(field)
		if err != nil || idx < 1 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedNoiseList, field)
		}

		noise[ComponentName(idx)] = true
	}

	return noise, nil
}

// sidecarEntry is the part of a confounds JSON entry selection relies on
type sidecarEntry struct {
	VarianceExplained *float64 `json:"VarianceExplained"`
	Retained          *bool    `json:"Retained"`
}

// ReadSidecar parses the explained variance of every retained CompCor
// component from a confounds JSON sidecar
func ReadSidecar(r io.Reader) (map[string]float64, error) {
	var entries map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSidecar, err)
	}

	variance := make(map[string]float64)

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.Contains(name, compCorTag) {
			continue
		}

		var entry sidecarEntry
		if err := json.Unmarshal(entries[name], &entry); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSidecar, name, err)
		}

		if entry.VarianceExplained == nil || (entry.Retained != nil && !*entry.Retained) {
			continue
		}

		variance[name] = *entry.VarianceExplained
	}

	return variance, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
		}

		return nil, err
	}

	return records, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == missingValue {
		return math.NaN(), nil
	}

	return strconv.ParseFloat(cell, 64)
}
