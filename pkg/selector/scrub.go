package selector

import (
	"fmt"

	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/ethpandaops/confounds/pkg/table"
)

// outlierPrefix names the one-hot censoring regressors, as fMRIprep does
const outlierPrefix = "motion_outlier_"

// Scrub censors high-motion frames with one indicator regressor per excluded
// frame.
//
// A frame is excluded when its framewise displacement or standardized DVARS
// exceeds the threshold. In full mode, every run of retained frames shorter
// than MinRunLength that lies between two excluded frames is excluded too
// (Power et al., 2014). Runs touching the first or last frame are bounded on
// one side only and are left alone; this is a deliberate policy.
type Scrub struct{}

// NewScrub creates the scrubbing selector
func NewScrub() *Scrub {
	return &Scrub{}
}

// Category implements Selector
func (s *Scrub) Category() strategy.Category {
	return strategy.CategoryScrub
}

// Select implements Selector
func (s *Scrub) Select(in Input, entry strategy.Entry) (Selection, error) {
	fd, ok := in.Table.Column(strategy.ColumnFramewiseDisplacement)
	if !ok {
		return nil, &strategy.DependencyError{Category: strategy.CategoryScrub, Columns: []string{strategy.ColumnFramewiseDisplacement}}
	}

	dvars, ok := in.Table.Column(strategy.ColumnStdDVARS)
	if !ok {
		return nil, &strategy.DependencyError{Category: strategy.CategoryScrub, Columns: []string{strategy.ColumnStdDVARS}}
	}

	mask := ThresholdMask(fd, dvars, entry.FDThreshold, entry.DVARSThreshold)
	if entry.Mode == strategy.ModeFull {
		mask = SuppressShortRuns(mask, entry.MinRunLength)
	}

	indicators := Indicators(mask)

	names := make([]string, len(indicators))
	series := make(map[string][]float64, len(indicators))
	for i, col := range indicators {
		names[i] = col.Name
		series[col.Name] = col.Values
	}

	return Regressors{Names: names, Series: series, Mask: mask}, nil
}

// ThresholdMask excludes frames whose displacement or standardized DVARS
// exceeds its threshold. NaN values never exceed a threshold.
func ThresholdMask(fd, dvars []float64, fdThreshold, dvarsThreshold float64) table.ScrubMask {
	n := len(fd)
	if len(dvars) > n {
		n = len(dvars)
	}

	mask := make(table.ScrubMask, n)
	for i := range mask {
		mask[i] = (i < len(fd) && fd[i] > fdThreshold) ||
			(i < len(dvars) && dvars[i] > dvarsThreshold)
	}

	return mask
}

// SuppressShortRuns returns a copy of mask where every interior run of
// retained frames shorter than minRun is excluded
func SuppressShortRuns(mask table.ScrubMask, minRun int) table.ScrubMask {
	out := mask.Clone()

	i := 0
	for i < len(out) {
		if out[i] {
			i++
			continue
		}

		start := i
		for i < len(out) && !out[i] {
			i++
		}

		interior := start > 0 && i < len(out)
		if interior && i-start < minRun {
			for j := start; j < i; j++ {
				out[j] = true
			}
		}
	}

	return out
}

// Indicators returns one column per excluded frame, 1 at that frame and 0
// elsewhere, in frame order
func Indicators(mask table.ScrubMask) []table.Column {
	indices := mask.Indices()
	cols := make([]table.Column, len(indices))

	for k, frame := range indices {
		values := make([]float64, len(mask))
		values[frame] = 1
		cols[k] = table.Column{
			Name:   fmt.Sprintf("%s%02d", outlierPrefix, k),
			Values: values,
		}
	}

	return cols
}
