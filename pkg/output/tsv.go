package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ethpandaops/confounds/pkg/regressors"
)

// WriteTSV writes a regressor set as a tab-separated table with a header row
func WriteTSV(w io.Writer, set *regressors.RegressorSet) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(set.Names, "\t") + "\n"); err != nil {
		return err
	}

	cells := make([]string, len(set.Names))
	for _, row := range set.Matrix {
		for j, v := range row {
			cells[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}

		if _, err := bw.WriteString(strings.Join(cells, "\t") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}
