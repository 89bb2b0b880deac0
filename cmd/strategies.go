package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/spf13/cobra"
)

// strategiesCmd lists the preset strategies
//
//nolint:gochecknoglobals // Cobra commands are typically global
var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List preset strategies",
	Long:  `List the preset strategies with the categories and parameters each one selects.`,
	Args:  cobra.NoArgs,
	RunE:  runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PRESET\tCATEGORIES")

	for _, name := range strategy.Presets() {
		s, err := strategy.Preset(name)
		if err != nil {
			return err
		}

		entries := make([]string, len(s.Entries))
		for i, e := range s.Entries {
			entries[i] = e.String()
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(entries, ", "))
	}

	return w.Flush()
}
