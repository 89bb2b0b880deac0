package cmd

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/confounds/pkg/loader"
	"github.com/ethpandaops/confounds/pkg/regressors"
	"github.com/ethpandaops/confounds/pkg/selector"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/spf13/cobra"
)

// validateCmd checks the configured strategy
//
//nolint:gochecknoglobals // Cobra commands are typically global
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate the configured strategy",
	Long: `Validate the configuration and its strategy. When a confounds TSV or BOLD
image is given, the strategy is also resolved against it without writing output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := cfg.Strategy.Build()
	if err != nil {
		return err
	}

	validated, err := strategy.Validate(s, cfg.Defaults, nil)
	if err != nil {
		return err
	}

	entries := make([]string, len(validated.Entries))
	for i, e := range validated.Entries {
		entries[i] = e.String()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "✓ strategy %s: %s\n", cfg.Strategy.Name(), strings.Join(entries, ", "))

	if len(args) == 0 {
		return nil
	}

	paths, err := loader.ResolvePaths(args[0])
	if err != nil {
		return err
	}

	tbl, meta, err := loader.New(logger).Load(paths)
	if err != nil {
		return err
	}

	set, err := regressors.NewEngine(logger, selector.NewRegistry(), cfg.Defaults, cfg.Assembly).Resolve(s, tbl, meta)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "✓ %s: %d regressors, %d frames, %d scrubbed\n",
		paths.Confounds, len(set.Names), set.Frames(), set.Mask.Excluded())

	if set.Directive.UsePreDenoised {
		_, _ = fmt.Fprintf(out, "  use %s\n", paths.PreDenoised)
	}

	return nil
}
