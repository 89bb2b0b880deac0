package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ethpandaops/confounds/pkg/batch"
	"github.com/ethpandaops/confounds/pkg/config"
	"github.com/ethpandaops/confounds/pkg/loader"
	"github.com/ethpandaops/confounds/pkg/observability"
	"github.com/ethpandaops/confounds/pkg/output"
	"github.com/ethpandaops/confounds/pkg/regressors"
	"github.com/ethpandaops/confounds/pkg/selector"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/spf13/cobra"
)

var (
	// ErrFilesFailed is returned when at least one file of a batch failed
	ErrFilesFailed = errors.New("files failed")
)

// selectCmd resolves a strategy against confound files
//
//nolint:gochecknoglobals // Cobra commands are typically global
var selectCmd = &cobra.Command{
	Use:   "select [files...]",
	Short: "Select regressors from fMRIprep confound files",
	Long: `Resolve the configured strategy against each confounds TSV or BOLD image and
write the selected regressors as one TSV per run. Every file is processed even
when others fail; the command exits non-zero if any file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().String("preset", "", "use a preset strategy instead of the configured one")
	selectCmd.Flags().String("out", "", "output directory, overrides the config file")
	selectCmd.Flags().Int("concurrency", 0, "files resolved at once, overrides the config file")
	selectCmd.Flags().String("report", "", "markdown report path relative to the output directory, overrides the config file")
}

func runSelect(cmd *cobra.Command, args []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	applySelectFlags(cmd, cfg)

	s, err := cfg.Strategy.Build()
	if err != nil {
		return err
	}

	if _, err := strategy.Validate(s, cfg.Defaults, nil); err != nil {
		return err
	}

	observability.StartMetricsServer(logger, cfg.MetricsAddr)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if stopErr := observability.StopMetricsServer(ctx); stopErr != nil {
			logger.WithError(stopErr).Error("Failed to stop metrics server")
		}
	}()

	writer, err := output.NewWriter(logger, cfg.Output, cfg.Strategy.Name())
	if err != nil {
		return err
	}

	engine := regressors.NewEngine(logger, selector.NewRegistry(), cfg.Defaults, cfg.Assembly)
	processor := batch.NewProcessor(logger, loader.New(logger), engine, s,
		batch.WithConcurrency(cfg.Batch.Concurrency),
		batch.WithSink(writer.Write),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := processor.Run(ctx, args)

	outputs := printSummary(cmd, writer, summary)

	if cfg.Output.Report != "" {
		if err := writeReport(cfg, s, summary, outputs); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}

	if failed := summary.Failed(); failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFilesFailed, failed, len(summary.Results))
	}

	return nil
}

func applySelectFlags(cmd *cobra.Command, cfg *config.Config) {
	if preset, _ := cmd.Flags().GetString("preset"); preset != "" {
		cfg.Strategy = strategy.Spec{Preset: preset}
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Output.Dir = out
	}

	if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
		cfg.Batch.Concurrency = n
	}

	if report, _ := cmd.Flags().GetString("report"); report != "" {
		cfg.Output.Report = report
	}
}

// printSummary prints one line per file and returns the written outputs by input
func printSummary(cmd *cobra.Command, writer *output.Writer, summary *batch.Summary) map[string]string {
	outputs := make(map[string]string, len(summary.Results))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FILE\tSTATUS\tREGRESSORS\tSCRUBBED\tOUTPUT")

	for _, r := range summary.Results {
		if r.Failed() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\t%s\n", r.Input, "failed ("+r.Stage+")", r.Err)
			continue
		}

		path, err := writer.Path(r)
		if err != nil {
			path = err.Error()
		} else {
			outputs[r.Input] = path
		}

		target := path
		if r.Set.Directive.UsePreDenoised {
			target += " (use " + r.Paths.PreDenoised + ")"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			r.Input, "ok", len(r.Set.Names), strconv.Itoa(r.Set.Mask.Excluded()), target)
	}
	_ = w.Flush()

	return outputs
}

func writeReport(cfg *config.Config, s strategy.Strategy, summary *batch.Summary, outputs map[string]string) error {
	path := filepath.Join(cfg.Output.Dir, cfg.Output.Report)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	report := &output.Report{
		StrategyName: cfg.Strategy.Name(),
		Strategy:     s,
		Summary:      summary,
		Outputs:      outputs,
	}

	if err := report.Write(f); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.WithField("path", path).Info("Wrote report")

	return nil
}
