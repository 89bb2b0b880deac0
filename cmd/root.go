// Package cmd contains the CLI commands for confounds
package cmd

import (
	"fmt"
	"os"

	"github.com/ethpandaops/confounds/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	cfgFile string
	logger  *logrus.Logger
)

// rootCmd represents the base command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "confounds",
	Short: "Select fMRIprep nuisance regressors for confound regression",
	Long: `confounds resolves a denoising strategy against fMRIprep confound tables
and writes a reduced regressor matrix per run: motion parameters and their
expansions, discrete cosine high-pass terms, tissue signals, CompCor
components, ICA-AROMA noise components and motion scrubbing indicators.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, then $XDG_CONFIG_HOME/confounds/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error, fatal, panic), overrides the config file")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address, overrides the config file")

	// Initialize logger
	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// loadConfig reads the configuration file, applies flag overrides, sets the
// log level and validates the result
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := config.Find(cfgFile)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging, _ = cmd.Flags().GetString("log-level")
	}

	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	if path == "" {
		logger.Debug("No config file found, using defaults")
	} else {
		logger.WithField("path", path).Debug("Loaded config file")
	}

	return cfg, nil
}
