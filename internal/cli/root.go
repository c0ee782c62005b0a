// Package cli provides the command-line interface for cutlaw.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/alexshd/cutlaw/internal/cli/commands"
	"github.com/alexshd/cutlaw/internal/cli/config"
)

// Version information (set at build time).
var Version = "0.1.0"

// NewLogger builds the tint handler used by every subcommand.
func NewLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
	})), nil
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	app := commands.NewApp()

	rootCmd := &cobra.Command{
		Use:   "cutlaw",
		Short: "cutlaw - machining physics calculations",
		Long: `cutlaw evaluates machining laws (cutting force, tool life, spindle
speed, flow stress, wear, chip thinning, surface finish, vibration spectra
and clustering) behind a validation governor.

Critical calculations also run through a hard-gated kernel that refuses
non-physical input outright.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger, err := NewLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			app.Config = cfg
			app.Logger = logger
			if cfg.ConfigFile != "" {
				logger.Debug("using config file", "path", cfg.ConfigFile)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./cutlaw.yaml)")
	pf.StringP("output", "o", config.DefaultOutput, "Output format (table|json|yaml)")
	pf.String("log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	pf.Bool("no-color", false, "Disable colored log output")
	pf.IntP("workers", "w", config.DefaultWorkers, "Concurrent jobs for batch")
	pf.Float64("default-process-factor", config.DefaultProcessFactor, "Surface finish process factor when a job omits it")
	pf.String("default-window", config.DefaultWindow, "FFT window when a job omits it")
	pf.Int("default-top-peaks", config.DefaultTopPeaks, "FFT peaks to report when a job omits it")
	pf.Uint64("default-seed", config.DefaultSeed, "K-means seed when a job omits it")
	pf.Int("default-restarts", config.DefaultRestarts, "K-means restarts when a job omits it")
	pf.Int("default-wear-steps", config.DefaultWearSteps, "Wear integration steps when a job omits it")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputTable, config.OutputJSON, config.OutputYAML}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("default-window", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"rectangular", "hann", "hamming", "blackman", "flattop"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewAlgorithmsCommand(app))
	rootCmd.AddCommand(commands.NewRunCommand(app))
	rootCmd.AddCommand(commands.NewBatchCommand(app))
	rootCmd.AddCommand(commands.NewEvalCommand(app))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
