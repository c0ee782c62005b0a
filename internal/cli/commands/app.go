// Package commands implements the cutlaw subcommands.
package commands

import (
	"io"
	"log/slog"

	"github.com/alexshd/cutlaw"
	"github.com/alexshd/cutlaw/internal/cli/config"
)

// App carries the dependencies shared by every subcommand. The root command
// fills Config and Logger before a subcommand runs.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *cutlaw.Registry
	Governor *cutlaw.Governor
	Latency  *LatencyTracker
}

// NewApp creates an App with the built-in registry and a fresh governor.
func NewApp() *App {
	return &App{
		Config: &config.Config{
			Output:   config.DefaultOutput,
			LogLevel: config.DefaultLogLevel,
			Workers:  config.DefaultWorkers,
			Defaults: config.AlgorithmDefaults{
				ProcessFactor: config.DefaultProcessFactor,
				Window:        config.DefaultWindow,
				TopPeaks:      config.DefaultTopPeaks,
				Seed:          config.DefaultSeed,
				Restarts:      config.DefaultRestarts,
				WearSteps:     config.DefaultWearSteps,
			},
		},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registry: cutlaw.DefaultRegistry(),
		Governor: cutlaw.NewGovernor(),
		Latency:  NewLatencyTracker(DefaultLatencyWindow),
	}
}
