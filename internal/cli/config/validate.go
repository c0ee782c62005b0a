package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output must be one of table, json, yaml; got %q", c.Output)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Defaults.ProcessFactor < 0 {
		return fmt.Errorf("defaults.process_factor must not be negative, got %g", c.Defaults.ProcessFactor)
	}
	if c.Defaults.TopPeaks < 0 || c.Defaults.Restarts < 0 || c.Defaults.WearSteps < 0 {
		return fmt.Errorf("defaults.top_peaks, defaults.restarts and defaults.wear_steps must not be negative")
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
