package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.StringP("output", "o", DefaultOutput, "")
	fs.String("log-level", DefaultLogLevel, "")
	fs.Bool("no-color", false, "")
	fs.Int("workers", DefaultWorkers, "")
	fs.Uint64("default-seed", DefaultSeed, "")
	fs.String("default-window", DefaultWindow, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.False(t, cfg.NoColor)
	assert.Equal(t, AlgorithmDefaults{
		ProcessFactor: DefaultProcessFactor,
		Window:        DefaultWindow,
		TopPeaks:      DefaultTopPeaks,
		Seed:          DefaultSeed,
		Restarts:      DefaultRestarts,
		WearSteps:     DefaultWearSteps,
	}, cfg.Defaults)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yaml", `
output: json
workers: 2
defaults:
  window: blackman
  seed: 99
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "blackman", cfg.Defaults.Window)
	assert.Equal(t, uint64(99), cfg.Defaults.Seed)
	assert.Equal(t, DefaultTopPeaks, cfg.Defaults.TopPeaks, "unset keys keep their defaults")
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_DiscoversConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "cutlaw.yml", "log_level: debug\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "cutlaw.yml", cfg.ConfigFile)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "cutlaw.yaml", "workers: 2\noutput: yaml\ndefaults:\n  seed: 1\n")
	t.Setenv("CUTLAW_WORKERS", "3")
	t.Setenv("CUTLAW_DEFAULTS__SEED", "7")

	cfg, err := Load("", testFlags(t, "--workers", "5"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers, "flag beats env and file")
	assert.Equal(t, uint64(7), cfg.Defaults.Seed, "env beats file")
	assert.Equal(t, OutputYAML, cfg.Output, "file beats defaults")
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "cutlaw.yaml", "output: json\n")

	cfg, err := Load("", testFlags(t, "--default-window", "flattop"))
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, "flattop", cfg.Defaults.Window)
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "error reading config file")

	_, err = Load("", testFlags(t, "-o", "xml"))
	assert.ErrorContains(t, err, "output must be one of")

	_, err = Load("", testFlags(t, "--workers", "0"))
	assert.ErrorContains(t, err, "workers")

	_, err = Load("", testFlags(t, "--log-level", "loud"))
	assert.ErrorContains(t, err, "log_level")
}

func TestKeyMapping(t *testing.T) {
	assert.Equal(t, "defaults.top_peaks", envKey("CUTLAW_DEFAULTS__TOP_PEAKS"))
	assert.Equal(t, "log_level", envKey("CUTLAW_LOG_LEVEL"))
	assert.Equal(t, "defaults.wear_steps", flagKey("default-wear-steps"))
	assert.Equal(t, "no_color", flagKey("no-color"))
}
