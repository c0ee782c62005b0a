// Package config provides configuration management for the cutlaw CLI.
package config

// Defaults for the built-in config values.
const (
	DefaultOutput        = "table"
	DefaultLogLevel      = "info"
	DefaultWorkers       = 4
	DefaultProcessFactor = 2.0
	DefaultWindow        = "hann"
	DefaultTopPeaks      = 5
	DefaultSeed          = 42
	DefaultRestarts      = 10
	DefaultWearSteps     = 100
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// AlgorithmDefaults are injected into job params that leave them unset.
type AlgorithmDefaults struct {
	ProcessFactor float64 `koanf:"process_factor"`
	Window        string  `koanf:"window"`
	TopPeaks      int     `koanf:"top_peaks"`
	Seed          uint64  `koanf:"seed"`
	Restarts      int     `koanf:"restarts"`
	WearSteps     int     `koanf:"wear_steps"`
}

// Config holds all CLI configuration options.
type Config struct {
	Output   string            `koanf:"output"`
	LogLevel string            `koanf:"log_level"`
	NoColor  bool              `koanf:"no_color"`
	Workers  int               `koanf:"workers"`
	Defaults AlgorithmDefaults `koanf:"defaults"`

	// ConfigFile is the file the values were read from, empty when none.
	ConfigFile string `koanf:"-"`
}
