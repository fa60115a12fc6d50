// Package constants provides named constants used throughout the snpsim codebase.
package constants

// Simulation defaults
const (
	// DefaultMaxSteps is the round budget when none is configured.
	// Matches the budget the reference system was first explored with.
	DefaultMaxSteps = 10
)

// Configuration locations
const (
	// ConfigDirName is the per-user directory under $HOME.
	ConfigDirName = ".snpsim"

	// ConfigFileName is the YAML file inside ConfigDirName.
	ConfigFileName = "config.yaml"
)

// Environment variable overrides
const (
	EnvMaxSteps = "SNPSIM_MAX_STEPS"
	EnvSeed     = "SNPSIM_SEED"
	EnvLogLevel = "SNPSIM_LOG_LEVEL"
	EnvLogDir   = "SNPSIM_LOG_DIR"
)
