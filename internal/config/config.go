// Package config provides unified configuration loading for snpsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/snpsim/internal/constants"
	"gopkg.in/yaml.v3"
)

// SimConfig contains all snpsim configuration settings.
type SimConfig struct {
	// Simulation contains settings for the simulation loop.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Logging contains settings for operational and round logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig configures a simulation run.
type SimulationConfig struct {
	// MaxSteps bounds the number of rounds. Zero runs nothing.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`

	// Seed pins rule tie-breaks for reproducible runs.
	// Zero selects an entropy-seeded source.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// LoggingConfig configures snpsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" and "trace" enable round logging to Dir/rounds.jsonl.
	Level string `json:"level" yaml:"level"`

	// Dir is where rounds.jsonl is written. Supports ${VAR} syntax.
	// Defaults to ~/.snpsim when empty.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Default returns a SimConfig with sensible defaults.
func Default() *SimConfig {
	return &SimConfig{
		Simulation: SimulationConfig{
			MaxSteps: constants.DefaultMaxSteps,
			Seed:     0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.snpsim/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.ConfigDirName, constants.ConfigFileName), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.snpsim/config.yaml -> environment variables
func Load() (*SimConfig, error) {
	config := Default()

	// Try to load from default config file
	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Logging.Dir = expandEnvVars(config.Logging.Dir)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *SimConfig) Validate() error {
	if c.Simulation.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative, got %d", c.Simulation.MaxSteps)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// RoundLogDir returns the directory for rounds.jsonl, falling back to
// ~/.snpsim when Logging.Dir is unset.
func (c *SimConfig) RoundLogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return constants.ConfigDirName
	}
	return filepath.Join(homeDir, constants.ConfigDirName)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *SimConfig) {
	if v := os.Getenv(constants.EnvMaxSteps); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.MaxSteps = n
		}
	}

	if v := os.Getenv(constants.EnvSeed); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Simulation.Seed = n
		}
	}

	if v := os.Getenv(constants.EnvLogLevel); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv(constants.EnvLogDir); v != "" {
		config.Logging.Dir = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
