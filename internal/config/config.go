// Package config provides Viper-based configuration loading for the Titan
// check tooling.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Dice source names accepted by CheckConfig.DiceSource.
const (
	DiceSourceCrypto = "crypto"
	DiceSourceSeeded = "seeded"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CheckConfig holds defaults applied when a check request leaves them unset.
type CheckConfig struct {
	// DefaultDifficulty applies when a request has no difficulty.
	DefaultDifficulty int `mapstructure:"default_difficulty"`
	// DiceSource selects the randomness provider: "crypto" or "seeded".
	DiceSource string `mapstructure:"dice_source"`
	// Seed feeds the seeded source; ignored for crypto.
	Seed int64 `mapstructure:"seed"`
}

// RulesetConfig locates ruleset content.
type RulesetConfig struct {
	// Dir holds catalog YAML files; empty uses the built-in core content.
	Dir string `mapstructure:"dir"`
}

// ScriptingConfig controls the Lua rule hooks.
type ScriptingConfig struct {
	// Dir holds *.lua rule scripts; empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps opcodes per script call; 0 uses the package default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Enabled reports whether rule scripts should be loaded.
func (s ScriptingConfig) Enabled() bool { return s.Dir != "" }

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Check     CheckConfig     `mapstructure:"check"`
	Ruleset   RulesetConfig   `mapstructure:"ruleset"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCheck(c.Check); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateCheck(c CheckConfig) error {
	var errs []string
	if c.DefaultDifficulty < 2 || c.DefaultDifficulty > 6 {
		errs = append(errs, fmt.Sprintf("check.default_difficulty must be 2-6, got %d", c.DefaultDifficulty))
	}
	if c.DiceSource != DiceSourceCrypto && c.DiceSource != DiceSourceSeeded {
		errs = append(errs, fmt.Sprintf("check.dice_source must be one of [crypto, seeded], got %q", c.DiceSource))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path skips the file and uses
// defaults plus environment.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with TITAN_ prefix
	v.SetEnvPrefix("TITAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("check.default_difficulty", 4)
	v.SetDefault("check.dice_source", DiceSourceCrypto)
	v.SetDefault("check.seed", 0)

	v.SetDefault("ruleset.dir", "")

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 0)
}
