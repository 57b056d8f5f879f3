package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal, with "did you mean?"
// suggestions — silently ignoring a typo leads to hard-to-debug behavior,
// same rationale as the teacher project's own strict Load.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with defaults, supporting a zero-config first run.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the four-layer override chain:
// defaults -> config file -> environment variables -> CLI flags. It returns
// a fully resolved and validated profile ready to build a Coordinator from.
func Resolve(env EnvOverrides, cli CLIOverrides) (*ResolvedProfile, error) {
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	profileName := cli.Profile
	if profileName == "" {
		profileName = env.Profile
	}

	if len(cfg.Profiles) == 0 {
		syntheticName := defaultProfileName
		if profileName != "" {
			syntheticName = profileName
		}

		cfg.Profiles = map[string]ProfileConfig{syntheticName: {}}
	}

	resolved, err := ResolveProfile(cfg, profileName)
	if err != nil {
		return nil, err
	}

	if cli.DryRun != nil {
		resolved.Sync.DryRun = *cli.DryRun
	}

	if cli.Verbose != nil {
		resolved.Sync.Verbose = *cli.Verbose
	}

	if err := ValidateResolved(resolved); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return resolved, nil
}
