package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal with "did you mean?" suggestions.
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

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with defaults. An empty path means "no file".
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
// The caller loads any .env file into the environment beforehand (see
// LoadDotEnv) so it sits between the file and the real environment.
// A missing token is not an error here; it surfaces as ErrMissingToken the
// first time a request asks for credentials.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	cfgPath := env.ConfigPath
	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg, env)
	applyCLI(cfg, cli)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	// Validate already proved every duration parses.
	resolved := &Resolved{
		APIURL:        cfg.APIURL,
		Token:         env.Token,
		Timeout:       mustDuration(cfg.Timeout),
		UserAgent:     cfg.UserAgent,
		TestPrefix:    cfg.TestPrefix,
		TestFilePath:  cfg.TestFilePath,
		SweepLimit:    cfg.SweepLimit,
		PollInterval:  mustDuration(cfg.PollInterval),
		PollTimeout:   mustDuration(cfg.PollTimeout),
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    mustDuration(cfg.RetryDelay),
		LogLevel:      cfg.LogLevel,
		LogFormat:     cfg.LogFormat,
	}

	return resolved, nil
}

// FromEnv is the one-call form used by tests and tools: it loads the given
// .env files, reads the environment, and resolves with no CLI overrides.
func FromEnv(dotEnvPaths ...string) (*Resolved, error) {
	if err := LoadDotEnv(dotEnvPaths...); err != nil {
		return nil, err
	}

	return Resolve(ReadEnvOverrides(), CLIOverrides{})
}

func applyEnv(cfg *Config, env EnvOverrides) {
	if env.APIURL != "" {
		cfg.APIURL = env.APIURL
	}

	if env.Timeout != "" {
		cfg.Timeout = env.Timeout
	}

	if env.TestPrefix != "" {
		cfg.TestPrefix = env.TestPrefix
	}

	if env.TestFilePath != "" {
		cfg.TestFilePath = env.TestFilePath
	}

	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
}

func applyCLI(cfg *Config, cli CLIOverrides) {
	if cli.APIURL != "" {
		cfg.APIURL = cli.APIURL
	}

	if cli.TestPrefix != "" {
		cfg.TestPrefix = cli.TestPrefix
	}

	if cli.Timeout != "" {
		cfg.Timeout = cli.Timeout
	}
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("config: unvalidated duration %q: %v", s, err))
	}

	return d
}
