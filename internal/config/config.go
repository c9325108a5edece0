// Package config implements configuration loading and validation for the
// yadisk-go API harness. Values resolve through a layered override chain
// (defaults -> TOML file -> .env file -> environment -> CLI flags) into a
// single immutable Resolved value that is built once at process start and
// passed to every constructor that needs it.
package config

import "time"

// Config is the on-disk TOML structure. All keys are flat top-level keys;
// the embedded sections only group them in Go. Durations are strings here
// and become time.Duration in Resolved.
type Config struct {
	APIConfig
	HarnessConfig
	PollConfig
	RetryConfig
	LoggingConfig
}

// APIConfig controls how the harness talks to the provider.
// The OAuth token is deliberately absent: it only ever comes from the
// environment or a .env file so it never lands in a committed config file.
type APIConfig struct {
	APIURL    string `toml:"api_url"`
	Timeout   string `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
}

// HarnessConfig scopes the resources a test run creates and points at the
// local fixture file used for upload scenarios.
type HarnessConfig struct {
	TestPrefix   string `toml:"test_prefix"`
	TestFilePath string `toml:"test_file_path"`
	SweepLimit   int    `toml:"sweep_limit"`
}

// PollConfig tunes the eventual-consistency poller.
type PollConfig struct {
	PollInterval string `toml:"poll_interval"`
	PollTimeout  string `toml:"poll_timeout"`
}

// RetryConfig tunes the retry wrapper used around flaky setup steps.
type RetryConfig struct {
	RetryAttempts int    `toml:"retry_attempts"`
	RetryDelay    string `toml:"retry_delay"`
}

// LoggingConfig controls log level and output format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Resolved is the effective configuration after every override layer has
// been applied and all strings have been parsed. It is read-only once
// returned from Resolve.
type Resolved struct {
	APIURL        string
	Token         string
	Timeout       time.Duration
	UserAgent     string
	TestPrefix    string
	TestFilePath  string
	SweepLimit    int
	PollInterval  time.Duration
	PollTimeout   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	LogLevel      string
	LogFormat     string
}

// CLIOverrides holds values from CLI flags. Empty strings mean "not set".
type CLIOverrides struct {
	ConfigPath string
	APIURL     string
	TestPrefix string
	Timeout    string
}
