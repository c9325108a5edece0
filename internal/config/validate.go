package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validation range constants.
const (
	minTimeout       = 1 * time.Second
	minPollInterval  = 10 * time.Millisecond
	minRetryAttempts = 1
	maxRetryAttempts = 20
	maxSweepLimit    = 10000
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validLogFormats = map[string]bool{LogFormatAuto: true, LogFormatText: true, LogFormatJSON: true}

// Validate checks all configuration values and returns all errors found,
// so a broken config file can be fixed in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateAPI(&cfg.APIConfig)...)
	errs = append(errs, validateHarness(&cfg.HarnessConfig)...)
	errs = append(errs, validatePoll(&cfg.PollConfig)...)
	errs = append(errs, validateRetry(&cfg.RetryConfig)...)
	errs = append(errs, validateLogging(&cfg.LoggingConfig)...)

	return errors.Join(errs...)
}

func validateAPI(a *APIConfig) []error {
	var errs []error

	u, err := url.Parse(a.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_url: must be an absolute URL, got %q", a.APIURL))
	} else if u.Scheme != "https" && u.Scheme != "http" {
		errs = append(errs, fmt.Errorf("api_url: unsupported scheme %q", u.Scheme))
	}

	errs = append(errs, checkMinDuration("timeout", a.Timeout, minTimeout)...)

	return errs
}

func validateHarness(h *HarnessConfig) []error {
	var errs []error

	if h.TestPrefix == "" {
		errs = append(errs, errors.New("test_prefix: must not be empty"))
	} else if strings.ContainsAny(h.TestPrefix, `/\`) {
		errs = append(errs, fmt.Errorf("test_prefix: must be a bare name without slashes, got %q", h.TestPrefix))
	}

	if h.SweepLimit < 1 || h.SweepLimit > maxSweepLimit {
		errs = append(errs, fmt.Errorf("sweep_limit: must be between 1 and %d, got %d", maxSweepLimit, h.SweepLimit))
	}

	return errs
}

func validatePoll(p *PollConfig) []error {
	var errs []error

	errs = append(errs, checkMinDuration("poll_interval", p.PollInterval, minPollInterval)...)
	errs = append(errs, checkMinDuration("poll_timeout", p.PollTimeout, 0)...)

	return errs
}

func validateRetry(r *RetryConfig) []error {
	var errs []error

	if r.RetryAttempts < minRetryAttempts || r.RetryAttempts > maxRetryAttempts {
		errs = append(errs, fmt.Errorf("retry_attempts: must be between %d and %d, got %d",
			minRetryAttempts, maxRetryAttempts, r.RetryAttempts))
	}

	errs = append(errs, checkMinDuration("retry_delay", r.RetryDelay, 0)...)

	return errs
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if !validLogLevels[l.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", l.LogLevel))
	}

	if !validLogFormats[l.LogFormat] {
		errs = append(errs, fmt.Errorf("log_format: must be one of auto, text, json; got %q", l.LogFormat))
	}

	return errs
}

// checkMinDuration parses a duration string and checks it is at least min.
func checkMinDuration(field, value string, minimum time.Duration) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q: %w", field, value, err)}
	}

	if d < minimum {
		return []error{fmt.Errorf("%s: must be at least %s, got %s", field, minimum, d)}
	}

	return nil
}
