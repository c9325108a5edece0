package config

// Default values for configuration options. These are "layer 0" of the
// override chain and match the provider's public API and the pacing the
// harness has always used against it.
const (
	DefaultAPIURL        = "https://cloud-api.yandex.net/v1/disk"
	defaultTimeout       = "30s"
	defaultUserAgent     = "yadisk-go/0.1"
	defaultTestPrefix    = "test_yd_api_"
	defaultTestFilePath  = "testdata/test_file.txt"
	defaultSweepLimit    = 1000
	defaultPollInterval  = "1s"
	defaultPollTimeout   = "30s"
	defaultRetryAttempts = 3
	defaultRetryDelay    = "2s"
	defaultLogLevel      = "info"
	defaultLogFormat     = LogFormatAuto
)

// Log formats accepted by log_format. Auto picks text on a terminal and
// JSON otherwise.
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DefaultConfig returns a Config populated with all default values.
// It is the starting point for TOML decoding so unset keys keep defaults.
func DefaultConfig() *Config {
	return &Config{
		APIConfig: APIConfig{
			APIURL:    DefaultAPIURL,
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		HarnessConfig: HarnessConfig{
			TestPrefix:   defaultTestPrefix,
			TestFilePath: defaultTestFilePath,
			SweepLimit:   defaultSweepLimit,
		},
		PollConfig: PollConfig{
			PollInterval: defaultPollInterval,
			PollTimeout:  defaultPollTimeout,
		},
		RetryConfig: RetryConfig{
			RetryAttempts: defaultRetryAttempts,
			RetryDelay:    defaultRetryDelay,
		},
		LoggingConfig: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
	}
}
