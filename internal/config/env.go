package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names. YANDEX_DISK_* and TEST_PREFIX keep the names
// the harness has always used so existing .env files keep working.
const (
	EnvConfig       = "YANDEX_DISK_CONFIG"
	EnvAPIURL       = "YANDEX_DISK_API_URL"
	EnvToken        = "YANDEX_DISK_TOKEN"
	EnvTimeout      = "YANDEX_DISK_TIMEOUT"
	EnvTestPrefix   = "TEST_PREFIX"
	EnvTestFilePath = "TEST_FILE_PATH"
	EnvLogLevel     = "LOG_LEVEL"
)

// EnvOverrides holds values derived from environment variables.
// Empty fields mean the variable was not set.
type EnvOverrides struct {
	ConfigPath   string
	APIURL       string
	Token        string
	Timeout      string
	TestPrefix   string
	TestFilePath string
	LogLevel     string
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify a Config; Resolve applies the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:   os.Getenv(EnvConfig),
		APIURL:       os.Getenv(EnvAPIURL),
		Token:        os.Getenv(EnvToken),
		Timeout:      os.Getenv(EnvTimeout),
		TestPrefix:   os.Getenv(EnvTestPrefix),
		TestFilePath: os.Getenv(EnvTestFilePath),
		LogLevel:     os.Getenv(EnvLogLevel),
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment. Variables that are already set win over the file,
// and a missing file is not an error (CI sets variables directly).
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading env file %s: %w", p, err)
		}
	}

	return nil
}
