// Package testutil provides shared environment helpers for the gated
// integration and e2e suites that talk to the real provider.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/tonimelisma/yadisk-go/internal/config"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// Missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) error {
	if err := config.LoadDotEnv(envPath); err != nil {
		return fmt.Errorf("testutil: %w", err)
	}

	return nil
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}

// LiveConfig resolves configuration for suites that hit the real API. The
// .env at the module root is loaded first and a relative TEST_FILE_PATH is
// anchored at the module root, so suites behave the same from any package
// directory.
func LiveConfig(moduleRoot string) (*config.Resolved, error) {
	if err := LoadDotEnv(filepath.Join(moduleRoot, ".env")); err != nil {
		return nil, err
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("testutil: resolving config: %w", err)
	}

	if cfg.TestFilePath != "" && !filepath.IsAbs(cfg.TestFilePath) {
		cfg.TestFilePath = filepath.Join(moduleRoot, cfg.TestFilePath)
	}

	return cfg, nil
}

// RequireLive returns the live configuration, skipping t when no token is
// configured and failing it when the configuration is invalid.
func RequireLive(t testing.TB) *config.Resolved {
	t.Helper()

	cfg, err := LiveConfig(FindModuleRoot("."))
	if err != nil {
		t.Fatalf("live config: %v", err)
	}

	if err := cfg.RequireToken(); err != nil {
		t.Skipf("skipping live test: %v", err)
	}

	return cfg
}
