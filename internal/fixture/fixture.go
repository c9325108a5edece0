// Package fixture provides setup and teardown helpers for tests that run
// against the remote API: a configured environment, uniquely named scratch
// folders with guaranteed cleanup, the shared upload payload, status
// assertions that show the response body, and a prefix sweep that removes
// anything a crashed run left behind.
package fixture

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tonimelisma/yadisk-go/internal/config"
	"github.com/tonimelisma/yadisk-go/internal/disk"
	"github.com/tonimelisma/yadisk-go/internal/naming"
	"github.com/tonimelisma/yadisk-go/internal/poll"
	"github.com/tonimelisma/yadisk-go/internal/retry"
)

// cleanupTimeout bounds teardown requests, which run after the test's own
// context may already be gone.
const cleanupTimeout = 30 * time.Second

//go:embed testdata/test_file.txt
var defaultTestFile []byte

// Env bundles everything a scenario needs.
type Env struct {
	Config *config.Resolved
	Client *disk.Client
	Poller *poll.Poller
	Retry  retry.Policy
	Logger *slog.Logger
}

// NewEnv wires a client, poller and retry policy from cfg.
func NewEnv(cfg *config.Resolved, client *disk.Client, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}

	if client == nil {
		client = disk.NewFromConfig(cfg, logger)
	}

	return &Env{
		Config: cfg,
		Client: client,
		Poller: poll.New(client, cfg.PollInterval, logger),
		Retry: retry.Policy{
			Attempts: cfg.RetryAttempts,
			Delay:    cfg.RetryDelay,
			Logger:   logger,
		},
		Logger: logger,
	}
}

// Unique returns a fresh resource name under the configured test prefix.
func (e *Env) Unique() string {
	return naming.Unique(e.Config.TestPrefix)
}

// TempFolder creates a uniquely named folder and registers its permanent
// deletion on t.Cleanup. A 409 on creation is accepted: the name is
// random, so a conflict means an earlier attempt already created it.
func (e *Env) TempFolder(t testing.TB) string {
	t.Helper()

	name := e.Unique()
	ctx := context.Background()

	resp, err := e.Client.CreateFolder(ctx, name)
	if err != nil {
		t.Fatalf("creating test folder %s: %v", name, err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		t.Fatalf("creating test folder %s: HTTP %d: %s", name, resp.StatusCode, resp.Text())
	}

	t.Cleanup(func() { e.Remove(t, name) })

	if !e.Poller.WaitPresent(ctx, name, e.Config.PollTimeout) {
		t.Fatalf("test folder %s did not appear within %s", name, e.Config.PollTimeout)
	}

	return name
}

// Remove permanently deletes path, logging rather than failing on error.
func (e *Env) Remove(t testing.TB, path string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	resp, err := e.Client.Delete(ctx, path, true)
	if err != nil {
		t.Logf("cleanup of %s failed: %v", path, err)

		return
	}

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusAccepted, http.StatusNotFound:
	default:
		t.Logf("cleanup of %s: HTTP %d: %s", path, resp.StatusCode, resp.Text())
	}
}

// TestFile returns a local path to the upload payload and its content.
// The configured TEST_FILE_PATH is used when readable; otherwise the
// bundled payload is written into t.TempDir().
func (e *Env) TestFile(t testing.TB) (string, []byte) {
	t.Helper()

	return TestFile(t, e.Config.TestFilePath)
}

// TestFile is the Env-free form of Env.TestFile.
func TestFile(t testing.TB, path string) (string, []byte) {
	t.Helper()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return path, data
		}

		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("reading test file %s: %v", path, err)
		}
	}

	local := filepath.Join(t.TempDir(), "test_file.txt")
	if err := os.WriteFile(local, defaultTestFile, 0o600); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	return local, append([]byte(nil), defaultTestFile...)
}

// RequireStatus fails the test unless resp has the wanted status. The
// failure message carries the response body.
func RequireStatus(t testing.TB, resp *disk.Response, want int, msg string) {
	t.Helper()

	if resp == nil {
		t.Fatalf("%s: no response", msg)

		return
	}

	if resp.StatusCode != want {
		t.Fatalf("%s: expected HTTP %d, got %d: %s", msg, want, resp.StatusCode, resp.Text())
	}
}

// StatusMessage formats a status mismatch the way RequireStatus does, for
// callers that assert through other frameworks.
func StatusMessage(resp *disk.Response, want int, msg string) string {
	return fmt.Sprintf("%s: expected HTTP %d, got %d: %s", msg, want, resp.StatusCode, resp.Text())
}
