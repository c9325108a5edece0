// Package poll waits for the provider to converge on a resource state.
//
// Writes to the remote API become visible to reads after an unspecified
// delay, so tests that create, move or delete a resource confirm the
// outcome with a Poller before asserting on it. The poller reports
// convergence as a boolean; turning a timeout into a failure is the
// caller's decision.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"github.com/tonimelisma/yadisk-go/internal/disk"
)

// DefaultInterval is the fixed delay between lookups.
const DefaultInterval = 1 * time.Second

// State is the resource state being waited for.
type State int

const (
	// Present is satisfied by a 200 metadata response.
	Present State = iota
	// Absent is satisfied by a 404 metadata response.
	Absent
)

func (s State) String() string {
	switch s {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

// wantStatus maps a state to the metadata status that satisfies it.
func (s State) wantStatus() int {
	if s == Absent {
		return http.StatusNotFound
	}

	return http.StatusOK
}

// MetadataGetter is the single remote call the poller issues.
// *disk.Client satisfies it.
type MetadataGetter interface {
	Metadata(ctx context.Context, path string) (*disk.Response, error)
}

var errNotYet = errors.New("poll: state not reached")

// Poller repeatedly looks up a resource until it reaches a target state.
type Poller struct {
	client   MetadataGetter
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Poller. A non-positive interval selects DefaultInterval.
func New(client MetadataGetter, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{client: client, interval: interval, logger: logger}
}

// WaitFor looks up path until the lookup reports want or timeout elapses.
// At least one lookup is always made. Any status other than the wanted one,
// and any transport error, counts as "not yet". Returns true once the
// state is observed, false on timeout or when ctx is canceled.
func (p *Poller) WaitFor(ctx context.Context, path string, want State, timeout time.Duration) bool {
	start := time.Now()
	attempts := 0
	lastStatus := 0

	backoff := goretry.WithMaxDuration(max(timeout, 0), goretry.NewConstant(p.interval))

	err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		resp, err := p.client.Metadata(ctx, path)
		if err != nil {
			p.logger.Debug("poll lookup failed",
				slog.String("path", path),
				slog.Int("attempt", attempts),
				slog.String("error", err.Error()),
			)

			return goretry.RetryableError(err)
		}

		lastStatus = resp.StatusCode
		if resp.StatusCode == want.wantStatus() {
			return nil
		}

		return goretry.RetryableError(errNotYet)
	})

	if err == nil {
		p.logger.Debug("poll state reached",
			slog.String("path", path),
			slog.String("state", want.String()),
			slog.Int("attempts", attempts),
			slog.Duration("elapsed", time.Since(start)),
		)

		return true
	}

	p.logger.Warn("poll timed out",
		slog.String("path", path),
		slog.String("state", want.String()),
		slog.Int("attempts", attempts),
		slog.Int("last_status", lastStatus),
		slog.Duration("timeout", timeout),
	)

	return false
}

// WaitPresent waits until path exists.
func (p *Poller) WaitPresent(ctx context.Context, path string, timeout time.Duration) bool {
	return p.WaitFor(ctx, path, Present, timeout)
}

// WaitAbsent waits until path no longer exists.
func (p *Poller) WaitAbsent(ctx context.Context, path string, timeout time.Duration) bool {
	return p.WaitFor(ctx, path, Absent, timeout)
}
