package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/yadisk-go/internal/disk"
	"github.com/tonimelisma/yadisk-go/internal/naming"
)

// sweepParallelism bounds concurrent deletes during a sweep.
const sweepParallelism = 4

// SweepClient is the subset of *disk.Client a sweep needs.
type SweepClient interface {
	List(ctx context.Context, path string, opts disk.ListOptions) (*disk.Response, error)
	Delete(ctx context.Context, path string, permanently bool) (*disk.Response, error)
}

// SweepResult summarizes a sweep.
type SweepResult struct {
	Matched int `json:"matched"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Sweep lists the root folder (up to limit entries) and permanently deletes
// every item whose name starts with prefix. Failed deletes are logged and
// counted, not returned; the error is non-nil only when the listing itself
// fails. An empty prefix matches nothing.
func Sweep(ctx context.Context, client SweepClient, prefix string, limit int, logger *slog.Logger) (SweepResult, error) {
	var result SweepResult

	if logger == nil {
		logger = slog.Default()
	}

	resp, err := client.List(ctx, "/", disk.ListOptions{Limit: limit})
	if err != nil {
		return result, fmt.Errorf("sweep: listing root: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("sweep: listing root: %w", resp.Err())
	}

	root, err := resp.Resource()
	if err != nil {
		return result, fmt.Errorf("sweep: %w", err)
	}

	var deleted, failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepParallelism)

	for i := range root.Items {
		item := root.Items[i]
		if !naming.Matches(item.Name, prefix) {
			continue
		}

		result.Matched++

		g.Go(func() error {
			resp, err := client.Delete(gctx, item.Path, true)
			if err != nil {
				failed.Add(1)
				logger.Warn("sweep delete failed",
					slog.String("path", item.Path),
					slog.String("error", err.Error()),
				)

				return nil
			}

			switch resp.StatusCode {
			case http.StatusNoContent, http.StatusAccepted, http.StatusNotFound:
				deleted.Add(1)
				logger.Debug("swept", slog.String("path", item.Path), slog.Int("status", resp.StatusCode))
			default:
				failed.Add(1)
				logger.Warn("sweep delete rejected",
					slog.String("path", item.Path),
					slog.Int("status", resp.StatusCode),
				)
			}

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	result.Deleted = int(deleted.Load())
	result.Failed = int(failed.Load())

	logger.Info("sweep finished",
		slog.String("prefix", prefix),
		slog.Int("matched", result.Matched),
		slog.Int("deleted", result.Deleted),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}

// Sweep removes leftovers under the environment's test prefix.
func (e *Env) Sweep(ctx context.Context) (SweepResult, error) {
	return Sweep(ctx, e.Client, e.Config.TestPrefix, e.Config.SweepLimit, e.Logger)
}
