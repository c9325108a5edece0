package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/yadisk-go/internal/disk"
	"github.com/tonimelisma/yadisk-go/internal/poll"
)

// errWaitTimeout is returned when the awaited state was not observed.
var errWaitTimeout = errors.New("state not reached before timeout")

func newWaitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait <path>",
		Short: "Wait until a resource exists (or, with --absent, is gone)",
		Long: `Poll the resource's metadata at a fixed interval until it reports the
wanted state. Exits with status 2 if the timeout elapses first.`,
		Args: cobra.ExactArgs(1),
		RunE: runWait,
	}

	cmd.Flags().Bool("absent", false, "wait for the resource to disappear")
	cmd.Flags().Duration("for", 0, "how long to wait (default: poll_timeout from config)")

	return cmd
}

func runWait(cmd *cobra.Command, args []string) error {
	remotePath := args[0]
	absent, _ := cmd.Flags().GetBool("absent")   //nolint:errcheck // flag registered above
	timeout, _ := cmd.Flags().GetDuration("for") //nolint:errcheck // flag registered above

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if timeout <= 0 {
		timeout = resolvedCfg.PollTimeout
	}

	want := poll.Present
	if absent {
		want = poll.Absent
	}

	start := time.Now()
	if !a.poller.WaitFor(cmd.Context(), remotePath, want, timeout) {
		return fmt.Errorf("%s not %s after %s: %w", disk.NormalizePath(remotePath), want, timeout, errWaitTimeout)
	}

	statusf(flagQuiet, "%s is %s (%s)\n", disk.NormalizePath(remotePath), want, time.Since(start).Round(time.Millisecond))

	return nil
}
