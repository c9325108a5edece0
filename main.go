package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

// exitWaitTimeout is the exit status of "yadisk wait" when the state was
// not reached, distinct from the generic failure status.
const exitWaitTimeout = 2

func main() {
	ctx := interruptContext(context.Background(), slog.Default())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, errWaitTimeout) {
			exitWithStatus(err, exitWaitTimeout)
		}

		exitOnError(err)
	}
}
