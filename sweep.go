package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/yadisk-go/internal/fixture"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Permanently delete root entries carrying the test prefix",
		Long: `List the root folder and permanently delete every entry whose name starts
with the test prefix (--prefix, TEST_PREFIX or test_prefix in the config file).
Use it to clean up after interrupted test runs.`,
		Args: cobra.NoArgs,
		RunE: runSweep,
	}
}

func runSweep(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	res, err := fixture.Sweep(cmd.Context(), a.client, resolvedCfg.TestPrefix, resolvedCfg.SweepLimit, a.logger)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(a.out, res)
	}

	fmt.Fprintf(a.out, "Matched %d, deleted %d, failed %d (prefix %q)\n",
		res.Matched, res.Deleted, res.Failed, resolvedCfg.TestPrefix)

	if res.Failed > 0 {
		return fmt.Errorf("sweep: %d deletes failed", res.Failed)
	}

	return nil
}
