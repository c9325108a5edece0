package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/yadisk-go/internal/config"
	"github.com/tonimelisma/yadisk-go/internal/disk"
	"github.com/tonimelisma/yadisk-go/internal/poll"
	"github.com/tonimelisma/yadisk-go/internal/retry"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagAPIURL     string
	flagPrefix     string
	flagTimeout    string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
var resolvedCfg *config.Resolved

// dotEnvPath is the .env file loaded before configuration is resolved.
var dotEnvPath = ".env"

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "yadisk",
		Short:   "Yandex Disk REST API client",
		Long:    "A small client for the Yandex Disk REST API, built on the same packages as its integration test harness.",
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path (overrides "+config.EnvConfig+")")
	cmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API base URL")
	cmd.PersistentFlags().StringVar(&flagPrefix, "prefix", "", "test resource prefix")
	cmd.PersistentFlags().StringVar(&flagTimeout, "timeout", "", "per-request timeout (e.g. 30s)")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newStatCmd())
	cmd.AddCommand(newMkdirCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newMvCmd())
	cmd.AddCommand(newCpCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newUnpublishCmd())
	cmd.AddCommand(newWaitCmd())
	cmd.AddCommand(newSweepCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// (defaults, config file, .env, environment, flags) and stores the result
// in resolvedCfg for use by subcommands.
func loadConfig(_ *cobra.Command) error {
	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		return err
	}

	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
		APIURL:     flagAPIURL,
		TestPrefix: flagPrefix,
		Timeout:    flagTimeout,
	}

	resolved, err := config.Resolve(config.ReadEnvOverrides(), cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = resolved

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win. Logs go to stderr as
// text on a terminal and as JSON otherwise, unless log_format says which.
func buildLogger() *slog.Logger {
	return newLogger(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
}

func newLogger(w io.Writer, terminal bool) *slog.Logger {
	level := slog.LevelInfo
	format := config.LogFormatAuto

	// Config-based settings (lower priority than CLI flags).
	if resolvedCfg != nil {
		switch resolvedCfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		format = resolvedCfg.LogFormat
	}

	// CLI flags override config (highest priority).
	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	useJSON := format == config.LogFormatJSON || (format != config.LogFormatText && !terminal)
	if useJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// app is what every API-facing command works with.
type app struct {
	client *disk.Client
	poller *poll.Poller
	retry  retry.Policy
	logger *slog.Logger
	out    io.Writer
}

// newApp builds the client stack from resolvedCfg. It fails fast when no
// token is configured so no command ever reaches the network without one.
func newApp(cmd *cobra.Command) (*app, error) {
	if resolvedCfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	if err := resolvedCfg.RequireToken(); err != nil {
		return nil, err
	}

	logger := buildLogger()
	client := disk.NewFromConfig(resolvedCfg, logger)

	return &app{
		client: client,
		poller: poll.New(client, resolvedCfg.PollInterval, logger),
		retry: retry.Policy{
			Attempts: resolvedCfg.RetryAttempts,
			Delay:    resolvedCfg.RetryDelay,
			Logger:   logger,
		},
		logger: logger,
		out:    cmd.OutOrStdout(),
	}, nil
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	exitWithStatus(err, 1)
}

func exitWithStatus(err error, code int) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(code)
}
