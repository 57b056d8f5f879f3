package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"rsyncsync/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagProfile    string
	flagDryRun     bool
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedProfile holds the effective, validated configuration loaded by
// PersistentPreRunE. It is available to every subcommand's RunE.
var resolvedProfile *config.ResolvedProfile

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rsync-sync",
		Short:   "Bidirectional directory sync over SSH",
		Long:    "rsync-sync keeps a local directory and a remote directory in bidirectional agreement using a three-way diff against the last successful sync.",
		Version: version,
		// Silence Cobra's default error/usage printing; exitOnError handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "profile name (default: the config's [profile.default], or its only profile)")
	cmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "preview actions without executing them")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newResetStateCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newConflictsCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the four-layer
// override chain and stores the result in resolvedProfile for use by
// subcommands.
func loadConfig(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
		Profile:    flagProfile,
	}

	if cmd.Flags().Changed("dry-run") {
		cli.DryRun = &flagDryRun
	}

	if cmd.Flags().Changed("verbose") {
		v := true
		cli.Verbose = &v
	}

	env := config.ReadEnvOverrides()

	resolved, err := config.Resolve(env, cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedProfile = resolved

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved profile and
// CLI flags. The config's log_level provides the baseline; --verbose and
// --quiet override it because CLI flags always win. log_format follows the
// same "auto" convention as the teacher project: text on an interactive
// terminal, JSON otherwise, unless the profile pins one explicitly.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	if resolvedProfile != nil {
		switch resolvedProfile.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	out := logOutput()
	opts := &slog.HandlerOptions{Level: level}

	if resolveLogFormat() == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}

	return slog.New(slog.NewTextHandler(out, opts))
}

// logOutput opens the profile's log_file for append, falling back to stderr
// when unset or unopenable.
func logOutput() io.Writer {
	if resolvedProfile == nil || resolvedProfile.Logging.LogFile == "" {
		return os.Stderr
	}

	f, err := os.OpenFile(resolvedProfile.Logging.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log_file %s: %v\n", resolvedProfile.Logging.LogFile, err)
		return os.Stderr
	}

	return f
}

func resolveLogFormat() string {
	format := "auto"
	if resolvedProfile != nil && resolvedProfile.Logging.LogFormat != "" {
		format = resolvedProfile.Logging.LogFormat
	}

	if format != "auto" {
		return format
	}

	if isatty.IsTerminal(os.Stderr.Fd()) {
		return "text"
	}

	return "json"
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
