// cc-doctor collects diagnostic data for a Clear Containers installation and
// writes a single markdown report to stdout for attaching to bug reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/supporttools/cc-doctor/pkg/ccruntime"
	"github.com/supporttools/cc-doctor/pkg/command"
	"github.com/supporttools/cc-doctor/pkg/config"
	"github.com/supporttools/cc-doctor/pkg/journal"
	"github.com/supporttools/cc-doctor/pkg/logger"
	"github.com/supporttools/cc-doctor/pkg/patterns"
	"github.com/supporttools/cc-doctor/pkg/report"
)

// Build-time variables set by goreleaser or make
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var errNotRoot = errors.New("cc-doctor must be run as root: journal and container manager probes need full access")

func main() {
	rootCmd := newRootCmd(command.New(), os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(runner command.Runner, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cc-doctor",
		Short: "Collect Clear Containers diagnostic data for bug reports",
		Long: `cc-doctor inspects the installed Clear Containers stack (runtime, proxy
and shim), scans the system journal for likely problems, lists installed
stack packages and probes container manager tooling, then writes a single
markdown report to stdout.

The report is best-effort diagnostics: missing tools and unreadable logs are
recorded in the report instead of aborting the run. Run it as root and
attach the output to your issue.`,
		// The only accepted argument is a plain "help", which behaves
		// like --help.
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == "help" {
				return nil
			}
			return cobra.NoArgs(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return cmd.Help()
			}
			return run(cmd.Context(), runner, out)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

// run performs one collection. Only three conditions abort it: missing root
// privilege, an unresolvable runtime binary, and the runtime refusing to
// report its config search path (surfaced through the report builder).
func run(ctx context.Context, runner command.Runner, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := requireRoot(os.Geteuid()); err != nil {
		return err
	}

	settings, err := config.LoadOrDefault(config.DefaultPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := logger.Initialize(settings.LogLevel, settings.LogFormat); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if err := settings.ApplyEnv(); err != nil {
		logger.WithError(err).Warnf("ignoring %s override", config.ProblemLimitEnv)
	}

	handle, err := ccruntime.Resolve(runner)
	if err != nil {
		return err
	}
	logger.WithField("runtime", handle.Path()).
		WithField("problemLimit", settings.ProblemLimit).
		Debug("starting collection")

	builder := &report.Builder{
		Runtime:      handle,
		Scanner:      journal.NewScanner(runner, patterns.Default()),
		Runner:       runner,
		Files:        ccruntime.NewFileReader(),
		ToolVersion:  fmt.Sprintf("%s (commit %s)", Version, GitCommit),
		ProblemLimit: settings.ProblemLimit,
	}
	doc, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, doc)
	return err
}

func requireRoot(euid int) error {
	if euid != 0 {
		return errNotRoot
	}
	return nil
}
