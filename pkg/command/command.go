// Package command provides a typed process-invocation layer for cc-doctor.
// Every external tool (journalctl, the runtime binary, package managers and
// container-manager CLIs) is executed through the Runner interface with an
// explicit argument list, never a composed shell string, and callers can be
// exercised in tests with a fake Runner.
package command

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// DefaultTimeout bounds every external invocation. A hung journal or
// container daemon must not wedge the whole report.
const DefaultTimeout = 30 * time.Second

// Result holds the outcome of one external command invocation.
type Result struct {
	// ExitCode is the command's exit status. Zero on success.
	ExitCode int

	// Combined is the interleaved stdout and stderr output. For a failed
	// sub-probe this text is the diagnostic itself and is rendered
	// verbatim in the report.
	Combined string
}

// Runner abstracts command discovery and execution for testability.
type Runner interface {
	// LookPath reports where the named tool lives, or an error if it is
	// not installed.
	LookPath(name string) (string, error)

	// Run executes name with args and captures combined output. A
	// non-zero exit status is reported through Result.ExitCode, not
	// through the error: callers decide whether a failing probe is
	// fatal. The error is non-nil only when the command could not be
	// started or was killed before exiting.
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// New returns a Runner backed by os/exec.
func New() Runner {
	return &execRunner{}
}

type execRunner struct{}

func (r *execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	result := Result{Combined: string(output)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	return result, nil
}

// Available reports whether the named tool is installed.
func Available(r Runner, name string) bool {
	_, err := r.LookPath(name)
	return err == nil
}
