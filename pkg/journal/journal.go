// Package journal queries the systemd journal for recent problems logged by
// the monitored Clear Containers components.
package journal

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/supporttools/cc-doctor/pkg/command"
	"github.com/supporttools/cc-doctor/pkg/logger"
	"github.com/supporttools/cc-doctor/pkg/patterns"
)

// SelectorKind chooses how journal entries are filtered for a component.
type SelectorKind int

const (
	// ByIdentifier filters on the syslog identifier (journalctl -t).
	ByIdentifier SelectorKind = iota

	// ByUnit filters on the systemd unit name (journalctl -u).
	ByUnit
)

// timestampMarker guards against multi-line stack traces and blank
// separators being misclassified: the components log in logfmt, so genuine
// entries carry a time="..." field even with journal metadata stripped by
// "-o cat".
const timestampMarker = "time="

// ComponentSource identifies one monitored component's journal stream.
type ComponentSource struct {
	// Name is the display label used in report headings ("runtime").
	Name string

	// Program is the identifier or unit name the journal is filtered on.
	Program string

	// Selector picks the journal filter used for Program.
	Selector SelectorKind
}

// Components returns the fixed monitored components in report order. The
// proxy runs as a long-lived service and is selected by unit; the runtime
// and shim are short-lived per-container processes and are selected by
// syslog identifier.
func Components() []ComponentSource {
	return []ComponentSource{
		{Name: "runtime", Program: "cc-runtime", Selector: ByIdentifier},
		{Name: "proxy", Program: "cc-proxy", Selector: ByUnit},
		{Name: "shim", Program: "cc-shim", Selector: ByIdentifier},
	}
}

// queryArgs builds the journalctl argument list for a component: quiet,
// message-only raw output, the full available history, filtered by
// identifier or unit.
func queryArgs(src ComponentSource) []string {
	args := []string{"-q", "-o", "cat", "-a"}
	switch src.Selector {
	case ByUnit:
		args = append(args, "-u", src.Program)
	default:
		args = append(args, "-t", src.Program)
	}
	return args
}

// Scanner extracts problem lines from a component's journal stream.
type Scanner struct {
	runner  command.Runner
	matcher *patterns.Matcher
}

// NewScanner returns a Scanner using the given runner and problem matcher.
func NewScanner(runner command.Runner, matcher *patterns.Matcher) *Scanner {
	return &Scanner{runner: runner, matcher: matcher}
}

// Scan returns up to limit problem lines for the component, in chronological
// order. Recency wins: when more than limit lines match, the oldest are
// dropped. found is false when nothing matched or the journal was
// unreachable; an unreachable journal degrades the report, it never aborts
// it.
func (s *Scanner) Scan(ctx context.Context, src ComponentSource, limit int) (lines []string, found bool) {
	result, err := s.runner.Run(ctx, "journalctl", queryArgs(src)...)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"component": src.Name,
			"program":   src.Program,
		}).WithError(err).Warn("journal unreachable, skipping component scan")
		return nil, false
	}
	if result.ExitCode != 0 {
		logger.WithFields(logrus.Fields{
			"component": src.Name,
			"program":   src.Program,
			"exitCode":  result.ExitCode,
		}).Warn("journal query failed, skipping component scan")
		return nil, false
	}

	var matched []string
	for _, line := range strings.Split(result.Combined, "\n") {
		if !strings.Contains(line, timestampMarker) {
			continue
		}
		if s.matcher.Matches(line) {
			matched = append(matched, line)
		}
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, len(matched) > 0
}
