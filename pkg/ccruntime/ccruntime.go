// Package ccruntime resolves and queries the Clear Containers runtime
// binary, and discovers the runtime's effective configuration files.
package ccruntime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/supporttools/cc-doctor/pkg/command"
)

// BinaryName is the runtime binary probed for on PATH.
const BinaryName = "cc-runtime"

// ErrRuntimeNotFound indicates the runtime binary is not installed. This is
// one of the two fatal preconditions for a collection run.
var ErrRuntimeNotFound = errors.New("runtime binary not found")

// fallbackConfigPaths are always part of the resolved set, even when the
// runtime reports nothing: the system-wide and the vendor-default locations.
var fallbackConfigPaths = []string{
	"/etc/clear-containers/configuration.toml",
	"/usr/share/defaults/clear-containers/configuration.toml",
}

// Handle is a resolved runtime binary. All queries go through the Runner so
// they stay testable and bounded.
type Handle struct {
	path   string
	runner command.Runner
}

// Resolve locates the runtime binary on PATH.
func Resolve(runner command.Runner) (*Handle, error) {
	path, err := runner.LookPath(BinaryName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRuntimeNotFound, BinaryName, err)
	}
	return &Handle{path: path, runner: runner}, nil
}

// Path returns the resolved binary location.
func (h *Handle) Path() string {
	return h.path
}

// Version returns the runtime's --version output, trimmed. Failure is not
// fatal: the version is context for the report, not a precondition.
func (h *Handle) Version(ctx context.Context) string {
	result, err := h.runner.Run(ctx, h.path, "--version")
	if err != nil || result.ExitCode != 0 {
		return "unknown"
	}
	return strings.TrimSpace(result.Combined)
}

// EnvSummary returns the raw "cc-env" output for verbatim embedding. A
// non-zero exit still returns the captured output alongside the error so the
// report can show the failure text itself.
func (h *Handle) EnvSummary(ctx context.Context) (string, error) {
	result, err := h.runner.Run(ctx, h.path, "cc-env")
	if err != nil {
		return "", fmt.Errorf("query %s env summary: %w", BinaryName, err)
	}
	if result.ExitCode != 0 {
		return result.Combined, fmt.Errorf("%s cc-env exited with status %d", BinaryName, result.ExitCode)
	}
	return result.Combined, nil
}

// ConfigPaths asks the runtime for its default config search path and unions
// it with the fixed fallback locations, deduplicated and sorted for
// deterministic output. Failure here is fatal for the whole report: without
// the runtime's own view of its configuration the remaining sections would
// be misleading. The runtime version string is attached for diagnosis.
func (h *Handle) ConfigPaths(ctx context.Context) ([]string, error) {
	result, err := h.runner.Run(ctx, h.path, "--cc-show-default-config-paths")
	if err != nil {
		return nil, fmt.Errorf("query default config paths (runtime version %q): %w",
			h.Version(ctx), err)
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("query default config paths (runtime version %q): exit status %d: %s",
			h.Version(ctx), result.ExitCode, strings.TrimSpace(result.Combined))
	}

	seen := make(map[string]struct{})
	var paths []string
	for _, path := range append(strings.Fields(result.Combined), fallbackConfigPaths...) {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// FileReader abstracts config file access for testability.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

type osFileReader struct{}

func (osFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// NewFileReader returns a FileReader backed by the os package.
func NewFileReader() FileReader {
	return osFileReader{}
}

// ConfigFile is one resolved configuration location and its contents.
type ConfigFile struct {
	Path     string
	Exists   bool
	Contents string
}

// LoadConfigFiles reads each resolved path. A missing file is recorded, not
// an error: most installations populate only one of the candidate locations.
func LoadConfigFiles(paths []string, reader FileReader) []ConfigFile {
	files := make([]ConfigFile, 0, len(paths))
	for _, path := range paths {
		data, err := reader.ReadFile(path)
		if err != nil {
			files = append(files, ConfigFile{Path: path})
			continue
		}
		files = append(files, ConfigFile{Path: path, Exists: true, Contents: string(data)})
	}
	return files
}
