package ccruntime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/supporttools/cc-doctor/pkg/command"
)

// fakeRunner replays canned results keyed by the full command line.
type fakeRunner struct {
	paths   map[string]string
	results map[string]command.Result
	errs    map[string]error
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if path, ok := f.paths[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (command.Result, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	if err, ok := f.errs[key]; ok {
		return command.Result{}, err
	}
	if result, ok := f.results[key]; ok {
		return result, nil
	}
	return command.Result{}, fmt.Errorf("unexpected command: %s", key)
}

// fakeFileReader serves file contents from a map.
type fakeFileReader struct {
	files map[string]string
}

func (f *fakeFileReader) ReadFile(path string) ([]byte, error) {
	if contents, ok := f.files[path]; ok {
		return []byte(contents), nil
	}
	return nil, fmt.Errorf("open %s: no such file or directory", path)
}

func newTestHandle(t *testing.T, runner *fakeRunner) *Handle {
	t.Helper()
	if runner.paths == nil {
		runner.paths = map[string]string{BinaryName: "/usr/bin/cc-runtime"}
	}
	handle, err := Resolve(runner)
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	return handle
}

// TestResolveNotFound tests the fatal missing-runtime precondition.
func TestResolveNotFound(t *testing.T) {
	_, err := Resolve(&fakeRunner{})
	if !errors.Is(err, ErrRuntimeNotFound) {
		t.Errorf("Resolve() error = %v, expected ErrRuntimeNotFound", err)
	}
}

// TestVersion tests version retrieval and its non-fatal degradation.
func TestVersion(t *testing.T) {
	handle := newTestHandle(t, &fakeRunner{results: map[string]command.Result{
		"/usr/bin/cc-runtime --version": {Combined: "cc-runtime version 3.0.23\n"},
	}})
	if got := handle.Version(context.Background()); got != "cc-runtime version 3.0.23" {
		t.Errorf("Version() = %q, expected trimmed version string", got)
	}

	broken := newTestHandle(t, &fakeRunner{results: map[string]command.Result{
		"/usr/bin/cc-runtime --version": {ExitCode: 1, Combined: "flag provided but not defined"},
	}})
	if got := broken.Version(context.Background()); got != "unknown" {
		t.Errorf("Version() on failure = %q, expected \"unknown\"", got)
	}
}

// TestConfigPathsUnion verifies deduplication and lexicographic sorting of
// the runtime-reported paths plus the fixed fallbacks.
func TestConfigPathsUnion(t *testing.T) {
	// The runtime already reports one of the fallback locations; the
	// result must not contain a duplicate.
	handle := newTestHandle(t, &fakeRunner{results: map[string]command.Result{
		"/usr/bin/cc-runtime --cc-show-default-config-paths": {
			Combined: "/usr/share/defaults/clear-containers/configuration.toml\n/opt/cc/configuration.toml\n",
		},
	}})

	paths, err := handle.ConfigPaths(context.Background())
	if err != nil {
		t.Fatalf("ConfigPaths() returned error: %v", err)
	}

	want := []string{
		"/etc/clear-containers/configuration.toml",
		"/opt/cc/configuration.toml",
		"/usr/share/defaults/clear-containers/configuration.toml",
	}
	if len(paths) != len(want) {
		t.Fatalf("ConfigPaths() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("ConfigPaths()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

// TestConfigPathsEmptyRuntimeList verifies the fallbacks survive an empty
// runtime-reported list.
func TestConfigPathsEmptyRuntimeList(t *testing.T) {
	handle := newTestHandle(t, &fakeRunner{results: map[string]command.Result{
		"/usr/bin/cc-runtime --cc-show-default-config-paths": {Combined: "\n"},
	}})

	paths, err := handle.ConfigPaths(context.Background())
	if err != nil {
		t.Fatalf("ConfigPaths() returned error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("ConfigPaths() = %v, expected the two fallback paths", paths)
	}
}

// TestConfigPathsFailureIsFatal verifies the query failure aborts with the
// runtime version attached for diagnosis.
func TestConfigPathsFailureIsFatal(t *testing.T) {
	handle := newTestHandle(t, &fakeRunner{results: map[string]command.Result{
		"/usr/bin/cc-runtime --cc-show-default-config-paths": {
			ExitCode: 1,
			Combined: "unknown flag\n",
		},
		"/usr/bin/cc-runtime --version": {Combined: "cc-runtime version 3.0.23\n"},
	}})

	_, err := handle.ConfigPaths(context.Background())
	if err == nil {
		t.Fatal("ConfigPaths() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "3.0.23") {
		t.Errorf("ConfigPaths() error %q does not carry the runtime version", err)
	}
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("ConfigPaths() error %q does not carry the exit status", err)
	}
}

// TestEnvSummary tests verbatim capture including the failure case.
func TestEnvSummary(t *testing.T) {
	handle := newTestHandle(t, &fakeRunner{results: map[string]command.Result{
		"/usr/bin/cc-runtime cc-env": {Combined: "[Meta]\n  Version = \"1.0.6\"\n"},
	}})
	env, err := handle.EnvSummary(context.Background())
	if err != nil {
		t.Fatalf("EnvSummary() returned error: %v", err)
	}
	if !strings.Contains(env, "[Meta]") {
		t.Errorf("EnvSummary() = %q, expected verbatim cc-env output", env)
	}

	failing := newTestHandle(t, &fakeRunner{results: map[string]command.Result{
		"/usr/bin/cc-runtime cc-env": {ExitCode: 2, Combined: "cc-env: cannot load config\n"},
	}})
	env, err = failing.EnvSummary(context.Background())
	if err == nil {
		t.Fatal("EnvSummary() expected error on non-zero exit")
	}
	if !strings.Contains(env, "cannot load config") {
		t.Errorf("EnvSummary() = %q, expected the failure text to be preserved", env)
	}
}

// TestLoadConfigFiles tests existing and missing config paths.
func TestLoadConfigFiles(t *testing.T) {
	reader := &fakeFileReader{files: map[string]string{
		"/etc/clear-containers/configuration.toml": "[runtime]\n",
	}}

	files := LoadConfigFiles([]string{
		"/etc/clear-containers/configuration.toml",
		"/usr/share/defaults/clear-containers/configuration.toml",
	}, reader)

	if len(files) != 2 {
		t.Fatalf("LoadConfigFiles() returned %d entries, expected 2", len(files))
	}
	if !files[0].Exists || files[0].Contents != "[runtime]\n" {
		t.Errorf("LoadConfigFiles()[0] = %+v, expected existing file with contents", files[0])
	}
	if files[1].Exists {
		t.Errorf("LoadConfigFiles()[1] = %+v, expected missing file", files[1])
	}
}
