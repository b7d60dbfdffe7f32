// Package config holds the runtime-tunable settings for cc-doctor.
//
// cc-doctor deliberately has no command line flags beyond help: tuning comes
// from an optional settings file and the PROBLEM_LIMIT environment variable,
// so the invocation people paste into bug reports stays identical everywhere.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the optional settings file location.
	DefaultPath = "/etc/cc-doctor/config.yaml"

	// ProblemLimitEnv is the environment variable overriding the
	// per-component problem cap.
	ProblemLimitEnv = "PROBLEM_LIMIT"

	// DefaultProblemLimit caps how many problem lines are kept per
	// component when nothing overrides it.
	DefaultProblemLimit = 50

	defaultLogLevel  = "warn"
	defaultLogFormat = "text"
)

// Settings are the tunables honoured by a collection run.
type Settings struct {
	// LogLevel is a logrus level name for stderr progress logging.
	LogLevel string `yaml:"logLevel"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"logFormat"`

	// ProblemLimit caps problem lines kept per component; when more
	// lines match, the most recent win.
	ProblemLimit int `yaml:"problemLimit"`
}

// Default returns the settings used when no settings file exists.
func Default() *Settings {
	return &Settings{
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
		ProblemLimit: DefaultProblemLimit,
	}
}

// Load reads settings from a YAML file, fills in defaults for anything left
// unset and validates the result.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	settings.applyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &settings, nil
}

// LoadOrDefault loads settings from path, or returns defaults when the file
// does not exist.
func LoadOrDefault(path string) (*Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv applies the PROBLEM_LIMIT override. A malformed value returns an
// error and leaves the configured limit untouched: a bad override must not
// abort a best-effort diagnostic run, the caller logs it and carries on.
func (s *Settings) ApplyEnv() error {
	raw := os.Getenv(ProblemLimitEnv)
	if raw == "" {
		return nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fmt.Errorf("%s=%q is not a positive integer", ProblemLimitEnv, raw)
	}
	s.ProblemLimit = limit
	return nil
}

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	if s.ProblemLimit <= 0 {
		return fmt.Errorf("problemLimit must be positive, got %d", s.ProblemLimit)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("logFormat must be text or json, got %q", s.LogFormat)
	}
	return nil
}

func (s *Settings) applyDefaults() {
	if s.LogLevel == "" {
		s.LogLevel = defaultLogLevel
	}
	if s.LogFormat == "" {
		s.LogFormat = defaultLogFormat
	}
	if s.ProblemLimit == 0 {
		s.ProblemLimit = DefaultProblemLimit
	}
}
