package cliconfig

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/expbatch/internal/domain"
)

// Defaults matching the observed invocation: `cargo run --release <experiments...> > output.log`.
const (
	DefaultResultsRoot = "results"
	DefaultLogPath     = "output.log"
	DefaultProgram     = "cargo"
)

// DefaultProgramArgs precede the experiment names.
var DefaultProgramArgs = []string{"run", "--release"}

// Config holds CLI configuration for expbatch.
type Config struct {
	ResultsRoot string
	LogPath     string

	Program     string
	ProgramArgs []string
	ProgramEnv  []string
	WorkDir     string
	KillGrace   time.Duration

	Tee       bool
	RecordDir string
	NoRecord  bool

	Debounce time.Duration
	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ResultsRoot: DefaultResultsRoot,
		LogPath:     DefaultLogPath,
		Program:     DefaultProgram,
		ProgramArgs: append([]string(nil), DefaultProgramArgs...),
		KillGrace:   10 * time.Second,
		RecordDir:   "", // Derived from LogPath during Validate
		Debounce:    2 * time.Second,
		LogLevel:    "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.ResultsRoot == "" {
		return fmt.Errorf("%w: results-root is required", domain.ErrInvalidConfig)
	}
	if c.LogPath == "" {
		return fmt.Errorf("%w: log is required", domain.ErrInvalidConfig)
	}
	if c.Program == "" {
		return fmt.Errorf("%w: program is required", domain.ErrInvalidConfig)
	}
	if c.KillGrace <= 0 {
		return fmt.Errorf("%w: kill grace must be positive", domain.ErrInvalidConfig)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("%w: debounce must be positive", domain.ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if c.RecordDir == "" {
		c.RecordDir = filepath.Dir(c.LogPath)
	}

	// Anything written under the results root would be discovered as an
	// experiment and would retrigger watch mode.
	if within(c.ResultsRoot, c.LogPath) {
		return fmt.Errorf("%w: log %s is inside results root %s", domain.ErrInvalidConfig, c.LogPath, c.ResultsRoot)
	}
	if !c.NoRecord && within(c.ResultsRoot, c.RecordDir) {
		return fmt.Errorf("%w: record dir %s is inside results root %s", domain.ErrInvalidConfig, c.RecordDir, c.ResultsRoot)
	}
	return nil
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// configSetter applies values only if the corresponding flag hasn't been
// explicitly set on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings replaces a list if value is non-nil and flag not changed.
// An empty non-nil list clears the destination.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = append(make([]string, 0, len(value)), value...)
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
