package cliconfig

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = "expbatch.toml"

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ResultsRoot string   `toml:"results_root"`
	LogPath     string   `toml:"log_path"`
	Program     string   `toml:"program"`
	ProgramArgs []string `toml:"program_args"`
	ProgramEnv  []string `toml:"program_env"`
	WorkDir     string   `toml:"work_dir"`
	KillGrace   string   `toml:"kill_grace"`
	Tee         *bool    `toml:"tee"`
	RecordDir   string   `toml:"record_dir"`
	NoRecord    *bool    `toml:"no_record"`
	Debounce    string   `toml:"debounce"`
	LogLevel    string   `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("results-root", fc.ResultsRoot, &cfg.ResultsRoot)
	s.setString("log", fc.LogPath, &cfg.LogPath)
	s.setString("program", fc.Program, &cfg.Program)
	s.setStrings("program-arg", fc.ProgramArgs, &cfg.ProgramArgs)
	s.setStrings("program-env", fc.ProgramEnv, &cfg.ProgramEnv)
	s.setString("work-dir", fc.WorkDir, &cfg.WorkDir)
	s.setString("record-dir", fc.RecordDir, &cfg.RecordDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("kill-grace", fc.KillGrace, &cfg.KillGrace); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setBool("tee", fc.Tee, &cfg.Tee)
	s.setBool("no-record", fc.NoRecord, &cfg.NoRecord)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
