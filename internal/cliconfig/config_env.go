package cliconfig

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "EXPBATCH_"

// EnvConfig lists the EXPBATCH_* variables. Durations and booleans stay
// strings so an unset variable can be told apart from a zero value.
//
// EXPBATCH_PROGRAM_ARGS is split on spaces and EXPBATCH_PROGRAM_ENV on
// commas. Arguments containing a space, or env values containing a comma,
// must be set through the config file or repeated flags instead.
type EnvConfig struct {
	ResultsRoot string   `env:"RESULTS_ROOT"`
	LogPath     string   `env:"LOG_PATH"`
	Program     string   `env:"PROGRAM"`
	ProgramArgs []string `env:"PROGRAM_ARGS" envSeparator:" "`
	ProgramEnv  []string `env:"PROGRAM_ENV" envSeparator:","`
	WorkDir     string   `env:"WORK_DIR"`
	KillGrace   string   `env:"KILL_GRACE"`
	Tee         string   `env:"TEE"`
	RecordDir   string   `env:"RECORD_DIR"`
	NoRecord    string   `env:"NO_RECORD"`
	Debounce    string   `env:"DEBOUNCE"`
	LogLevel    string   `env:"LOG_LEVEL"`
}

// LoadEnvConfig reads EXPBATCH_* variables from the process environment.
func LoadEnvConfig() (EnvConfig, error) {
	var ec EnvConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: EnvPrefix}); err != nil {
		return ec, fmt.Errorf("parse env: %w", err)
	}
	return ec, nil
}

// ApplyEnvConfig applies EXPBATCH_* variables to cfg.
// These override file config but are overridden by flags (checked via changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	ec, err := LoadEnvConfig()
	if err != nil {
		return err
	}

	s := newConfigSetter(changed)

	s.setString("results-root", ec.ResultsRoot, &cfg.ResultsRoot)
	s.setString("log", ec.LogPath, &cfg.LogPath)
	s.setString("program", ec.Program, &cfg.Program)
	s.setStrings("program-arg", ec.ProgramArgs, &cfg.ProgramArgs)
	s.setStrings("program-env", ec.ProgramEnv, &cfg.ProgramEnv)
	s.setString("work-dir", ec.WorkDir, &cfg.WorkDir)
	s.setString("record-dir", ec.RecordDir, &cfg.RecordDir)
	s.setString("log-level", ec.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("kill-grace", ec.KillGrace, &cfg.KillGrace); err != nil {
		return err
	}
	if err := s.setDuration("debounce", ec.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setBoolFromString("tee", ec.Tee, &cfg.Tee)
	s.setBoolFromString("no-record", ec.NoRecord, &cfg.NoRecord)

	return nil
}
