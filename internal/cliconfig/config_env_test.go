package cliconfig

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		expected func() Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"EXPBATCH_RESULTS_ROOT": "/env/results",
				"EXPBATCH_LOG_PATH":     "/env/output.log",
				"EXPBATCH_PROGRAM":      "analyzer",
				"EXPBATCH_PROGRAM_ARGS": "--fast --quiet",
				"EXPBATCH_PROGRAM_ENV":  "RUST_LOG=info,RUST_BACKTRACE=1",
				"EXPBATCH_KILL_GRACE":   "3s",
				"EXPBATCH_TEE":          "1",
				"EXPBATCH_NO_RECORD":    "true",
				"EXPBATCH_DEBOUNCE":     "250ms",
				"EXPBATCH_LOG_LEVEL":    "debug",
			},
			changed: map[string]bool{},
			expected: func() Config {
				c := DefaultConfig()
				c.ResultsRoot = "/env/results"
				c.LogPath = "/env/output.log"
				c.Program = "analyzer"
				c.ProgramArgs = []string{"--fast", "--quiet"}
				c.ProgramEnv = []string{"RUST_LOG=info", "RUST_BACKTRACE=1"}
				c.KillGrace = 3 * time.Second
				c.Tee = true
				c.NoRecord = true
				c.Debounce = 250 * time.Millisecond
				c.LogLevel = "debug"
				return c
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"EXPBATCH_RESULTS_ROOT": "/env/results",
				"EXPBATCH_PROGRAM":      "analyzer",
			},
			changed: map[string]bool{"results-root": true},
			expected: func() Config {
				c := DefaultConfig()
				c.Program = "analyzer"
				return c
			},
		},
		{
			name:    "program env respects changed flag",
			envVars: map[string]string{"EXPBATCH_PROGRAM_ENV": "RUST_LOG=info"},
			changed: map[string]bool{"program-env": true},
			expected: func() Config {
				return DefaultConfig()
			},
		},
		{
			name:    "handles bool 'false' as false",
			envVars: map[string]string{"EXPBATCH_TEE": "false"},
			changed: map[string]bool{},
			expected: func() Config {
				return DefaultConfig()
			},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"EXPBATCH_DEBOUNCE": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := DefaultConfig()
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if want := tt.expected(); !reflect.DeepEqual(cfg, want) {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, want)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	fileConf := FileConfig{
		ResultsRoot: "/file/results",
		LogPath:     "/file/output.log",
		Program:     "file-program",
	}

	t.Setenv("EXPBATCH_LOG_PATH", "/env/output.log")
	t.Setenv("EXPBATCH_PROGRAM", "env-program")

	changed := map[string]bool{"program": true}

	cfg := DefaultConfig()
	cfg.Program = "cli-program"

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.Program != "cli-program" {
		t.Errorf("Program = %v, want cli-program (CLI should win)", cfg.Program)
	}
	if cfg.LogPath != "/env/output.log" {
		t.Errorf("LogPath = %v, want /env/output.log (env should override file)", cfg.LogPath)
	}
	if cfg.ResultsRoot != "/file/results" {
		t.Errorf("ResultsRoot = %v, want /file/results (file should set)", cfg.ResultsRoot)
	}
}
