package cliconfig

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/expbatch/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ResultsRoot != "results" {
		t.Errorf("ResultsRoot = %v, want results", cfg.ResultsRoot)
	}
	if cfg.LogPath != "output.log" {
		t.Errorf("LogPath = %v, want output.log", cfg.LogPath)
	}
	if cfg.Program != "cargo" {
		t.Errorf("Program = %v, want cargo", cfg.Program)
	}
	if !reflect.DeepEqual(cfg.ProgramArgs, []string{"run", "--release"}) {
		t.Errorf("ProgramArgs = %v, want [run --release]", cfg.ProgramArgs)
	}

	// Mutating the returned args must not leak into later defaults.
	cfg.ProgramArgs[0] = "build"
	if DefaultConfig().ProgramArgs[0] != "run" {
		t.Error("DefaultConfig shares ProgramArgs backing array")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			ResultsRoot: "results",
			LogPath:     "out/output.log",
			Program:     "cargo",
			KillGrace:   time.Second,
			Debounce:    time.Second,
		}
	}

	tests := []struct {
		name          string
		mutate        func(*Config)
		wantErr       bool
		wantRecordDir string
	}{
		{
			name:          "valid minimal config derives record dir",
			mutate:        func(*Config) {},
			wantRecordDir: "out",
		},
		{
			name:          "explicit record dir kept",
			mutate:        func(c *Config) { c.RecordDir = "/var/lib/expbatch" },
			wantRecordDir: "/var/lib/expbatch",
		},
		{
			name:          "bare log file records in working dir",
			mutate:        func(c *Config) { c.LogPath = "output.log" },
			wantRecordDir: ".",
		},
		{
			name:          "record dir ignored when recording is off",
			mutate:        func(c *Config) { c.RecordDir = "results/state"; c.NoRecord = true },
			wantRecordDir: "results/state",
		},
		{
			name:          "sibling with shared prefix is outside",
			mutate:        func(c *Config) { c.LogPath = "results-logs/output.log" },
			wantRecordDir: "results-logs",
		},
		{name: "log in results root", mutate: func(c *Config) { c.ResultsRoot = "."; c.LogPath = "output.log" }, wantErr: true},
		{name: "log below results root", mutate: func(c *Config) { c.LogPath = "results/alpha/output.log" }, wantErr: true},
		{name: "record dir is results root", mutate: func(c *Config) { c.RecordDir = "results" }, wantErr: true},
		{name: "missing results root", mutate: func(c *Config) { c.ResultsRoot = "" }, wantErr: true},
		{name: "missing log", mutate: func(c *Config) { c.LogPath = "" }, wantErr: true},
		{name: "missing program", mutate: func(c *Config) { c.Program = "" }, wantErr: true},
		{name: "zero kill grace", mutate: func(c *Config) { c.KillGrace = 0 }, wantErr: true},
		{name: "negative debounce", mutate: func(c *Config) { c.Debounce = -time.Second }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error but got nil")
				}
				if !errors.Is(err, domain.ErrInvalidConfig) {
					t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if cfg.RecordDir != tt.wantRecordDir {
				t.Errorf("RecordDir = %v, want %v", cfg.RecordDir, tt.wantRecordDir)
			}
		})
	}
}

func TestConfig_Level(t *testing.T) {
	cfg := Config{}
	if lvl, err := cfg.Level(); err != nil || lvl != zerolog.InfoLevel {
		t.Errorf("Level() = %v, %v; want info, nil", lvl, err)
	}

	cfg.LogLevel = "debug"
	if lvl, err := cfg.Level(); err != nil || lvl != zerolog.DebugLevel {
		t.Errorf("Level() = %v, %v; want debug, nil", lvl, err)
	}
}

func TestConfigSetter_Strings(t *testing.T) {
	dst := []string{"run", "--release"}

	newConfigSetter(nil).setStrings("program-arg", nil, &dst)
	if !reflect.DeepEqual(dst, []string{"run", "--release"}) {
		t.Errorf("nil value changed dst to %v", dst)
	}

	newConfigSetter(map[string]bool{"program-arg": true}).setStrings("program-arg", []string{"x"}, &dst)
	if !reflect.DeepEqual(dst, []string{"run", "--release"}) {
		t.Errorf("changed flag was overridden: %v", dst)
	}

	newConfigSetter(nil).setStrings("program-arg", []string{}, &dst)
	if len(dst) != 0 {
		t.Errorf("empty value should clear dst, got %v", dst)
	}
}
