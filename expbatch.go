// Package expbatch invokes an experiment computation program once over every
// entry of a results directory.
//
// Example usage:
//
//	cfg := expbatch.DefaultConfig()
//	cfg.ResultsRoot = "results"
//	cfg.LogPath = "output.log"
//	code, err := expbatch.Run(context.Background(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Exit(code)
package expbatch

import (
	"context"
	"time"

	"github.com/bft-labs/expbatch/internal/adapters/fs"
	"github.com/bft-labs/expbatch/internal/adapters/process"
	"github.com/bft-labs/expbatch/internal/app"
	"github.com/bft-labs/expbatch/internal/domain"
	"github.com/bft-labs/expbatch/internal/ports"
	"github.com/bft-labs/expbatch/pkg/log"
)

// Config holds the settings for a batch run.
// Use DefaultConfig() to get a Config with the conventional defaults.
type Config struct {
	// ResultsRoot is the directory whose immediate entries name the experiments.
	ResultsRoot string

	// LogPath receives the program's stdout, truncated on every run.
	LogPath string

	// Program and ProgramArgs form the command; experiment names follow ProgramArgs.
	Program     string
	ProgramArgs []string

	// KillGrace bounds how long an interrupted program may keep running.
	KillGrace time.Duration

	// RecordDir, when set, receives last_run.json after each run.
	RecordDir string

	// Logger defaults to a no-op logger.
	Logger log.Logger
}

// ExperimentName identifies one experiment.
type ExperimentName = domain.ExperimentName

// DiscoveryError is returned when the results directory cannot be listed.
type DiscoveryError = domain.DiscoveryError

// InvocationError is returned when the program cannot be located or started.
type InvocationError = domain.InvocationError

// Sentinel errors usable with errors.Is.
var (
	ErrDiscovery  = domain.ErrDiscovery
	ErrInvocation = domain.ErrInvocation
)

// DefaultConfig returns a Config equivalent to
// `cargo run --release <experiments...> > output.log` over ./results.
func DefaultConfig() Config {
	return Config{
		ResultsRoot: "results",
		LogPath:     "output.log",
		Program:     "cargo",
		ProgramArgs: []string{"run", "--release"},
		KillGrace:   process.DefaultKillGrace,
	}
}

// Discover returns the experiments in cfg.ResultsRoot in directory listing order.
func Discover(ctx context.Context, cfg Config) ([]ExperimentName, error) {
	return fs.NewResultsDir(cfg.ResultsRoot).Discover(ctx)
}

// Run invokes the program once with every experiment and returns its exit code.
// A non-zero exit code is not an error.
func Run(ctx context.Context, cfg Config) (int, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	var records ports.RecordRepository
	if cfg.RecordDir != "" {
		records = fs.NewRecordFileRepository(cfg.RecordDir)
	}

	invoker := process.NewInvoker(process.Config{
		Program:   cfg.Program,
		Args:      cfg.ProgramArgs,
		KillGrace: cfg.KillGrace,
	}, logger)

	r := app.NewRunner(app.RunnerConfig{LogPath: cfg.LogPath},
		fs.NewResultsDir(cfg.ResultsRoot), invoker, records, logger)

	res, err := r.Run(ctx)
	if err != nil {
		return 1, err
	}
	return res.ExitCode, nil
}
