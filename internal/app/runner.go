package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/expbatch/internal/domain"
	"github.com/bft-labs/expbatch/internal/ports"
	"github.com/bft-labs/expbatch/pkg/log"
)

// RunnerConfig contains configuration for a batch run.
type RunnerConfig struct {
	// LogPath is the log artifact; it is truncated on every run.
	LogPath string

	// Tee, when set, also receives the program's stdout.
	Tee io.Writer
}

// Runner discovers experiments and invokes the external program once per Run.
type Runner struct {
	config     RunnerConfig
	discoverer ports.Discoverer
	invoker    ports.Invoker
	records    ports.RecordRepository
	logger     ports.Logger
	now        func() time.Time
}

// NewRunner creates a Runner. records may be nil to skip the run record.
func NewRunner(
	config RunnerConfig,
	discoverer ports.Discoverer,
	invoker ports.Invoker,
	records ports.RecordRepository,
	logger ports.Logger,
) *Runner {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Runner{
		config:     config,
		discoverer: discoverer,
		invoker:    invoker,
		records:    records,
		logger:     logger,
		now:        time.Now,
	}
}

// Discover returns the experiments currently in the results container.
func (r *Runner) Discover(ctx context.Context) ([]domain.ExperimentName, error) {
	names, err := r.discoverer.Discover(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("discovered experiments",
		log.String("results_root", r.discoverer.Root()),
		log.Int("count", len(names)))
	return names, nil
}

// Run executes one batch: discover, invoke the program exactly once with
// every experiment name, capture its stdout to the log artifact.
//
// A non-zero exit of the program is reported through Result.ExitCode, not as
// an error. Discovery and invocation failures abort the run before the log
// artifact is opened.
func (r *Runner) Run(ctx context.Context) (domain.Result, error) {
	names, err := r.Discover(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	if err := r.invoker.Resolve(); err != nil {
		return domain.Result{Experiments: names}, err
	}

	logFile, err := os.Create(r.config.LogPath)
	if err != nil {
		return domain.Result{Experiments: names}, fmt.Errorf("create log artifact: %w", err)
	}
	defer logFile.Close()

	var stdout io.Writer = logFile
	if r.config.Tee != nil {
		stdout = io.MultiWriter(logFile, r.config.Tee)
	}

	r.logger.Info("invoking program",
		log.Strings("command", r.invoker.Command()),
		log.Int("experiments", len(names)),
		log.String("log", r.config.LogPath))

	res := domain.Result{Experiments: names, StartedAt: r.now()}
	code, invokeErr := r.invoker.Invoke(ctx, ports.Invocation{
		Args:   domain.Args(names),
		Stdout: stdout,
	})
	res.FinishedAt = r.now()
	res.ExitCode = code

	if err := logFile.Close(); err != nil && invokeErr == nil {
		invokeErr = fmt.Errorf("close log artifact: %w", err)
	}

	r.saveRecord(ctx, res, invokeErr)

	if invokeErr != nil {
		return res, invokeErr
	}

	fields := []log.Field{
		log.Int("exit_code", res.ExitCode),
		log.Duration("elapsed", res.Duration()),
	}
	if res.Succeeded() {
		r.logger.Info("program finished", fields...)
	} else {
		r.logger.Warn("program exited non-zero", fields...)
	}
	return res, nil
}

// saveRecord persists the run summary. Failures are logged only.
func (r *Runner) saveRecord(ctx context.Context, res domain.Result, runErr error) {
	if r.records == nil {
		return
	}

	rec := domain.RunRecord{
		RunID:       uuid.NewString(),
		ResultsRoot: r.discoverer.Root(),
		LogPath:     r.config.LogPath,
		Program:     r.invoker.Command(),
		Experiments: res.Experiments,
		ExitCode:    res.ExitCode,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if err := r.records.Save(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Warn("failed to save run record", log.Err(err))
		return
	}
	r.logger.Debug("run record saved", log.String("run_id", rec.RunID))
}
