// Package process runs the external computation program.
package process

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/bft-labs/expbatch/internal/domain"
	"github.com/bft-labs/expbatch/internal/ports"
	"github.com/bft-labs/expbatch/pkg/log"
)

// DefaultKillGrace is how long a canceled program may keep running after
// it was interrupted before it is killed.
const DefaultKillGrace = 10 * time.Second

// Config describes how to start the external program.
type Config struct {
	// Program is the executable name or path. Bare names are looked up in PATH.
	Program string

	// Args precede the experiment names on the command line.
	Args []string

	// Env entries (KEY=VALUE) are appended to the inherited environment.
	Env []string

	// Dir is the working directory; empty means the current one.
	Dir string

	// KillGrace bounds the wait after an interrupt was forwarded.
	KillGrace time.Duration

	// Stdin and Stderr are inherited from the runner when nil.
	Stdin  io.Reader
	Stderr io.Writer
}

// Invoker implements ports.Invoker with os/exec.
type Invoker struct {
	cfg    Config
	logger ports.Logger
}

// NewInvoker creates an Invoker. A nil logger discards output.
func NewInvoker(cfg Config, logger ports.Logger) *Invoker {
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = DefaultKillGrace
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Invoker{cfg: cfg, logger: logger}
}

// Command returns the program and its fixed leading arguments.
func (p *Invoker) Command() []string {
	return append([]string{p.cfg.Program}, p.cfg.Args...)
}

// Resolve locates the program without starting it. A relative path with a
// separator is looked up under Dir, where the program will be started.
func (p *Invoker) Resolve() error {
	path := p.cfg.Program
	if p.cfg.Dir != "" && !filepath.IsAbs(path) && strings.ContainsAny(path, `/`+string(filepath.Separator)) {
		path = filepath.Join(p.cfg.Dir, path)
	}
	if _, err := exec.LookPath(path); err != nil {
		return &domain.InvocationError{Program: p.cfg.Program, Err: err}
	}
	return nil
}

// Invoke starts the program with inv.Args appended to the configured
// arguments and blocks until it exits. When ctx is canceled the program
// receives an interrupt and is killed if it outlives KillGrace.
func (p *Invoker) Invoke(ctx context.Context, inv Invocation) (int, error) {
	args := append(slices.Clone(p.cfg.Args), inv.Args...)

	cmd := exec.CommandContext(ctx, p.cfg.Program, args...)
	cmd.Dir = p.cfg.Dir
	cmd.Stdin = p.cfg.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = p.cfg.Stderr
	if len(p.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), p.cfg.Env...)
	}
	cmd.Cancel = func() error {
		p.logger.Info("forwarding interrupt to program", log.Int("pid", cmd.Process.Pid))
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = p.cfg.KillGrace

	if err := cmd.Start(); err != nil {
		return -1, &domain.InvocationError{Program: p.cfg.Program, Err: err}
	}
	p.logger.Debug("program started",
		log.Int("pid", cmd.Process.Pid),
		log.Int("experiments", len(inv.Args)))

	err := cmd.Wait()
	if cmd.ProcessState == nil {
		return -1, err
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// The program exited but cancellation or output copying reported
		// an error; the exit status is still authoritative.
		p.logger.Warn("program wait reported error", log.Err(err))
	}
	return exitCode(cmd.ProcessState), nil
}

// exitCode maps a signal-terminated process to 128+signal, the shell convention.
func exitCode(ps *os.ProcessState) int {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ps.ExitCode()
}

// Invocation is re-exported for adapter callers.
type Invocation = ports.Invocation

var _ ports.Invoker = (*Invoker)(nil)
