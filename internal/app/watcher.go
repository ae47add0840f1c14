package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/expbatch/internal/domain"
	"github.com/bft-labs/expbatch/internal/ports"
	"github.com/bft-labs/expbatch/pkg/log"
)

// DefaultDebounce is how long the results container must stay quiet before
// a change triggers another run.
const DefaultDebounce = 2 * time.Second

// BatchRunner runs one batch. *Runner satisfies it.
type BatchRunner interface {
	Run(ctx context.Context) (domain.Result, error)
}

// Watcher re-runs the batch whenever entries appear in or leave the results
// container. Runs never overlap; changes seen during a run are coalesced into
// one follow-up run.
type Watcher struct {
	runner   BatchRunner
	root     string
	debounce time.Duration
	logger   ports.Logger
}

// NewWatcher creates a Watcher over root.
func NewWatcher(runner BatchRunner, root string, debounce time.Duration, logger ports.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		runner:   runner,
		root:     filepath.Clean(root),
		debounce: debounce,
		logger:   logger,
	}
}

// Run performs an initial batch, then one more after every debounced change,
// until ctx is canceled or a run fails. It returns the exit code of the last
// completed run.
func (w *Watcher) Run(ctx context.Context) (int, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return 1, err
	}
	defer fsw.Close()

	if err := fsw.Add(w.root); err != nil {
		return 1, &domain.DiscoveryError{Root: w.root, Err: err}
	}
	w.logger.Info("watching results", log.String("results_root", w.root))

	trigger := make(chan struct{}, 1)
	trigger <- struct{}{}

	lastCode := 0
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.pump(gctx, fsw, trigger)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-trigger:
			}
			res, err := w.runner.Run(gctx)
			if err != nil {
				return err
			}
			lastCode = res.ExitCode
			if gctx.Err() != nil {
				return nil
			}
			w.logger.Info("waiting for changes", log.Int("last_exit_code", lastCode))
		}
	})

	if err := g.Wait(); err != nil {
		return 1, err
	}
	return lastCode, nil
}

// pump turns raw file system events into debounced triggers.
func (w *Watcher) pump(ctx context.Context, fsw *fsnotify.Watcher, trigger chan<- struct{}) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("results changed",
				log.String("entry", filepath.Base(event.Name)),
				log.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case trigger <- struct{}{}:
			default:
				// A run is already pending.
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("results watcher error", log.Err(err))
		}
	}
}

// relevant reports whether event adds, removes or renames an immediate child.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Dir(filepath.Clean(event.Name)) != w.root {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
