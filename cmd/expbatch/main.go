package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/expbatch/internal/adapters/fs"
	"github.com/bft-labs/expbatch/internal/adapters/process"
	"github.com/bft-labs/expbatch/internal/app"
	"github.com/bft-labs/expbatch/internal/cliconfig"
	"github.com/bft-labs/expbatch/internal/ports"
	"github.com/bft-labs/expbatch/pkg/log"
)

const longHelp = `Run the experiment computation program once over every entry in a results
directory.

Each immediate child of the results directory (file or directory) is one
experiment. Their names are passed, in directory listing order, as positional
arguments to a single invocation of the program. The program's stdout is
written to the log file, replacing its previous contents; stderr is passed
through. expbatch exits with the program's exit code.

Configuration is read from expbatch.toml (or --config), then EXPBATCH_*
environment variables, then flags; later sources win.`

var exampleUsage = strings.TrimSpace(`
  expbatch
  expbatch --results-root ./results --log output.log
  expbatch --program ./target/release/analyzer --program-arg=--verbose
  expbatch list
  expbatch last
  expbatch watch --debounce 5s
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli holds state shared by the root command and its subcommands.
type cli struct {
	cfg      cliconfig.Config
	cfgPath  string
	stdout   io.Writer
	stderr   io.Writer
	logger   *log.ZerologAdapter
	exitCode int
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	c := &cli{
		cfg:    cliconfig.DefaultConfig(),
		stdout: stdout,
		stderr: stderr,
		logger: log.NewZerologAdapter(stderr, zerolog.InfoLevel),
	}

	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		c.logger.Error("expbatch", log.Err(err))
		return 1
	}
	return c.exitCode
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "expbatch",
		Short:             "Invoke the experiment program once with every discovered experiment",
		Long:              longHelp,
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			res, err := c.newRunner().Run(ctx)
			if err != nil {
				return err
			}
			c.exitCode = res.ExitCode
			return nil
		},
	}

	cfg := &c.cfg
	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", fmt.Sprintf("path to config file (default: ./%s when present)", cliconfig.DefaultConfigFile))
	pf.StringVar(&cfg.ResultsRoot, "results-root", cfg.ResultsRoot, "directory whose entries name the experiments")
	pf.StringVar(&cfg.LogPath, "log", cfg.LogPath, "file receiving the program's stdout (truncated each run)")
	pf.StringVar(&cfg.Program, "program", cfg.Program, "external program to invoke")
	pf.StringArrayVar(&cfg.ProgramArgs, "program-arg", cfg.ProgramArgs, "argument placed before the experiment names (repeatable)")
	pf.StringArrayVar(&cfg.ProgramEnv, "program-env", cfg.ProgramEnv, "KEY=VALUE added to the program's environment (repeatable)")
	pf.StringVar(&cfg.WorkDir, "work-dir", cfg.WorkDir, "working directory for the program (default: current)")
	pf.DurationVar(&cfg.KillGrace, "kill-grace", cfg.KillGrace, "time the program gets to exit after an interrupt before it is killed")
	pf.BoolVar(&cfg.Tee, "tee", cfg.Tee, "also copy the program's stdout to this process's stdout")
	pf.StringVar(&cfg.RecordDir, "record-dir", cfg.RecordDir, "directory for last_run.json (default: log file's directory)")
	pf.BoolVar(&cfg.NoRecord, "no-record", cfg.NoRecord, "do not write last_run.json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(c.listCommand(), c.watchCommand(), c.lastCommand())
	return root
}

func (c *cli) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the experiments that would be passed to the program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := fs.NewResultsDir(c.cfg.ResultsRoot).Discover(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(c.stdout, n)
			}
			return nil
		},
	}
}

func (c *cli) lastCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the record of the most recent run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := fs.NewRecordFileRepository(c.cfg.RecordDir)
			rec, err := repo.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load %s: %w", repo.Path(), err)
			}
			if rec.IsEmpty() {
				fmt.Fprintf(c.stdout, "no run recorded in %s\n", repo.Path())
				return nil
			}

			fmt.Fprintf(c.stdout, "run:         %s\n", rec.RunID)
			fmt.Fprintf(c.stdout, "command:     %s\n", strings.Join(rec.Program, " "))
			fmt.Fprintf(c.stdout, "results:     %s\n", rec.ResultsRoot)
			fmt.Fprintf(c.stdout, "log:         %s\n", rec.LogPath)
			fmt.Fprintf(c.stdout, "experiments: %d\n", len(rec.Experiments))
			for _, n := range rec.Experiments {
				fmt.Fprintf(c.stdout, "  %s\n", n)
			}
			fmt.Fprintf(c.stdout, "started:     %s\n", rec.StartedAt.Format(time.RFC3339))
			fmt.Fprintf(c.stdout, "duration:    %s\n", rec.FinishedAt.Sub(rec.StartedAt))
			fmt.Fprintf(c.stdout, "exit code:   %d\n", rec.ExitCode)
			if rec.Error != "" {
				fmt.Fprintf(c.stdout, "error:       %s\n", rec.Error)
			}
			return nil
		},
	}
}

func (c *cli) watchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the batch, then run it again whenever experiments are added or removed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			w := app.NewWatcher(c.newRunner(), c.cfg.ResultsRoot, c.cfg.Debounce, c.logger)
			code, err := w.Run(ctx)
			if err != nil {
				return err
			}
			c.exitCode = code
			return nil
		},
	}
	cmd.Flags().DurationVar(&c.cfg.Debounce, "debounce", c.cfg.Debounce, "quiet period after a change before re-running")
	return cmd
}

// loadConfig layers file, environment and flags, then validates.
func (c *cli) loadConfig(cmd *cobra.Command, args []string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := c.cfgPath
	if cfgFile == "" && cliconfig.FileExists(cliconfig.DefaultConfigFile) {
		cfgFile = cliconfig.DefaultConfigFile
	}
	if cfgFile != "" {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	level, _ := c.cfg.Level()
	c.logger = log.NewZerologAdapter(c.stderr, level)
	zl := c.logger.Logger()
	zl.Debug().Interface("config", c.cfg).Msg("configuration")
	return nil
}

func (c *cli) newRunner() *app.Runner {
	invoker := process.NewInvoker(process.Config{
		Program:   c.cfg.Program,
		Args:      c.cfg.ProgramArgs,
		Env:       c.cfg.ProgramEnv,
		Dir:       c.cfg.WorkDir,
		KillGrace: c.cfg.KillGrace,
		Stderr:    c.stderr,
	}, c.logger)

	var records ports.RecordRepository
	if !c.cfg.NoRecord {
		records = fs.NewRecordFileRepository(c.cfg.RecordDir)
	}

	runCfg := app.RunnerConfig{LogPath: c.cfg.LogPath}
	if c.cfg.Tee {
		runCfg.Tee = c.stdout
	}

	return app.NewRunner(runCfg, fs.NewResultsDir(c.cfg.ResultsRoot), invoker, records, c.logger)
}

// signalContext cancels on SIGINT/SIGTERM; the runner forwards the interrupt
// to the program.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
