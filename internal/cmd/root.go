// Package cmd holds the root cobra command, in the shape of the
// teacher's cli/internal/cmd/root.go: build the command, run it in a
// goroutine, race it against a signals.Watcher, translate the result
// into a process exit code.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/azag0/fcompile/internal/buildlog"
	"github.com/azag0/fcompile/internal/cachestore"
	"github.com/azag0/fcompile/internal/config"
	"github.com/azag0/fcompile/internal/depgraph"
	"github.com/azag0/fcompile/internal/logger"
	"github.com/azag0/fcompile/internal/manifest"
	"github.com/azag0/fcompile/internal/progress"
	"github.com/azag0/fcompile/internal/scheduler"
	"github.com/azag0/fcompile/internal/signals"
)

type options struct {
	jobs int
	dry  bool
}

func defaultJobs() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

// RunWithArgs runs fcompile with the given arguments (not including the
// binary name) and returns the process exit code. Config is loaded
// before anything else so the resulting logger can be handed to the
// signal watcher, which announces the signal it caught before deciding
// whether to flush or abandon the cache.
func RunWithArgs(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		return 1
	}
	log := logger.New("fcompile", cfg.Debug)

	signalWatcher := signals.NewWatcher(log)
	root := newRootCmd(signalWatcher, cfg, log)
	root.SetArgs(args)

	doneCh := make(chan struct{})
	var execErr error
	go func() {
		execErr = root.ExecuteContext(context.Background())
		close(doneCh)
	}()

	select {
	case <-doneCh:
		signalWatcher.Close()
		if execErr != nil {
			var compErr *scheduler.CompilationError
			if errors.As(execErr, &compErr) {
				fmt.Fprintln(os.Stderr, compErr)
			} else {
				fmt.Fprintln(os.Stderr, execErr)
			}
			return 1
		}
		return 0
	case <-signalWatcher.Done():
		return 1
	}
}

func newRootCmd(signalWatcher *signals.Watcher, cfg config.Options, log hclog.Logger) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "fcompile",
		Short:         "Incremental Fortran module-dependency build driver",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, signalWatcher, cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.jobs, "jobs", "j", defaultJobs(), "number of parallel compiler workers")
	flags.BoolVar(&opts.dry, "dry", false, "scan and report changed-file counts only")

	return cmd
}

func run(ctx context.Context, opts *options, signalWatcher *signals.Watcher, cfg config.Options, log hclog.Logger) error {
	tasks, err := manifest.Read(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading task manifest: %w", err)
	}

	tree, err := depgraph.Build(tasks)
	if err != nil {
		return err
	}

	cacheFile := cachestore.DefaultFilename
	if cfg.CacheFile != "" {
		cacheFile = cfg.CacheFile
	}
	priorHashes := cachestore.Load(cacheFile)

	sched := &scheduler.Scheduler{
		Tree:        tree,
		Tasks:       tasks,
		PriorHashes: priorHashes,
		NumWorkers:  opts.jobs,
		Reporter:    progress.New(os.Stderr),
		Logger:      log,
	}

	changed := sched.ChangedSources()
	fmt.Fprintf(os.Stderr, "Changed files: %d/%d\n", len(changed), len(tasks))

	if opts.dry || len(changed) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	saved := make(chan struct{})
	signalWatcher.AddOnClose(func() {
		cancel()
		<-saved
	})
	defer cancel()

	result, runErr := sched.Run(ctx)

	if saveErr := cachestore.Save(cacheFile, result.Hashes); saveErr != nil {
		log.Error("failed to save cache", "error", saveErr)
	}
	close(saved)

	if cfg.Debug {
		buildlog.PrintClocks(os.Stderr, result.Timings)
	}

	return runErr
}
