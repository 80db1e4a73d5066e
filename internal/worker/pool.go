// Package worker implements the fixed-size pool of cooperative workers
// (spec.md §4.6): each one pops a ready task, spawns the compiler
// subprocess, waits for it, and posts the result. Bounding concurrency
// with an errgroup.Group is grounded in the teacher's
// cli/internal/taskhash/taskhash.go, which launches the same
// "workerCount goroutines pulling from a channel" shape to parallelize
// package-input hashing.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/azag0/fcompile/internal/process"
	"github.com/azag0/fcompile/internal/taskqueue"
)

// Pool runs N workers against a shared queue until the queue's context
// is done.
type Pool struct {
	N       int
	Queue   *taskqueue.PriorityQueue
	Results chan<- taskqueue.Result
	Logger  hclog.Logger

	// Running is incremented around each subprocess wait, for display
	// purposes only — spec.md §9 calls out that this belongs to the
	// scheduler/pool's own state rather than a package-level global,
	// the way the original Python module used a bare module variable.
	Running *int32
}

// Run blocks until ctx is canceled or the queue permanently stops
// yielding work (Pop returns ok=false), at which point all workers have
// exited. If more than one worker's subprocess failed to even start
// (rather than merely exiting nonzero, which is reported through
// Results instead), their errors are aggregated with go-multierror so
// none are silently dropped when the pool is torn down on cancellation.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var errs error
	for i := 0; i < p.N; i++ {
		g.Go(func() error {
			err := p.workerLoop(gctx)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
			return err
		})
	}
	g.Wait()
	return errs
}

func (p *Pool) workerLoop(ctx context.Context) error {
	for {
		item, ok := p.Queue.Pop(ctx)
		if !ok {
			return nil
		}

		child := process.New(ctx, item.Args, p.Logger)
		atomic.AddInt32(p.Running, 1)
		exitCode, elapsed, err := child.Run()
		atomic.AddInt32(p.Running, -1)
		if err != nil {
			return err
		}

		select {
		case p.Results <- taskqueue.Result{Source: item.Source, ExitCode: exitCode, Elapsed: elapsed}:
		case <-ctx.Done():
			return nil
		}
	}
}
