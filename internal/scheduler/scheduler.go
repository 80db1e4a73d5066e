// Package scheduler drives incremental compilation over a *depgraph.Tree
// (spec.md §4.5): it determines which sources are dirty, dispatches
// ready ones to a worker pool in priority order, consumes results, and
// grows the work set when a recompiled module's interface actually
// changes. The waiting/scheduled sets use github.com/deckarep/golang-set,
// the same set type the teacher's cli/internal/context/context.go and
// lockfile/lockfile.go reach for when tracking package membership during
// a run.
package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/azag0/fcompile/internal/depgraph"
	"github.com/azag0/fcompile/internal/fingerprint"
	"github.com/azag0/fcompile/internal/taskqueue"
	"github.com/azag0/fcompile/internal/worker"
)

// Status is one progress snapshot, emitted once per scheduler iteration.
type Status struct {
	Waiting   int
	Scheduled int
	Running   int
	NLines    int
	NAllLines int
	Elapsed   time.Duration
	// ETA is seconds; NaN when no line of progress has landed yet, per
	// spec.md §9's open question on the ETA sentinel.
	ETA float64
}

// Reporter receives progress snapshots and per-source completion
// announcements. The scheduler is single-threaded and calls these
// synchronously, so implementations must return quickly.
type Reporter interface {
	Status(Status)
	Completed(src depgraph.Source, elapsed time.Duration)
}

// Timing records one completed source's wall-clock time, fodder for the
// optional DEBUG slowest-sources table.
type Timing struct {
	Source  depgraph.Source
	Elapsed time.Duration
}

// Result is everything the caller needs after a run: the hash map to
// persist to the cache document (on every exit path, including
// failure), and per-source timings.
type Result struct {
	Hashes  map[string]fingerprint.Hash
	Timings []Timing
}

// Scheduler owns one incremental-build run over a fixed Tree and Tasks.
type Scheduler struct {
	Tree        *depgraph.Tree
	Tasks       map[depgraph.Source]depgraph.Task
	PriorHashes map[string]fingerprint.Hash
	NumWorkers  int
	Reporter    Reporter
	Logger      hclog.Logger
}

// ChangedSources returns the sources whose current hash differs from
// the hash recorded in the prior run's cache, per spec.md §4.5's
// definition of initial work.
func (s *Scheduler) ChangedSources() []depgraph.Source {
	var changed []depgraph.Source
	for src := range s.Tasks {
		if s.Tree.Hashes[string(src)] != s.PriorHashes[string(src)] {
			changed = append(changed, src)
		}
	}
	return changed
}

// Run executes the scheduling loop to completion: it returns normally
// once waiting and scheduled are both empty, or with a *CompilationError
// the first time a subprocess exits nonzero, or with ctx's error on
// cancellation. In every case the returned Result.Hashes reflects
// exactly the sources that finished successfully and is safe to persist.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	hashes := make(map[string]fingerprint.Hash, len(s.PriorHashes))
	for k, v := range s.PriorHashes {
		hashes[k] = v
	}

	waiting := mapset.NewSet()
	scheduled := mapset.NewSet()
	nAllLines := 0
	for _, src := range s.ChangedSources() {
		waiting.Add(src)
		nAllLines += s.Tree.LineNums[src]
	}

	if waiting.Cardinality() == 0 {
		return Result{Hashes: hashes}, nil
	}

	queue := taskqueue.NewPriorityQueue()
	results := make(chan taskqueue.Result)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var running int32
	pool := &worker.Pool{
		N:       s.NumWorkers,
		Queue:   queue,
		Results: results,
		Logger:  s.Logger,
		Running: &running,
	}

	g, gCtx := errgroup.WithContext(workerCtx)
	g.Go(func() error { return pool.Run(gCtx) })

	start := time.Now()
	nLines := 0
	var timings []Timing

	dispatchReady := func() {
		var ready []depgraph.Source
		for v := range waiting.Iter() {
			src := v.(depgraph.Source)
			blocked := false
			for anc := range s.Tree.Ancestors[src] {
				if waiting.Contains(anc) || scheduled.Contains(anc) {
					blocked = true
					break
				}
			}
			if !blocked {
				ready = append(ready, src)
			}
		}
		for _, src := range ready {
			// Mark dirty-if-interrupted before the subprocess even
			// starts, per spec.md §9's open question (a): a crash
			// mid-run must leave src looking dirty on the next run.
			delete(hashes, string(src))
			task := s.Tasks[src]
			args := make([]string, 0, len(task.Args)+1)
			args = append(args, task.Args...)
			args = append(args, task.SourcePath)
			queue.Push(taskqueue.Item{
				Priority: -s.Tree.Priority[src],
				Source:   src,
				Args:     args,
			})
			waiting.Remove(src)
			scheduled.Add(src)
		}
	}

	report := func() {
		eta := math.NaN()
		if nLines > 0 {
			eta = time.Since(start).Seconds() / (float64(nLines) / float64(nAllLines))
		}
		s.Reporter.Status(Status{
			Waiting:   waiting.Cardinality(),
			Scheduled: scheduled.Cardinality(),
			Running:   int(running) + 1,
			NLines:    nLines,
			NAllLines: nAllLines,
			Elapsed:   time.Since(start),
			ETA:       eta,
		})
	}

	abort := func(err error) (Result, error) {
		cancel()
		g.Wait()
		return Result{Hashes: hashes, Timings: timings}, err
	}

	for {
		dispatchReady()
		report()

		if waiting.Cardinality()+scheduled.Cardinality() == 0 {
			break
		}

		var res taskqueue.Result
		select {
		case res = <-results:
		case <-ctx.Done():
			return abort(ctx.Err())
		}

		if res.ExitCode != 0 {
			return abort(&CompilationError{Source: res.Source, Retcode: res.ExitCode})
		}

		timings = append(timings, Timing{Source: res.Source, Elapsed: res.Elapsed})
		hashes[string(res.Source)] = s.Tree.Hashes[string(res.Source)]
		nLines += s.Tree.LineNums[res.Source]
		scheduled.Remove(res.Source)
		s.Reporter.Completed(res.Source, res.Elapsed)

		for _, mod := range s.Tree.SrcMods[res.Source] {
			modFile := string(mod) + ".mod"
			newHash, err := fingerprint.File(modFile)
			if err != nil {
				return abort(fmt.Errorf("hashing %s: %w", modFile, err))
			}
			if newHash == hashes[modFile] {
				continue
			}
			hashes[modFile] = newHash

			for _, d := range s.Tree.ModUses[mod] {
				if scheduled.Contains(d) {
					s.Logger.Warn("dependent already scheduled during interface propagation", "source", d, "module", mod)
				}
				delete(hashes, string(d))
				if !waiting.Contains(d) {
					waiting.Add(d)
					nAllLines += s.Tree.LineNums[d]
				}
			}
		}
	}

	cancel()
	if err := g.Wait(); err != nil {
		return Result{Hashes: hashes, Timings: timings}, err
	}
	return Result{Hashes: hashes, Timings: timings}, nil
}
