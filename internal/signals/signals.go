// Package signals watches for process signals so that an interrupted
// build still gets a chance to flush its cache document, the way the
// teacher's cli/internal/signals/signals.go lets turbo run daemon
// cleanup before exiting. fcompile's own original_source/fcompile.py
// relies on a bare `finally:` block to write the cache on
// KeyboardInterrupt (line 347-351); Go has no equivalent of a finally
// that fires on an async cancellation, so this package is where that
// contract has to live instead (spec.md §7).
//
// Two signals are treated differently, matching their conventional
// Unix meanings rather than the teacher's one-size-fits-all handling:
// SIGINT and SIGTERM run the registered closers (the cache flush)
// before the process exits, while SIGQUIT skips them and reports the
// cache as abandoned — the operator's way of saying "stop now, don't
// wait on a write that may itself be stuck."
package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
)

// flushTimeout bounds how long the registered closers may run before
// Watcher gives up waiting and reports the process as exiting anyway.
const flushTimeout = 10 * time.Second

// Watcher watches for signals delivered to this process and gives
// fcompile a chance to persist its cache before exiting.
type Watcher struct {
	log     hclog.Logger
	doneCh  chan struct{}
	closed  bool
	mu      sync.Mutex
	closers []func()
}

// AddOnClose registers a cleanup handler — in practice, a cache flush —
// to run on a graceful signal.
func (w *Watcher) AddOnClose(closer func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closers = append(w.closers, closer)
}

// Close runs the registered cleanup handlers, once, giving them up to
// flushTimeout to finish before Done() is closed regardless.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	closers := w.closers
	w.closers = nil
	w.mu.Unlock()

	ran := make(chan struct{})
	go func() {
		for _, closer := range closers {
			closer()
		}
		close(ran)
	}()

	select {
	case <-ran:
	case <-time.After(flushTimeout):
		w.log.Warn("cache flush did not finish before timeout, exiting anyway", "timeout", flushTimeout)
	}
	close(w.doneCh)
}

// Abort closes Done() without running any cleanup handler, discarding
// whatever cache state was about to be written.
func (w *Watcher) Abort() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.closers = nil
	close(w.doneCh)
}

// Done returns a channel closed once the watcher has finished handling
// a signal, whether by flushing (Close) or abandoning (Abort) the
// cache.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// NewWatcher starts watching for SIGINT, SIGTERM and SIGQUIT in the
// background. SIGINT/SIGTERM trigger Close, SIGQUIT triggers Abort.
func NewWatcher(log hclog.Logger) *Watcher {
	graceful := make(chan os.Signal, 1)
	signal.Notify(graceful, os.Interrupt, syscall.SIGTERM)

	abort := make(chan os.Signal, 1)
	signal.Notify(abort, syscall.SIGQUIT)

	w := &Watcher{
		log:    log,
		doneCh: make(chan struct{}),
	}
	go func() {
		select {
		case sig := <-graceful:
			log.Info("caught signal, flushing cache before exit", "signal", sig.String())
			w.Close()
		case sig := <-abort:
			log.Warn("caught signal, abandoning cache flush", "signal", sig.String())
			w.Abort()
		}
	}()
	return w
}
