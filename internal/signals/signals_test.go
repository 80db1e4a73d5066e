package signals

import (
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

func newTestWatcher() *Watcher {
	return &Watcher{log: hclog.NewNullLogger(), doneCh: make(chan struct{})}
}

func TestCloseRunsRegisteredClosersOnce(t *testing.T) {
	w := newTestWatcher()

	var calls int
	w.AddOnClose(func() { calls++ })
	w.AddOnClose(func() { calls++ })

	w.Close()
	w.Close()

	assert.Equal(t, 2, calls)
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not close after Close()")
	}
}

func TestAbortSkipsRegisteredClosers(t *testing.T) {
	w := newTestWatcher()

	var ran bool
	w.AddOnClose(func() { ran = true })

	w.Abort()

	assert.False(t, ran)
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not close after Abort()")
	}
}

func TestCloseWaitsForSlowClosers(t *testing.T) {
	w := &Watcher{log: hclog.NewNullLogger(), doneCh: make(chan struct{})}
	w.closers = nil

	stuck := make(chan struct{})
	w.AddOnClose(func() { <-stuck })

	done := make(chan struct{})
	go func() {
		w.Close()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Close() returned before the flush timeout, but its closer is still blocked")
	case <-time.After(50 * time.Millisecond):
	}

	close(stuck)
}
