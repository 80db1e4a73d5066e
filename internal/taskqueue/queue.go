// Package taskqueue is the synchronization surface between the
// scheduler and the worker pool (spec.md §5): a many-producer
// priority queue of ready tasks, and the FIFO of their results. The
// priority queue is a container/heap min-heap — no repo in the
// reference corpus implements a priority queue of its own, and
// container/heap is the idiomatic stdlib mechanism the wider Go
// ecosystem reaches for here (job-queue libraries like
// github.com/beanstalkd-equivalents typically wrap it rather than
// replace it), so this one component is built on the standard library
// rather than ported from an example.
package taskqueue

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/azag0/fcompile/internal/depgraph"
)

// Item is one ready-to-run compilation, already carrying the fully
// assembled argument list (task args with the source path appended).
type Item struct {
	Priority int
	Source   depgraph.Source
	Args     []string
}

// Result is what a worker posts back after a subprocess exits.
type Result struct {
	Source   depgraph.Source
	ExitCode int
	Elapsed  time.Duration
}

type heapSlice []Item

func (h heapSlice) Len() int            { return len(h) }
func (h heapSlice) Less(i, j int) bool  { return h[i].Priority < h[j].Priority }
func (h heapSlice) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *heapSlice) Push(x interface{}) { *h = append(*h, x.(Item)) }
func (h *heapSlice) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// PriorityQueue is a concurrency-safe min-priority-queue of Items.
// Callers encode "largest priority first" by pushing a negated
// priority, per spec.md §4.5.
type PriorityQueue struct {
	mu    sync.Mutex
	items heapSlice
	wake  chan struct{}
}

// NewPriorityQueue returns an empty queue.
func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{wake: make(chan struct{}, 1)}
}

// signal performs a non-blocking send on wake, a no-op if a wakeup is
// already pending.
func (q *PriorityQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Push inserts an item and wakes a blocked Pop, if any.
func (q *PriorityQueue) Push(item Item) {
	q.mu.Lock()
	heap.Push(&q.items, item)
	q.mu.Unlock()
	q.signal()
}

// Pop blocks until an item is available or ctx is done, in which case
// ok is false. wake is single-slot, so a burst of Pushes can only ever
// deliver one wakeup; Pop pays the wakeup forward to the next waiter
// whenever it leaves items behind, so a chain of parked callers drains
// one hop at a time instead of stalling after the first.
func (q *PriorityQueue) Pop(ctx context.Context) (item Item, ok bool) {
	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			popped := heap.Pop(&q.items).(Item)
			remaining := q.items.Len() > 0
			q.mu.Unlock()
			if remaining {
				q.signal()
			}
			return popped, true
		}
		q.mu.Unlock()
		select {
		case <-q.wake:
			continue
		case <-ctx.Done():
			return Item{}, false
		}
	}
}
