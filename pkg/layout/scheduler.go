package layout

import "sync"

// Scheduler defers a callback to a later turn of the host event loop. Post
// returns a function that cancels the callback if it has not run yet.
type Scheduler interface {
	Post(fn func()) (cancel func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func()) (cancel func())

// Post calls f(fn).
func (f SchedulerFunc) Post(fn func()) func() { return f(fn) }

// Queue is a Scheduler that holds callbacks until Run is called. Hosts
// without their own event loop (tests, the CLI) drain it after each input.
type Queue struct {
	mu      sync.Mutex
	pending []*task
}

type task struct {
	fn       func()
	canceled bool
}

// Post appends fn to the queue.
func (q *Queue) Post(fn func()) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	t := &task{fn: fn}
	q.pending = append(q.pending, t)
	return func() {
		q.mu.Lock()
		t.canceled = true
		q.mu.Unlock()
	}
}

// Len returns the number of callbacks waiting to run, canceled ones
// excluded.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, t := range q.pending {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Run executes the callbacks queued before the call and returns how many
// ran. Callbacks posted while running wait for the next Run.
func (q *Queue) Run() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	n := 0
	for _, t := range batch {
		q.mu.Lock()
		canceled := t.canceled
		q.mu.Unlock()
		if canceled {
			continue
		}
		t.fn()
		n++
	}
	return n
}
