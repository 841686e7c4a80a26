// Package debounce runs the last of a burst of tasks once a key has been
// quiet for a fixed delay.
package debounce

import (
	"sync"
	"time"
)

type pending struct {
	timer *time.Timer
	fn    func()
	seq   uint64
}

// Debouncer schedules one pending task per key. Scheduling a key again
// cancels the task that was waiting for it.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	tasks map[string]*pending
	seq   uint64
}

// New creates a debouncer with the given quiet period
func New(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay: delay,
		tasks: make(map[string]*pending),
	}
}

// Delay returns the quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule replaces any pending task for key with fn
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.tasks[key]; ok {
		p.timer.Stop()
	}
	d.seq++
	seq := d.seq
	p := &pending{fn: fn, seq: seq}
	p.timer = time.AfterFunc(d.delay, func() {
		if d.take(key, seq) {
			fn()
		}
	})
	d.tasks[key] = p
}

// take removes the task for key if it is still the one identified by seq
func (d *Debouncer) take(key string, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.tasks[key]
	if !ok || p.seq != seq {
		return false
	}
	delete(d.tasks, key)
	return true
}

// Cancel drops the pending task for key and reports whether there was one
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.tasks[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.tasks, key)
	return true
}

// Flush runs every pending task now, in the calling goroutine
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.tasks))
	for key, p := range d.tasks {
		p.timer.Stop()
		fns = append(fns, p.fn)
		delete(d.tasks, key)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Pending returns the number of scheduled tasks
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}
