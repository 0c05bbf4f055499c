// Package dispatch serializes event handling per user identity.
//
// Events for one identity run in submission order, one at a time. Events
// for different identities run concurrently, so a slow outbound send to one
// user never blocks another user's dialogue.
package dispatch

import "sync"

// Dispatcher owns one logical FIFO queue per identity.
type Dispatcher struct {
	mu      sync.Mutex
	pending map[int64][]func()
	active  map[int64]bool
	wg      sync.WaitGroup
}

// New creates an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		pending: make(map[int64][]func()),
		active:  make(map[int64]bool),
	}
}

// Submit enqueues fn for the given identity and returns immediately.
func (d *Dispatcher) Submit(id int64, fn func()) {
	d.mu.Lock()
	d.pending[id] = append(d.pending[id], fn)
	if d.active[id] {
		d.mu.Unlock()
		return
	}
	d.active[id] = true
	d.wg.Add(1)
	d.mu.Unlock()

	go d.drain(id)
}

// drain runs the identity's queue to exhaustion, then retires.
func (d *Dispatcher) drain(id int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.pending[id]
		if len(queue) == 0 {
			delete(d.pending, id)
			delete(d.active, id)
			d.mu.Unlock()
			return
		}
		fn := queue[0]
		d.pending[id] = queue[1:]
		d.mu.Unlock()

		fn()
	}
}

// Wait blocks until every submitted function has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
