package dispatch

import "sync"

// outbox is an unbounded multi-producer FIFO of task outcomes.
//
// Tasks push from their own goroutines as they complete; the owning
// goroutine pops via tryPop during drains. Pushing never blocks, so a
// publishing task can always terminate and Stop can never deadlock against
// an undrained backlog, no matter how far the consumer has fallen behind.
type outbox struct {
	mu    sync.Mutex
	items []Outcome
}

// push appends an outcome in completion order.
func (o *outbox) push(out Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.items = append(o.items, out)
}

// tryPop removes and returns the oldest outcome.
// Returns false immediately if the outbox is empty.
func (o *outbox) tryPop() (Outcome, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.items) == 0 {
		return Outcome{}, false
	}

	out := o.items[0]
	o.items = o.items[1:]
	if len(o.items) == 0 {
		// release the drained backing array instead of pinning it
		o.items = nil
	}
	return out, true
}

// size returns the number of undrained outcomes.
func (o *outbox) size() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.items)
}
