package fetchq

import "sync"

// RequestCancellation is a one-shot handle for aborting a submitted request.
//
// A token is returned by [Queue.Submit] and is bound to exactly one request.
// Calling [RequestCancellation.Cancel] asks the worker to resolve the request
// as [ErrRequestCancelled] instead of waiting for the transport. Cancellation
// is best-effort: it does not forcibly abort an exchange already on the wire,
// and a request whose outcome is already committed is unaffected.
//
// Cancel is idempotent and safe to call from any goroutine, including one
// other than the goroutine that submitted the request. A token that is never
// cancelled is inert; simply letting it go out of scope leaves the request
// running to its natural outcome.
type RequestCancellation struct {
	once sync.Once
	done chan struct{}
}

// newCancellation creates an unfired token.
func newCancellation() *RequestCancellation {
	return &RequestCancellation{done: make(chan struct{})}
}

// Cancel fires the cancellation signal.
//
// The first call wins; subsequent calls are no-ops. If the request has not
// yet produced an outcome, its callback will receive [ErrRequestCancelled]
// on a later drain. If it has, Cancel has no effect.
func (c *RequestCancellation) Cancel() {
	c.once.Do(func() { close(c.done) })
}

// signal returns the receive half observed by the request's task.
func (c *RequestCancellation) signal() <-chan struct{} {
	return c.done
}
