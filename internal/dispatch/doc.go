// Package dispatch implements the worker side of a fetchq queue.
//
// This package is internal to fetchq and contains the command/outcome
// protocol between the queue facade and its dedicated worker goroutine.
// The main components are:
//
//   - [Worker]: consumes submitted tasks and runs each as an independent
//     goroutine racing the HTTP exchange against cancellation and a timeout
//   - [Task]: a single submitted request plus its cancellation signal
//   - [Outcome]: exactly one terminal result per task
//
// The worker never invokes caller code. Outcomes accumulate in an unbounded
// FIFO and are handed over only when the owning goroutine pulls them via
// [Worker.TryNext], which is what preserves the queue's thread-affinity
// contract for callbacks.
//
// Users of the fetchq library should not need to interact with this package
// directly. Configuration is done through the main fetchq package.
package dispatch
