// Package worker provides the per-thread worker handle the runtime lifecycle
// stands up next to each thread's memory state, plus process-wide tracking of
// native (background) workers.
//
// The scheduling machinery of workers lives outside this core; what the
// lifecycle needs from a worker is a stable identity, creation and teardown
// hooks, and the ability to wait for every native worker to terminate before
// the final destroy proceeds. That is all this package implements.
package worker
