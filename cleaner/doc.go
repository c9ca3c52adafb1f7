// Package cleaner runs deferred cleanup actions (cleaner blocks) on a
// dedicated native worker.
//
// Blocks are scheduled with Schedule and executed in order on the cleaner
// worker, which starts lazily with the first block. Shutdown stops the
// worker: with executeScheduled=true it drains and executes everything still
// pending first (the cleaner-leak-checking destroy path), otherwise pending
// blocks are discarded. Shutdown is terminal and idempotent; scheduling after
// shutdown fails.
package cleaner
