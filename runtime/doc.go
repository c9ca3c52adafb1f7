// Package runtime is the bootstrap and teardown substrate of the managed
// runtime: it owns the process-wide status machine, the per-thread
// RuntimeState, and the global-variable initializer registry that drives
// both.
//
// A mutator thread calls EnsureInitialized before touching managed memory
// (or wraps its entry point in Run, which also tears down on exit). The
// first thread to initialize flips the global status Uninitialized->Running
// exactly once and runs the InitGlobals phase; every thread then runs
// InitThreadLocalGlobals and gets its own memory-model backend instance and
// worker handle.
//
// Teardown mirrors initialization. Ordinary thread exit runs the
// thread-local deinit phase only; the explicit Destroy additionally drains
// or discards pending cleaners (depending on the cleaner leak checker),
// optionally waits for native workers, verifies no other thread still holds
// a runtime, runs DeinitGlobals, and moves the global status to Destroyed.
// Destroyed is terminal: any later attempt to create a runtime aborts the
// process.
//
// Every violated precondition here is a programming-contract violation, not
// a recoverable error: the process reports a diagnostic through the package
// logger and aborts, because continuing would operate on inconsistent global
// state shared by all threads.
package runtime
