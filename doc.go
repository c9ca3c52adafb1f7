// Package kotlinnative provides the bootstrap and teardown substrate of a
// managed-language runtime: per-thread runtime instances over a single
// process-wide lifecycle, a reference-counted object heap with swappable
// strict and relaxed backends, staged global initializers, worker tracking,
// and a dedicated cleaner thread.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	kotlinnative/        Root package, documentation only
//	├── runtime/         Process and per-thread lifecycle state machines
//	├── mm/              Object model, frames, reference-counting barriers
//	├── worker/          Worker records and native thread accounting
//	├── cleaner/         Deferred finalization blocks on a dedicated thread
//	├── platform/        Build-time flags, leak-checker toggles, target info
//	└── errors/          Structured error types for lifecycle diagnostics
//
// Goroutines stand in for threads throughout: each goroutine that touches
// managed state carries its own runtime instance, located by goroutine id.
//
// # Quick Start
//
// Run a mutator with a scoped runtime:
//
//	runtime.Run(func() {
//	    ms := runtime.CurrentState().MemoryState()
//	    slots := make([]mm.Ref, 1)
//	    ms.EnterFrame(slots, 0)
//	    defer ms.LeaveFrame(slots, 0)
//
//	    obj, err := ms.AllocInstance(desc, &slots[0])
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _ = obj
//	})
//
// Long-lived threads call runtime.EnsureInitialized once and
// runtime.DeinitIfNeeded on exit instead.
//
// # Memory Model Selection
//
// Two barrier backends implement the same public surface. The default
// strict backend uses atomic reference counts and reclaims eagerly; building
// with the mm.relaxed tag selects plain counters with deferred reclamation
// for single-mutator workloads. Both are always compiled; the tag only picks
// which one the exported methods forward to.
//
// # Shutting Down
//
// runtime.Destroy performs the one-way global teardown: it drains or discards
// pending cleaner blocks, verifies no other runtime is still alive, runs the
// DeinitGlobals phase, and leaves the process in a state where no runtime can
// ever be created again.
package kotlinnative
