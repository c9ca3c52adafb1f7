package runtime

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
	"go.uber.org/zap"

	"github.com/yombunker/kotlin-native/cleaner"
	"github.com/yombunker/kotlin-native/errors"
	"github.com/yombunker/kotlin-native/mm"
	"github.com/yombunker/kotlin-native/platform"
	"github.com/yombunker/kotlin-native/worker"
)

// GlobalRuntimeStatus is the process-wide lifecycle state. It moves
// monotonically Uninitialized -> Running -> Destroyed; Destroyed is terminal
// and no runtime may ever be created after it.
type GlobalRuntimeStatus int32

const (
	GlobalUninitialized GlobalRuntimeStatus = iota
	GlobalRunning
	GlobalDestroyed
)

func (s GlobalRuntimeStatus) String() string {
	switch s {
	case GlobalUninitialized:
		return "uninitialized"
	case GlobalRunning:
		return "running"
	case GlobalDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// runtimeStatus is the per-thread lifecycle state. Destroying is terminal
// for the instance and is never exited.
type runtimeStatus int32

const (
	statusUninitialized runtimeStatus = iota
	statusRunning
	statusDestroying
)

func (s runtimeStatus) String() string {
	switch s {
	case statusUninitialized:
		return "uninitialized"
	case statusRunning:
		return "running"
	case statusDestroying:
		return "destroying"
	default:
		return "unknown"
	}
}

// RuntimeState bundles everything a thread's runtime owns: its memory-model
// backend instance and its worker handle. It is exclusively owned by its
// thread and never shared or transferred.
type RuntimeState struct {
	memoryState *mm.MemoryState
	worker      *worker.Worker
	status      runtimeStatus
}

// MemoryState returns the thread's memory-model backend instance.
func (s *RuntimeState) MemoryState() *mm.MemoryState {
	return s.memoryState
}

// Worker returns the thread's worker handle.
func (s *RuntimeState) Worker() *worker.Worker {
	return s.worker
}

var (
	globalStatus  atomic.Int32
	aliveRuntimes atomic.Int32
	runtimes      sync.Map // goroutine ID -> *RuntimeState
)

// exit is swapped out by tests that observe fatal aborts.
var exit = os.Exit

// fatal reports a diagnostic on the error stream and terminates the process.
// Contract violations leave shared global state unsafe to continue from, so
// there is no recoverable path out of here.
func fatal(err error) {
	Logger().Error("fatal runtime error", zap.Error(err))
	exit(1)
}

// GlobalStatus returns the process-wide lifecycle state.
func GlobalStatus() GlobalRuntimeStatus {
	return GlobalRuntimeStatus(globalStatus.Load())
}

// AliveRuntimesCount returns the number of threads currently holding a live
// runtime.
func AliveRuntimesCount() int32 {
	return aliveRuntimes.Load()
}

// CurrentState returns the calling thread's runtime state, or nil if the
// thread has none.
func CurrentState() *RuntimeState {
	if v, ok := runtimes.Load(goid.Get()); ok {
		return v.(*RuntimeState)
	}
	return nil
}

// EnsureInitialized stands up the runtime for the calling thread if it does
// not have one yet. Idempotent. Aborts the process if the runtime was
// already destroyed: global teardown is irreversible.
func EnsureInitialized() {
	gid := goid.Get()
	if _, ok := runtimes.Load(gid); ok {
		return
	}
	if GlobalStatus() == GlobalDestroyed {
		fatal(errors.RuntimeDestroyed(errors.PhaseInit))
	}
	initRuntime(gid)
}

func initRuntime(gid int64) *RuntimeState {
	state := &RuntimeState{}
	if _, loaded := runtimes.LoadOrStore(gid, state); loaded {
		fatal(errors.Contract(errors.PhaseInit, "no active runtimes allowed"))
	}

	firstRuntime := globalStatus.CompareAndSwap(
		int32(GlobalUninitialized), int32(GlobalRunning))
	if GlobalStatus() != GlobalRunning {
		fatal(errors.InvalidState(errors.PhaseInit, GlobalStatus().String(), GlobalRunning.String()))
	}
	aliveRuntimes.Add(1)

	ms, err := mm.InitMemory(firstRuntime)
	if err != nil || ms == nil {
		fatal(errors.AllocationFailed(errors.PhaseInit, "memory state"))
	}
	state.memoryState = ms
	state.worker = worker.Init(true)

	if firstRuntime {
		runPhase(InitGlobals, ms)
	}
	runPhase(InitThreadLocalGlobals, ms)

	if state.status != statusUninitialized {
		fatal(errors.InvalidState(errors.PhaseInit, state.status.String(), statusUninitialized.String()))
	}
	state.status = statusRunning
	return state
}

// DeinitIfNeeded tears down the calling thread's runtime if it has one.
// Idempotent: on a thread without a runtime it is a no-op.
func DeinitIfNeeded() {
	gid := goid.Get()
	if v, ok := runtimes.Load(gid); ok {
		deinitRuntime(v.(*RuntimeState), false)
		runtimes.Delete(gid)
	}
}

// Run executes fn with a runtime stood up on the calling thread and tears
// the runtime down when fn returns, even if fn never cleaned up explicitly.
// This is the thread-exit teardown registration of this runtime: mutator
// threads wrap their entry point in Run.
func Run(fn func()) {
	EnsureInitialized()
	defer DeinitIfNeeded()
	fn()
}

// deinitRuntime is the teardown shared by thread exit and explicit destroy.
// With destroyRuntime set it additionally runs the DeinitGlobals phase.
func deinitRuntime(state *RuntimeState, destroyRuntime bool) {
	if state.status != statusRunning {
		fatal(errors.InvalidState(errors.PhaseTeardown, state.status.String(), statusRunning.String()))
	}
	state.status = statusDestroying

	// Thread-local cleanup may already have run; rebind the backend so the
	// deinit phases see a valid state.
	mm.RestoreMemory(state.memoryState)
	aliveRuntimes.Add(-1)

	runPhase(DeinitThreadLocalGlobals, state.memoryState)
	if destroyRuntime {
		runPhase(DeinitGlobals, state.memoryState)
	}

	workerID := state.worker.ID()
	worker.Deinit(state.worker)
	if err := mm.DeinitMemory(state.memoryState, destroyRuntime); err != nil {
		fatal(err)
	}
	state.memoryState = nil
	state.worker = nil
	worker.DestroyThreadDataIfNeeded(workerID)
}

// Destroy performs the explicit whole-process teardown. The global status
// must be Running and the calling thread must hold the runtime; every other
// thread must have torn its runtime down already. After Destroy returns the
// global status is Destroyed, permanently.
func Destroy() {
	if GlobalStatus() != GlobalRunning {
		fatal(errors.InvalidState(errors.PhaseTeardown, GlobalStatus().String(), GlobalRunning.String()))
	}
	gid := goid.Get()
	v, ok := runtimes.Load(gid)
	if !ok {
		fatal(errors.Contract(errors.PhaseTeardown, "current thread must have runtime on it"))
	}
	state := v.(*RuntimeState)

	if platform.CleanersLeakCheckerEnabled() {
		// Collect any lingering cleaners, then execute all pending cleaner
		// blocks before stopping the cleaner worker.
		state.memoryState.PerformFullGC()
		cleaner.Shutdown(true)
	} else {
		cleaner.Shutdown(false)
	}
	if platform.MemoryLeakCheckerEnabled() {
		worker.WaitNativeWorkersTermination()
	}

	otherRuntimes := aliveRuntimes.Load() - 1
	if otherRuntimes < 0 {
		fatal(errors.Contract(errors.PhaseTeardown, "alive runtimes count cannot be negative"))
	}
	if otherRuntimes > 0 {
		// Destroy refuses while other threads hold live runtimes; the global
		// status is left untouched.
		fatal(errors.AliveRuntimes(otherRuntimes))
	}

	globalStatus.Store(int32(GlobalDestroyed))

	deinitRuntime(state, true)
	runtimes.Delete(gid)
}

// ZeroOutTLSGlobals re-runs the thread-local deinit phase for the calling
// thread, if it still has a runtime with a live backend. Platform shims call
// this when thread-local storage is being wiped out of order.
func ZeroOutTLSGlobals() {
	if state := CurrentState(); state != nil && state.memoryState != nil {
		runPhase(DeinitThreadLocalGlobals, state.memoryState)
	}
}
