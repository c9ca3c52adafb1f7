package worker

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// ID identifies a worker for the lifetime of the process. ID 0 is never
// assigned.
type ID int32

// Worker is the opaque per-thread execution context handle. The lifecycle
// controller creates one per thread; native workers are created by Start.
type Worker struct {
	id             ID
	thread         int64
	name           string
	native         bool
	errorReporting bool
}

// ID returns the worker's process-unique identifier.
func (w *Worker) ID() ID {
	return w.id
}

// Name returns the worker's name; per-thread workers are unnamed.
func (w *Worker) Name() string {
	return w.name
}

// Thread returns the id of the thread the worker is bound to. For workers
// created by Init that is the creating thread; for native workers it is the
// spawned thread, valid once fn has started.
func (w *Worker) Thread() int64 {
	return w.thread
}

var (
	nextID   atomic.Int32
	registry sync.Map // ID -> *Worker

	nativeMu   sync.Mutex
	nativeCond = sync.Cond{L: &nativeMu}
	nativeLive int
)

// Init creates and registers the worker handle for the calling thread.
// errorReporting controls whether unhandled failures on this worker are
// reported to the error stream.
func Init(errorReporting bool) *Worker {
	w := &Worker{
		id:             ID(nextID.Add(1)),
		thread:         goid.Get(),
		errorReporting: errorReporting,
	}
	registry.Store(w.id, w)
	return w
}

// Deinit unregisters a worker created by Init.
func Deinit(w *Worker) {
	if w != nil {
		registry.Delete(w.id)
	}
}

// DestroyThreadDataIfNeeded drops any remaining registration for id. Teardown
// calls this after the worker's thread-local storage is gone, so it must
// tolerate an already-unregistered id.
func DestroyThreadDataIfNeeded(id ID) {
	registry.Delete(id)
}

// Get returns the registered worker with the given id.
func Get(id ID) (*Worker, bool) {
	v, ok := registry.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Worker), true
}

// Start spawns a native worker running fn on its own goroutine. The worker is
// registered until fn returns, and counts toward WaitNativeWorkersTermination.
func Start(name string, fn func()) *Worker {
	w := &Worker{
		id:     ID(nextID.Add(1)),
		name:   name,
		native: true,
	}
	registry.Store(w.id, w)

	nativeMu.Lock()
	nativeLive++
	nativeMu.Unlock()

	go func() {
		defer func() {
			registry.Delete(w.id)
			nativeMu.Lock()
			nativeLive--
			nativeCond.Broadcast()
			nativeMu.Unlock()
		}()
		w.thread = goid.Get()
		fn()
	}()
	return w
}

// NativeCount returns the number of native workers currently running.
func NativeCount() int {
	nativeMu.Lock()
	defer nativeMu.Unlock()
	return nativeLive
}

// WaitNativeWorkersTermination blocks until every native worker has
// terminated. Bounded by the workers' own exit guarantees, not by this
// package.
func WaitNativeWorkersTermination() {
	nativeMu.Lock()
	for nativeLive > 0 {
		nativeCond.Wait()
	}
	nativeMu.Unlock()
}
