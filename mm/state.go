package mm

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"

	"github.com/yombunker/kotlin-native/errors"
	"github.com/yombunker/kotlin-native/platform"
)

// states maps goroutine ID to the MemoryState bound to that thread. The
// lifecycle controller creates and removes entries; barrier calls on a
// MemoryState never touch the map.
var states sync.Map

// sharedInitMu serializes first-touch initialization of shared singleton
// slots across threads. Not on any hot path: a slot takes this lock only
// until its singleton is published.
var sharedInitMu sync.Mutex

// liveObjects counts managed objects that have been allocated and not yet
// reclaimed, process-wide. Consulted by the object leak checker on destroy.
var liveObjects atomic.Int64

// LiveObjects returns the number of managed objects currently alive in the
// process.
func LiveObjects() int64 {
	return liveObjects.Load()
}

type frame struct {
	slots      []Ref
	parameters int
}

// MemoryState is the per-thread handle to the memory-model backend. It is
// exclusively owned by the thread it was created on and must never be shared.
type MemoryState struct {
	frames      []frame
	pending     []*Object
	allocations atomic.Int64
	releases    atomic.Int64
	reclaimed   atomic.Int64
	gid         int64
	dead        bool
}

// InitMemory constructs the memory state for the calling thread and binds it
// to the thread. firstRuntime is true on the thread that performed the
// global Uninitialized->Running transition.
func InitMemory(firstRuntime bool) (*MemoryState, error) {
	gid := goid.Get()
	if _, loaded := states.Load(gid); loaded {
		return nil, errors.Contract(errors.PhaseInit, "thread already has a memory state")
	}
	_ = firstRuntime // global heap bookkeeping needs no per-process setup
	ms := &MemoryState{gid: gid}
	states.Store(gid, ms)
	return ms, nil
}

// RestoreMemory rebinds state to the calling thread. Teardown paths call
// this because thread-local cleanup may already have cleared the binding by
// the time the teardown callback runs.
func RestoreMemory(ms *MemoryState) {
	states.Store(goid.Get(), ms)
}

// DeinitMemory tears down a thread's memory state: drains deferred
// reclamations and, on the final destroy with the object leak checker
// enabled, reports objects that are still alive. The returned error is a
// contract violation; the lifecycle controller treats it as fatal.
func DeinitMemory(ms *MemoryState, destroyRuntime bool) error {
	ms.PerformFullGC()
	ms.dead = true
	states.Delete(goid.Get())
	if destroyRuntime && platform.MemoryLeakCheckerEnabled() {
		if n := liveObjects.Load(); n > 0 {
			return errors.Leak(errors.PhaseTeardown, "objects", n)
		}
	}
	return nil
}

// CurrentMemoryState returns the memory state bound to the calling thread,
// or nil if the thread has no runtime.
func CurrentMemoryState() *MemoryState {
	if v, ok := states.Load(goid.Get()); ok {
		return v.(*MemoryState)
	}
	return nil
}

// Allocations returns the number of objects allocated through this state.
func (ms *MemoryState) Allocations() int64 {
	return ms.allocations.Load()
}

// Releases returns the number of barrier-level reference releases performed
// through this state.
func (ms *MemoryState) Releases() int64 {
	return ms.releases.Load()
}

// Reclaimed returns the number of objects this state has destroyed.
func (ms *MemoryState) Reclaimed() int64 {
	return ms.reclaimed.Load()
}

// FrameDepth returns the number of currently registered frames.
func (ms *MemoryState) FrameDepth() int {
	return len(ms.frames)
}

// ForEachFrameRoot invokes fn for every non-nil reference currently held in
// a registered frame slot. This is the root enumeration the collector plugs
// into.
func (ms *MemoryState) ForEachFrameRoot(fn func(Ref)) {
	for _, f := range ms.frames {
		for _, r := range f.slots {
			if r != nil {
				fn(r)
			}
		}
	}
}

// PerformFullGC drains deferred reclamations: every object whose reference
// count already dropped to zero is destroyed, repeatedly, until no dead
// objects remain pending.
func (ms *MemoryState) PerformFullGC() {
	for len(ms.pending) > 0 {
		batch := ms.pending
		ms.pending = nil
		for _, o := range batch {
			if o.typ != nil && atomic.LoadInt32(&o.refCount) == 0 {
				ms.destroyObject(o)
			}
		}
	}
}

func (ms *MemoryState) newObject(t *TypeDescriptor, elements int, isArray bool) *Object {
	o := &Object{typ: t, isArray: isArray}
	if isArray {
		o.elems = make([]Ref, elements)
	} else if t.FieldCount > 0 {
		o.fields = make([]Ref, t.FieldCount)
	}
	ms.allocations.Add(1)
	liveObjects.Add(1)
	return o
}

// destroyObject reclaims a dead object: runs its finalizer, then releases
// the references its fields or elements still hold. The header is cleared
// before children are released so a buggy reentrant release trips the
// over-release check instead of recursing forever.
func (ms *MemoryState) destroyObject(o *Object) {
	t := o.typ
	if t == nil {
		return
	}
	if t.Finalizer != nil {
		t.Finalizer(o)
	}
	fields, elems := o.fields, o.elems
	o.typ = nil
	o.fields = nil
	o.elems = nil
	for _, child := range fields {
		if child != nil {
			ms.releaseForSweep(child)
		}
	}
	for _, child := range elems {
		if child != nil {
			ms.releaseForSweep(child)
		}
	}
	liveObjects.Add(-1)
	ms.reclaimed.Add(1)
}

// releaseForSweep drops one reference during object destruction. Sweep
// releases are always atomic regardless of backend: destruction may run
// concurrently with other threads' collection activity.
func (ms *MemoryState) releaseForSweep(o *Object) {
	c := atomic.AddInt32(&o.refCount, -1)
	if c == 0 {
		ms.destroyObject(o)
	} else if c < 0 {
		panic(errors.Contract(errors.PhaseBarrier, "over-release of %s during sweep", objectName(o)))
	}
}

func (ms *MemoryState) enterFrame(slots []Ref, parameters int) {
	for i := parameters; i < len(slots); i++ {
		slots[i] = nil
	}
	ms.frames = append(ms.frames, frame{slots: slots, parameters: parameters})
}

// popFrame validates that slots is the innermost registered frame and
// unregisters it. Returns the slot range so the caller can release what the
// frame still holds.
func (ms *MemoryState) popFrame(slots []Ref, parameters int) []Ref {
	if len(ms.frames) == 0 {
		panic(errors.Contract(errors.PhaseBarrier, "leaveFrame with no registered frames"))
	}
	top := ms.frames[len(ms.frames)-1]
	if len(top.slots) != len(slots) || top.parameters != parameters ||
		(len(slots) > 0 && &top.slots[0] != &slots[0]) {
		panic(errors.Contract(errors.PhaseBarrier, "leaveFrame does not match innermost enterFrame"))
	}
	ms.frames = ms.frames[:len(ms.frames)-1]
	return slots
}

func objectName(o *Object) string {
	if o == nil || o.typ == nil {
		return "<reclaimed object>"
	}
	return o.typ.Name
}
