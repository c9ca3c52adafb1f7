package mm

import (
	"sync/atomic"

	"github.com/yombunker/kotlin-native/errors"
)

// Strict backend: reference counts are maintained with atomic operations and
// dead objects are reclaimed eagerly at the release that dropped the count to
// zero. Safe when the collector reads counts from other threads.

func (ms *MemoryState) addRefStrict(o *Object) {
	atomic.AddInt32(&o.refCount, 1)
}

func (ms *MemoryState) releaseStrict(o *Object) {
	ms.releases.Add(1)
	c := atomic.AddInt32(&o.refCount, -1)
	if c == 0 {
		ms.destroyObject(o)
	} else if c < 0 {
		panic(errors.Contract(errors.PhaseBarrier, "over-release of %s", objectName(o)))
	}
}

// releaseNoCollectStrict drops a reference without reclaiming: a dead object
// is parked until the next collection pass. Used in teardown ordering where
// triggering reclamation would be unsafe.
func (ms *MemoryState) releaseNoCollectStrict(o *Object) {
	ms.releases.Add(1)
	c := atomic.AddInt32(&o.refCount, -1)
	if c == 0 {
		ms.pending = append(ms.pending, o)
	} else if c < 0 {
		panic(errors.Contract(errors.PhaseBarrier, "over-release of %s", objectName(o)))
	}
}

// setRefStrict establishes a reference in a previously empty slot. The count
// is bumped before the store so a concurrent collector never observes the
// reference uncounted.
func (ms *MemoryState) setRefStrict(slot *Ref, o *Object) {
	if o != nil {
		ms.addRefStrict(o)
	}
	*slot = o
}

func (ms *MemoryState) zeroRefStrict(slot *Ref) {
	old := *slot
	*slot = nil
	if old != nil {
		ms.releaseStrict(old)
	}
}

// updateRefStrict replaces a possibly-occupied slot. The new reference is
// counted before the old one is released so storing the same object twice
// never transiently drops its count to zero.
func (ms *MemoryState) updateRefStrict(slot *Ref, o *Object) {
	if o != nil {
		ms.addRefStrict(o)
	}
	old := *slot
	*slot = o
	if old != nil {
		ms.releaseStrict(old)
	}
}

func (ms *MemoryState) allocInstanceStrict(t *TypeDescriptor, result *Ref) (*Object, error) {
	if t == nil {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, "instance of nil type")
	}
	o := ms.newObject(t, 0, false)
	ms.updateRefStrict(result, o)
	return o, nil
}

func (ms *MemoryState) allocArrayInstanceStrict(t *TypeDescriptor, elements int, result *Ref) (*Object, error) {
	if t == nil {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, "array of nil type")
	}
	if elements < 0 {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, "array with negative length")
	}
	o := ms.newObject(t, elements, true)
	ms.updateRefStrict(result, o)
	return o, nil
}

func (ms *MemoryState) initInstanceStrict(slot *Ref, t *TypeDescriptor, ctor Constructor, result *Ref) (*Object, error) {
	if existing := *slot; existing != nil {
		ms.updateRefStrict(result, existing)
		return existing, nil
	}
	o, err := ms.allocInstanceStrict(t, result)
	if err != nil {
		return nil, err
	}
	if ctor != nil {
		if err := ctor(o); err != nil {
			ms.zeroRefStrict(result)
			return nil, err
		}
	}
	ms.updateRefStrict(slot, o)
	return o, nil
}

// initSharedInstanceStrict is the cross-thread variant: first touches of the
// same slot from multiple threads serialize on the shared-init lock, so at
// most one construction ever runs and its result is visible to every thread
// that reaches the slot afterwards.
func (ms *MemoryState) initSharedInstanceStrict(slot *Ref, t *TypeDescriptor, ctor Constructor, result *Ref) (*Object, error) {
	sharedInitMu.Lock()
	defer sharedInitMu.Unlock()
	return ms.initInstanceStrict(slot, t, ctor, result)
}

func (ms *MemoryState) leaveFrameStrict(slots []Ref, parameters int) {
	for i, r := range ms.popFrame(slots, parameters) {
		if r != nil {
			slots[i] = nil
			ms.releaseStrict(r)
		}
	}
}
