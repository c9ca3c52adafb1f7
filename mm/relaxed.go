package mm

import (
	"github.com/yombunker/kotlin-native/errors"
)

// Relaxed backend: reference slots are owned by a single mutator thread at
// the language level, so counts are maintained with plain arithmetic, and
// reclamation of dead objects is deferred to the next collection pass. The
// barrier cost is lower; the collector gets weaker ordering guarantees.

func (ms *MemoryState) addRefRelaxed(o *Object) {
	o.refCount++
}

func (ms *MemoryState) releaseRelaxed(o *Object) {
	ms.releases.Add(1)
	o.refCount--
	if o.refCount == 0 {
		ms.pending = append(ms.pending, o)
	} else if o.refCount < 0 {
		panic(errors.Contract(errors.PhaseBarrier, "over-release of %s", objectName(o)))
	}
}

// releaseNoCollectRelaxed is identical to releaseRelaxed: the relaxed
// backend never reclaims inside a release, so the no-collect guarantee holds
// trivially.
func (ms *MemoryState) releaseNoCollectRelaxed(o *Object) {
	ms.releaseRelaxed(o)
}

func (ms *MemoryState) setRefRelaxed(slot *Ref, o *Object) {
	if o != nil {
		ms.addRefRelaxed(o)
	}
	*slot = o
}

func (ms *MemoryState) zeroRefRelaxed(slot *Ref) {
	old := *slot
	*slot = nil
	if old != nil {
		ms.releaseRelaxed(old)
	}
}

// updateRefRelaxed counts the new reference before releasing the old one;
// same-object stores stay safe without any atomicity.
func (ms *MemoryState) updateRefRelaxed(slot *Ref, o *Object) {
	if o != nil {
		ms.addRefRelaxed(o)
	}
	old := *slot
	*slot = o
	if old != nil {
		ms.releaseRelaxed(old)
	}
}

func (ms *MemoryState) allocInstanceRelaxed(t *TypeDescriptor, result *Ref) (*Object, error) {
	if t == nil {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, "instance of nil type")
	}
	o := ms.newObject(t, 0, false)
	ms.updateRefRelaxed(result, o)
	return o, nil
}

func (ms *MemoryState) allocArrayInstanceRelaxed(t *TypeDescriptor, elements int, result *Ref) (*Object, error) {
	if t == nil {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, "array of nil type")
	}
	if elements < 0 {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, "array with negative length")
	}
	o := ms.newObject(t, elements, true)
	ms.updateRefRelaxed(result, o)
	return o, nil
}

func (ms *MemoryState) initInstanceRelaxed(slot *Ref, t *TypeDescriptor, ctor Constructor, result *Ref) (*Object, error) {
	if existing := *slot; existing != nil {
		ms.updateRefRelaxed(result, existing)
		return existing, nil
	}
	o, err := ms.allocInstanceRelaxed(t, result)
	if err != nil {
		return nil, err
	}
	if ctor != nil {
		if err := ctor(o); err != nil {
			ms.zeroRefRelaxed(result)
			ms.PerformFullGC()
			return nil, err
		}
	}
	ms.updateRefRelaxed(slot, o)
	return o, nil
}

// initSharedInstanceRelaxed still serializes on the shared-init lock: shared
// singleton publication needs cross-thread agreement even under the relaxed
// model.
func (ms *MemoryState) initSharedInstanceRelaxed(slot *Ref, t *TypeDescriptor, ctor Constructor, result *Ref) (*Object, error) {
	sharedInitMu.Lock()
	defer sharedInitMu.Unlock()
	return ms.initInstanceRelaxed(slot, t, ctor, result)
}

func (ms *MemoryState) leaveFrameRelaxed(slots []Ref, parameters int) {
	for i, r := range ms.popFrame(slots, parameters) {
		if r != nil {
			slots[i] = nil
			ms.releaseRelaxed(r)
		}
	}
}
