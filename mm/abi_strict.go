//go:build !mm.relaxed

package mm

// Binds the public barrier ABI to the strict backend. Only this file or
// abi_relaxed.go is compiled into a binary, never both, so call sites pay no
// dispatch cost for the selection.

// AllocInstance allocates a managed instance of t and publishes it through
// the result slot.
func (ms *MemoryState) AllocInstance(t *TypeDescriptor, result *Ref) (*Object, error) {
	return ms.allocInstanceStrict(t, result)
}

// AllocArrayInstance allocates a managed array of t with the given element
// count and publishes it through the result slot.
func (ms *MemoryState) AllocArrayInstance(t *TypeDescriptor, elements int, result *Ref) (*Object, error) {
	return ms.allocArrayInstanceStrict(t, elements, result)
}

// InitInstance returns the object already published at slot, or allocates,
// constructs and publishes a new one. The slot must be thread-local; use
// InitSharedInstance for slots reachable from several threads.
func (ms *MemoryState) InitInstance(slot *Ref, t *TypeDescriptor, ctor Constructor, result *Ref) (*Object, error) {
	return ms.initInstanceStrict(slot, t, ctor, result)
}

// InitSharedInstance is InitInstance for shared singleton slots: concurrent
// first touches from multiple threads see at most one construction.
func (ms *MemoryState) InitSharedInstance(slot *Ref, t *TypeDescriptor, ctor Constructor, result *Ref) (*Object, error) {
	return ms.initSharedInstanceStrict(slot, t, ctor, result)
}

// ReleaseHeapRef drops one counted reference held in a heap slot.
func (ms *MemoryState) ReleaseHeapRef(o *Object) {
	ms.releaseStrict(o)
}

// ReleaseHeapRefNoCollect drops one counted reference without triggering any
// reclamation pass.
func (ms *MemoryState) ReleaseHeapRefNoCollect(o *Object) {
	ms.releaseNoCollectStrict(o)
}

// SetStackRef establishes a reference in a previously empty stack slot.
func (ms *MemoryState) SetStackRef(slot *Ref, o *Object) {
	ms.setRefStrict(slot, o)
}

// ZeroStackRef clears a stack slot, releasing the reference it held.
func (ms *MemoryState) ZeroStackRef(slot *Ref) {
	ms.zeroRefStrict(slot)
}

// SetHeapRef establishes a reference in a previously empty heap slot.
func (ms *MemoryState) SetHeapRef(slot *Ref, o *Object) {
	ms.setRefStrict(slot, o)
}

// UpdateHeapRef replaces the reference in a heap slot, releasing the
// previous referent.
func (ms *MemoryState) UpdateHeapRef(slot *Ref, o *Object) {
	ms.updateRefStrict(slot, o)
}

// UpdateReturnRef replaces the reference in a call's return slot.
func (ms *MemoryState) UpdateReturnRef(slot *Ref, o *Object) {
	ms.updateRefStrict(slot, o)
}

// UpdateStackRef replaces the reference in a stack slot.
func (ms *MemoryState) UpdateStackRef(slot *Ref, o *Object) {
	ms.updateRefStrict(slot, o)
}

// EnterFrame registers a contiguous run of stack slots as roots for the
// duration of a call frame. The first parameters slots are left intact; the
// rest are zeroed.
func (ms *MemoryState) EnterFrame(slots []Ref, parameters int) {
	ms.enterFrame(slots, parameters)
}

// LeaveFrame unregisters the innermost frame and releases whatever
// references its slots still hold.
func (ms *MemoryState) LeaveFrame(slots []Ref, parameters int) {
	ms.leaveFrameStrict(slots, parameters)
}
