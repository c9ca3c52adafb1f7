//go:build mm.relaxed

package mm

// Binds the public barrier ABI to the relaxed backend. See abi_strict.go for
// the contract of each operation; the two files expose an identical set.

func (ms *MemoryState) AllocInstance(t *TypeDescriptor, result *Ref) (*Object, error) {
	return ms.allocInstanceRelaxed(t, result)
}

func (ms *MemoryState) AllocArrayInstance(t *TypeDescriptor, elements int, result *Ref) (*Object, error) {
	return ms.allocArrayInstanceRelaxed(t, elements, result)
}

func (ms *MemoryState) InitInstance(slot *Ref, t *TypeDescriptor, ctor Constructor, result *Ref) (*Object, error) {
	return ms.initInstanceRelaxed(slot, t, ctor, result)
}

func (ms *MemoryState) InitSharedInstance(slot *Ref, t *TypeDescriptor, ctor Constructor, result *Ref) (*Object, error) {
	return ms.initSharedInstanceRelaxed(slot, t, ctor, result)
}

func (ms *MemoryState) ReleaseHeapRef(o *Object) {
	ms.releaseRelaxed(o)
}

func (ms *MemoryState) ReleaseHeapRefNoCollect(o *Object) {
	ms.releaseNoCollectRelaxed(o)
}

func (ms *MemoryState) SetStackRef(slot *Ref, o *Object) {
	ms.setRefRelaxed(slot, o)
}

func (ms *MemoryState) ZeroStackRef(slot *Ref) {
	ms.zeroRefRelaxed(slot)
}

func (ms *MemoryState) SetHeapRef(slot *Ref, o *Object) {
	ms.setRefRelaxed(slot, o)
}

func (ms *MemoryState) UpdateHeapRef(slot *Ref, o *Object) {
	ms.updateRefRelaxed(slot, o)
}

func (ms *MemoryState) UpdateReturnRef(slot *Ref, o *Object) {
	ms.updateRefRelaxed(slot, o)
}

func (ms *MemoryState) UpdateStackRef(slot *Ref, o *Object) {
	ms.updateRefRelaxed(slot, o)
}

func (ms *MemoryState) EnterFrame(slots []Ref, parameters int) {
	ms.enterFrame(slots, parameters)
}

func (ms *MemoryState) LeaveFrame(slots []Ref, parameters int) {
	ms.leaveFrameRelaxed(slots, parameters)
}
