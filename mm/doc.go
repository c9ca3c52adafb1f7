// Package mm implements the memory-model backend of the runtime: object
// allocation, the reference write-barrier ABI, and stack-frame root
// registration.
//
// Two complete backends exist, Strict and Relaxed, and exactly one of them is
// bound to the public ABI at build time. Default builds link the strict
// backend; building with the mm.relaxed tag links the relaxed one. The public
// operation set is identical either way and callers never branch on which
// backend is active.
//
//   - Strict maintains reference counts with atomic operations and reclaims
//     objects eagerly when their count reaches zero. It is safe when the
//     collector inspects counts concurrently from other threads.
//   - Relaxed uses plain arithmetic on counts (reference slots are owned by a
//     single mutator thread at the language level) and defers reclamation of
//     dead objects to the next collection pass, trading ordering guarantees
//     for lower barrier cost.
//
// Both backends are always compiled; the tagged files abi_strict.go and
// abi_relaxed.go are thin forwarders that pick one set of entry points, so
// either backend can be tested from a single build.
//
// A MemoryState is created per mutator thread by the lifecycle controller via
// InitMemory and torn down with DeinitMemory. Object-producing operations
// write their result through a caller-provided return slot, normally a slot
// of the current frame, so a new object is never live outside a registered
// root:
//
//	slots := make([]mm.Ref, 2)
//	ms.EnterFrame(slots, 0)
//	defer ms.LeaveFrame(slots, 0)
//
//	obj, err := ms.AllocInstance(desc, &slots[0])
//
// Reference ownership: a slot holds exactly one counted reference to the
// object it points at. Set establishes a reference in an empty slot, Update
// replaces a possibly-occupied slot (releasing the previous referent), and
// LeaveFrame releases whatever the frame's slots still hold.
package mm
