package mm

import (
	"sync/atomic"
)

// TypeDescriptor describes the layout of a managed type: how many reference
// fields an instance carries and an optional finalizer run when an instance
// is reclaimed. Descriptors are immutable after creation and shared by all
// instances of the type.
type TypeDescriptor struct {
	// Name identifies the type in diagnostics.
	Name string

	// FieldCount is the number of managed reference fields in an instance.
	FieldCount int

	// Finalizer, if non-nil, runs on the reclaiming thread just before an
	// instance's fields are released.
	Finalizer func(*Object)
}

// Constructor initializes a freshly allocated object in place. A non-nil
// error aborts the initialization: the object is released and never
// published.
type Constructor func(*Object) error

// Ref is a managed reference. A reference slot is a *Ref; every mutation of
// a slot must go through the barrier ABI.
type Ref = *Object

// Object is a managed heap object: a header (type descriptor and reference
// count) plus its reference fields, or its elements if it is an array.
type Object struct {
	typ      *TypeDescriptor
	fields   []*Object // []Ref; alias spelled out (go.dev/issue/50729 on Go <1.22)
	elems    []*Object // []Ref; alias spelled out (go.dev/issue/50729 on Go <1.22)
	refCount int32
	isArray  bool
}

// Type returns the object's type descriptor. It is nil once the object has
// been reclaimed.
func (o *Object) Type() *TypeDescriptor {
	return o.typ
}

// RefCount returns the current reference count. Intended for the collector
// and for tests; mutators must never act on it.
func (o *Object) RefCount() int32 {
	return atomic.LoadInt32(&o.refCount)
}

// IsArray reports whether the object is an array instance.
func (o *Object) IsArray() bool {
	return o.isArray
}

// Len returns the element count of an array instance, or 0 for a plain
// instance.
func (o *Object) Len() int {
	return len(o.elems)
}

// Field returns the slot of the i-th reference field. The returned slot must
// only be mutated through the barrier ABI.
func (o *Object) Field(i int) *Ref {
	return &o.fields[i]
}

// Elem returns the slot of the i-th array element.
func (o *Object) Elem(i int) *Ref {
	return &o.elems[i]
}
