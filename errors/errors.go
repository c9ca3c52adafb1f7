package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the runtime lifecycle the error occurred
type Phase string

const (
	PhaseInit     Phase = "init"     // runtime construction
	PhaseTeardown Phase = "teardown" // runtime destruction
	PhaseAlloc    Phase = "alloc"    // object allocation
	PhaseBarrier  Phase = "barrier"  // reference-slot mutation
	PhaseGlobals  Phase = "globals"  // global-variable initializers
	PhaseCleaner  Phase = "cleaner"  // cleaner scheduling and shutdown
	PhaseWorker   Phase = "worker"   // worker handle management
	PhasePlatform Phase = "platform" // platform queries and flags
)

// Kind categorizes the error
type Kind string

const (
	KindContract       Kind = "contract_violation"
	KindAllocation     Kind = "allocation"
	KindInvalidState   Kind = "invalid_state"
	KindLeak           Kind = "leak"
	KindNotInitialized Kind = "not_initialized"
	KindDestroyed      Kind = "destroyed"
	KindAliveRuntimes  Kind = "alive_runtimes"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the component path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Contract creates a contract violation error. Contract violations are fatal:
// callers format them and abort rather than returning them.
func Contract(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindContract).Detail(detail, args...).Build()
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %s", what),
	}
}

// InvalidState creates an invalid state-machine transition error
func InvalidState(phase Phase, have, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Detail: fmt.Sprintf("state is %s, must be %s", have, want),
		Value:  have,
	}
}

// RuntimeDestroyed creates an error for operations attempted after the
// terminal global teardown.
func RuntimeDestroyed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDestroyed,
		Detail: "runtime was previously destroyed; cannot create new runtime",
	}
}

// AliveRuntimes creates an error for a destroy attempted while other threads
// still hold live runtimes.
func AliveRuntimes(count int32) *Error {
	return &Error{
		Phase:  PhaseTeardown,
		Kind:   KindAliveRuntimes,
		Detail: fmt.Sprintf("cannot destroy runtime while there are %d alive threads with runtime on them", count),
		Value:  count,
	}
}

// Leak creates a leak-checker report error
func Leak(phase Phase, what string, count int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLeak,
		Detail: fmt.Sprintf("%d leaked %s detected", count, what),
		Value:  count,
	}
}

// NotInitialized creates an error for use of a component before its runtime
// was stood up.
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s is not initialized", what),
	}
}
