package runtime

import (
	"github.com/yombunker/kotlin-native/mm"
)

// Phase tags the four points in the lifecycle at which registered
// initializers run.
type Phase int

const (
	// InitGlobals runs once per process, on the first thread, before that
	// thread's InitThreadLocalGlobals.
	InitGlobals Phase = iota
	// InitThreadLocalGlobals runs on every thread that stands up a runtime.
	InitThreadLocalGlobals
	// DeinitThreadLocalGlobals mirrors InitThreadLocalGlobals on teardown.
	DeinitThreadLocalGlobals
	// DeinitGlobals runs once per process, only during explicit destroy,
	// never on ordinary thread exit.
	DeinitGlobals
)

func (p Phase) String() string {
	switch p {
	case InitGlobals:
		return "init-globals"
	case InitThreadLocalGlobals:
		return "init-thread-local-globals"
	case DeinitThreadLocalGlobals:
		return "deinit-thread-local-globals"
	case DeinitGlobals:
		return "deinit-globals"
	default:
		return "unknown"
	}
}

// Initializer is a global-variable initializer callback. It is invoked once
// per phase transition with the calling thread's memory state, and may
// allocate managed objects: the backend is always constructed before any
// phase runs.
type Initializer func(phase Phase, ms *mm.MemoryState)

// InitNode is one registered initializer record.
type InitNode struct {
	Init Initializer
}

// initializers is the process-wide registry. Appended to only during static
// construction (package init functions, before any mutator thread runs),
// then treated as immutable: traversal is never concurrent with append.
var initializers []*InitNode

// RegisterInitializer appends node to the tail of the registry. Independently
// compiled modules call this from their static-initialization code.
func RegisterInitializer(node *InitNode) {
	initializers = append(initializers, node)
}

// runPhase traverses the registry head to tail, invoking every callback with
// the given phase tag.
func runPhase(phase Phase, ms *mm.MemoryState) {
	for _, node := range initializers {
		node.Init(phase, ms)
	}
}
