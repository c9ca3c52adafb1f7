package runtime

import (
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/yombunker/kotlin-native/cleaner"
	"github.com/yombunker/kotlin-native/mm"
	"github.com/yombunker/kotlin-native/platform"
)

func TestMain(m *testing.M) {
	SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

type abortPanic struct{ code int }

// expectAbort runs fn expecting a fatal runtime abort, which the swapped
// exit hook surfaces as a panic instead of killing the test process.
func expectAbort(t *testing.T, fn func()) {
	t.Helper()
	orig := exit
	exit = func(code int) { panic(abortPanic{code}) }
	defer func() {
		exit = orig
		r := recover()
		if r == nil {
			t.Fatal("expected fatal abort")
		}
		if _, ok := r.(abortPanic); !ok {
			panic(r)
		}
	}()
	fn()
	t.Fatal("fatal abort did not happen")
}

// resetRuntime rewinds the process-wide lifecycle between tests. The global
// status machine is monotonic in a real process; tests get a fresh one each.
func resetRuntime() {
	DeinitIfNeeded()
	runtimes.Range(func(k, v any) bool {
		runtimes.Delete(k)
		return true
	})
	globalStatus.Store(int32(GlobalUninitialized))
	aliveRuntimes.Store(0)
	initializers = nil
}

// phaseRecorder registers an initializer that appends every phase it sees.
type phaseRecorder struct {
	mu     sync.Mutex
	phases []Phase
}

func (r *phaseRecorder) install() {
	RegisterInitializer(&InitNode{Init: func(p Phase, _ *mm.MemoryState) {
		r.mu.Lock()
		r.phases = append(r.phases, p)
		r.mu.Unlock()
	}})
}

func (r *phaseRecorder) count(p Phase) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, q := range r.phases {
		if q == p {
			n++
		}
	}
	return n
}

func (r *phaseRecorder) sequence() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Phase(nil), r.phases...)
}

// This test must run before anything else shuts the cleaner worker down:
// cleaner shutdown is terminal for the whole test process.
func TestDestroy_DrainsCleanersWhenCheckerEnabled(t *testing.T) {
	resetRuntime()
	defer resetRuntime()
	platform.SetCleanersLeakChecker(true)
	defer platform.SetCleanersLeakChecker(platform.NeedDebugInfo)

	var ran atomic.Int32
	EnsureInitialized()
	if err := cleaner.Schedule(func() { ran.Add(1) }); err != nil {
		t.Fatal(err)
	}
	if err := cleaner.Schedule(func() { ran.Add(1) }); err != nil {
		t.Fatal(err)
	}

	Destroy()

	if got := ran.Load(); got != 2 {
		t.Fatalf("destroy executed %d pending cleaners, want 2", got)
	}
	if GlobalStatus() != GlobalDestroyed {
		t.Fatalf("global status = %s after destroy", GlobalStatus())
	}
}

func TestEnsureInitialized_Idempotent(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	EnsureInitialized()
	first := CurrentState()
	if first == nil {
		t.Fatal("no runtime state after init")
	}
	if first.MemoryState() == nil || first.Worker() == nil {
		t.Fatal("runtime state incomplete")
	}

	EnsureInitialized()
	if CurrentState() != first {
		t.Fatal("second ensure replaced the runtime state")
	}
	if got := AliveRuntimesCount(); got != 1 {
		t.Fatalf("alive runtimes = %d, want 1", got)
	}
	if GlobalStatus() != GlobalRunning {
		t.Fatalf("global status = %s, want running", GlobalStatus())
	}
}

func TestDeinitIfNeeded_Idempotent(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	// No runtime: no-op.
	DeinitIfNeeded()
	if got := AliveRuntimesCount(); got != 0 {
		t.Fatalf("alive runtimes = %d after no-op deinit", got)
	}

	rec := &phaseRecorder{}
	rec.install()
	EnsureInitialized()
	DeinitIfNeeded()
	if CurrentState() != nil {
		t.Fatal("runtime state survived deinit")
	}
	if got := AliveRuntimesCount(); got != 0 {
		t.Fatalf("alive runtimes = %d after deinit, want 0", got)
	}

	// Second call performs no second teardown.
	DeinitIfNeeded()
	if got := rec.count(DeinitThreadLocalGlobals); got != 1 {
		t.Fatalf("thread-local deinit ran %d times, want 1", got)
	}
}

func TestConcurrentEnsure_FirstRuntimeExactlyOnce(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	rec := &phaseRecorder{}
	rec.install()

	const n = 16
	var ready, done sync.WaitGroup
	release := make(chan struct{})
	for i := 0; i < n; i++ {
		ready.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			ready.Done()
			<-release
			EnsureInitialized()
			if CurrentState() == nil {
				t.Error("thread has no runtime after ensure")
			}
			if got := AliveRuntimesCount(); got < 1 || got > n {
				t.Errorf("alive runtimes = %d, out of range", got)
			}
			DeinitIfNeeded()
		}()
	}
	ready.Wait()
	close(release)
	done.Wait()

	if got := rec.count(InitGlobals); got != 1 {
		t.Fatalf("InitGlobals ran %d times across %d threads, want exactly 1", got, n)
	}
	if got := rec.count(InitThreadLocalGlobals); got != n {
		t.Fatalf("thread-local init ran %d times, want %d", got, n)
	}
	if got := rec.count(DeinitThreadLocalGlobals); got != n {
		t.Fatalf("thread-local deinit ran %d times, want %d", got, n)
	}
	if got := rec.count(DeinitGlobals); got != 0 {
		t.Fatalf("DeinitGlobals ran %d times on ordinary thread exit, want 0", got)
	}
	if got := AliveRuntimesCount(); got != 0 {
		t.Fatalf("alive runtimes = %d after all threads exited, want 0", got)
	}
	if GlobalStatus() != GlobalRunning {
		t.Fatalf("global status = %s, want running", GlobalStatus())
	}
}

func TestPhaseOrdering_ThreadExit(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	rec := &phaseRecorder{}
	rec.install()
	Run(func() {})

	want := []Phase{InitGlobals, InitThreadLocalGlobals, DeinitThreadLocalGlobals}
	got := rec.sequence()
	if len(got) != len(want) {
		t.Fatalf("phases = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phases = %v, want %v", got, want)
		}
	}
}

func TestPhaseOrdering_ExplicitDestroy(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	rec := &phaseRecorder{}
	rec.install()
	EnsureInitialized()
	Destroy()

	want := []Phase{InitGlobals, InitThreadLocalGlobals, DeinitThreadLocalGlobals, DeinitGlobals}
	got := rec.sequence()
	if len(got) != len(want) {
		t.Fatalf("phases = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phases = %v, want %v", got, want)
		}
	}
}

func TestInitializers_RunInRegistrationOrder(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		RegisterInitializer(&InitNode{Init: func(p Phase, _ *mm.MemoryState) {
			if p == InitGlobals {
				order = append(order, i)
			}
		}})
	}

	Run(func() {})
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("initializer order = %v, want [0 1 2]", order)
	}
}

func TestInitializers_MayAllocate(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	before := mm.LiveObjects()
	desc := &mm.TypeDescriptor{Name: "StaticGlobal"}
	RegisterInitializer(&InitNode{Init: func(p Phase, ms *mm.MemoryState) {
		if p != InitGlobals {
			return
		}
		// The backend must already be attached when globals initialize.
		slots := make([]mm.Ref, 1)
		ms.EnterFrame(slots, 0)
		if _, err := ms.AllocInstance(desc, &slots[0]); err != nil {
			t.Error(err)
		}
		ms.LeaveFrame(slots, 0)
	}})

	Run(func() {})
	ms, err := mm.InitMemory(false)
	if err != nil {
		t.Fatal(err)
	}
	ms.PerformFullGC()
	mm.DeinitMemory(ms, false)
	if after := mm.LiveObjects(); after != before {
		t.Fatalf("live objects = %d, want %d", after, before)
	}
}

func TestRun_MutatorScenario(t *testing.T) {
	resetRuntime()
	defer resetRuntime()
	origLeaks := platform.MemoryLeakCheckerEnabled()
	platform.SetMemoryLeakChecker(false)
	defer platform.SetMemoryLeakChecker(origLeaks)

	desc := &mm.TypeDescriptor{Name: "Payload"}
	var heapSlot mm.Ref
	var obj *mm.Object

	Run(func() {
		ms := CurrentState().MemoryState()
		slots := make([]mm.Ref, 1)
		ms.EnterFrame(slots, 0)

		var err error
		obj, err = ms.AllocInstance(desc, &slots[0])
		if err != nil {
			t.Fatal(err)
		}
		if ms.Allocations() != 1 {
			t.Fatalf("allocations = %d, want 1", ms.Allocations())
		}

		ms.UpdateHeapRef(&heapSlot, obj)
		if obj.RefCount() != 2 {
			t.Fatalf("refcount = %d, want 2", obj.RefCount())
		}

		ms.LeaveFrame(slots, 0)
		// Teardown of the frame released exactly the frame's reference.
		if ms.Releases() != 1 {
			t.Fatalf("releases = %d, want 1", ms.Releases())
		}
	})

	// Thread exited without leak report; the heap slot still owns the object.
	if obj.RefCount() != 1 {
		t.Fatalf("refcount after thread exit = %d, want 1", obj.RefCount())
	}

	ms, err := mm.InitMemory(false)
	if err != nil {
		t.Fatal(err)
	}
	ms.UpdateHeapRef(&heapSlot, nil)
	ms.PerformFullGC()
	mm.DeinitMemory(ms, false)
}

func TestDestroy_Terminal(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	EnsureInitialized()
	Destroy()
	if GlobalStatus() != GlobalDestroyed {
		t.Fatalf("global status = %s, want destroyed", GlobalStatus())
	}
	if CurrentState() != nil {
		t.Fatal("runtime state survived destroy")
	}

	// No runtime may ever be created after destroy.
	expectAbort(t, EnsureInitialized)

	// A second destroy is a contract violation too.
	expectAbort(t, Destroy)
}

func TestDestroy_RequiresRuntimeOnThread(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	var wg sync.WaitGroup
	release := make(chan struct{})
	started := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		Run(func() {
			close(started)
			<-release
		})
	}()
	<-started

	// Global status is running, but this thread holds no runtime.
	expectAbort(t, Destroy)

	close(release)
	wg.Wait()
}

func TestDestroy_AbortsWhileOtherRuntimesAlive(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		Run(func() {
			close(started)
			<-release
		})
	}()
	<-started

	EnsureInitialized()
	expectAbort(t, Destroy)

	// The refused destroy left the global status untouched.
	if GlobalStatus() != GlobalRunning {
		t.Fatalf("global status = %s after refused destroy, want running", GlobalStatus())
	}
	if got := AliveRuntimesCount(); got != 2 {
		t.Fatalf("alive runtimes = %d, want 2", got)
	}

	close(release)
	wg.Wait()
	DeinitIfNeeded()
}

func TestZeroOutTLSGlobals(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	rec := &phaseRecorder{}
	rec.install()

	// Without a runtime it is a no-op.
	ZeroOutTLSGlobals()
	if got := rec.count(DeinitThreadLocalGlobals); got != 0 {
		t.Fatalf("thread-local deinit ran %d times without a runtime", got)
	}

	EnsureInitialized()
	ZeroOutTLSGlobals()
	if got := rec.count(DeinitThreadLocalGlobals); got != 1 {
		t.Fatalf("thread-local deinit ran %d times, want 1", got)
	}
	DeinitIfNeeded()
}

func TestAliveRuntimes_PairedAcrossChurn(t *testing.T) {
	resetRuntime()
	defer resetRuntime()

	const n = 24
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				Run(func() {
					if got := AliveRuntimesCount(); got < 1 {
						t.Errorf("alive runtimes = %d inside a live runtime", got)
					}
				})
			}
		}()
	}
	wg.Wait()

	if got := AliveRuntimesCount(); got != 0 {
		t.Fatalf("alive runtimes = %d after churn, want 0", got)
	}
	if GlobalStatus() != GlobalRunning {
		t.Fatalf("global status = %s, want running", GlobalStatus())
	}
}
