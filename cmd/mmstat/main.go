package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/yombunker/kotlin-native/cleaner"
	"github.com/yombunker/kotlin-native/mm"
	"github.com/yombunker/kotlin-native/platform"
	"github.com/yombunker/kotlin-native/runtime"
)

func main() {
	var (
		threads      = flag.Int("threads", 4, "Number of mutator threads")
		objects      = flag.Int("objects", 10000, "Allocations per mutator thread")
		retain       = flag.Int("retain", 64, "Heap slots retained per thread")
		cleanerEvery = flag.Int("cleaner-every", 0, "Schedule a cleaner block every N allocations (0 disables)")
		leaks        = flag.Bool("leaks", false, "Enable both leak checkers")
		destroy      = flag.Bool("destroy", false, "Perform the global destroy at the end")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *leaks {
		platform.SetMemoryLeakChecker(true)
		platform.SetCleanersLeakChecker(true)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*threads, *retain, *cleanerEvery); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*threads, *objects, *retain, *cleanerEvery, *destroy); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(threads, objects, retain, cleanerEvery int, destroy bool) error {
	fmt.Printf("Memory model: %s\n", memoryModelName())
	fmt.Printf("Mutators: %d, objects per mutator: %d, retained slots: %d\n",
		threads, objects, retain)

	// The controller thread holds a runtime so the global destroy can run here.
	runtime.EnsureInitialized()

	w := newWorkload(threads, retain, cleanerEvery)
	w.limit = int64(objects)
	w.start()
	w.wait()
	if err := w.err(); err != nil {
		return err
	}

	fmt.Printf("\nGlobal status: %s\n", runtime.GlobalStatus())
	fmt.Printf("Alive runtimes: %d\n", runtime.AliveRuntimesCount())
	fmt.Printf("Allocations: %d\n", w.allocs.Load())
	fmt.Printf("Releases: %d\n", w.releases.Load())
	fmt.Printf("Reclaimed: %d\n", w.reclaimed.Load())
	fmt.Printf("Live objects: %d\n", mm.LiveObjects())
	fmt.Printf("Cleaners scheduled: %d, executed: %d, pending: %d\n",
		cleaner.ScheduledTotal(), cleaner.ExecutedTotal(), cleaner.Pending())

	if destroy {
		fmt.Printf("\nDestroying runtime...\n")
		runtime.Destroy()
		fmt.Printf("Global status: %s\n", runtime.GlobalStatus())
	} else {
		runtime.DeinitIfNeeded()
	}
	return nil
}

// workload drives allocation and barrier traffic through mutator threads,
// each with its own runtime, frames, and a ring of retained heap slots.
type workload struct {
	threads      int
	retain       int
	cleanerEvery int
	limit        int64

	stop atomic.Bool
	wg   sync.WaitGroup

	allocs    atomic.Int64
	releases  atomic.Int64
	reclaimed atomic.Int64
	frames    atomic.Int64

	mu      sync.Mutex
	firstErr error
}

func newWorkload(threads, retain, cleanerEvery int) *workload {
	if retain < 1 {
		retain = 1
	}
	return &workload{threads: threads, retain: retain, cleanerEvery: cleanerEvery}
}

func (w *workload) start() {
	for i := 0; i < w.threads; i++ {
		w.wg.Add(1)
		go w.mutate(i)
	}
}

func (w *workload) mutate(id int) {
	defer w.wg.Done()
	runtime.Run(func() {
		ms := runtime.CurrentState().MemoryState()
		objType := &mm.TypeDescriptor{Name: fmt.Sprintf("mmstat.Payload%d", id)}
		arrType := &mm.TypeDescriptor{Name: fmt.Sprintf("mmstat.Buffer%d", id)}
		heap := make([]mm.Ref, w.retain)

		var n int64
		for !w.stop.Load() && (w.limit == 0 || n < w.limit) {
			slots := make([]mm.Ref, 2)
			ms.EnterFrame(slots, 0)

			obj, err := ms.AllocInstance(objType, &slots[0])
			if err != nil {
				ms.LeaveFrame(slots, 0)
				w.fail(err)
				break
			}
			w.allocs.Add(1)
			if _, err := ms.AllocArrayInstance(arrType, 4, &slots[1]); err != nil {
				ms.LeaveFrame(slots, 0)
				w.fail(err)
				break
			}
			w.allocs.Add(1)

			// Retain every object briefly through the slot ring, evicting
			// whatever reference the slot held before.
			ms.UpdateHeapRef(&heap[n%int64(w.retain)], obj)
			ms.LeaveFrame(slots, 0)
			w.frames.Add(1)

			if w.cleanerEvery > 0 && n%int64(w.cleanerEvery) == 0 {
				if err := cleaner.Schedule(func() {}); err != nil {
					w.fail(err)
					break
				}
			}
			n++
		}

		for i := range heap {
			ms.UpdateHeapRef(&heap[i], nil)
		}
		ms.PerformFullGC()

		w.releases.Add(ms.Releases())
		w.reclaimed.Add(ms.Reclaimed())
	})
}

func (w *workload) fail(err error) {
	w.mu.Lock()
	if w.firstErr == nil {
		w.firstErr = err
	}
	w.mu.Unlock()
	w.stop.Store(true)
}

func (w *workload) halt() {
	w.stop.Store(true)
}

func (w *workload) wait() {
	w.wg.Wait()
}

func (w *workload) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstErr
}

func memoryModelName() string {
	if platform.MemoryModel() == platform.MemoryModelRelaxed {
		return "relaxed"
	}
	return "strict"
}
