package cleaner

import (
	"sync"
	"sync/atomic"

	"github.com/yombunker/kotlin-native/errors"
	"github.com/yombunker/kotlin-native/worker"
)

// Block is one deferred cleanup action.
type Block func()

var (
	mu       sync.Mutex
	cond     = sync.Cond{L: &mu}
	queue    []Block
	started  bool
	stopping bool
	shutdown bool
	done     chan struct{}

	scheduled atomic.Int64
	executed  atomic.Int64
)

// Schedule enqueues a cleaner block for execution on the cleaner worker,
// starting the worker if this is the first block. Scheduling after Shutdown
// fails.
func Schedule(b Block) error {
	mu.Lock()
	defer mu.Unlock()
	if shutdown {
		return errors.Contract(errors.PhaseCleaner, "cleaner scheduled after cleaners were shut down")
	}
	queue = append(queue, b)
	scheduled.Add(1)
	if !started {
		started = true
		done = make(chan struct{})
		worker.Start("cleaner", run)
	}
	cond.Signal()
	return nil
}

func run() {
	defer close(done)
	for {
		mu.Lock()
		for len(queue) == 0 && !stopping {
			cond.Wait()
		}
		if len(queue) == 0 {
			mu.Unlock()
			return
		}
		b := queue[0]
		queue = queue[1:]
		mu.Unlock()

		b()
		executed.Add(1)
	}
}

// Shutdown stops the cleaner worker. With executeScheduled, every block still
// pending is executed first; otherwise pending blocks are discarded.
// Shutdown is terminal: it returns once the worker has exited, and repeated
// calls are no-ops.
func Shutdown(executeScheduled bool) {
	mu.Lock()
	if shutdown {
		mu.Unlock()
		return
	}
	shutdown = true
	stopping = true
	if !executeScheduled {
		queue = nil
	}
	d := done
	cond.Broadcast()
	mu.Unlock()

	if d != nil {
		<-d
	}
}

// Pending returns the number of blocks waiting to run.
func Pending() int {
	mu.Lock()
	defer mu.Unlock()
	return len(queue)
}

// ScheduledTotal returns the number of blocks ever scheduled.
func ScheduledTotal() int64 {
	return scheduled.Load()
}

// ExecutedTotal returns the number of blocks that have run.
func ExecutedTotal() int64 {
	return executed.Load()
}
