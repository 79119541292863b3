// pkg/chunk/task.go

package chunk

import (
	"sync"
	"time"

	"FlipIO/pkg/utils"
)

// How long a join waits before complaining to the log.
const slowWarning = time.Second * 10

// task is one in-flight background operation with join semantics. At most
// one task targets a buffer at a time; whoever wants the buffer back joins
// the task first, so the arena never has two owners.
type task struct {
	sync.Mutex
	cond *utils.Cond
	op   string
	done bool
	err  error
}

// spawn runs fn on its own goroutine and returns the handle to join it.
func spawn(op string, fn func() error) *task {
	t := &task{op: op}
	t.cond = utils.NewCond(t)
	go func() {
		err := fn()
		t.Lock()
		t.done = true
		t.err = err
		t.Unlock()
		t.cond.Broadcast()
	}()
	return t
}

// Join blocks until the task has finished and returns its error. Joining
// again just returns the same result. The wait is unbounded; it warns
// once when the disk is being this slow.
func (t *task) Join() error {
	t.Lock()
	defer t.Unlock()
	warned := false
	for !t.done {
		if t.cond.WaitWithTimeout(slowWarning) && !t.done && !warned {
			logger.Warnf("%s is taking more than %s", t.op, slowWarning)
			warned = true
		}
	}
	return t.err
}
