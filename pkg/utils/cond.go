// pkg/utils/cond.go

package utils

import (
	"sync"
	"time"
)

// Cond is a sync.Cond whose waits can carry a timeout. The channel keeps
// at most one pending signal, so a Signal fired while nobody waits is
// picked up by the next waiter instead of being lost.
type Cond struct {
	L      sync.Locker
	notify chan struct{}
}

// NewCond creates a condition variable guarded by lock.
func NewCond(lock sync.Locker) *Cond {
	return &Cond{L: lock, notify: make(chan struct{}, 1)}
}

// Signal wakes up one waiter, if there is any.
func (c *Cond) Signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Broadcast wakes up every goroutine currently waiting.
func (c *Cond) Broadcast() {
	for {
		select {
		case c.notify <- struct{}{}:
		default:
			return
		}
	}
}

// Wait blocks until Signal or Broadcast is called. The lock must be held.
func (c *Cond) Wait() {
	c.L.Unlock()
	defer c.L.Lock()
	<-c.notify
}

var timerPool = sync.Pool{
	New: func() interface{} {
		return time.NewTimer(time.Second)
	},
}

// WaitWithTimeout blocks like Wait but gives up after d, reporting
// whether it timed out. Callers should re-check their condition either
// way; a wakeup may be spurious.
func (c *Cond) WaitWithTimeout(d time.Duration) bool {
	c.L.Unlock()
	defer c.L.Lock()
	t := timerPool.Get().(*time.Timer)
	t.Reset(d)
	defer func() {
		t.Stop()
		timerPool.Put(t)
	}()
	select {
	case <-c.notify:
		return false
	case <-t.C:
		return true
	}
}
