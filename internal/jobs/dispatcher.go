package jobs

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Dispatcher runs fire-and-forget tasks. A task outlives the request or poll
// that started it and a panic inside it is logged, never propagated.
type Dispatcher struct {
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Detach starts task in its own goroutine on a context that ignores the
// caller's cancellation but keeps its values.
func (d *Dispatcher) Detach(ctx context.Context, name string, task func(ctx context.Context)) {
	taskID := uuid.NewString()
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	d.inFlight.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.inFlight.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("❌ Task %s (%s) panicked: %v\n%s", name, taskID, r, debug.Stack())
			}
		}()

		log.Debugf("▶️  Task %s (%s) started", name, taskID)
		task(detached)
	}()
}

// Wait blocks until every detached task has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// InFlight is the number of tasks still running.
func (d *Dispatcher) InFlight() int64 {
	return d.inFlight.Load()
}
