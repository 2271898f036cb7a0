// Package jobs schedules lightweight cooperative jobs over fibers. Each
// worker owns its queues and is driven by the host through Tick; jobs suspend
// themselves with Yield, Wait and the counter waits, and are multiplexed onto
// pre-allocated fiber pools claimed and released lock-free.
package jobs

import (
	"sync/atomic"

	"github.com/zerotri/zero/fiber"
)

// Func is a job body. It receives the worker the job runs on (for Yield and
// the wait primitives) and the userdata supplied at creation.
type Func func(w *Worker, data any) any

// Counter counts outstanding jobs in a group. It is incremented when a job
// is created against it and decremented exactly once when that job ends; the
// group is complete when the counter reads zero. A counter may be shared by
// jobs on different workers.
type Counter struct {
	v atomic.Int64
}

// NewCounter returns a counter initialised to zero.
func NewCounter() *Counter { return &Counter{} }

// Load returns the number of outstanding jobs in the group.
func (c *Counter) Load() int64 { return c.v.Load() }

// Job is a scheduler-managed fiber with an optional completion counter.
type Job struct {
	fiber   *fiber.Fiber
	counter *Counter
	pool    *Pool // nil for ad-hoc jobs
	slot    int
	counted bool
}

// Fiber returns the job's underlying fiber.
func (j *Job) Fiber() *fiber.Fiber { return j.fiber }

// Counter returns the job's status counter, if any.
func (j *Job) Counter() *Counter { return j.counter }
