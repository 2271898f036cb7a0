package jobs

import (
	"sync/atomic"

	"github.com/zerotri/zero/fiber"
)

// timingSlack tolerates floating-point drift so a deadline fires on the tick
// it was aimed at.
const timingSlack = 1e-6

type waitCondition uint8

const (
	waitTimer waitCondition = iota
	waitCounterZero
	waitWordZero
)

// waiting gates a job on a timer deadline or a zero-observation.
type waiting struct {
	job     *Job
	cond    waitCondition
	endTime float64
	counter *Counter
	word    *atomic.Int64
}

// Worker is one thread's scheduler state: the fiber thread, the ready,
// yielded and waiting queues, the job currently on CPU, and the latest host
// time. A worker's queues are owned by that worker alone; only the pools and
// counters are shared across workers.
type Worker struct {
	thread  *fiber.Thread
	pools   *Pools
	ready   jobQueue
	yielded jobQueue
	waiting waitQueue
	current *Job
	latest  float64
}

// NewWorker creates a worker bound to the calling goroutine. pools may be
// nil, in which case only ad-hoc jobs can be created.
func NewWorker(pools *Pools) *Worker {
	return &Worker{thread: fiber.NewThread(), pools: pools}
}

// Thread returns the worker's fiber thread.
func (w *Worker) Thread() *fiber.Thread { return w.thread }

// Pools returns the pools this worker draws from, if any.
func (w *Worker) Pools() *Pools { return w.pools }

// Now returns the worker's latest notion of host time, in seconds.
func (w *Worker) Now() float64 { return w.latest }

// Current returns the job presently executing, or nil between jobs.
func (w *Worker) Current() *Job { return w.current }

func (w *Worker) wrap(fn Func) fiber.Entrypoint {
	return func(_ *fiber.Fiber, data any) any { return fn(w, data) }
}

// Create makes an ad-hoc job with its own fiber (not drawn from a pool) and
// pushes it onto the ready queue. The fiber uses the small stack class. A nil
// return means fiber creation failed.
func (w *Worker) Create(fn Func, counter *Counter) *Job {
	f := fiber.Make("", fiber.DefaultStackSize, w.wrap(fn), nil)
	if f == nil {
		return nil
	}
	j := &Job{fiber: f, slot: -1}
	w.attach(j, counter)
	w.ready.push(j)
	return j
}

// ClaimSmall draws a job from the small pool, arms it with fn and data, and
// pushes it onto the ready queue. It returns nil when the pool is exhausted
// or the worker has no pools.
func (w *Worker) ClaimSmall(fn Func, data any, counter *Counter) *Job {
	if w.pools == nil {
		return nil
	}
	return w.claimFrom(w.pools.small, fn, data, counter)
}

// ClaimLarge draws a job from the large pool. See ClaimSmall.
func (w *Worker) ClaimLarge(fn Func, data any, counter *Counter) *Job {
	if w.pools == nil {
		return nil
	}
	return w.claimFrom(w.pools.large, fn, data, counter)
}

func (w *Worker) claimFrom(p *Pool, fn Func, data any, counter *Counter) *Job {
	// Tick resumes jobs with a nil payload, so the claim data is bound into
	// the entrypoint instead of travelling through the first Resume.
	entry := func(_ *fiber.Fiber, _ any) any { return fn(w, data) }
	j := p.claim(entry, data)
	if j == nil {
		return nil
	}
	w.attach(j, counter)
	w.ready.push(j)
	return j
}

func (w *Worker) attach(j *Job, counter *Counter) {
	if counter == nil {
		return
	}
	j.counter = counter
	counter.v.Add(1)
}

// Release returns an abandoned pooled job to its pool. Jobs that run to
// completion are returned automatically by Tick.
func (w *Worker) Release(j *Job) error {
	if w.pools == nil {
		return ErrNotPooled
	}
	return w.pools.Release(j)
}

// Tick drives the scheduler one step. now is the host's monotonic time in
// seconds. The tick drains the ready queue and one-pass-scans the waiting
// queue into a running batch, resumes each batch job once, and repeats until
// no batch can be built; jobs that yielded during the tick are then moved
// back to ready so they run no earlier than the next tick.
func (w *Worker) Tick(now float64) {
	w.latest = now

	var running []*Job
	for {
		running = running[:0]

		for {
			j, ok := w.ready.pop()
			if !ok {
				break
			}
			running = append(running, j)
		}

		// One pass over the waiting queue, bounded by its length at entry;
		// records pushed back during the pass are not re-examined.
		for n := w.waiting.len(); n > 0; n-- {
			rec, _ := w.waiting.pop()
			if w.satisfied(&rec, now) {
				running = append(running, rec.job)
			} else {
				w.waiting.push(rec)
			}
		}

		if len(running) == 0 {
			break
		}

		for _, j := range running {
			w.run(j)
		}
	}

	for {
		j, ok := w.yielded.pop()
		if !ok {
			break
		}
		w.ready.push(j)
	}
}

func (w *Worker) satisfied(rec *waiting, now float64) bool {
	switch rec.cond {
	case waitTimer:
		return now >= rec.endTime-timingSlack
	case waitCounterZero:
		return rec.counter == nil || rec.counter.Load() == 0
	case waitWordZero:
		return rec.word == nil || rec.word.Load() == 0
	default:
		return false
	}
}

// run resumes one job. When the fiber comes back no longer active, the job's
// counter is decremented (once) and a pooled slot goes back to its free
// table.
func (w *Worker) run(j *Job) {
	w.current = j
	w.thread.Resume(j.fiber, nil)
	w.current = nil

	if j.fiber.IsActive() {
		return
	}
	if j.counter != nil && !j.counted {
		j.counted = true
		j.counter.v.Add(-1)
	}
	if j.pool != nil {
		j.pool.release(j)
	}
}

// Yield parks the running job until the next tick.
func (w *Worker) Yield() {
	j := w.current
	if j == nil {
		return
	}
	w.yielded.push(j)
	j.fiber.Yield(nil)
}

// Wait parks the running job for at least seconds on the host time axis.
func (w *Worker) Wait(seconds float64) {
	j := w.current
	if j == nil {
		return
	}
	w.waiting.push(waiting{job: j, cond: waitTimer, endTime: w.latest + seconds})
	j.fiber.Yield(nil)
}

// WaitOnCounter parks the running job until the counter reads zero. A nil
// counter is satisfied at the next pass over the waiting queue, which comes
// within the same tick.
func (w *Worker) WaitOnCounter(c *Counter) {
	j := w.current
	if j == nil {
		return
	}
	w.waiting.push(waiting{job: j, cond: waitCounterZero, counter: c})
	j.fiber.Yield(nil)
}

// WaitOnZero parks the running job until the word at addr reads zero. A nil
// addr is satisfied at the next pass over the waiting queue, which comes
// within the same tick.
func (w *Worker) WaitOnZero(addr *atomic.Int64) {
	j := w.current
	if j == nil {
		return
	}
	w.waiting.push(waiting{job: j, cond: waitWordZero, word: addr})
	j.fiber.Yield(nil)
}
