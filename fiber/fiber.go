// Package fiber provides resumable computations with explicit, cooperative
// control transfer. A fiber suspends itself with Yield and is continued with
// Resume; payloads travel both ways through the switch.
package fiber

// Status is the lifecycle state of a fiber.
type Status uint8

const (
	StatusStarted Status = iota
	StatusSuspended
	StatusRunning
	StatusEnded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusStarted:
		return "started"
	case StatusSuspended:
		return "suspended"
	case StatusRunning:
		return "running"
	case StatusEnded:
		return "ended"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entrypoint is a fiber body. It receives the fiber it runs on (for Yield)
// and the userdata supplied by the first Resume. Its return value is
// delivered to the nearest caller that has not itself ended.
type Entrypoint func(f *Fiber, data any) any

const (
	// MinStackSize is the smallest stack class Make accepts.
	MinStackSize = 16 * 1024

	// DefaultStackSize is used when Make is given a zero size.
	DefaultStackSize = 64 * 1024

	// maxCallerWalk bounds the natural-return caller walk.
	maxCallerWalk = 1 << 16
)

// Thread is the per-worker fiber state: the root fiber plus the fiber
// currently on CPU. A Thread must be driven from a single goroutine chain;
// within it exactly one fiber is Running at any instant.
type Thread struct {
	main    Fiber
	current *Fiber
}

// NewThread creates a thread whose root fiber represents the calling
// goroutine. Active never returns nil afterwards.
func NewThread() *Thread {
	t := &Thread{}
	t.main.description = "main"
	t.main.status = StatusRunning
	t.main.thread = t
	t.main.ctx = newRootContext()
	t.current = &t.main
	return t
}

// Active returns the fiber currently executing on this thread.
func (t *Thread) Active() *Fiber { return t.current }

// Main returns the thread's root fiber.
func (t *Thread) Main() *Fiber { return &t.main }

// ActiveData returns the userdata most recently exchanged through the current
// fiber, or nil once it has ended.
func (t *Thread) ActiveData() any {
	f := t.current
	if f.status == StatusEnded || f.status == StatusError {
		return nil
	}
	return f.userdata
}

// Fiber is a resumable computation. Its stack size is a declared capacity
// class: it selects the pool a fiber belongs to and validates release, while
// the runtime grows the physical stack on demand.
type Fiber struct {
	thread      *Thread
	caller      *Fiber
	ctx         *execContext
	entry       Entrypoint
	userdata    any
	status      Status
	stackSize   int
	description string
}

// Make creates a fiber primed to run entry on first Resume. A zero stackSize
// selects DefaultStackSize; sizes below MinStackSize are refused and Make
// returns nil.
func Make(name string, stackSize int, entry Entrypoint, data any) *Fiber {
	if stackSize == 0 {
		stackSize = DefaultStackSize
	}
	if stackSize < MinStackSize {
		return nil
	}
	f := &Fiber{
		description: name,
		entry:       entry,
		userdata:    data,
		status:      StatusStarted,
		stackSize:   stackSize,
	}
	f.ctx = derive(f)
	return f
}

// Description returns the fiber's debug label.
func (f *Fiber) Description() string { return f.description }

// SetDescription sets the fiber's debug label.
func (f *Fiber) SetDescription(s string) { f.description = s }

// Status returns the fiber's lifecycle state.
func (f *Fiber) Status() Status { return f.status }

// StackSize returns the fiber's declared stack class in bytes.
func (f *Fiber) StackSize() int { return f.stackSize }

// IsActive reports whether the fiber can still run or be resumed.
func (f *Fiber) IsActive() bool {
	return f != nil && f.status != StatusEnded && f.status != StatusError
}

// Resume transfers control into f, handing it payload. It returns the value
// f later yields, or f's final result if it runs to completion. Resuming an
// ended or errored fiber is a no-op returning nil, as is resuming the fiber
// that is already running.
func (t *Thread) Resume(f *Fiber, payload any) any {
	if f == nil || f.ctx == nil || !f.IsActive() {
		return nil
	}
	cur := t.current
	if f == cur || f.status == StatusRunning {
		return nil
	}

	f.thread = t
	f.caller = cur
	cur.status = StatusSuspended
	f.userdata = payload
	f.status = StatusRunning
	t.current = f

	return switchContext(f.ctx, cur.ctx, payload)
}

// Yield suspends f, handing payload back to its caller's Resume. It returns
// the payload supplied by the next Resume of f. Yielding from a thread's root
// fiber, or from a fiber that is not current, is a no-op returning nil.
func (f *Fiber) Yield(payload any) any {
	t := f.thread
	if t == nil || f != t.current {
		return nil
	}
	if f == &t.main || f.caller == nil {
		return nil
	}

	caller := f.caller
	caller.userdata = payload
	f.status = StatusSuspended
	caller.status = StatusRunning
	t.current = caller

	return switchContext(caller.ctx, f.ctx, payload)
}

// Reset re-arms a parked fiber with a new entrypoint and userdata, as if
// freshly made over the same stack. Only fibers that are not mid-flight
// (Started, Ended or Error) can be re-armed.
func (f *Fiber) Reset(entry Entrypoint, data any) bool {
	switch f.status {
	case StatusRunning, StatusSuspended:
		return false
	}
	f.entry = entry
	f.userdata = data
	f.caller = nil
	f.status = StatusStarted
	return true
}

// Delete retires a fiber that is not mid-flight, releasing its parked
// context. A fiber suspended inside its entrypoint cannot be retired here;
// its context is dropped with it when abandoned.
func (f *Fiber) Delete() {
	if f == nil || f.ctx == nil {
		return
	}
	if f.thread != nil && f == f.thread.current {
		return
	}
	switch f.status {
	case StatusStarted, StatusEnded, StatusError:
		close(f.ctx.transfer)
		f.ctx = nil
	}
}

// enter is the wrapper trampoline: the first switch into a derived context
// lands here with the payload of the arming Resume.
func (f *Fiber) enter(data any) {
	result := f.call(data)
	f.finish(result)
}

func (f *Fiber) call(data any) (result any) {
	defer func() {
		if r := recover(); r != nil {
			f.status = StatusError
			reportPanic(PanicInfo{Fiber: f, Value: r, Stack: captureStack()})
		}
	}()
	if f.entry == nil {
		return nil
	}
	return f.entry(f, data)
}

// finish hands the final payload to the nearest caller that has not itself
// ended, then parks this context. Ancestors that ran to completion while f
// was suspended are skipped; the thread's root fiber is the last resort.
func (f *Fiber) finish(result any) {
	if f.status != StatusError {
		f.status = StatusEnded
	}

	// Mutual resumes can leave a caller cycle with no live fiber on it; the
	// walk is bounded so that case lands on the root instead of spinning.
	t := f.thread
	target := f.caller
	for steps := 0; target != nil && (target.status == StatusEnded || target.status == StatusError); steps++ {
		if steps == maxCallerWalk {
			target = nil
			break
		}
		target = target.caller
	}
	if target == nil {
		target = &t.main
	}

	target.userdata = result
	target.status = StatusRunning
	t.current = target

	handoff(target.ctx, result)
}
