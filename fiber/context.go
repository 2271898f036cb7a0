package fiber

// execContext is the saved execution state of a fiber: a goroutine parked on
// an unbuffered rendezvous channel. Sending on the channel transfers control
// (and the switch payload) into the context; the sender then blocks on its own
// channel until some context switches back. At most one context per thread is
// unparked at any instant.
type execContext struct {
	transfer chan any
}

// newRootContext returns the context of a thread's main fiber. It has no
// goroutine of its own; its receive side runs on whatever goroutine drives
// the thread.
func newRootContext() *execContext {
	return &execContext{transfer: make(chan any)}
}

// derive allocates a context for f, primed so that the first switch into it
// enters the wrapper trampoline.
func derive(f *Fiber) *execContext {
	c := &execContext{transfer: make(chan any)}
	go c.run(f)
	return c
}

// run parks the context goroutine between activations. Each iteration is one
// arming of the context: the first switch-in enters the trampoline, and once
// the trampoline hands control away for the last time the goroutine parks
// here again, ready to be re-armed over the same slot. Closing the channel
// while parked retires the context.
func (c *execContext) run(f *Fiber) {
	for {
		data, ok := <-c.transfer
		if !ok {
			return
		}
		f.enter(data)
	}
}

// switchContext transfers control and payload from the running context to
// target, then blocks until control comes back. The returned value is the
// payload supplied by whichever context later switches here.
func switchContext(target, self *execContext, payload any) any {
	target.transfer <- payload
	return <-self.transfer
}

// handoff transfers control without waiting for a return switch. The ending
// side of a natural return uses it; its goroutine then parks in run.
func handoff(target *execContext, payload any) {
	target.transfer <- payload
}
