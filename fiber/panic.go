package fiber

import "sync/atomic"

// PanicInfo contains details about a panic recovered from a fiber entrypoint.
type PanicInfo struct {
	Fiber *Fiber
	Value any
	Stack []byte
}

var panicHandler atomic.Value // func(PanicInfo)

// SetPanicHandler installs a process-wide handler invoked whenever a fiber
// entrypoint panics. The failing fiber is marked StatusError and control
// returns to its caller chain as on a natural return; the handler runs on the
// failing fiber's context before that transfer and must not panic.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

func reportPanic(info PanicInfo) {
	if v := panicHandler.Load(); v != nil {
		if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
			fn(info)
		}
	}
}
