package fiber

import "runtime/debug"

func captureStack() []byte {
	return debug.Stack()
}
