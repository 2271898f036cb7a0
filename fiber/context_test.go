package fiber

import "testing"

func TestFirstSwitchEntersTrampoline(t *testing.T) {
	th := NewThread()

	ran := false
	f := Make("tramp", 0, func(f *Fiber, data any) any {
		ran = true
		return data
	}, nil)

	if got := th.Resume(f, "payload"); got != "payload" {
		t.Fatalf("expected payload back, got %v", got)
	}
	if !ran {
		t.Fatal("expected entrypoint to run")
	}
}

func TestContextReuseAfterReset(t *testing.T) {
	th := NewThread()

	f := Make("reuse", 0, func(f *Fiber, data any) any {
		return "first"
	}, nil)
	if got := th.Resume(f, nil); got != "first" {
		t.Fatalf("expected first, got %v", got)
	}

	if !f.Reset(func(f *Fiber, data any) any { return data }, nil) {
		t.Fatal("expected reset of ended fiber")
	}
	if f.Status() != StatusStarted {
		t.Fatalf("expected started after reset, got %s", f.Status())
	}
	if got := th.Resume(f, "second"); got != "second" {
		t.Fatalf("expected second, got %v", got)
	}
}

func TestResetRefusesMidFlight(t *testing.T) {
	th := NewThread()

	f := Make("midflight", 0, func(f *Fiber, data any) any {
		f.Yield(nil)
		return nil
	}, nil)
	th.Resume(f, nil)

	if f.Status() != StatusSuspended {
		t.Fatalf("expected suspended, got %s", f.Status())
	}
	if f.Reset(nil, nil) {
		t.Fatal("expected reset of suspended fiber to be refused")
	}
	th.Resume(f, nil)
}

func TestDeleteParkedFiber(t *testing.T) {
	f := Make("parked", 0, func(f *Fiber, data any) any { return nil }, nil)
	f.Delete()
	f.Delete() // second delete is a no-op
}
