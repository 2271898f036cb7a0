package fiber

import "testing"

func TestResumeYieldLadder(t *testing.T) {
	th := NewThread()

	var seen []any
	f := Make("ladder", 64*1024, func(f *Fiber, data any) any {
		seen = append(seen, data)
		seen = append(seen, f.Yield(1))
		seen = append(seen, f.Yield(2))
		seen = append(seen, f.Yield(3))
		return 1
	}, nil)
	if f == nil {
		t.Fatal("expected fiber")
	}

	want := []any{1, 2, 3, 1}
	for i, in := range []any{1, 2, 3, 4} {
		if got := th.Resume(f, in); got != want[i] {
			t.Fatalf("resume %d: expected %v, got %v", i, want[i], got)
		}
	}

	if f.IsActive() {
		t.Fatal("expected fiber to be ended")
	}
	if got := th.Resume(f, 5); got != nil {
		t.Fatalf("expected nil from resuming ended fiber, got %v", got)
	}

	for i, in := range []any{1, 2, 3, 4} {
		if seen[i] != in {
			t.Fatalf("entrypoint step %d: expected %v, got %v", i, in, seen[i])
		}
	}
}

func TestMakeRefusesTinyStacks(t *testing.T) {
	if f := Make("tiny", 4*1024, nil, nil); f != nil {
		t.Fatal("expected nil for stack below minimum")
	}
	f := Make("default", 0, nil, nil)
	if f == nil {
		t.Fatal("expected fiber with default stack class")
	}
	if f.StackSize() != DefaultStackSize {
		t.Fatalf("expected stack size %d, got %d", DefaultStackSize, f.StackSize())
	}
	f.Delete()
}

func TestYieldFromRootIsNoOp(t *testing.T) {
	th := NewThread()
	if got := th.Main().Yield(1); got != nil {
		t.Fatalf("expected nil yielding from root, got %v", got)
	}
	if th.Active() != th.Main() {
		t.Fatal("expected root to stay current")
	}
}

func TestActiveData(t *testing.T) {
	th := NewThread()

	var inside any
	f := Make("data", 0, func(f *Fiber, data any) any {
		inside = th.ActiveData()
		return "done"
	}, nil)

	th.Resume(f, "payload")
	if inside != "payload" {
		t.Fatalf("expected payload inside fiber, got %v", inside)
	}
	if got := th.ActiveData(); got != "done" {
		t.Fatalf("expected final payload at root, got %v", got)
	}
}

func TestNestedResumeFinalPayloads(t *testing.T) {
	th := NewThread()

	b := Make("b", 0, func(f *Fiber, data any) any {
		return "b-final"
	}, nil)
	a := Make("a", 0, func(f *Fiber, data any) any {
		got := th.Resume(b, nil)
		f.Yield(got)
		return "a-final"
	}, nil)

	if got := th.Resume(a, nil); got != "b-final" {
		t.Fatalf("expected b-final first, got %v", got)
	}
	if got := th.Resume(a, nil); got != "a-final" {
		t.Fatalf("expected a-final second, got %v", got)
	}
	if a.IsActive() || b.IsActive() {
		t.Fatalf("expected both ended, got a=%s b=%s", a.Status(), b.Status())
	}
}

func TestNaturalReturnSkipsEndedAncestors(t *testing.T) {
	th := NewThread()

	var a, b *Fiber
	var fromB any
	b = Make("b", 0, func(f *Fiber, data any) any {
		fromB = th.Resume(a, "into-a")
		return "b-final"
	}, nil)
	a = Make("a", 0, func(f *Fiber, data any) any {
		// First activation comes from the root, the second from b. The
		// return below leaves b as the only — and already ended — caller
		// on a's chain, so b's own return must fall through to the root.
		got := th.Resume(b, "into-b")
		if got != "into-a" {
			return got
		}
		return "a-final"
	}, nil)

	got := th.Resume(a, nil)
	if got != "b-final" {
		t.Fatalf("expected b-final at root, got %v", got)
	}
	if fromB != "a-final" {
		t.Fatalf("expected a-final inside b, got %v", fromB)
	}
	if a.Status() != StatusEnded || b.Status() != StatusEnded {
		t.Fatalf("expected both ended, got a=%s b=%s", a.Status(), b.Status())
	}
	if th.Active() != th.Main() {
		t.Fatal("expected root to be current")
	}
}

func TestPanicMarksFiberError(t *testing.T) {
	th := NewThread()

	var info PanicInfo
	fired := false
	SetPanicHandler(func(pi PanicInfo) {
		fired = true
		info = pi
	})
	defer SetPanicHandler(nil)

	f := Make("boom", 0, func(f *Fiber, data any) any {
		panic("kaput")
	}, nil)

	if got := th.Resume(f, nil); got != nil {
		t.Fatalf("expected nil result from panicking fiber, got %v", got)
	}
	if f.Status() != StatusError {
		t.Fatalf("expected error status, got %s", f.Status())
	}
	if f.IsActive() {
		t.Fatal("expected errored fiber to be inactive")
	}
	if !fired {
		t.Fatal("expected panic handler to fire")
	}
	if info.Value != "kaput" || info.Fiber != f {
		t.Fatalf("unexpected panic info: %+v", info)
	}
	if len(info.Stack) == 0 {
		t.Fatal("expected stack capture")
	}
	if got := th.Resume(f, nil); got != nil {
		t.Fatalf("expected nil from resuming errored fiber, got %v", got)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusStarted:   "started",
		StatusSuspended: "suspended",
		StatusRunning:   "running",
		StatusEnded:     "ended",
		StatusError:     "error",
		Status(99):      "unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
