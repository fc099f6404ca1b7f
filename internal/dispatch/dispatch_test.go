// internal/dispatch/dispatch_test.go
package dispatch

import (
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/rf-relay-controller/internal/learn"
	"github.com/tamzrod/rf-relay-controller/internal/rf"
)

// ---- fakes ----

type fakeReceiver struct {
	code    rf.Code
	latched bool
}

func (r *fakeReceiver) inject(code rf.Code) {
	r.code = code
	r.latched = true
}

func (r *fakeReceiver) Available() bool { return r.latched }

func (r *fakeReceiver) ReceivedCode() rf.Code {
	if !r.latched {
		return rf.None
	}
	return r.code
}

func (r *fakeReceiver) Reset() {
	r.latched = false
	r.code = rf.None
}

type fakeButton struct {
	down bool
	err  error
}

func (b *fakeButton) Pressed() (bool, error) { return b.down, b.err }

type fakeRegistry struct {
	codes    map[rf.Code]int
	bindings []rf.Code // SetSlot log, for learning-path tests
}

func (r *fakeRegistry) Lookup(code rf.Code) (int, bool) {
	slot, ok := r.codes[code]
	return slot, ok
}

func (r *fakeRegistry) SetSlot(slot int, code rf.Code) error {
	r.bindings = append(r.bindings, code)
	return nil
}

type fakeRelays struct {
	toggles []int
	err     error
}

func (b *fakeRelays) Toggle(slot int) error {
	if b.err != nil {
		return b.err
	}
	b.toggles = append(b.toggles, slot)
	return nil
}

// ---- fixture ----

type fixture struct {
	d      *Dispatcher
	recv   *fakeReceiver
	button *fakeButton
	reg    *fakeRegistry
	bank   *fakeRelays
	clock  time.Time
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		recv:   &fakeReceiver{},
		button: &fakeButton{},
		reg:    &fakeRegistry{codes: map[rf.Code]int{}},
		bank:   &fakeRelays{},
		clock:  t0,
	}

	session := learn.NewSession(learn.Config{
		Timeout: 300 * time.Second,
		Pause:   2 * time.Second,
	}, f.reg)

	d, err := New(Config{
		PollInterval:   5 * time.Millisecond,
		ButtonDebounce: 50 * time.Millisecond,
		QuietInterval:  time.Second,
	}, f.recv, f.button, f.reg, f.bank, session)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	d.now = func() time.Time { return f.clock }
	f.d = d
	return f
}

func (f *fixture) advance(dt time.Duration) { f.clock = f.clock.Add(dt) }

// ---- run-time dispatch ----

func TestDispatch_MatchedCodeToggles(t *testing.T) {
	f := newFixture(t)
	f.reg.codes[0xAA] = 2

	f.recv.inject(0xAA)
	f.d.PollOnce()

	if len(f.bank.toggles) != 1 || f.bank.toggles[0] != 2 {
		t.Fatalf("toggles=%v want [2]", f.bank.toggles)
	}
	if f.recv.latched {
		t.Fatalf("receiver still latched after dispatch")
	}
}

func TestDispatch_UnknownCodeDoesNotToggle(t *testing.T) {
	f := newFixture(t)

	f.recv.inject(0xAA)
	f.d.PollOnce()

	if len(f.bank.toggles) != 0 {
		t.Fatalf("toggles=%v want none", f.bank.toggles)
	}
}

func TestDispatch_ZeroCodeNeverDispatched(t *testing.T) {
	f := newFixture(t)
	f.reg.codes[rf.None] = 0 // even a corrupt registry entry must not fire

	f.recv.inject(rf.None)
	f.d.PollOnce()

	if len(f.bank.toggles) != 0 {
		t.Fatalf("toggles=%v want none", f.bank.toggles)
	}
	if f.recv.latched {
		t.Fatalf("receiver still latched")
	}
}

func TestDispatch_RepeatWithinQuietIntervalTogglesOnce(t *testing.T) {
	f := newFixture(t)
	f.reg.codes[0xAA] = 0

	f.recv.inject(0xAA)
	f.d.PollOnce()

	f.advance(400 * time.Millisecond)
	f.recv.inject(0xAA)
	f.d.PollOnce()

	if len(f.bank.toggles) != 1 {
		t.Fatalf("toggles=%v want exactly 1", f.bank.toggles)
	}

	// After the quiet interval the same code is a fresh press.
	f.advance(1100 * time.Millisecond)
	f.recv.inject(0xAA)
	f.d.PollOnce()

	if len(f.bank.toggles) != 2 {
		t.Fatalf("toggles=%v want 2", f.bank.toggles)
	}
}

func TestDispatch_DifferentCodePassesImmediately(t *testing.T) {
	f := newFixture(t)
	f.reg.codes[0xAA] = 0
	f.reg.codes[0xBB] = 1

	f.recv.inject(0xAA)
	f.d.PollOnce()
	f.recv.inject(0xBB)
	f.d.PollOnce()

	if len(f.bank.toggles) != 2 {
		t.Fatalf("toggles=%v want 2", f.bank.toggles)
	}
}

func TestDispatch_UnknownCodeStillRateLimits(t *testing.T) {
	f := newFixture(t)
	f.reg.codes[0xAA] = 0

	// Unknown code is accepted (and misses), then the known one fires.
	f.recv.inject(0xCC)
	f.d.PollOnce()
	f.recv.inject(0xCC)
	f.d.PollOnce() // repeat inside quiet interval, dropped

	f.recv.inject(0xAA)
	f.d.PollOnce()

	if len(f.bank.toggles) != 1 {
		t.Fatalf("toggles=%v want 1", f.bank.toggles)
	}
}

func TestDispatch_ToggleFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.reg.codes[0xAA] = 0
	f.bank.err = errors.New("bus failure")

	f.recv.inject(0xAA)
	f.d.PollOnce()

	// Loop keeps running; next code after the quiet interval dispatches.
	f.bank.err = nil
	f.advance(2 * time.Second)
	f.recv.inject(0xAA)
	f.d.PollOnce()

	if len(f.bank.toggles) != 1 {
		t.Fatalf("toggles=%v want 1", f.bank.toggles)
	}
}

// ---- button / mode entry ----

func pressButton(f *fixture) {
	f.button.down = true
	f.d.PollOnce()
}

func TestDispatch_ButtonPressEntersLearning(t *testing.T) {
	f := newFixture(t)

	f.advance(100 * time.Millisecond) // past the initial debounce window
	pressButton(f)

	if !f.d.session.Active() {
		t.Fatalf("session not active after press")
	}
}

func TestDispatch_ButtonChatterDebounced(t *testing.T) {
	f := newFixture(t)

	f.advance(100 * time.Millisecond)
	pressButton(f)
	f.button.down = false
	f.advance(10 * time.Millisecond) // release bounce inside the window
	f.d.PollOnce()

	// The bounce was not accepted as a release.
	if f.d.buttonDown != true {
		t.Fatalf("debounce accepted a %v transition inside the window", f.d.buttonDown)
	}
}

func TestDispatch_ButtonErrorSkipsCycle(t *testing.T) {
	f := newFixture(t)
	f.button.err = errors.New("bus failure")

	f.advance(100 * time.Millisecond)
	pressButton(f)

	if f.d.session.Active() {
		t.Fatalf("session started despite button read failure")
	}
}

// ---- learning-mode exclusivity ----

func enterLearning(t *testing.T, f *fixture) {
	t.Helper()
	f.advance(100 * time.Millisecond)
	pressButton(f)
	if !f.d.session.Active() {
		t.Fatalf("failed to enter learning mode")
	}
}

func TestDispatch_NoRelayDispatchWhileLearning(t *testing.T) {
	f := newFixture(t)
	f.reg.codes[0xAA] = 0
	enterLearning(t, f)

	f.recv.inject(0xAA)
	f.d.PollOnce()

	if len(f.bank.toggles) != 0 {
		t.Fatalf("toggles=%v want none while learning", f.bank.toggles)
	}
	if len(f.reg.bindings) != 1 || f.reg.bindings[0] != 0xAA {
		t.Fatalf("bindings=%v want [0xAA]", f.reg.bindings)
	}
}

func TestDispatch_FullLearningSessionThenRuntime(t *testing.T) {
	f := newFixture(t)
	enterLearning(t, f)

	for _, code := range []rf.Code{0x10, 0x20, 0x30, 0x40} {
		f.recv.inject(code)
		f.d.PollOnce()
		f.advance(3 * time.Second) // past the settle pause
	}

	if f.d.session.State() != learn.Complete {
		t.Fatalf("state=%v want complete", f.d.session.State())
	}
	if len(f.reg.bindings) != 4 {
		t.Fatalf("bindings=%v want 4", f.reg.bindings)
	}

	// Back in run-time mode: the learned code dispatches.
	f.reg.codes[0x10] = 0
	f.recv.inject(0x10)
	f.d.PollOnce()

	if len(f.bank.toggles) != 1 {
		t.Fatalf("toggles=%v want 1 after session end", f.bank.toggles)
	}
}

func TestDispatch_TimeoutDropsLatchedCode(t *testing.T) {
	f := newFixture(t)
	f.reg.codes[0xAA] = 0
	enterLearning(t, f)

	// A code arrives right as the window expires; the timeout cycle must not
	// leak it into run-time dispatch.
	f.advance(301 * time.Second)
	f.recv.inject(0xAA)
	f.d.PollOnce()

	if f.d.session.State() != learn.TimedOut {
		t.Fatalf("state=%v want timed-out", f.d.session.State())
	}
	if f.recv.latched {
		t.Fatalf("stale code left latched after timeout")
	}
	if len(f.bank.toggles) != 0 {
		t.Fatalf("toggles=%v want none", f.bank.toggles)
	}
}
