// internal/relay/bank_test.go
package relay

import (
	"errors"
	"testing"

	"github.com/tamzrod/rf-relay-controller/internal/layout"
)

// ---- fakes ----

// event records one side effect so ordering is checkable.
type event struct {
	kind string // "output" or "persist"
	slot int
	on   bool
}

type fakeStore struct {
	bytes      map[uint16]bool
	failWrites bool
	log        *[]event
}

func (s *fakeStore) ReadBool(addr uint16) (bool, error) {
	return s.bytes[addr], nil
}

func (s *fakeStore) WriteBool(addr uint16, v bool) error {
	if s.failWrites {
		return errors.New("bus failure")
	}
	s.bytes[addr] = v
	if s.log != nil {
		*s.log = append(*s.log, event{kind: "persist", slot: int(addr - layout.StateBase), on: v})
	}
	return nil
}

type fakeOutput struct {
	pins [layout.SlotCount]bool
	log  *[]event
}

func (o *fakeOutput) Set(slot int, on bool) error {
	o.pins[slot] = on
	if o.log != nil {
		*o.log = append(*o.log, event{kind: "output", slot: slot, on: on})
	}
	return nil
}

func newFixture() (*fakeStore, *fakeOutput, *[]event) {
	log := &[]event{}
	return &fakeStore{bytes: map[uint16]bool{}, log: log}, &fakeOutput{log: log}, log
}

// ---- tests ----

func TestBank_RestoreDrivesPersistedStates(t *testing.T) {
	st, out, _ := newFixture()
	st.bytes[layout.StateAddr(0)] = true
	st.bytes[layout.StateAddr(2)] = true

	b, err := Load(st, out)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if err := b.Restore(); err != nil {
		t.Fatalf("Restore err=%v", err)
	}

	want := [layout.SlotCount]bool{true, false, true, false}
	if out.pins != want {
		t.Fatalf("pins=%v want %v", out.pins, want)
	}
}

func TestBank_ToggleFlipsDrivesAndPersists(t *testing.T) {
	st, out, _ := newFixture()

	b, _ := Load(st, out)

	if err := b.Toggle(1); err != nil {
		t.Fatalf("Toggle err=%v", err)
	}
	if !b.State(1) || !out.pins[1] || !st.bytes[layout.StateAddr(1)] {
		t.Fatalf("state=%v pin=%v stored=%v want all true",
			b.State(1), out.pins[1], st.bytes[layout.StateAddr(1)])
	}

	if err := b.Toggle(1); err != nil {
		t.Fatalf("Toggle err=%v", err)
	}
	if b.State(1) || out.pins[1] || st.bytes[layout.StateAddr(1)] {
		t.Fatalf("state=%v pin=%v stored=%v want all false",
			b.State(1), out.pins[1], st.bytes[layout.StateAddr(1)])
	}
}

func TestBank_ToggleDrivesOutputBeforePersisting(t *testing.T) {
	st, out, log := newFixture()

	b, _ := Load(st, out)
	if err := b.Toggle(3); err != nil {
		t.Fatalf("Toggle err=%v", err)
	}

	if len(*log) != 2 {
		t.Fatalf("events=%d want 2", len(*log))
	}
	if (*log)[0].kind != "output" || (*log)[1].kind != "persist" {
		t.Fatalf("order=%v want output before persist", *log)
	}
}

func TestBank_TogglePersistFailureKeepsFlip(t *testing.T) {
	st, out, _ := newFixture()
	st.failWrites = true

	b, _ := Load(st, out)

	if err := b.Toggle(0); err == nil {
		t.Fatalf("Toggle succeeded, want error")
	}
	// The contacts moved and memory agrees; only the store is stale.
	if !b.State(0) || !out.pins[0] {
		t.Fatalf("state=%v pin=%v want both true", b.State(0), out.pins[0])
	}
}

func TestBank_ToggleRejectsBadSlot(t *testing.T) {
	st, out, _ := newFixture()
	b, _ := Load(st, out)

	if err := b.Toggle(layout.SlotCount); err == nil {
		t.Fatalf("Toggle succeeded, want error")
	}
}
