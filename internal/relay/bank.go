// internal/relay/bank.go
package relay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/rf-relay-controller/internal/layout"
)

// Store is the slice of the persistent store the bank needs.
type Store interface {
	ReadBool(addr uint16) (bool, error)
	WriteBool(addr uint16, v bool) error
}

// Output drives the physical relay contacts.
type Output interface {
	Set(slot int, on bool) error
}

// Bank is the fixed table of relay states, one per slot. In-memory state is
// the source of truth; the physical outputs and the store mirror it.
type Bank struct {
	store  Store
	out    Output
	states [layout.SlotCount]bool
}

// Load reads all slot states from the store. Unreadable slots come back as
// off; the returned error is diagnostic only and the bank is usable
// regardless.
func Load(store Store, out Output) (*Bank, error) {
	b := &Bank{store: store, out: out}

	var errs []string
	for slot := 0; slot < layout.SlotCount; slot++ {
		on, err := store.ReadBool(layout.StateAddr(slot))
		if err != nil {
			errs = append(errs, fmt.Sprintf("slot %d: %v", slot, err))
		}
		b.states[slot] = on
	}

	if len(errs) > 0 {
		return b, errors.New("relay: " + strings.Join(errs, " | "))
	}
	return b, nil
}

// Restore drives every physical output to its loaded state, in slot order.
func (b *Bank) Restore() error {
	var errs []string
	for slot := 0; slot < layout.SlotCount; slot++ {
		if err := b.out.Set(slot, b.states[slot]); err != nil {
			errs = append(errs, fmt.Sprintf("slot %d: %v", slot, err))
		}
	}
	if len(errs) > 0 {
		return errors.New("relay: restore: " + strings.Join(errs, " | "))
	}
	return nil
}

// State returns the in-memory state at slot; out-of-range slots read as off.
func (b *Bank) State(slot int) bool {
	if !layout.ValidSlot(slot) {
		return false
	}
	return b.states[slot]
}

// Toggle flips slot: memory first, then the physical output, then the store.
// Hardware before store is a contract: a power loss between the two leaves
// the stored state one toggle behind the contacts, never the other way
// around. Output and persist failures are reported but the flip stands.
func (b *Bank) Toggle(slot int) error {
	if !layout.ValidSlot(slot) {
		return fmt.Errorf("relay: slot %d out of range", slot)
	}

	b.states[slot] = !b.states[slot]

	var errs []string
	if err := b.out.Set(slot, b.states[slot]); err != nil {
		errs = append(errs, fmt.Sprintf("output: %v", err))
	}
	if err := b.store.WriteBool(layout.StateAddr(slot), b.states[slot]); err != nil {
		errs = append(errs, fmt.Sprintf("persist: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("relay: toggle slot %d: %s", slot, strings.Join(errs, " | "))
	}
	return nil
}
