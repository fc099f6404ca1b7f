// internal/registry/registry.go
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/rf-relay-controller/internal/layout"
	"github.com/tamzrod/rf-relay-controller/internal/rf"
)

// Store is the slice of the persistent store the registry needs.
type Store interface {
	ReadWord(addr uint16) (uint32, error)
	WriteWord(addr uint16, v uint32) error
}

// Registry is the fixed table of learned codes, one per relay slot.
// In-memory state is the source of truth; the store mirrors it.
type Registry struct {
	store Store
	codes [layout.SlotCount]rf.Code
}

// Load reads all slots from the store. Unreadable slots come back as
// rf.None (they simply match nothing); the returned error is diagnostic
// only and the registry is usable regardless.
func Load(store Store) (*Registry, error) {
	r := &Registry{store: store}

	var errs []string
	for slot := 0; slot < layout.SlotCount; slot++ {
		v, err := store.ReadWord(layout.CodeAddr(slot))
		if err != nil {
			errs = append(errs, fmt.Sprintf("slot %d: %v", slot, err))
		}
		r.codes[slot] = rf.Code(v)
	}

	if len(errs) > 0 {
		return r, errors.New("registry: " + strings.Join(errs, " | "))
	}
	return r, nil
}

// Lookup returns the lowest-indexed slot whose learned code equals code.
// rf.None never matches: it is the reserved "no decode" value.
func (r *Registry) Lookup(code rf.Code) (int, bool) {
	if code == rf.None {
		return 0, false
	}
	for slot := 0; slot < layout.SlotCount; slot++ {
		if r.codes[slot] == code {
			return slot, true
		}
	}
	return 0, false
}

// Code returns the learned code at slot, or rf.None if slot is out of range.
func (r *Registry) Code(slot int) rf.Code {
	if !layout.ValidSlot(slot) {
		return rf.None
	}
	return r.codes[slot]
}

// SetSlot binds code to slot in memory and persists it. On a persist failure
// the in-memory binding stands: the store is stale until the next successful
// write, which is preferable to losing a capture the operator just made.
func (r *Registry) SetSlot(slot int, code rf.Code) error {
	if !layout.ValidSlot(slot) {
		return fmt.Errorf("registry: slot %d out of range", slot)
	}
	if code == rf.None {
		return errors.New("registry: code 0 is reserved")
	}

	r.codes[slot] = code
	if err := r.store.WriteWord(layout.CodeAddr(slot), uint32(code)); err != nil {
		return fmt.Errorf("registry: persist slot %d: %w", slot, err)
	}
	return nil
}
