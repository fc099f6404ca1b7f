// internal/layout/layout.go
package layout

// Persistent store layout constants.
// These values define the on-chip format and MUST NOT be configurable:
// changing them breaks compatibility with state already stored in the field.

// ---- SLOTS ----

// SlotCount is the fixed number of relay/registry slots.
const SlotCount = 4

// ---- CODE TABLE ----

// CodeBase is the store address of the first learned code.
const CodeBase uint16 = 0

// CodeBytes is the stored size of one learned code (big-endian uint32).
const CodeBytes = 4

// ---- RELAY STATE TABLE ----

// StateBase is the store address of the first relay state byte.
// One byte per slot; non-zero means the relay is on.
const StateBase uint16 = 16

// ---- ADDRESS MATH ----

// CodeAddr returns the store address of slot's learned code.
func CodeAddr(slot int) uint16 {
	return CodeBase + uint16(slot)*CodeBytes
}

// StateAddr returns the store address of slot's relay state byte.
func StateAddr(slot int) uint16 {
	return StateBase + uint16(slot)
}

// ValidSlot reports whether slot is within [0, SlotCount).
func ValidSlot(slot int) bool {
	return slot >= 0 && slot < SlotCount
}
