// internal/store/store.go
package store

import (
	"errors"
	"fmt"
	"time"
)

// Bus abstracts one two-wire bus endpoint at a fixed device address.
// Each call is a single non-interruptible transaction.
type Bus interface {
	// Write sends data to the device in one transaction.
	Write(data []byte) error
	// Read requests len(buf) bytes from the device in one transaction.
	// It returns the number of bytes actually received.
	Read(buf []byte) (int, error)
}

var (
	// ErrBusFailure means the address or payload phase of a transaction did
	// not complete.
	ErrBusFailure = errors.New("store: bus transaction failed")
	// ErrShortRead means a read transaction returned fewer bytes than
	// requested.
	ErrShortRead = errors.New("store: short read")
)

// Adapter is a byte-addressable persistent store on the two-wire bus.
//
// Writes are [addr-hi, addr-lo, payload...] in one transaction, payload
// most-significant byte first, followed by a settle delay that guarantees
// durability before the next bus operation. Reads set the address cursor in
// one transaction and fetch the payload in a second.
//
// Failed reads return the defined default (0) alongside the error: callers
// keep running on defaults, there is no recovery path beyond that. Failed
// writes skip the settle delay; the stored byte may be stale until the next
// successful persist.
type Adapter struct {
	bus    Bus
	settle time.Duration

	// sleep is swappable so tests can observe the settle delay.
	sleep func(time.Duration)
}

// New creates an adapter over an open bus endpoint.
func New(bus Bus, settle time.Duration) *Adapter {
	return &Adapter{
		bus:    bus,
		settle: settle,
		sleep:  time.Sleep,
	}
}

// WriteWord stores a 32-bit value at addr, most-significant byte first.
func (a *Adapter) WriteWord(addr uint16, v uint32) error {
	frame := []byte{
		byte(addr >> 8), byte(addr),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
	return a.write(addr, frame)
}

// WriteByte stores a single byte at addr.
func (a *Adapter) WriteByte(addr uint16, v byte) error {
	frame := []byte{byte(addr >> 8), byte(addr), v}
	return a.write(addr, frame)
}

// WriteBool stores a boolean at addr as 1 (true) or 0 (false).
func (a *Adapter) WriteBool(addr uint16, v bool) error {
	var b byte
	if v {
		b = 1
	}
	return a.WriteByte(addr, b)
}

func (a *Adapter) write(addr uint16, frame []byte) error {
	if err := a.bus.Write(frame); err != nil {
		// No settle delay: nothing was committed.
		return fmt.Errorf("%w: addr=%d: %v", ErrBusFailure, addr, err)
	}
	a.sleep(a.settle)
	return nil
}

// ReadWord fetches the 32-bit value at addr. On any failure it returns 0.
func (a *Adapter) ReadWord(addr uint16) (uint32, error) {
	var buf [4]byte
	if err := a.read(addr, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

// ReadByte fetches the byte at addr. On any failure it returns 0.
func (a *Adapter) ReadByte(addr uint16) (byte, error) {
	var buf [1]byte
	if err := a.read(addr, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadBool fetches the byte at addr as a boolean; non-zero means true.
// On any failure it returns false.
func (a *Adapter) ReadBool(addr uint16) (bool, error) {
	b, err := a.ReadByte(addr)
	return b != 0, err
}

func (a *Adapter) read(addr uint16, buf []byte) error {
	cursor := []byte{byte(addr >> 8), byte(addr)}
	if err := a.bus.Write(cursor); err != nil {
		return fmt.Errorf("%w: addr=%d: %v", ErrBusFailure, addr, err)
	}

	n, err := a.bus.Read(buf)
	if err != nil {
		return fmt.Errorf("%w: addr=%d: %v", ErrBusFailure, addr, err)
	}
	if n < len(buf) {
		// Partial frame: treat the whole value as unreadable.
		return fmt.Errorf("%w: addr=%d: got %d of %d bytes", ErrShortRead, addr, n, len(buf))
	}
	return nil
}
