// internal/rf/receiver.go
package rf

import (
	"errors"
	"io"
	"time"

	"github.com/goburrow/serial"
)

// Link frame format, receiver module → host:
//
//	SYNC(1=0x55) CODE(4, big-endian) CRC(1)
//
// CRC is the additive checksum of the four code bytes.
const (
	frameSync byte = 0x55
	frameLen       = 6
)

// Receiver turns the decoder module's serial byte stream into latched codes.
// It holds at most one decoded code at a time; the code stays latched until
// Reset, so the dispatch loop observes each transmission exactly once.
// A newer frame arriving before Reset replaces the latched value.
type Receiver struct {
	port io.Reader

	frame [frameLen]byte
	fill  int

	code    Code
	latched bool
}

// NewReceiver wraps an already-open byte stream.
// The stream's reads must not block indefinitely: a read timeout is how the
// receiver learns there is no new data this cycle.
func NewReceiver(port io.Reader) *Receiver {
	return &Receiver{port: port}
}

// Open connects to the receiver module on a serial port.
// The short read timeout keeps Available non-blocking.
func Open(device string, baudRate int) (*Receiver, func() error, error) {
	if device == "" {
		return nil, nil, errors.New("rf: device required")
	}

	port, err := serial.Open(&serial.Config{
		Address:  device,
		BaudRate: baudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	return NewReceiver(port), port.Close, nil
}

// Available drains bytes waiting on the link and reports whether a decoded
// code is latched. Read errors (timeout included) end the drain for this
// cycle; bytes already consumed are still processed.
func (r *Receiver) Available() bool {
	r.service()
	return r.latched
}

// ReceivedCode returns the latched code, or None if nothing is latched.
func (r *Receiver) ReceivedCode() Code {
	if !r.latched {
		return None
	}
	return r.code
}

// Reset clears the latch so only transmissions decoded after this call are
// observed.
func (r *Receiver) Reset() {
	r.latched = false
	r.code = None
}

func (r *Receiver) service() {
	var buf [64]byte
	for {
		n, err := r.port.Read(buf[:])
		for _, b := range buf[:n] {
			r.feed(b)
		}
		if err != nil || n == 0 {
			return
		}
	}
}

// feed advances the frame accumulator by one byte, resyncing on anything
// that is not a well-formed frame.
func (r *Receiver) feed(b byte) {
	if r.fill == 0 && b != frameSync {
		return
	}

	r.frame[r.fill] = b
	r.fill++
	if r.fill < frameLen {
		return
	}
	r.fill = 0

	var sum byte
	for _, cb := range r.frame[1:5] {
		sum += cb
	}
	if sum != r.frame[5] {
		return
	}

	r.code = Code(r.frame[1])<<24 | Code(r.frame[2])<<16 | Code(r.frame[3])<<8 | Code(r.frame[4])
	r.latched = true
}
