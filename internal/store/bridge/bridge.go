// internal/store/bridge/bridge.go
package bridge

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"
)

// Bridge drives an SC18IM-style serial to two-wire bus bridge.
//
// Transaction framing, host → bridge:
//
//	write: 'S' <addr<<1>   <len> <payload...> 'P'
//	read:  'S' <addr<<1|1> <len>              'P'   then <len> bytes back
//
// The bridge acknowledges every transaction with a single status byte;
// non-zero means the device did not acknowledge on the wire.
type Bridge struct {
	port   io.ReadWriteCloser
	device byte
}

const (
	cmdStart byte = 'S'
	cmdStop  byte = 'P'

	statusOK byte = 0x00
)

// Config is the minimal transport config.
type Config struct {
	Device   string
	BaudRate int
	Address  byte // 7-bit device address on the two-wire bus
	Timeout  time.Duration
}

// Open connects to the bridge and binds it to one bus device address.
func Open(cfg Config) (*Bridge, error) {
	if cfg.Device == "" {
		return nil, errors.New("bridge: device required")
	}
	if cfg.Address > 0x7F {
		return nil, fmt.Errorf("bridge: address %#x exceeds 7 bits", cfg.Address)
	}

	port, err := serial.Open(&serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &Bridge{port: port, device: cfg.Address}, nil
}

// Close closes the serial port.
func (b *Bridge) Close() error {
	if b == nil || b.port == nil {
		return nil
	}
	return b.port.Close()
}

// Write sends data to the device in one bus transaction.
func (b *Bridge) Write(data []byte) error {
	if len(data) > 0xFF {
		return errors.New("bridge: payload too long")
	}

	frame := make([]byte, 0, len(data)+4)
	frame = append(frame, cmdStart, b.device<<1, byte(len(data)))
	frame = append(frame, data...)
	frame = append(frame, cmdStop)

	if _, err := b.port.Write(frame); err != nil {
		return fmt.Errorf("bridge: write transaction: %w", err)
	}
	return b.readStatus()
}

// Read requests len(buf) bytes from the device in one bus transaction.
func (b *Bridge) Read(buf []byte) (int, error) {
	if len(buf) > 0xFF {
		return 0, errors.New("bridge: request too long")
	}

	frame := []byte{cmdStart, b.device<<1 | 1, byte(len(buf)), cmdStop}
	if _, err := b.port.Write(frame); err != nil {
		return 0, fmt.Errorf("bridge: read transaction: %w", err)
	}
	if err := b.readStatus(); err != nil {
		return 0, err
	}

	// The bridge returns exactly the bytes the device produced before
	// releasing the bus; fewer than requested means a truncated frame and is
	// the caller's short-read case, not a transport error.
	n, err := io.ReadFull(b.port, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("bridge: read payload: %w", err)
	}
	return n, nil
}

func (b *Bridge) readStatus() error {
	var status [1]byte
	if _, err := io.ReadFull(b.port, status[:]); err != nil {
		return fmt.Errorf("bridge: status byte: %w", err)
	}
	if status[0] != statusOK {
		return fmt.Errorf("bridge: device nak (status=%#x)", status[0])
	}
	return nil
}
