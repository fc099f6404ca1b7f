// internal/panel/panel.go
package panel

import (
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/rf-relay-controller/internal/layout"
)

// Panel is the Modbus RTU I/O board carrying the relay contacts and the
// mode-entry button. Relays map to coils coilBase..coilBase+3, the button to
// one discrete input. The board debounces nothing; that is the dispatcher's
// job.
type Panel struct {
	handler *modbus.RTUClientHandler
	client  modbus.Client

	coilBase    uint16
	buttonInput uint16
}

// Config is the minimal transport config.
type Config struct {
	Device      string
	BaudRate    int
	UnitID      byte
	CoilBase    uint16
	ButtonInput uint16
	Timeout     time.Duration
}

// Open connects to the I/O board.
func Open(cfg Config) (*Panel, error) {
	if cfg.Device == "" {
		return nil, errors.New("panel: device required")
	}

	h := modbus.NewRTUClientHandler(cfg.Device)
	h.BaudRate = cfg.BaudRate
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.SlaveId = cfg.UnitID
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, err
	}

	return &Panel{
		handler:     h,
		client:      modbus.NewClient(h),
		coilBase:    cfg.CoilBase,
		buttonInput: cfg.ButtonInput,
	}, nil
}

// Close closes the serial connection.
func (p *Panel) Close() error {
	if p == nil || p.handler == nil {
		return nil
	}
	return p.handler.Close()
}

// Set drives one relay coil. Implements relay.Output.
func (p *Panel) Set(slot int, on bool) error {
	if !layout.ValidSlot(slot) {
		return fmt.Errorf("panel: slot %d out of range", slot)
	}

	var value uint16
	if on {
		value = 0xFF00
	}
	_, err := p.client.WriteSingleCoil(p.coilBase+uint16(slot), value)
	if err != nil {
		return fmt.Errorf("panel: set coil %d: %w", slot, err)
	}
	return nil
}

// Pressed reads the mode-entry button. The board already inverts the
// active-low contact, so 1 on the wire means pressed.
func (p *Panel) Pressed() (bool, error) {
	resp, err := p.client.ReadDiscreteInputs(p.buttonInput, 1)
	if err != nil {
		return false, fmt.Errorf("panel: read button: %w", err)
	}
	if len(resp) < 1 {
		return false, errors.New("panel: empty button response")
	}
	return resp[0]&0x01 != 0, nil
}
