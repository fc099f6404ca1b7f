// internal/dispatch/dispatch.go
package dispatch

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/tamzrod/rf-relay-controller/internal/learn"
	"github.com/tamzrod/rf-relay-controller/internal/rf"
)

// Receiver is the RF decoder capability the dispatcher polls.
type Receiver interface {
	Available() bool
	ReceivedCode() rf.Code
	Reset()
}

// Button is the mode-entry control, already inverted to pressed=true.
type Button interface {
	Pressed() (bool, error)
}

// Registry is the lookup side of the code registry.
type Registry interface {
	Lookup(code rf.Code) (int, bool)
}

// Relays is the toggle side of the relay bank.
type Relays interface {
	Toggle(slot int) error
}

// Config is the dispatcher's runtime timing.
type Config struct {
	// PollInterval paces the Run loop.
	PollInterval time.Duration
	// ButtonDebounce is the minimum time between accepted button
	// transitions.
	ButtonDebounce time.Duration
	// QuietInterval is how long a repeated code is treated as the same
	// transmission. The same code heard again after the interval is a fresh
	// press and toggles again.
	QuietInterval time.Duration
}

// Dispatcher is the top-level control loop. One iteration handles at most
// one RF event and one button check and never blocks on input. While a
// learning session is active, codes feed the session and relay dispatch is
// suspended.
type Dispatcher struct {
	cfg     Config
	recv    Receiver
	button  Button
	reg     Registry
	bank    Relays
	session *learn.Session

	now func() time.Time

	lastCode        rf.Code
	lastCodeAt      time.Time
	buttonDown      bool
	buttonChangedAt time.Time
}

// New creates a dispatcher with immutable config.
func New(cfg Config, recv Receiver, button Button, reg Registry, bank Relays, session *learn.Session) (*Dispatcher, error) {
	if cfg.PollInterval <= 0 {
		return nil, errors.New("dispatch: poll interval must be > 0")
	}
	if recv == nil || button == nil || reg == nil || bank == nil || session == nil {
		return nil, errors.New("dispatch: all collaborators required")
	}
	return &Dispatcher{
		cfg:     cfg,
		recv:    recv,
		button:  button,
		reg:     reg,
		bank:    bank,
		session: session,
		now:     time.Now,
	}, nil
}

// Run drives PollOnce until the context is done.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.PollOnce()
		}
	}
}

// PollOnce performs exactly one dispatch cycle.
func (d *Dispatcher) PollOnce() {
	now := d.now()

	d.pollButton(now)

	if d.session.Active() {
		d.pollLearning(now)
		return
	}

	d.pollRF(now)
}

func (d *Dispatcher) pollButton(now time.Time) {
	raw, err := d.button.Pressed()
	if err != nil {
		log.Printf("dispatch: button: %v", err)
		return
	}
	if raw == d.buttonDown {
		return
	}
	// Transitions inside the debounce window are contact chatter.
	if now.Sub(d.buttonChangedAt) < d.cfg.ButtonDebounce {
		return
	}

	d.buttonDown = raw
	d.buttonChangedAt = now

	if raw {
		d.session.Start(now)
	}
}

func (d *Dispatcher) pollLearning(now time.Time) {
	if d.session.Tick(now) != learn.Capturing {
		// The session just ended. Drop anything latched during it so the
		// next run-time cycle only sees fresh transmissions.
		d.recv.Reset()
		return
	}

	if !d.recv.Available() {
		return
	}
	d.session.Offer(d.recv.ReceivedCode(), now)
	d.recv.Reset()
}

func (d *Dispatcher) pollRF(now time.Time) {
	if !d.recv.Available() {
		return
	}
	defer d.recv.Reset()

	code := d.recv.ReceivedCode()
	if code == rf.None {
		return
	}

	// Repeat suppression with cooldown: the same code inside the quiet
	// interval is one long transmission, not a second press.
	if code == d.lastCode && now.Sub(d.lastCodeAt) <= d.cfg.QuietInterval {
		return
	}

	if slot, ok := d.reg.Lookup(code); ok {
		if err := d.bank.Toggle(slot); err != nil {
			log.Printf("dispatch: %v", err)
		} else {
			log.Printf("dispatch: code %#08x toggled slot %d", uint32(code), slot)
		}
	}

	// Last-accepted tracking updates on every accepted code, matched or not,
	// so an unknown repeated code is still rate-limited.
	d.lastCode = code
	d.lastCodeAt = now
}
