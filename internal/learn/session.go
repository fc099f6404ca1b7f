// internal/learn/session.go
package learn

import (
	"log"
	"time"

	"github.com/tamzrod/rf-relay-controller/internal/layout"
	"github.com/tamzrod/rf-relay-controller/internal/rf"
)

// State is the learning-mode state.
type State int

const (
	// Idle means no session has run yet.
	Idle State = iota
	// Capturing means a session is active and waiting for a code.
	Capturing
	// Complete means the last session filled all slots.
	Complete
	// TimedOut means the last session hit the inactivity window.
	TimedOut
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Complete:
		return "complete"
	case TimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Registry is the slice of the code registry a session needs.
type Registry interface {
	SetSlot(slot int, code rf.Code) error
}

// Config holds session timing.
type Config struct {
	// Timeout is the inactivity window, measured from session start.
	// It is deliberately not reset per captured code: it bounds the total
	// session length.
	Timeout time.Duration
	// Pause is the settle time after each accepted code, giving the
	// operator room to release and re-press the remote.
	Pause time.Duration
}

// Session is the sequential re-binding of all slots. It is a cooperative
// state machine: the dispatch loop calls Tick and Offer; nothing here
// blocks. Exactly one session exists per controller and it is reused
// across runs.
type Session struct {
	cfg Config
	reg Registry

	state     State
	slot      int
	startedAt time.Time
	resumeAt  time.Time
	lastCode  rf.Code
}

// NewSession creates an idle session bound to a registry.
func NewSession(cfg Config, reg Registry) *Session {
	return &Session{cfg: cfg, reg: reg}
}

// State returns the current state. Complete and TimedOut linger until the
// next Start so callers can observe the last session's outcome.
func (s *Session) State() State { return s.state }

// Active reports whether a session is capturing. While true, the dispatcher
// must not route codes to relays.
func (s *Session) Active() bool { return s.state == Capturing }

// Slot returns the slot the session is currently capturing for.
func (s *Session) Slot() int { return s.slot }

// Start begins a new session at slot 0. Starting while already capturing is
// a no-op; the running session keeps its clock.
func (s *Session) Start(now time.Time) {
	if s.state == Capturing {
		return
	}

	s.state = Capturing
	s.slot = 0
	s.startedAt = now
	s.resumeAt = time.Time{}
	s.lastCode = rf.None

	log.Printf("learning: session started, press the remote button for slot 0")
}

// Tick advances the session clock. It returns the state after the check, so
// callers see the TimedOut transition on the tick that causes it.
func (s *Session) Tick(now time.Time) State {
	if s.state == Capturing && now.Sub(s.startedAt) >= s.cfg.Timeout {
		s.state = TimedOut
		log.Printf("learning: timed out at slot %d, captured slots are kept", s.slot)
	}
	return s.state
}

// Offer presents a received code and reports whether it was accepted.
//
// A code is rejected while the post-capture pause runs, when it is rf.None,
// or when it repeats the immediately previous accepted code — a single press
// often decodes as a pulse train, and dropping exact repeats is enough to
// collapse it to one capture.
func (s *Session) Offer(code rf.Code, now time.Time) bool {
	if s.state != Capturing {
		return false
	}
	if now.Before(s.resumeAt) {
		return false
	}
	if code == rf.None || code == s.lastCode {
		return false
	}

	// Persist immediately so a partial session survives power loss. A store
	// failure is diagnostic only: the capture stands in memory and the
	// session keeps going.
	if err := s.reg.SetSlot(s.slot, code); err != nil {
		log.Printf("learning: %v", err)
	}
	log.Printf("learning: slot %d bound to code %#08x", s.slot, uint32(code))

	s.lastCode = code
	s.slot++

	if s.slot == layout.SlotCount {
		s.state = Complete
		log.Printf("learning: complete")
		return true
	}

	s.resumeAt = now.Add(s.cfg.Pause)
	log.Printf("learning: press the remote button for slot %d", s.slot)
	return true
}
