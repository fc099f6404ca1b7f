// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	c := cfg.Controller

	// ------------------------------------------------------------
	// SERIAL DEVICES
	// ------------------------------------------------------------

	devices := map[string]string{
		"store.device": c.Store.Device,
		"panel.device": c.Panel.Device,
		"rf.device":    c.RF.Device,
	}

	owner := make(map[string]string)
	for field, dev := range devices {
		if dev == "" {
			return fmt.Errorf("config: %s is required", field)
		}
		if prev, exists := owner[dev]; exists {
			return fmt.Errorf(
				"config: %s and %s both use serial device %q",
				prev, field, dev,
			)
		}
		owner[dev] = field
	}

	// ------------------------------------------------------------
	// STORE
	// ------------------------------------------------------------

	if c.Store.BusAddress == 0 || c.Store.BusAddress > 0x7F {
		return fmt.Errorf(
			"config: store.bus_address %#x outside the 7-bit range [0x01, 0x7F]",
			c.Store.BusAddress,
		)
	}

	// ------------------------------------------------------------
	// TIMING (zero means "use default"; negatives are mistakes)
	// ------------------------------------------------------------

	timings := map[string]int{
		"store.timeout_ms":          c.Store.TimeoutMs,
		"store.settle_ms":           c.Store.SettleMs,
		"panel.timeout_ms":          c.Panel.TimeoutMs,
		"timing.poll_interval_ms":   c.Timing.PollIntervalMs,
		"timing.button_debounce_ms": c.Timing.ButtonDebounceMs,
		"timing.quiet_interval_ms":  c.Timing.QuietIntervalMs,
		"timing.learn_timeout_s":    c.Timing.LearnTimeoutS,
		"timing.capture_pause_ms":   c.Timing.CapturePauseMs,
	}

	for field, v := range timings {
		if v < 0 {
			return fmt.Errorf("config: %s must not be negative (got %d)", field, v)
		}
	}

	for field, v := range map[string]int{
		"store.baud_rate": c.Store.BaudRate,
		"panel.baud_rate": c.Panel.BaudRate,
		"rf.baud_rate":    c.RF.BaudRate,
	} {
		if v < 0 {
			return fmt.Errorf("config: %s must not be negative (got %d)", field, v)
		}
	}

	return nil
}
