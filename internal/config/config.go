// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
}

type ControllerConfig struct {
	Store  StoreConfig  `yaml:"store"`
	Panel  PanelConfig  `yaml:"panel"`
	RF     RFConfig     `yaml:"rf"`
	Timing TimingConfig `yaml:"timing"`
}

// ---- STORE (serial → two-wire bridge) ----

type StoreConfig struct {
	Device     string `yaml:"device"`
	BaudRate   int    `yaml:"baud_rate"`
	BusAddress uint8  `yaml:"bus_address"` // 7-bit device address
	TimeoutMs  int    `yaml:"timeout_ms"`
	SettleMs   int    `yaml:"settle_ms"`
}

// ---- PANEL (Modbus RTU I/O board) ----

type PanelConfig struct {
	Device      string `yaml:"device"`
	BaudRate    int    `yaml:"baud_rate"`
	UnitID      uint8  `yaml:"unit_id"`
	CoilBase    uint16 `yaml:"coil_base"`
	ButtonInput uint16 `yaml:"button_input"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// ---- RF RECEIVER ----

type RFConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
}

// ---- TIMING ----

type TimingConfig struct {
	PollIntervalMs   int `yaml:"poll_interval_ms"`
	ButtonDebounceMs int `yaml:"button_debounce_ms"`
	QuietIntervalMs  int `yaml:"quiet_interval_ms"`
	LearnTimeoutS    int `yaml:"learn_timeout_s"`
	CapturePauseMs   int `yaml:"capture_pause_ms"`
}

// Load reads and parses a config file. It performs no validation.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
