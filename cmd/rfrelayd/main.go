// cmd/rfrelayd/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/rf-relay-controller/internal/config"
	"github.com/tamzrod/rf-relay-controller/internal/dispatch"
	"github.com/tamzrod/rf-relay-controller/internal/layout"
	"github.com/tamzrod/rf-relay-controller/internal/learn"
	"github.com/tamzrod/rf-relay-controller/internal/panel"
	"github.com/tamzrod/rf-relay-controller/internal/registry"
	"github.com/tamzrod/rf-relay-controller/internal/relay"
	"github.com/tamzrod/rf-relay-controller/internal/rf"
	"github.com/tamzrod/rf-relay-controller/internal/store"
	"github.com/tamzrod/rf-relay-controller/internal/store/bridge"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: rfrelayd <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	c := cfg.Controller

	// --------------------
	// Persistent store (two-wire bridge)
	// --------------------

	bus, err := bridge.Open(bridge.Config{
		Device:   c.Store.Device,
		BaudRate: c.Store.BaudRate,
		Address:  c.Store.BusAddress,
		Timeout:  time.Duration(c.Store.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("store bridge open failed: %v", err)
	}
	defer bus.Close()

	adapter := store.New(bus, time.Duration(c.Store.SettleMs)*time.Millisecond)

	// --------------------
	// I/O panel (relays + button)
	// --------------------

	board, err := panel.Open(panel.Config{
		Device:      c.Panel.Device,
		BaudRate:    c.Panel.BaudRate,
		UnitID:      c.Panel.UnitID,
		CoilBase:    c.Panel.CoilBase,
		ButtonInput: c.Panel.ButtonInput,
		Timeout:     time.Duration(c.Panel.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("panel open failed: %v", err)
	}
	defer board.Close()

	// --------------------
	// RF receiver
	// --------------------

	recv, closeRecv, err := rf.Open(c.RF.Device, c.RF.BaudRate)
	if err != nil {
		log.Fatalf("rf receiver open failed: %v", err)
	}
	defer closeRecv()

	// --------------------
	// Restore persisted state
	// --------------------

	// Store failures from here on are diagnostic only: the controller keeps
	// running on in-memory state.

	reg, err := registry.Load(adapter)
	if err != nil {
		log.Printf("registry load degraded: %v", err)
	}

	bank, err := relay.Load(adapter, board)
	if err != nil {
		log.Printf("relay state load degraded: %v", err)
	}
	if err := bank.Restore(); err != nil {
		log.Printf("relay restore degraded: %v", err)
	}

	for slot := 0; slot < layout.SlotCount; slot++ {
		log.Printf("slot %d: code %#08x relay %s",
			slot, uint32(reg.Code(slot)), onOff(bank.State(slot)))
	}

	// --------------------
	// Control loop
	// --------------------

	session := learn.NewSession(learn.Config{
		Timeout: time.Duration(c.Timing.LearnTimeoutS) * time.Second,
		Pause:   time.Duration(c.Timing.CapturePauseMs) * time.Millisecond,
	}, reg)

	d, err := dispatch.New(dispatch.Config{
		PollInterval:   time.Duration(c.Timing.PollIntervalMs) * time.Millisecond,
		ButtonDebounce: time.Duration(c.Timing.ButtonDebounceMs) * time.Millisecond,
		QuietInterval:  time.Duration(c.Timing.QuietIntervalMs) * time.Millisecond,
	}, recv, board, reg, bank, session)
	if err != nil {
		log.Fatalf("dispatcher build failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("rfrelayd ready")
	d.Run(ctx)
	log.Printf("rfrelayd stopping")
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
