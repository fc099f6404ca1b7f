// internal/config/normalize.go
package config

// Defaults applied by Normalize. Timing defaults match the deployed
// controllers, so a minimal config (three devices plus the bus address)
// behaves identically to the field units.
const (
	defaultStoreBaud  = 115200
	defaultPanelBaud  = 9600
	defaultRFBaud     = 9600
	defaultTimeoutMs  = 500
	defaultSettleMs   = 20
	defaultPollMs     = 5
	defaultDebounceMs = 50
	defaultQuietMs    = 1000
	defaultLearnS     = 300
	defaultPauseMs    = 2000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	c := &cfg.Controller

	setIfZero(&c.Store.BaudRate, defaultStoreBaud)
	setIfZero(&c.Panel.BaudRate, defaultPanelBaud)
	setIfZero(&c.RF.BaudRate, defaultRFBaud)

	setIfZero(&c.Store.TimeoutMs, defaultTimeoutMs)
	setIfZero(&c.Panel.TimeoutMs, defaultTimeoutMs)
	setIfZero(&c.Store.SettleMs, defaultSettleMs)

	setIfZero(&c.Timing.PollIntervalMs, defaultPollMs)
	setIfZero(&c.Timing.ButtonDebounceMs, defaultDebounceMs)
	setIfZero(&c.Timing.QuietIntervalMs, defaultQuietMs)
	setIfZero(&c.Timing.LearnTimeoutS, defaultLearnS)
	setIfZero(&c.Timing.CapturePauseMs, defaultPauseMs)
}

func setIfZero(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
