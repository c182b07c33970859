package config

type SweeperCfg struct {
	// Rate limits how many wheel sweeps the background worker performs per
	// second. Each sweep advances the wheel's clock to "now" and drains the
	// buckets whose window elapsed since the previous sweep.
	// Example: 10.
	Rate int `yaml:"rate"`

	// EventQueueSize bounds the ring buffer carrying expiration events from
	// the sweep path to the listener goroutines. When the ring is full the
	// event is counted as dropped rather than stalling the sweep.
	// Example: 4096.
	EventQueueSize int `yaml:"event_queue_size"`
}

func (cfg *SweeperCfg) Enabled() bool {
	return cfg != nil
}
