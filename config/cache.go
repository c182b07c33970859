package config

// Cache groups configuration of all cache subsystems.
// Each optional component can be disabled by setting its section to nil.
type Cache struct {
	DB DBCfg `yaml:"db"`

	// Expiry configures per-entry lifetime handling: which lifecycle events
	// renew an entry's deadline and the base time-to-live.
	// If nil, entries never expire and the timer wheel stays idle.
	Expiry *ExpiryCfg `yaml:"expiry"`

	// Sweeper configures the background worker that advances the timer
	// wheel. If nil, expiration is driven purely by the piggyback sweeps
	// that ride on normal write operations.
	Sweeper *SweeperCfg `yaml:"sweeper"`
}
