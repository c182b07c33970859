package config

import "time"

// ExpiryMode selects which lifecycle events renew an entry's deadline.
type ExpiryMode string

const (
	// ExpireAfterCreate fixes the deadline once, at creation.
	ExpireAfterCreate ExpiryMode = "create"

	// ExpireAfterWrite renews the deadline on every payload replacement.
	ExpireAfterWrite ExpiryMode = "write"

	// ExpireAfterAccess renews the deadline on reads and writes alike
	// (sliding expiration).
	ExpireAfterAccess ExpiryMode = "access"
)

type ExpiryCfg struct {
	// Mode defines when an entry's lifetime is renewed.
	// Supported values: "create", "write", "access".
	Mode ExpiryMode `yaml:"mode"`

	// TTL is the base lifetime handed to the built-in policy for Mode.
	// A zero or negative value means entries effectively never expire.
	// Example: "10m".
	TTL time.Duration `yaml:"ttl"`
}

func (cfg *ExpiryCfg) Enabled() bool {
	return cfg != nil
}
