package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSweepRate      = 10
	defaultEventQueueSize = 4096
	defaultLogsInterval   = 5 * time.Second
)

// AdjustConfig fills derived and defaulted fields after the raw yaml is in.
func (cfg *Cache) AdjustConfig() {
	if cfg.Expiry.Enabled() && cfg.Expiry.Mode == "" {
		cfg.Expiry.Mode = ExpireAfterCreate
	}

	if cfg.Sweeper.Enabled() {
		if cfg.Sweeper.Rate <= 0 {
			cfg.Sweeper.Rate = defaultSweepRate
		}
		if cfg.Sweeper.EventQueueSize <= 0 {
			cfg.Sweeper.EventQueueSize = defaultEventQueueSize
		}
	}

	if cfg.DB.IsTelemetryLogsEnabled && cfg.DB.TelemetryLogsInterval <= 0 {
		cfg.DB.TelemetryLogsInterval = defaultLogsInterval
	}
}

func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Cache
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.AdjustConfig()

	return cfg, nil
}
