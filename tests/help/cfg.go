package help

import (
	"time"

	"github.com/emberline/go-ember-cache/config"
)

func Cfg() *config.Cache {
	c := &config.Cache{
		DB: config.DBCfg{
			IsTelemetryLogsEnabled: true,
			TelemetryLogsInterval:  time.Second * 5,
		},
		Expiry: &config.ExpiryCfg{
			Mode: config.ExpireAfterCreate,
			TTL:  time.Minute * 5,
		},
		Sweeper: &config.SweeperCfg{
			Rate:           10,
			EventQueueSize: 4096,
		},
	}
	c.AdjustConfig()
	return c
}

func EternalCfg() *config.Cache {
	c := Cfg()
	c.Expiry = nil
	c.Sweeper = nil
	return c
}

func ShortTTLCfg(mode config.ExpiryMode, ttl time.Duration) *config.Cache {
	c := Cfg()
	c.Expiry = &config.ExpiryCfg{Mode: mode, TTL: ttl}
	c.Sweeper = &config.SweeperCfg{Rate: 200, EventQueueSize: 1024}
	c.AdjustConfig()
	return c
}
