package sweeper

import "sync/atomic"

type sweeperCounters struct {
	sweeps atomic.Int64 // wheel advances performed
	reaped atomic.Int64 // entries expired across all sweeps
	idle   atomic.Int64 // pulses that found nothing due or reaped nothing
}

func newSweeperCounters() *sweeperCounters {
	return &sweeperCounters{}
}

func (c *sweeperCounters) snapshot() (sweeps, reaped, idle int64) {
	sweeps = c.sweeps.Load()
	reaped = c.reaped.Load()
	idle = c.idle.Load()
	return
}
