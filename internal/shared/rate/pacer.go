// Package rate paces background maintenance loops. A Pacer exposes a leaky
// channel fed through a token-bucket limiter, so consumers block on the
// channel instead of sleeping in lockstep.
package rate

import (
	"context"

	"go.uber.org/ratelimit"
)

type Pacer struct {
	ch      chan struct{}
	limiter ratelimit.Limiter
}

// NewPacer emits up to perSecond pulses per second until ctx is done. A small
// burst buffer absorbs consumer hiccups without bunching pulses.
func NewPacer(ctx context.Context, perSecond int) *Pacer {
	if perSecond < 1 {
		perSecond = 1
	}
	burst := perSecond / 10
	if burst < 1 {
		burst = 1
	}
	p := &Pacer{
		ch:      make(chan struct{}, burst),
		limiter: ratelimit.New(perSecond),
	}
	go p.pump(ctx)
	return p
}

func (p *Pacer) pump(ctx context.Context) {
	defer close(p.ch)
	for {
		p.limiter.Take()
		select {
		case <-ctx.Done():
			return
		case p.ch <- struct{}{}:
		}
	}
}

// Chan pulses once per allowed tick; it closes when the pacer stops.
func (p *Pacer) Chan() <-chan struct{} { return p.ch }

// Take blocks until the next pulse.
func (p *Pacer) Take() { <-p.ch }
