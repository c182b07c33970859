// Package sweeper runs the background maintenance worker that keeps the
// timer wheel current. Without it the wheel only advances when mutating
// traffic piggybacks a sweep, so an idle cache would hold dead entries
// indefinitely.
package sweeper

import (
	"context"
	"log/slog"

	"github.com/emberline/go-ember-cache/config"
	"github.com/emberline/go-ember-cache/expiry"
	"github.com/emberline/go-ember-cache/internal/cache"
	"github.com/emberline/go-ember-cache/internal/shared/rate"
)

type Sweeper interface {
	SweeperMetrics() (sweeps, reaped, idle int64)
	Close() error
}

type SweepWorker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.SweeperCfg
	cache    cache.Cacher
	logger   *slog.Logger
	pacer    *rate.Pacer
	counters *sweeperCounters
}

func New(
	ctx context.Context,
	cfg *config.SweeperCfg,
	logger *slog.Logger,
	cache cache.Cacher,
) Sweeper {
	if !cfg.Enabled() {
		return &NoOpSweeper{}
	}

	ctx, cancel := context.WithCancel(ctx)

	return (&SweepWorker{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		cache:    cache,
		logger:   logger,
		pacer:    rate.NewPacer(ctx, cfg.Rate),
		counters: newSweeperCounters(),
	}).run()
}

func (w *SweepWorker) SweeperMetrics() (sweeps, reaped, idle int64) {
	return w.counters.snapshot()
}

func (w *SweepWorker) Close() error {
	w.cancel()
	return nil
}

func (w *SweepWorker) run() *SweepWorker {
	w.logger.Info("sweeper is running", "rate", w.cfg.Rate)

	go func() {
		defer w.logger.Info("sweeper is stopped")
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-w.pacer.Chan():
				// Nothing scheduled means nothing to reap; skip the pulse
				// so an empty cache costs no wheel work.
				if w.cache.ExpirationDelay() == expiry.Unbounded {
					w.counters.idle.Add(1)
					continue
				}
				w.counters.sweeps.Add(1)
				if n := w.cache.Sweep(); n > 0 {
					w.counters.reaped.Add(n)
				} else {
					w.counters.idle.Add(1)
				}
			}
		}
	}()

	return w
}
