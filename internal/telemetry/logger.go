package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/emberline/go-ember-cache/config"
	"github.com/emberline/go-ember-cache/internal/cache"
	"github.com/emberline/go-ember-cache/internal/shared/bytes"
	"github.com/emberline/go-ember-cache/internal/sweeper"
)

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Cache
	logger   *slog.Logger
	cache    cache.Cacher
	sweeper  sweeper.Sweeper
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	cache cache.Cacher,
	sweeper sweeper.Sweeper,
	interval time.Duration,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		cache:    cache,
		sweeper:  sweeper,
		interval: interval,
	}).run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg != nil && l.cfg.DB.IsTelemetryLogsEnabled {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	s := newSampler(l.cache, l.sweeper)
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}

			l.logger.Info("requests",
				append(common,
					"hits", int64(d.hits),
					"misses", int64(d.misses),
					"loads", int64(d.loads),
					"load_errors", int64(d.loadErrors),
				)...,
			)

			if l.cfg.Expiry.Enabled() {
				l.logger.Info("expiration",
					append(common,
						"expired", int64(d.expired),
						"events_dropped", int64(d.dropped),
						"pending_deadlines", l.cache.WheelLen(),
					)...,
				)
				// Bucket layout goes to the debug sink; it is a no-op
				// unless the debug level is on.
				l.cache.DumpWheel()
			}

			if l.cfg.Sweeper.Enabled() {
				l.logger.Info("sweeper",
					append(common,
						"sweeps", int64(d.sweeps),
						"reaped", int64(d.reaped),
						"idle", int64(d.idle),
					)...,
				)
			}

			l.logger.Info("storage",
				append(common,
					"size", bytes.FmtMem(uint64(l.cache.Mem())),
					"entries", l.cache.Len(),
				)...,
			)
		}
	}
}
