// Package embercache is an in-memory byte cache with timer-wheel expiration.
// Deadlines live in a hierarchical wheel, so scheduling, renewing and reaping
// cost amortized O(1) regardless of how many entries are pending.
package embercache

import (
	"context"
	"io"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/emberline/go-ember-cache/config"
	"github.com/emberline/go-ember-cache/expiry"
	"github.com/emberline/go-ember-cache/internal/cache"
	"github.com/emberline/go-ember-cache/internal/sweeper"
	"github.com/emberline/go-ember-cache/internal/telemetry"
)

// Event describes one expired entry handed to an OnExpire listener.
type Event = cache.Event

// OnExpire receives expired entries on background goroutines. It must not
// block for long: events queue in a bounded ring and overflow is dropped.
type OnExpire func(Event)

type EmberCache interface {
	cache.Cacher
	sweeper.Sweeper
	telemetry.Logger
	io.Closer
}

type Cache struct {
	cache.Cacher
	sweeper.Sweeper
	telemetry.Logger
	cls context.CancelFunc
}

// New assembles the cache with the built-in expiry policy selected by
// cfg.Expiry. With a nil Expiry section entries never expire.
func New(ctx context.Context, cfg *config.Cache, logger *slog.Logger) *Cache {
	return NewWithPolicy(ctx, cfg, logger, DefaultPolicy(cfg.Expiry), nil)
}

// NewWithPolicy assembles the cache around a caller-supplied expiry policy
// and an optional expiration listener. A nil policy disables expiration.
func NewWithPolicy(ctx context.Context, cfg *config.Cache, logger *slog.Logger, policy expiry.Policy, onExpire OnExpire) *Cache {
	ctx, cancel := context.WithCancel(ctx)
	var listener func(Event)
	if onExpire != nil {
		listener = onExpire
	}
	cacher := cache.New(ctx, cfg, logger, clock.New(), policy, listener)
	sweep := sweeper.New(ctx, cfg.Sweeper, logger, cacher)
	telemeter := telemetry.New(ctx, cfg, logger, cacher, sweep, cfg.DB.TelemetryLogsInterval)
	return &Cache{cls: cancel, Cacher: cacher, Sweeper: sweep, Logger: telemeter}
}

func (c *Cache) Close() error {
	c.cls()
	return nil
}

// DefaultPolicy maps an expiry config section onto the matching built-in
// policy. A nil section yields a nil policy, i.e. no expiration.
func DefaultPolicy(cfg *config.ExpiryCfg) expiry.Policy {
	if !cfg.Enabled() {
		return nil
	}
	switch cfg.Mode {
	case config.ExpireAfterWrite:
		return expiry.Writing(cfg.TTL)
	case config.ExpireAfterAccess:
		return expiry.Accessing(cfg.TTL)
	default:
		return expiry.Creating(cfg.TTL)
	}
}
