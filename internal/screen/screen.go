// Package screen wires one live list screen: its cache, echo guard, pager
// and mutator, subscribed to the shared bus for as long as it is open.
package screen

import (
	"context"
	"log/slog"

	"github.com/dev-Pau/evidens/internal/bus"
	"github.com/dev-Pau/evidens/internal/cache"
	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/echo"
	"github.com/dev-Pau/evidens/internal/feed"
	"github.com/dev-Pau/evidens/internal/metrics"
	"github.com/dev-Pau/evidens/internal/optimistic"
	"github.com/dev-Pau/evidens/internal/reconcile"
)

// DeltaFunc is told about every change another screen's event made here
type DeltaFunc func(s *Screen, env bus.Envelope, d reconcile.Delta)

// Options configures Open
type Options struct {
	ID      string          // defaults to the feed name
	Parent  context.Context // parent of the cache context
	Logger  *slog.Logger
	OnDelta DeltaFunc
}

// Screen is one live list
type Screen struct {
	ID      string
	Cache   *cache.Cache
	Guard   *echo.Guard
	Pager   *feed.Pager
	Mutator *optimistic.Mutator

	bus     *bus.Bus
	token   bus.Token
	onDelta DeltaFunc
	logger  *slog.Logger
}

// Open creates a screen and subscribes it to b
func Open(b *bus.Bus, svc domain.ContentService, filter domain.Filter, opts Options) *Screen {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := opts.ID
	if id == "" {
		id = filter.Feed.String()
	}

	c := cache.New(opts.Parent)
	g := echo.NewGuard()
	s := &Screen{
		ID:      id,
		Cache:   c,
		Guard:   g,
		Pager:   feed.NewPager(c, filter, svc, logger),
		Mutator: optimistic.New(id, c, g, b, svc, logger),
		bus:     b,
		onDelta: opts.OnDelta,
		logger:  logger.With("screen", id),
	}
	s.token = b.SubscribeAll(id, s.handle)
	metrics.LiveScreens.Inc()
	return s
}

// Alive reports whether the screen is still open
func (s *Screen) Alive() bool { return s.Cache.Alive() }

// Close unsubscribes and kills the cache. In-flight results that land
// afterwards are dropped by the pager and mutator.
func (s *Screen) Close() {
	if !s.Cache.Alive() {
		return
	}
	s.bus.Unsubscribe(s.token)
	s.Cache.Close()
	s.Guard.Reset()
	metrics.LiveScreens.Dec()
	s.logger.Debug("screen closed")
}

func (s *Screen) handle(env bus.Envelope) error {
	if !s.Cache.Alive() {
		return domain.ErrStaleCallback
	}
	if s.Guard.Consume(env.ID) {
		s.logger.Debug("echo suppressed", "kind", env.Event.Kind(), "id", env.ID.String())
		return nil
	}

	d := reconcile.Apply(env.Event, s.Cache)
	if d.Kind == reconcile.DeltaNone {
		return nil
	}
	s.logger.Debug("reconciled", "kind", env.Event.Kind(), "origin", env.Origin, "delta", d.Kind.String())
	if s.onDelta != nil {
		s.onDelta(s, env, d)
	}
	return nil
}
