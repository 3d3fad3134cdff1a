// Package optimistic applies user actions to a screen's cache before the
// server confirms them.
//
// An action moves Idle -> Pending in Begin, which flips local state at once.
// Pending.Run makes the remote call off the update loop. Complete then
// either confirms (arming the screen's echo guard and publishing the change)
// or rolls the local change back exactly. Nothing is retried automatically.
package optimistic

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dev-Pau/evidens/internal/bus"
	"github.com/dev-Pau/evidens/internal/cache"
	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/echo"
	"github.com/dev-Pau/evidens/internal/metrics"
	"github.com/dev-Pau/evidens/internal/reconcile"
)

// Mutator runs actions for one screen
type Mutator struct {
	origin  string
	cache   *cache.Cache
	guard   *echo.Guard
	bus     *bus.Bus
	service domain.ContentService
	logger  *slog.Logger

	pending map[pendingKey]*Pending
}

// New creates a mutator publishing as origin
func New(origin string, c *cache.Cache, g *echo.Guard, b *bus.Bus, svc domain.ContentService, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{
		origin:  origin,
		cache:   c,
		guard:   g,
		bus:     b,
		service: svc,
		logger:  logger,
		pending: make(map[pendingKey]*Pending),
	}
}

// Pending is an action whose local half has been applied
type Pending struct {
	Action Action
	// Delta is the optimistic change to render right away
	Delta reconcile.Delta

	change  *change
	service domain.ContentService
}

// Outcome is the remote half's result, handed back to the update loop
type Outcome struct {
	Pending  *Pending
	Err      error
	Comment  *domain.Comment  // ActComment
	Revision *domain.Revision // ActRevision
}

// Result describes a completed action
type Result struct {
	Action    Action
	Confirmed bool
	Delta     reconcile.Delta // rollback delta when not confirmed
	Envelope  bus.Envelope    // published change when confirmed
	Comment   *domain.Comment
	Revision  *domain.Revision
}

// InFlight returns the number of pending actions
func (m *Mutator) InFlight() int { return len(m.pending) }

// Begin applies the local half of a. It fails with ErrNotFoundInCache when
// the item isn't cached, ErrActionPending when the same action is already
// in flight for the item, and ErrStaleCallback on a closed screen.
func (m *Mutator) Begin(a Action) (*Pending, error) {
	if !m.cache.Alive() {
		return nil, domain.ErrStaleCallback
	}
	item, i, ok := m.cache.Lookup(a.ContentID)
	if !ok {
		return nil, domain.ErrNotFoundInCache
	}

	key := pendingKey{target: item.ID, kind: a.Kind}
	if a.Kind == ActFollow {
		key.target = item.AuthorID
	}
	if _, busy := m.pending[key]; busy {
		return nil, domain.ErrActionPending
	}

	ch, err := plan(a, m.cache, item, i)
	if err != nil {
		return nil, err
	}

	p := &Pending{Action: a, Delta: ch.delta, change: ch, service: m.service}
	m.pending[ch.key] = p
	m.logger.Debug("optimistic begin", "origin", m.origin, "action", a.Kind.String(), "contentID", a.ContentID)
	return p, nil
}

// Run performs the remote call. It must not touch any cache.
func (p *Pending) Run(ctx context.Context) Outcome {
	out := Outcome{Pending: p}
	out.Err = p.change.call(ctx, p.service, &out)
	return out
}

// Complete settles an Outcome on the update loop.
//
// On success the change is published with this screen's guard armed for
// its correlation id. On failure the local change is reverted and a
// *domain.NetworkError is returned. For a closed screen nothing in the cache
// is touched and ErrStaleCallback is returned; a confirmed change is still
// published so other screens converge.
func (m *Mutator) Complete(o Outcome) (Result, error) {
	p := o.Pending
	if p == nil || m.pending[p.change.key] != p {
		return Result{}, domain.ErrStaleCallback
	}
	delete(m.pending, p.change.key)

	action := p.Action.Kind.String()
	res := Result{Action: p.Action, Comment: o.Comment, Revision: o.Revision}

	if !m.cache.Alive() {
		if o.Err == nil {
			m.bus.Publish(m.origin, p.change.event)
			metrics.MutationsTotal.WithLabelValues(action, "confirmed").Inc()
		}
		m.logger.Debug("action settled after close", "origin", m.origin, "action", action, "error", o.Err)
		return Result{}, domain.ErrStaleCallback
	}

	if o.Err != nil {
		res.Delta = p.change.undo(m.cache)
		metrics.MutationsTotal.WithLabelValues(action, "rolled_back").Inc()
		if errors.Is(o.Err, context.Canceled) {
			m.logger.Debug("action canceled", "origin", m.origin, "action", action, "contentID", p.Action.ContentID)
		} else {
			m.logger.Warn("action failed, rolled back", "origin", m.origin, "action", action, "contentID", p.Action.ContentID, "error", o.Err)
		}
		return res, domain.NewNetworkError(p.Action.Kind.failureTitle(), o.Err)
	}

	env := bus.NewEnvelope(m.origin, p.change.event)
	if p.change.held(m.cache) {
		m.guard.Arm(env.ID)
	} else {
		m.logger.Debug("item refreshed while pending, reconciling on origin", "origin", m.origin, "action", action, "contentID", p.Action.ContentID)
	}
	m.bus.PublishEnvelope(env)
	// drop the id if this screen's own handler never saw it
	m.guard.Disarm(env.ID)

	metrics.MutationsTotal.WithLabelValues(action, "confirmed").Inc()
	m.logger.Debug("action confirmed", "origin", m.origin, "action", action, "contentID", p.Action.ContentID, "id", env.ID.String())

	res.Confirmed = true
	res.Envelope = env
	return res, nil
}
