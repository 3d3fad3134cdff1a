// Package bus is the process-wide typed publish/subscribe channel for
// change events.
//
// Delivery is synchronous, on the publishing goroutine, in registration
// order. There is no persistence, replay, acknowledgment or retry. A Bus is
// owned by the update loop and is not safe for concurrent use; construct one
// per app session and pass it to each screen.
package bus

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/oklog/ulid/v2"

	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/metrics"
)

// Envelope is what subscribers receive: the event plus the correlation id
// minted for this publish and the screen that published it.
type Envelope struct {
	ID     ulid.ULID
	Origin string
	Event  ChangeEvent
}

// Handler receives every event
type Handler func(Envelope) error

// Token identifies a subscription for Unsubscribe
type Token uint64

type subscriber struct {
	token   Token
	owner   string
	handler Handler
	removed bool
}

// Bus fans change events out to subscribed screens
type Bus struct {
	subs   []*subscriber
	next   Token
	logger *slog.Logger
}

// New creates an empty bus
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// NewEnvelope mints a correlation id for an event without publishing it.
// Screens arm their echo guard with the id and then PublishEnvelope.
func NewEnvelope(origin string, event ChangeEvent) Envelope {
	return Envelope{ID: ulid.Make(), Origin: origin, Event: event}
}

// SubscribeAll registers handler for every event kind
func (b *Bus) SubscribeAll(owner string, handler Handler) Token {
	b.next++
	s := &subscriber{token: b.next, owner: owner, handler: handler}
	// copy-on-write so an in-progress publish keeps its snapshot
	next := slices.Clone(b.subs)
	b.subs = append(next, s)
	b.logger.Debug("bus subscribe", "owner", owner, "token", s.token, "subscribers", len(b.subs))
	return s.token
}

// Subscribe registers handler for a single event variant E
func Subscribe[E ChangeEvent](b *Bus, owner string, handler func(Envelope, E) error) Token {
	return b.SubscribeAll(owner, func(env Envelope) error {
		e, ok := env.Event.(E)
		if !ok {
			return nil
		}
		return handler(env, e)
	})
}

// Unsubscribe revokes a subscription. Unknown and repeated tokens are ignored.
// A subscriber removed during a publish is not called for the rest of it.
func (b *Bus) Unsubscribe(token Token) {
	i := slices.IndexFunc(b.subs, func(s *subscriber) bool { return s.token == token })
	if i < 0 {
		return
	}
	s := b.subs[i]
	s.removed = true
	next := slices.Clone(b.subs)
	b.subs = slices.Delete(next, i, i+1)
	b.logger.Debug("bus unsubscribe", "owner", s.owner, "token", token, "subscribers", len(b.subs))
}

// Len returns the number of live subscriptions
func (b *Bus) Len() int { return len(b.subs) }

// Publish wraps event in a fresh envelope and delivers it
func (b *Bus) Publish(origin string, event ChangeEvent) Envelope {
	env := NewEnvelope(origin, event)
	b.PublishEnvelope(env)
	return env
}

// PublishEnvelope delivers a prepared envelope to every current subscriber.
// A failing or panicking handler is logged and skipped; the rest still run.
func (b *Bus) PublishEnvelope(env Envelope) {
	if env.Event == nil {
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(env.Event.Kind()).Inc()
	b.logger.Debug("bus publish", "kind", env.Event.Kind(), "id", env.ID.String(), "origin", env.Origin)

	for _, s := range b.subs {
		if s.removed {
			continue
		}
		b.deliver(s, env)
	}
}

func (b *Bus) deliver(s *subscriber, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerFailuresTotal.Inc()
			b.logger.Error("bus handler panicked", "owner", s.owner, "kind", env.Event.Kind(), "panic", fmt.Sprint(r))
		}
	}()

	metrics.DeliveriesTotal.Inc()
	if err := s.handler(env); err != nil {
		if domain.IsSteadyState(err) {
			b.logger.Debug("bus handler skipped", "owner", s.owner, "kind", env.Event.Kind(), "reason", err)
			return
		}
		metrics.HandlerFailuresTotal.Inc()
		b.logger.Warn("bus handler failed", "owner", s.owner, "kind", env.Event.Kind(), "error", err)
	}
}
