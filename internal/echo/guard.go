// Package echo keeps a screen from reapplying a change it already applied.
//
// A screen arms its Guard with the correlation id of an envelope right
// before publishing it. When the envelope comes back through the bus the
// screen's own handler consumes the id and skips reconciliation. Events
// whose id was never armed pass through untouched.
package echo

import (
	"github.com/oklog/ulid/v2"

	"github.com/dev-Pau/evidens/internal/metrics"
)

// Guard is per screen and lives on the update loop
type Guard struct {
	armed map[ulid.ULID]struct{}
}

// NewGuard creates a guard with nothing armed
func NewGuard() *Guard {
	return &Guard{armed: make(map[ulid.ULID]struct{})}
}

// Arm records id as originated by this screen
func (g *Guard) Arm(id ulid.ULID) {
	g.armed[id] = struct{}{}
}

// Consume reports whether id is this screen's own echo, forgetting it if so
func (g *Guard) Consume(id ulid.ULID) bool {
	if _, ok := g.armed[id]; !ok {
		return false
	}
	delete(g.armed, id)
	metrics.EchoesSuppressedTotal.Inc()
	return true
}

// Disarm forgets id without counting it as suppressed. Called after a
// publish so an id the screen's own handler never consumed doesn't linger.
func (g *Guard) Disarm(id ulid.ULID) {
	delete(g.armed, id)
}

// Pending returns the number of armed ids not yet consumed
func (g *Guard) Pending() int { return len(g.armed) }

// Reset forgets every armed id
func (g *Guard) Reset() {
	clear(g.armed)
}
