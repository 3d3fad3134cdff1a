// Package reconcile applies change events observed on the bus to a screen's
// cache and reports the smallest UI change that follows.
package reconcile

import (
	"github.com/dev-Pau/evidens/internal/bus"
	"github.com/dev-Pau/evidens/internal/cache"
	"github.com/dev-Pau/evidens/internal/domain"
)

// DeltaKind says what the screen has to redraw
type DeltaKind int

const (
	DeltaNone   DeltaKind = iota // nothing changed
	DeltaUpdate                  // rows at Indexes changed in place
	DeltaRemove                  // the row at Indexes[0] was deleted
	DeltaReload                  // the list is now empty; reload it
	DeltaInsert                  // a row was put back at Indexes[0]
)

func (k DeltaKind) String() string {
	switch k {
	case DeltaNone:
		return "none"
	case DeltaUpdate:
		return "update"
	case DeltaRemove:
		return "remove"
	case DeltaReload:
		return "reload"
	case DeltaInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Delta describes the rows touched by one Apply
type Delta struct {
	Kind    DeltaKind
	Indexes []int
}

// None is the zero delta
var None = Delta{Kind: DeltaNone}

func update(i ...int) Delta { return Delta{Kind: DeltaUpdate, Indexes: i} }

// Apply mutates c to reflect event. An id the cache never loaded, a dead
// cache, or an event that matches current state all yield DeltaNone.
// Apply never fetches.
func Apply(event bus.ChangeEvent, c *cache.Cache) Delta {
	if c == nil || !c.Alive() || event == nil {
		return None
	}

	if e, ok := event.(bus.Follow); ok {
		return applyFollow(e, c)
	}

	ce, ok := event.(bus.ContentEvent)
	if !ok {
		return None
	}
	item, i, found := c.Lookup(ce.Target())
	if !found {
		return None
	}

	var changed bool
	switch e := event.(type) {
	case bus.Like:
		changed = item.SetLiked(e.DidLike)
	case bus.Bookmark:
		changed = item.SetBookmarked(e.DidBookmark)
	case bus.CommentCountDelta:
		changed = item.AddComments(e.Delta)
	case bus.Revision:
		changed = item.SetRevision(e.State)
	case bus.Solved:
		changed = item.SetSolved(e.State, e.Diagnosis)
	case bus.Visibility:
		if e.Removed {
			return remove(c, item.ID)
		}
		changed = item.SetVisibility(domain.Visible)
	}

	if !changed {
		return None
	}
	return update(i)
}

func remove(c *cache.Cache, id string) Delta {
	_, i, ok := c.Remove(id)
	if !ok {
		return None
	}
	if c.Len() == 0 {
		return Delta{Kind: DeltaReload}
	}
	return Delta{Kind: DeltaRemove, Indexes: []int{i}}
}

func applyFollow(e bus.Follow, c *cache.Cache) Delta {
	var touched []int
	for _, i := range c.IndexesWhere(func(item *domain.ContentItem) bool { return item.AuthorID == e.UserID }) {
		if c.At(i).SetAuthorFollowed(e.Following) {
			touched = append(touched, i)
		}
	}
	if len(touched) == 0 {
		return None
	}
	return update(touched...)
}
