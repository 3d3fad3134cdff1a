package tui

import (
	"slices"

	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/reconcile"
	"github.com/dev-Pau/evidens/internal/screen"
	"github.com/dev-Pau/evidens/internal/tui/components"
)

// tab is one open screen and the list that renders its cache
type tab struct {
	screen *screen.Screen
	list   *components.FeedList
	title  string
	fixed  bool // the four top-level tabs can't be closed
}

// sync re-renders the list from the cache and pager state
func (t *tab) sync() {
	t.list.SetItems(t.screen.Cache.Items())
	t.list.SetLoading(t.screen.Pager.Loading())
	t.list.SetExhausted(t.screen.Cache.Exhausted())
}

// apply renders a delta the cache already reflects
func (t *tab) apply(d reconcile.Delta) {
	if d.Kind == reconcile.DeltaRemove {
		// highest first so earlier indexes stay valid
		idx := slices.Clone(d.Indexes)
		slices.Sort(idx)
		slices.Reverse(idx)
		for _, i := range idx {
			t.list.RowRemoved(i)
		}
	}
	t.sync()
}

// searchable reports whether a first page makes sense yet
func (t *tab) searchable() bool {
	f := t.screen.Pager.Filter()
	return f.Feed != domain.FeedSearch || f.Query != ""
}

// reloadQueue collects screens whose cache emptied out during a publish.
// Delta callbacks can't return commands, so Update drains it afterwards.
type reloadQueue struct {
	ids []string
}

func (q *reloadQueue) add(id string) {
	if !slices.Contains(q.ids, id) {
		q.ids = append(q.ids, id)
	}
}

func (q *reloadQueue) drain() []string {
	ids := q.ids
	q.ids = nil
	return ids
}
