// Package cache holds the per-screen ordered collection of content snapshots.
//
// A Cache is owned by exactly one screen and is only touched from the update
// loop. It is not safe for concurrent use.
package cache

import (
	"context"

	"github.com/dev-Pau/evidens/internal/domain"
)

// Cache is one screen's ordered view of a remote list.
// Insertion order is display order. index maps content id to position.
type Cache struct {
	items  []*domain.ContentItem
	index  map[string]int
	cursor domain.Cursor
	loaded bool
	gen    uint64

	alive  bool
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a live cache. Its Context is canceled by Close so in-flight
// requests issued on behalf of the screen stop when the screen goes away.
func New(parent context.Context) *Cache {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Cache{
		index:  make(map[string]int),
		alive:  true,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is canceled once the cache is closed
func (c *Cache) Context() context.Context { return c.ctx }

// Alive reports whether the owning screen is still live
func (c *Cache) Alive() bool { return c.alive }

// Close marks the cache dead. Later mutations are silent no-ops.
func (c *Cache) Close() {
	if !c.alive {
		return
	}
	c.alive = false
	c.cancel()
}

// Loaded reports whether the first page has arrived (gates first render)
func (c *Cache) Loaded() bool { return c.loaded }

// Generation counts first pages merged so far. Each Replace bumps it.
func (c *Cache) Generation() uint64 { return c.gen }

// Cursor returns the continuation token of the last fetched page
func (c *Cache) Cursor() domain.Cursor { return c.cursor }

// Exhausted reports whether the remote list has no further pages
func (c *Cache) Exhausted() bool { return c.loaded && c.cursor.IsNull() }

// Len returns the number of cached items
func (c *Cache) Len() int { return len(c.items) }

// Items returns the cached items in display order. The slice is shared;
// callers must not modify it.
func (c *Cache) Items() []*domain.ContentItem { return c.items }

// At returns the item at position i, or nil when out of range
func (c *Cache) At(i int) *domain.ContentItem {
	if i < 0 || i >= len(c.items) {
		return nil
	}
	return c.items[i]
}

// Lookup finds an item by content id
func (c *Cache) Lookup(id string) (*domain.ContentItem, int, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, -1, false
	}
	return c.items[i], i, true
}

// Replace swaps the whole collection for a first page and resets the cursor
func (c *Cache) Replace(items []*domain.ContentItem, cursor domain.Cursor) {
	if !c.alive {
		return
	}
	c.items = make([]*domain.ContentItem, 0, len(items))
	c.index = make(map[string]int, len(items))
	c.appendUnique(items)
	c.cursor = cursor
	c.loaded = true
	c.gen++
}

// Append adds a next page after the existing items and replaces the cursor.
// Items already present (the list shifted between pages) are refreshed in
// place rather than duplicated. Returns the number of rows added.
func (c *Cache) Append(items []*domain.ContentItem, cursor domain.Cursor) int {
	if !c.alive {
		return 0
	}
	added := c.appendUnique(items)
	c.cursor = cursor
	c.loaded = true
	return added
}

func (c *Cache) appendUnique(items []*domain.ContentItem) int {
	added := 0
	for _, item := range items {
		if item == nil {
			continue
		}
		if i, ok := c.index[item.ID]; ok {
			c.items[i] = item
			continue
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
		added++
	}
	return added
}

// Remove deletes the row for id and returns its former position
func (c *Cache) Remove(id string) (*domain.ContentItem, int, bool) {
	if !c.alive {
		return nil, -1, false
	}
	i, ok := c.index[id]
	if !ok {
		return nil, -1, false
	}
	item := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	c.reindexFrom(i)
	return item, i, true
}

// Insert puts item back at position i (clamped). Used to undo a removal.
// Inserting an id that is already present is a no-op.
func (c *Cache) Insert(i int, item *domain.ContentItem) bool {
	if !c.alive || item == nil {
		return false
	}
	if _, ok := c.index[item.ID]; ok {
		return false
	}
	if i < 0 {
		i = 0
	}
	if i > len(c.items) {
		i = len(c.items)
	}
	c.items = append(c.items, nil)
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = item
	c.reindexFrom(i)
	return true
}

// IndexesWhere returns the positions of every item matching fn
func (c *Cache) IndexesWhere(fn func(*domain.ContentItem) bool) []int {
	var out []int
	for i, item := range c.items {
		if fn(item) {
			out = append(out, i)
		}
	}
	return out
}

func (c *Cache) reindexFrom(start int) {
	for j := start; j < len(c.items); j++ {
		c.index[c.items[j].ID] = j
	}
}
