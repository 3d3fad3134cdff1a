package cache

import (
	"context"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/dev-Pau/evidens/internal/domain"
)

func items(ids ...string) []*domain.ContentItem {
	out := make([]*domain.ContentItem, len(ids))
	for i, id := range ids {
		out[i] = &domain.ContentItem{ID: id}
	}
	return out
}

func ids(c *Cache) []string {
	out := []string{}
	for _, item := range c.Items() {
		out = append(out, item.ID)
	}
	return out
}

func TestReplaceResetsContents(t *testing.T) {
	c := New(context.Background())
	assert.Equal(t, c.Loaded(), false)
	assert.Equal(t, c.Exhausted(), false)

	c.Replace(items("a", "b"), "next")
	c.Replace(items("a", "b"), "next")

	assert.Equal(t, ids(c), []string{"a", "b"})
	assert.Equal(t, c.Cursor(), domain.Cursor("next"))
	assert.Equal(t, c.Loaded(), true)
	assert.Equal(t, c.Generation(), uint64(2))

	c.Append(items("c"), "")
	assert.Equal(t, c.Generation(), uint64(2))
}

func TestAppendDeduplicates(t *testing.T) {
	c := New(context.Background())
	c.Replace(items("a", "b"), "p2")

	fresh := &domain.ContentItem{ID: "b", LikeCount: 9}
	added := c.Append([]*domain.ContentItem{fresh, {ID: "c"}}, "")

	assert.Equal(t, added, 1)
	assert.Equal(t, ids(c), []string{"a", "b", "c"})
	item, i, ok := c.Lookup("b")
	assert.Equal(t, ok, true)
	assert.Equal(t, i, 1)
	assert.Equal(t, item.LikeCount, 9)
	assert.Equal(t, c.Exhausted(), true)
}

func TestRemoveAndInsertKeepIndex(t *testing.T) {
	c := New(context.Background())
	c.Replace(items("a", "b", "c", "d"), "")

	removed, pos, ok := c.Remove("b")
	assert.Equal(t, ok, true)
	assert.Equal(t, pos, 1)
	assert.Equal(t, ids(c), []string{"a", "c", "d"})
	_, i, _ := c.Lookup("d")
	assert.Equal(t, i, 2)

	assert.Equal(t, c.Insert(pos, removed), true)
	assert.Equal(t, ids(c), []string{"a", "b", "c", "d"})
	_, i, _ = c.Lookup("d")
	assert.Equal(t, i, 3)

	// duplicates are refused
	assert.Equal(t, c.Insert(0, &domain.ContentItem{ID: "a"}), false)
}

func TestInsertClampsPosition(t *testing.T) {
	c := New(context.Background())
	c.Replace(items("a"), "")
	c.Insert(10, &domain.ContentItem{ID: "z"})
	assert.Equal(t, ids(c), []string{"a", "z"})
}

func TestClosedCacheIgnoresMutation(t *testing.T) {
	c := New(context.Background())
	c.Replace(items("a"), "p2")
	c.Close()

	assert.Equal(t, c.Alive(), false)
	assert.NotEqual(t, c.Context().Err(), nil)

	c.Replace(items("x", "y"), "")
	assert.Equal(t, c.Append(items("z"), ""), 0)
	_, _, ok := c.Remove("a")
	assert.Equal(t, ok, false)
	assert.Equal(t, ids(c), []string{"a"})

	// closing twice is fine
	c.Close()
}

func TestLookupMissing(t *testing.T) {
	c := New(context.TODO())
	_, i, ok := c.Lookup("nope")
	assert.Equal(t, ok, false)
	assert.Equal(t, i, -1)
	assert.Equal(t, c.At(0) == nil, true)
}
