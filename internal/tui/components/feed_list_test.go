package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/assert/v2"

	"github.com/dev-Pau/evidens/internal/domain"
)

func feedItems(titles ...string) []*domain.ContentItem {
	out := make([]*domain.ContentItem, len(titles))
	for i, title := range titles {
		out[i] = &domain.ContentItem{ID: title, Title: title, Author: "Dr. Vidal"}
	}
	return out
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newList(items []*domain.ContentItem) *FeedList {
	l := NewFeedList("Home")
	l.SetSize(60, 20)
	l.SetFocused(true)
	l.SetItems(items)
	return l
}

func TestFeedListNavigation(t *testing.T) {
	l := newList(feedItems("a", "b", "c"))

	l.Update(keyPress("j"))
	l.Update(keyPress("j"))
	l.Update(keyPress("j"))
	assert.Equal(t, l.Cursor(), 2)
	assert.Equal(t, l.Selected().ID, "c")

	l.Update(keyPress("g"))
	assert.Equal(t, l.SelectedIndex(), 0)

	l.Update(keyPress("G"))
	assert.Equal(t, l.SelectedIndex(), 2)
}

func TestFeedListIgnoresKeysWhenBlurred(t *testing.T) {
	l := newList(feedItems("a", "b"))
	l.SetFocused(false)
	l.Update(keyPress("j"))
	assert.Equal(t, l.Cursor(), 0)
}

func TestFeedListSetItemsClampsCursor(t *testing.T) {
	items := feedItems("a", "b", "c")
	l := newList(items)
	l.Update(keyPress("G"))

	l.SetItems(items[:1])
	assert.Equal(t, l.Cursor(), 0)
	assert.Equal(t, l.Selected().ID, "a")

	l.SetItems(nil)
	assert.Equal(t, l.SelectedIndex(), -1)
	assert.Equal(t, l.Selected() == nil, true)
}

func TestFeedListRowRemovedAboveCursor(t *testing.T) {
	items := feedItems("a", "b", "c")
	l := newList(items)
	l.Update(keyPress("G"))

	l.RowRemoved(0)
	l.SetItems(items[1:])
	assert.Equal(t, l.Selected().ID, "c")
}

func TestFeedListFilter(t *testing.T) {
	items := feedItems("Chest pain", "Rash on forearm", "Chronic cough")
	l := newList(items)

	l.ToggleFilter()
	assert.Equal(t, l.IsFilterTyping(), true)
	for _, r := range "rash" {
		l.Update(keyPress(string(r)))
	}
	assert.Equal(t, l.Len(), 1)
	assert.Equal(t, l.SelectedIndex(), 1)

	l.Update(keyPress("enter"))
	assert.Equal(t, l.IsFilterTyping(), false)
	assert.Equal(t, l.IsFiltering(), true)

	// re-sync keeps the filter applied
	l.SetItems(items)
	assert.Equal(t, l.Len(), 1)

	l.Update(keyPress("esc"))
	assert.Equal(t, l.IsFiltering(), false)
	assert.Equal(t, l.Len(), 3)
}

func TestFeedListRendersEmptyAndLoading(t *testing.T) {
	l := newList(nil)
	l.SetLoading(true)
	assert.Equal(t, l.IsLoading(), true)
	assert.NotEqual(t, l.View(), "")

	l.SetItems(feedItems("a"))
	assert.Equal(t, l.IsLoading(), false)
}

func TestInputModalSubmitAndCancel(t *testing.T) {
	m := NewInputModal()
	m.Show("Comment", "Say something", 3)
	assert.Equal(t, m.IsVisible(), true)

	m, _, _ = m.Update(keyPress("o"))
	m, _, _ = m.Update(keyPress("k"))
	m, _, submitted := m.Update(keyPress("enter"))
	assert.Equal(t, submitted, true)
	assert.Equal(t, m.Value(), "ok")
	assert.Equal(t, m.Purpose(), 3)

	m, _, submitted = m.Update(keyPress("esc"))
	assert.Equal(t, submitted, false)
	assert.Equal(t, m.IsVisible(), false)
}

func TestWordWrap(t *testing.T) {
	assert.Equal(t, wordWrap("one two three", 7), "one two\nthree")
	assert.Equal(t, wordWrap("", 5), "")
}
