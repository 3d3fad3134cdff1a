package bus

import (
	"github.com/dev-Pau/evidens/internal/domain"
)

// ChangeEvent is the closed set of mutations carried by the bus.
// Events are plain values; they hold no reference to any screen.
type ChangeEvent interface {
	changeEvent() // marker method
	Kind() string
}

// ContentEvent is a ChangeEvent targeting a single content item
type ContentEvent interface {
	ChangeEvent
	Target() string
}

// Like is emitted when the current user likes or unlikes an item
type Like struct {
	ContentID string
	DidLike   bool
}

func (Like) changeEvent()     {}
func (Like) Kind() string     { return "like" }
func (e Like) Target() string { return e.ContentID }

// Bookmark is emitted when the current user bookmarks or unbookmarks an item
type Bookmark struct {
	ContentID   string
	DidBookmark bool
}

func (Bookmark) changeEvent()     {}
func (Bookmark) Kind() string     { return "bookmark" }
func (e Bookmark) Target() string { return e.ContentID }

// CommentCountDelta is emitted when a comment is added (+1) or deleted (-1)
type CommentCountDelta struct {
	ContentID string
	Delta     int
}

func (CommentCountDelta) changeEvent()     {}
func (CommentCountDelta) Kind() string     { return "comment_count" }
func (e CommentCountDelta) Target() string { return e.ContentID }

// Revision is emitted when a case gains a revision
type Revision struct {
	ContentID string
	State     domain.RevisionState
}

func (Revision) changeEvent()     {}
func (Revision) Kind() string     { return "revision" }
func (e Revision) Target() string { return e.ContentID }

// Solved is emitted when a case is marked solved
type Solved struct {
	ContentID string
	State     domain.SolvedState
	Diagnosis string
}

func (Solved) changeEvent()     {}
func (Solved) Kind() string     { return "solved" }
func (e Solved) Target() string { return e.ContentID }

// Visibility is emitted when an item is hidden (Removed) or shown again
type Visibility struct {
	ContentID string
	Removed   bool
}

func (Visibility) changeEvent()     {}
func (Visibility) Kind() string     { return "visibility" }
func (e Visibility) Target() string { return e.ContentID }

// Follow is emitted when the current user follows or unfollows an author.
// It targets every item by that author rather than a single item.
type Follow struct {
	UserID    string
	Following bool
}

func (Follow) changeEvent() {}
func (Follow) Kind() string { return "follow" }
