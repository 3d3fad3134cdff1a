package domain

import (
	"fmt"
	"time"
)

// ContentKind distinguishes content types
type ContentKind int

const (
	KindCase ContentKind = iota
	KindPost
)

// String returns the wire name of the kind
func (k ContentKind) String() string {
	switch k {
	case KindCase:
		return "case"
	case KindPost:
		return "post"
	default:
		return "unknown"
	}
}

// ParseContentKind converts a wire name to a ContentKind
func ParseContentKind(s string) (ContentKind, error) {
	switch s {
	case "case":
		return KindCase, nil
	case "post":
		return KindPost, nil
	default:
		return 0, fmt.Errorf("unknown content kind %q", s)
	}
}

// RevisionState tracks whether a case was revised after publication
type RevisionState int

const (
	RevisionNone RevisionState = iota
	RevisionUpdated
	RevisionDiagnosed
)

func (r RevisionState) String() string {
	switch r {
	case RevisionNone:
		return "none"
	case RevisionUpdated:
		return "updated"
	case RevisionDiagnosed:
		return "diagnosed"
	default:
		return "unknown"
	}
}

// VisibilityState is whether an item is shown to other users
type VisibilityState int

const (
	Visible VisibilityState = iota
	Hidden
)

func (v VisibilityState) String() string {
	if v == Hidden {
		return "hidden"
	}
	return "visible"
}

// SolvedState is whether a case has a confirmed diagnosis
type SolvedState int

const (
	Unsolved SolvedState = iota
	Solved
)

func (s SolvedState) String() string {
	if s == Solved {
		return "solved"
	}
	return "unsolved"
}

// ContentItem is a snapshot of a case or post as held by one screen.
// ID is immutable and unique within its Kind. The social fields are mutable
// and must only be changed through the methods below so that DidLike and
// LikeCount never drift apart.
type ContentItem struct {
	ID        string      // Server-assigned identifier
	Kind      ContentKind // Case or post
	AuthorID  string      // Author user ID
	Author    string      // Author display name
	Title     string      // Case title (empty for posts)
	Body      string      // Text content
	CreatedAt time.Time   // Publication time

	LikeCount      int
	DidLike        bool
	DidBookmark    bool
	CommentCount   int
	Revision       RevisionState
	Visibility     VisibilityState
	Solved         SolvedState
	Diagnosis      string // Set once solved with a diagnosis
	AuthorFollowed bool   // Whether the current user follows the author
}

// SetLiked sets DidLike and moves LikeCount by exactly one when the flag
// actually changes. It reports whether anything changed.
func (c *ContentItem) SetLiked(liked bool) bool {
	if c.DidLike == liked {
		return false
	}
	c.DidLike = liked
	if liked {
		c.LikeCount++
	} else if c.LikeCount > 0 {
		c.LikeCount--
	}
	return true
}

// SetBookmarked sets DidBookmark and reports whether it changed
func (c *ContentItem) SetBookmarked(bookmarked bool) bool {
	if c.DidBookmark == bookmarked {
		return false
	}
	c.DidBookmark = bookmarked
	return true
}

// AddComments moves CommentCount by delta, clamped at zero
func (c *ContentItem) AddComments(delta int) bool {
	next := c.CommentCount + delta
	if next < 0 {
		next = 0
	}
	if next == c.CommentCount {
		return false
	}
	c.CommentCount = next
	return true
}

// SetRevision sets the revision state and reports whether it changed
func (c *ContentItem) SetRevision(state RevisionState) bool {
	if c.Revision == state {
		return false
	}
	c.Revision = state
	return true
}

// SetSolved marks the item solved or unsolved. A non-empty diagnosis also
// moves the revision state to diagnosed.
func (c *ContentItem) SetSolved(state SolvedState, diagnosis string) bool {
	changed := false
	if c.Solved != state {
		c.Solved = state
		changed = true
	}
	if state == Solved && diagnosis != "" {
		if c.Diagnosis != diagnosis {
			c.Diagnosis = diagnosis
			changed = true
		}
		if c.SetRevision(RevisionDiagnosed) {
			changed = true
		}
	}
	return changed
}

// SetVisibility sets the visibility state and reports whether it changed
func (c *ContentItem) SetVisibility(v VisibilityState) bool {
	if c.Visibility == v {
		return false
	}
	c.Visibility = v
	return true
}

// SetAuthorFollowed sets the follow flag and reports whether it changed
func (c *ContentItem) SetAuthorFollowed(following bool) bool {
	if c.AuthorFollowed == following {
		return false
	}
	c.AuthorFollowed = following
	return true
}

// Clone returns a copy safe to hand to another screen's cache
func (c *ContentItem) Clone() *ContentItem {
	cp := *c
	return &cp
}

// DisplayTitle returns the title for list rendering
func (c *ContentItem) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	const max = 60
	body := []rune(c.Body)
	if len(body) > max {
		return string(body[:max-1]) + "…"
	}
	return string(body)
}

// Cursor is an opaque pagination continuation token. The empty cursor
// means there are no further pages.
type Cursor string

// IsNull reports whether the cursor marks exhaustion
func (c Cursor) IsNull() bool { return c == "" }

// Page is one fetched slice of a remote list
type Page struct {
	Items []*ContentItem
	Next  Cursor // Empty when the list is exhausted
}

// FeedKind names the remote list a screen shows
type FeedKind int

const (
	FeedHome FeedKind = iota
	FeedSearch
	FeedProfile
	FeedBookmarks
	FeedCaseDetail
)

func (f FeedKind) String() string {
	switch f {
	case FeedHome:
		return "home"
	case FeedSearch:
		return "search"
	case FeedProfile:
		return "profile"
	case FeedBookmarks:
		return "bookmarks"
	case FeedCaseDetail:
		return "case"
	default:
		return "unknown"
	}
}

// Filter selects which remote list to page through
type Filter struct {
	Feed   FeedKind
	Query  string // FeedSearch
	UserID string // FeedProfile
	CaseID string // FeedCaseDetail: the case and its related items
	Limit  int    // Page size; 0 lets the service decide
}

// Comment is a reply attached to a content item
type Comment struct {
	ID        string
	ContentID string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// Revision is an update appended to a case by its author
type Revision struct {
	ID        string
	ContentID string
	Body      string
	State     RevisionState
	CreatedAt time.Time
}
