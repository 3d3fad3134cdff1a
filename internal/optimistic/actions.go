package optimistic

import (
	"context"
	"errors"
	"strings"

	"github.com/dev-Pau/evidens/internal/bus"
	"github.com/dev-Pau/evidens/internal/cache"
	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/reconcile"
)

var (
	// ErrEmptyText is returned for a comment or revision with no text
	ErrEmptyText = errors.New("text is empty")

	// ErrNotACase is returned for case-only actions on a post
	ErrNotACase = errors.New("only cases can be revised or solved")
)

// ActionKind names a user action
type ActionKind int

const (
	ActLike ActionKind = iota
	ActBookmark
	ActComment
	ActDeleteComment
	ActRevision
	ActSolve
	ActHide
	ActUnhide
	ActFollow
)

func (k ActionKind) String() string {
	switch k {
	case ActLike:
		return "like"
	case ActBookmark:
		return "bookmark"
	case ActComment:
		return "comment"
	case ActDeleteComment:
		return "delete_comment"
	case ActRevision:
		return "revision"
	case ActSolve:
		return "solve"
	case ActHide:
		return "hide"
	case ActUnhide:
		return "unhide"
	case ActFollow:
		return "follow"
	default:
		return "unknown"
	}
}

// failureTitle is the alert title shown when the remote call fails
func (k ActionKind) failureTitle() string {
	switch k {
	case ActLike:
		return "Couldn't update like"
	case ActBookmark:
		return "Couldn't update bookmark"
	case ActComment:
		return "Couldn't post comment"
	case ActDeleteComment:
		return "Couldn't delete comment"
	case ActRevision:
		return "Couldn't add revision"
	case ActSolve:
		return "Couldn't mark as solved"
	case ActHide, ActUnhide:
		return "Couldn't change visibility"
	case ActFollow:
		return "Couldn't update follow"
	default:
		return "Something went wrong"
	}
}

// Action is a user intent against one cached item
type Action struct {
	Kind      ActionKind
	ContentID string
	Text      string // comment body, revision body or diagnosis
	CommentID string // ActDeleteComment
}

func ToggleLike(contentID string) Action     { return Action{Kind: ActLike, ContentID: contentID} }
func ToggleBookmark(contentID string) Action { return Action{Kind: ActBookmark, ContentID: contentID} }
func Hide(contentID string) Action           { return Action{Kind: ActHide, ContentID: contentID} }
func Unhide(contentID string) Action         { return Action{Kind: ActUnhide, ContentID: contentID} }

// ToggleFollow follows or unfollows the author of contentID
func ToggleFollow(contentID string) Action { return Action{Kind: ActFollow, ContentID: contentID} }

func AddComment(contentID, text string) Action {
	return Action{Kind: ActComment, ContentID: contentID, Text: text}
}

func DeleteComment(contentID, commentID string) Action {
	return Action{Kind: ActDeleteComment, ContentID: contentID, CommentID: commentID}
}

func AddRevision(contentID, text string) Action {
	return Action{Kind: ActRevision, ContentID: contentID, Text: text}
}

// MarkSolved marks a case solved; diagnosis may be empty
func MarkSolved(contentID, diagnosis string) Action {
	return Action{Kind: ActSolve, ContentID: contentID, Text: diagnosis}
}

// remoteCall runs off-loop and may fill in what the server created
type remoteCall func(ctx context.Context, svc domain.ContentService, out *Outcome) error

// change is the optimistic half of an action: what was done locally, how
// to undo it, the event to publish on success, and the remote call.
type change struct {
	key   pendingKey
	delta reconcile.Delta
	event bus.ChangeEvent
	call  remoteCall
	undo  func(c *cache.Cache) reconcile.Delta
	// held reports whether the cache still shows the local half. When it
	// doesn't, the confirmed event is reconciled on this screen too.
	held  func(c *cache.Cache) bool
}

type pendingKey struct {
	target string // content id, or author id for follows
	kind   ActionKind
}

func updated(i int) reconcile.Delta {
	return reconcile.Delta{Kind: reconcile.DeltaUpdate, Indexes: []int{i}}
}

// still returns the row for item if the cache holds that exact snapshot.
// A refresh that replaced the snapshot means the server state already won.
func still(c *cache.Cache, item *domain.ContentItem) (int, bool) {
	cur, i, ok := c.Lookup(item.ID)
	if !ok || cur != item {
		return -1, false
	}
	return i, true
}

func holds(items ...*domain.ContentItem) func(c *cache.Cache) bool {
	return func(c *cache.Cache) bool {
		for _, item := range items {
			if _, ok := still(c, item); !ok {
				return false
			}
		}
		return true
	}
}

// plan applies the local half of a to item at index i
func plan(a Action, c *cache.Cache, item *domain.ContentItem, i int) (*change, error) {
	ch, err := planChange(a, c, item, i)
	if err != nil {
		return nil, err
	}
	if ch.held == nil {
		ch.held = holds(item)
	}
	return ch, nil
}

func planChange(a Action, c *cache.Cache, item *domain.ContentItem, i int) (*change, error) {
	id := item.ID
	key := pendingKey{target: id, kind: a.Kind}

	switch a.Kind {
	case ActLike:
		target := !item.DidLike
		item.SetLiked(target)
		return &change{
			key:   key,
			delta: updated(i),
			event: bus.Like{ContentID: id, DidLike: target},
			call: func(ctx context.Context, svc domain.ContentService, _ *Outcome) error {
				if target {
					return svc.LikeItem(ctx, id)
				}
				return svc.UnlikeItem(ctx, id)
			},
			undo: func(c *cache.Cache) reconcile.Delta {
				if j, ok := still(c, item); ok && item.SetLiked(!target) {
					return updated(j)
				}
				return reconcile.None
			},
		}, nil

	case ActBookmark:
		target := !item.DidBookmark
		item.SetBookmarked(target)
		return &change{
			key:   key,
			delta: updated(i),
			event: bus.Bookmark{ContentID: id, DidBookmark: target},
			call: func(ctx context.Context, svc domain.ContentService, _ *Outcome) error {
				if target {
					return svc.BookmarkItem(ctx, id)
				}
				return svc.UnbookmarkItem(ctx, id)
			},
			undo: func(c *cache.Cache) reconcile.Delta {
				if j, ok := still(c, item); ok && item.SetBookmarked(!target) {
					return updated(j)
				}
				return reconcile.None
			},
		}, nil

	case ActComment:
		body := strings.TrimSpace(a.Text)
		if body == "" {
			return nil, ErrEmptyText
		}
		item.AddComments(1)
		return &change{
			key:   key,
			delta: updated(i),
			event: bus.CommentCountDelta{ContentID: id, Delta: 1},
			call: func(ctx context.Context, svc domain.ContentService, out *Outcome) error {
				comment, err := svc.AddComment(ctx, id, body)
				out.Comment = comment
				return err
			},
			undo: func(c *cache.Cache) reconcile.Delta {
				if j, ok := still(c, item); ok && item.AddComments(-1) {
					return updated(j)
				}
				return reconcile.None
			},
		}, nil

	case ActDeleteComment:
		commentID := a.CommentID
		// The event goes out even when this copy was already at zero: the
		// server count is the authority and other screens may hold a fresher one.
		did := item.AddComments(-1)
		return &change{
			key:   key,
			delta: updated(i),
			event: bus.CommentCountDelta{ContentID: id, Delta: -1},
			call: func(ctx context.Context, svc domain.ContentService, _ *Outcome) error {
				return svc.DeleteComment(ctx, id, commentID)
			},
			undo: func(c *cache.Cache) reconcile.Delta {
				if j, ok := still(c, item); ok && did && item.AddComments(1) {
					return updated(j)
				}
				return reconcile.None
			},
		}, nil

	case ActRevision:
		if item.Kind != domain.KindCase {
			return nil, ErrNotACase
		}
		body := strings.TrimSpace(a.Text)
		if body == "" {
			return nil, ErrEmptyText
		}
		prev := item.Revision
		next := domain.RevisionUpdated
		if prev == domain.RevisionDiagnosed {
			next = prev
		}
		item.SetRevision(next)
		return &change{
			key:   key,
			delta: updated(i),
			event: bus.Revision{ContentID: id, State: next},
			call: func(ctx context.Context, svc domain.ContentService, out *Outcome) error {
				rev, err := svc.AddRevision(ctx, id, body)
				out.Revision = rev
				return err
			},
			undo: func(c *cache.Cache) reconcile.Delta {
				if j, ok := still(c, item); ok && item.SetRevision(prev) {
					return updated(j)
				}
				return reconcile.None
			},
		}, nil

	case ActSolve:
		if item.Kind != domain.KindCase {
			return nil, ErrNotACase
		}
		diagnosis := strings.TrimSpace(a.Text)
		prevSolved, prevDiag, prevRev := item.Solved, item.Diagnosis, item.Revision
		item.SetSolved(domain.Solved, diagnosis)
		return &change{
			key:   key,
			delta: updated(i),
			event: bus.Solved{ContentID: id, State: domain.Solved, Diagnosis: diagnosis},
			call: func(ctx context.Context, svc domain.ContentService, _ *Outcome) error {
				return svc.MarkSolved(ctx, id, diagnosis)
			},
			undo: func(c *cache.Cache) reconcile.Delta {
				j, ok := still(c, item)
				if !ok {
					return reconcile.None
				}
				item.Solved, item.Diagnosis, item.Revision = prevSolved, prevDiag, prevRev
				return updated(j)
			},
		}, nil

	case ActHide:
		gen := c.Generation()
		c.Remove(id)
		delta := reconcile.Delta{Kind: reconcile.DeltaRemove, Indexes: []int{i}}
		if c.Len() == 0 {
			delta = reconcile.Delta{Kind: reconcile.DeltaReload}
		}
		return &change{
			key:   key,
			delta: delta,
			event: bus.Visibility{ContentID: id, Removed: true},
			call: func(ctx context.Context, svc domain.ContentService, _ *Outcome) error {
				return svc.SetVisibility(ctx, id, domain.Hidden)
			},
			undo: func(c *cache.Cache) reconcile.Delta {
				if c.Generation() != gen || !c.Insert(i, item) {
					return reconcile.None
				}
				_, j, _ := c.Lookup(id)
				return reconcile.Delta{Kind: reconcile.DeltaInsert, Indexes: []int{j}}
			},
			held: func(c *cache.Cache) bool {
				_, _, back := c.Lookup(id)
				return !back
			},
		}, nil

	case ActUnhide:
		did := item.SetVisibility(domain.Visible)
		return &change{
			key:   key,
			delta: updated(i),
			event: bus.Visibility{ContentID: id, Removed: false},
			call: func(ctx context.Context, svc domain.ContentService, _ *Outcome) error {
				return svc.SetVisibility(ctx, id, domain.Visible)
			},
			undo: func(c *cache.Cache) reconcile.Delta {
				if j, ok := still(c, item); ok && did && item.SetVisibility(domain.Hidden) {
					return updated(j)
				}
				return reconcile.None
			},
		}, nil

	case ActFollow:
		return planFollow(c, item)
	}

	return nil, errors.New("unknown action " + a.Kind.String())
}

// planFollow flips the follow flag on every cached item by the same author
func planFollow(c *cache.Cache, item *domain.ContentItem) (*change, error) {
	author := item.AuthorID
	target := !item.AuthorFollowed

	var flipped []*domain.ContentItem
	var rows []int
	for _, j := range c.IndexesWhere(func(it *domain.ContentItem) bool { return it.AuthorID == author }) {
		it := c.At(j)
		if it.SetAuthorFollowed(target) {
			flipped = append(flipped, it)
			rows = append(rows, j)
		}
	}

	return &change{
		key:   pendingKey{target: author, kind: ActFollow},
		held:  holds(flipped...),
		delta: reconcile.Delta{Kind: reconcile.DeltaUpdate, Indexes: rows},
		event: bus.Follow{UserID: author, Following: target},
		call: func(ctx context.Context, svc domain.ContentService, _ *Outcome) error {
			if target {
				return svc.FollowUser(ctx, author)
			}
			return svc.UnfollowUser(ctx, author)
		},
		undo: func(c *cache.Cache) reconcile.Delta {
			var back []int
			for _, it := range flipped {
				if j, ok := still(c, it); ok && it.SetAuthorFollowed(!target) {
					back = append(back, j)
				}
			}
			if len(back) == 0 {
				return reconcile.None
			}
			return reconcile.Delta{Kind: reconcile.DeltaUpdate, Indexes: back}
		},
	}, nil
}
