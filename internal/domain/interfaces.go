package domain

import "context"

// ContentService: network operations against the platform backend.
// Implemented by contentapi (HTTP) and localstore (embedded).
// Every call blocks; callers run it off the update loop.
type ContentService interface {
	LikeItem(ctx context.Context, id string) error
	UnlikeItem(ctx context.Context, id string) error
	BookmarkItem(ctx context.Context, id string) error
	UnbookmarkItem(ctx context.Context, id string) error

	// FetchPage returns one page of the list selected by filter. An empty
	// cursor requests the first page; an empty Page.Next means exhaustion.
	FetchPage(ctx context.Context, filter Filter, cursor Cursor) (Page, error)

	AddComment(ctx context.Context, contentID, body string) (*Comment, error)
	DeleteComment(ctx context.Context, contentID, commentID string) error
	AddRevision(ctx context.Context, contentID, body string) (*Revision, error)

	// MarkSolved marks a case solved; diagnosis may be empty
	MarkSolved(ctx context.Context, contentID, diagnosis string) error
	SetVisibility(ctx context.Context, contentID string, v VisibilityState) error

	FollowUser(ctx context.Context, userID string) error
	UnfollowUser(ctx context.Context, userID string) error
}

// Identity supplies the signed-in user. Only used for UI affordances such as
// whether to offer editing of an item; the sync core never consults it.
type Identity interface {
	CurrentUserID() string
}
