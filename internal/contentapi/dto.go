package contentapi

// PageResponse is the envelope for every list endpoint
type PageResponse struct {
	Items      []Item `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Item is a case or post as sent by the API
type Item struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"` // "case" or "post"
	Author         Author  `json:"author"`
	Title          string  `json:"title,omitempty"`
	Body           string  `json:"body"`
	CreatedAt      int64   `json:"created_at"` // unix seconds
	LikeCount      int     `json:"like_count"`
	DidLike        bool    `json:"did_like"`
	DidBookmark    bool    `json:"did_bookmark"`
	CommentCount   int     `json:"comment_count"`
	Revision       string  `json:"revision,omitempty"`   // "none", "updated", "diagnosed"
	Visibility     string  `json:"visibility,omitempty"` // "visible", "hidden"
	Solved         bool    `json:"solved"`
	Diagnosis      *string `json:"diagnosis,omitempty"`
	AuthorFollowed bool    `json:"author_followed"`
}

// Author is the embedded author summary on an Item
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment is a comment as sent by the API
type Comment struct {
	ID        string `json:"id"`
	ContentID string `json:"content_id"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at"`
}

// Revision is a case revision as sent by the API
type Revision struct {
	ID        string `json:"id"`
	ContentID string `json:"content_id"`
	Body      string `json:"body"`
	State     string `json:"state"`
	CreatedAt int64  `json:"created_at"`
}

// TextRequest carries a comment or revision body
type TextRequest struct {
	Body string `json:"body"`
}

// SolveRequest marks a case solved
type SolveRequest struct {
	Diagnosis string `json:"diagnosis,omitempty"`
}

// VisibilityRequest hides or shows an item
type VisibilityRequest struct {
	Visibility string `json:"visibility"`
}

// ErrorResponse is returned with non-2xx statuses
type ErrorResponse struct {
	Error struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"error"`
}
