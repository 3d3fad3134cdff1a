package contentapi

import (
	"time"

	"github.com/dev-Pau/evidens/internal/domain"
)

// MapPage converts a list response to a domain page. Items with an
// unknown kind are skipped.
func MapPage(resp PageResponse) domain.Page {
	items := make([]*domain.ContentItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		item, ok := MapItem(it)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return domain.Page{Items: items, Next: domain.Cursor(resp.NextCursor)}
}

// MapItem converts one API item
func MapItem(it Item) (*domain.ContentItem, bool) {
	kind, err := domain.ParseContentKind(it.Kind)
	if err != nil || it.ID == "" {
		return nil, false
	}

	item := &domain.ContentItem{
		ID:             it.ID,
		Kind:           kind,
		AuthorID:       it.Author.ID,
		Author:         it.Author.Name,
		Title:          it.Title,
		Body:           it.Body,
		CreatedAt:      time.Unix(it.CreatedAt, 0),
		LikeCount:      max(it.LikeCount, 0),
		DidLike:        it.DidLike,
		DidBookmark:    it.DidBookmark,
		CommentCount:   max(it.CommentCount, 0),
		Revision:       mapRevisionState(it.Revision),
		AuthorFollowed: it.AuthorFollowed,
	}
	// a liked item has at least the current user's like
	if item.DidLike && item.LikeCount == 0 {
		item.LikeCount = 1
	}
	if it.Visibility == "hidden" {
		item.Visibility = domain.Hidden
	}
	if it.Solved {
		item.Solved = domain.Solved
	}
	if it.Diagnosis != nil {
		item.Diagnosis = *it.Diagnosis
	}
	return item, true
}

// MapComment converts an API comment
func MapComment(c Comment) *domain.Comment {
	return &domain.Comment{
		ID:        c.ID,
		ContentID: c.ContentID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: time.Unix(c.CreatedAt, 0),
	}
}

// MapRevision converts an API revision
func MapRevision(r Revision) *domain.Revision {
	return &domain.Revision{
		ID:        r.ID,
		ContentID: r.ContentID,
		Body:      r.Body,
		State:     mapRevisionState(r.State),
		CreatedAt: time.Unix(r.CreatedAt, 0),
	}
}

func mapRevisionState(s string) domain.RevisionState {
	switch s {
	case "updated":
		return domain.RevisionUpdated
	case "diagnosed":
		return domain.RevisionDiagnosed
	default:
		return domain.RevisionNone
	}
}
