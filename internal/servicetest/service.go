// Package servicetest provides a scriptable in-memory domain.ContentService
// for tests.
package servicetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dev-Pau/evidens/internal/domain"
)

// Service records every call and answers from canned pages.
// Pages are keyed by the cursor passed to FetchPage; "" is the first page.
type Service struct {
	mu      sync.Mutex
	Pages   map[domain.Cursor]domain.Page
	Fail    map[string]error // op name -> error to return
	calls   []string
	nextSeq int
}

// New creates an empty fake
func New() *Service {
	return &Service{
		Pages: make(map[domain.Cursor]domain.Page),
		Fail:  make(map[string]error),
	}
}

// FailWith makes every later call to op return err
func (s *Service) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fail[op] = err
}

// Calls returns the ops invoked so far, formatted "op:arg"
func (s *Service) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Count returns how many times op was called
func (s *Service) Count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.HasPrefix(c, op+":") {
			n++
		}
	}
	return n
}

func (s *Service) record(ctx context.Context, op, arg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op+":"+arg)
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Fail[op]
}

func (s *Service) LikeItem(ctx context.Context, id string) error {
	return s.record(ctx, "LikeItem", id)
}

func (s *Service) UnlikeItem(ctx context.Context, id string) error {
	return s.record(ctx, "UnlikeItem", id)
}

func (s *Service) BookmarkItem(ctx context.Context, id string) error {
	return s.record(ctx, "BookmarkItem", id)
}

func (s *Service) UnbookmarkItem(ctx context.Context, id string) error {
	return s.record(ctx, "UnbookmarkItem", id)
}

// FetchPage returns clones of the canned page so screens never share items
func (s *Service) FetchPage(ctx context.Context, filter domain.Filter, cursor domain.Cursor) (domain.Page, error) {
	if err := s.record(ctx, "FetchPage", string(cursor)); err != nil {
		return domain.Page{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.Pages[cursor]
	if !ok {
		return domain.Page{}, nil
	}
	out := domain.Page{Next: page.Next, Items: make([]*domain.ContentItem, len(page.Items))}
	for i, item := range page.Items {
		out.Items[i] = item.Clone()
	}
	return out, nil
}

func (s *Service) AddComment(ctx context.Context, contentID, body string) (*domain.Comment, error) {
	if err := s.record(ctx, "AddComment", contentID); err != nil {
		return nil, err
	}
	return &domain.Comment{ID: s.mintID("c"), ContentID: contentID, Body: body, CreatedAt: time.Now()}, nil
}

func (s *Service) DeleteComment(ctx context.Context, contentID, commentID string) error {
	return s.record(ctx, "DeleteComment", contentID)
}

func (s *Service) AddRevision(ctx context.Context, contentID, body string) (*domain.Revision, error) {
	if err := s.record(ctx, "AddRevision", contentID); err != nil {
		return nil, err
	}
	return &domain.Revision{ID: s.mintID("r"), ContentID: contentID, Body: body, State: domain.RevisionUpdated, CreatedAt: time.Now()}, nil
}

func (s *Service) MarkSolved(ctx context.Context, contentID, diagnosis string) error {
	return s.record(ctx, "MarkSolved", contentID)
}

func (s *Service) SetVisibility(ctx context.Context, contentID string, v domain.VisibilityState) error {
	return s.record(ctx, "SetVisibility", contentID)
}

func (s *Service) FollowUser(ctx context.Context, userID string) error {
	return s.record(ctx, "FollowUser", userID)
}

func (s *Service) UnfollowUser(ctx context.Context, userID string) error {
	return s.record(ctx, "UnfollowUser", userID)
}

func (s *Service) mintID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return fmt.Sprintf("%s%d", prefix, s.nextSeq)
}

var _ domain.ContentService = (*Service)(nil)
