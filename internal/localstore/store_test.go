package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/log"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "evidens.db"), "me", log.NullLogger())
	assert.Equal(t, err, nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedThree(t *testing.T, s *Store) []string {
	t.Helper()
	ids, err := s.Seed([]SeedItem{
		{Kind: domain.KindCase, AuthorID: "u1", Title: "Chest pain on exertion", Body: "55-year-old smoker", Likes: 5, Age: time.Hour},
		{Kind: domain.KindPost, AuthorID: "u2", Body: "Hydration matters", Age: 2 * time.Hour},
		{Kind: domain.KindCase, AuthorID: "me", Title: "Rash after amoxicillin", Body: "Maculopapular rash", Age: 3 * time.Hour},
	})
	assert.Equal(t, err, nil)
	return ids
}

func fetchAll(t *testing.T, s *Store, f domain.Filter) []*domain.ContentItem {
	t.Helper()
	var out []*domain.ContentItem
	cursor := domain.Cursor("")
	for {
		page, err := s.FetchPage(context.Background(), f, cursor)
		assert.Equal(t, err, nil)
		out = append(out, page.Items...)
		if page.Next.IsNull() {
			return out
		}
		cursor = page.Next
	}
}

func TestPagingWalksNewestFirst(t *testing.T) {
	s := openTest(t)
	ids := seedThree(t, s)

	page, err := s.FetchPage(context.Background(), domain.Filter{Feed: domain.FeedHome, Limit: 2}, "")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(page.Items), 2)
	assert.Equal(t, page.Items[0].ID, ids[0])
	assert.Equal(t, page.Next, domain.Cursor("2"))

	page, err = s.FetchPage(context.Background(), domain.Filter{Feed: domain.FeedHome, Limit: 2}, page.Next)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(page.Items), 1)
	assert.Equal(t, page.Items[0].ID, ids[2])
	assert.Equal(t, page.Next.IsNull(), true)
}

func TestBadCursor(t *testing.T) {
	s := openTest(t)
	_, err := s.FetchPage(context.Background(), domain.Filter{Feed: domain.FeedHome}, "abc")
	assert.NotEqual(t, err, nil)
}

func TestLikeIsIdempotentPerUser(t *testing.T) {
	s := openTest(t)
	ids := seedThree(t, s)
	ctx := context.Background()

	assert.Equal(t, s.LikeItem(ctx, ids[0]), nil)
	assert.Equal(t, s.LikeItem(ctx, ids[0]), nil)

	items := fetchAll(t, s, domain.Filter{Feed: domain.FeedHome})
	assert.Equal(t, items[0].LikeCount, 6)
	assert.Equal(t, items[0].DidLike, true)

	assert.Equal(t, s.UnlikeItem(ctx, ids[0]), nil)
	items = fetchAll(t, s, domain.Filter{Feed: domain.FeedHome})
	assert.Equal(t, items[0].LikeCount, 5)
	assert.Equal(t, items[0].DidLike, false)

	assert.Equal(t, errors.Is(s.LikeItem(ctx, "missing"), domain.ErrNotFound), true)
}

func TestBookmarksFeed(t *testing.T) {
	s := openTest(t)
	ids := seedThree(t, s)
	assert.Equal(t, s.BookmarkItem(context.Background(), ids[1]), nil)

	items := fetchAll(t, s, domain.Filter{Feed: domain.FeedBookmarks})
	assert.Equal(t, len(items), 1)
	assert.Equal(t, items[0].ID, ids[1])
	assert.Equal(t, items[0].DidBookmark, true)

	assert.Equal(t, s.UnbookmarkItem(context.Background(), ids[1]), nil)
	assert.Equal(t, len(fetchAll(t, s, domain.Filter{Feed: domain.FeedBookmarks})), 0)
}

func TestCommentsMoveCount(t *testing.T) {
	s := openTest(t)
	ids := seedThree(t, s)
	ctx := context.Background()

	c, err := s.AddComment(ctx, ids[1], "agreed")
	assert.Equal(t, err, nil)
	assert.NotEqual(t, c.ID, "")

	comments, err := s.Comments(ctx, ids[1])
	assert.Equal(t, err, nil)
	assert.Equal(t, len(comments), 1)

	items := fetchAll(t, s, domain.Filter{Feed: domain.FeedProfile, UserID: "u2"})
	assert.Equal(t, items[0].CommentCount, 1)

	assert.Equal(t, s.DeleteComment(ctx, ids[1], c.ID), nil)
	assert.Equal(t, errors.Is(s.DeleteComment(ctx, ids[1], c.ID), domain.ErrNotFound), true)
	items = fetchAll(t, s, domain.Filter{Feed: domain.FeedProfile, UserID: "u2"})
	assert.Equal(t, items[0].CommentCount, 0)
}

func TestRevisionAndSolveOwnCase(t *testing.T) {
	s := openTest(t)
	ids := seedThree(t, s)
	ctx := context.Background()

	_, err := s.AddRevision(ctx, ids[0], "troponin negative")
	assert.Equal(t, errors.Is(err, domain.ErrAuthFailed), true)

	rev, err := s.AddRevision(ctx, ids[2], "patch test positive")
	assert.Equal(t, err, nil)
	assert.Equal(t, rev.State, domain.RevisionUpdated)

	assert.Equal(t, s.MarkSolved(ctx, ids[2], "drug eruption"), nil)
	items := fetchAll(t, s, domain.Filter{Feed: domain.FeedProfile, UserID: "me"})
	assert.Equal(t, items[0].Solved, domain.Solved)
	assert.Equal(t, items[0].Revision, domain.RevisionDiagnosed)
	assert.Equal(t, items[0].Diagnosis, "drug eruption")
}

func TestHiddenItemsOnlyVisibleToAuthor(t *testing.T) {
	s := openTest(t)
	ids := seedThree(t, s)
	ctx := context.Background()

	assert.Equal(t, s.SetVisibility(ctx, ids[0], domain.Hidden), nil)
	assert.Equal(t, s.SetVisibility(ctx, ids[2], domain.Hidden), nil)

	items := fetchAll(t, s, domain.Filter{Feed: domain.FeedHome})
	assert.Equal(t, len(items), 2)
	assert.Equal(t, items[1].ID, ids[2])
	assert.Equal(t, items[1].Visibility, domain.Hidden)
}

func TestFollowFlagsItemsByAuthor(t *testing.T) {
	s := openTest(t)
	seedThree(t, s)
	assert.Equal(t, s.FollowUser(context.Background(), "u1"), nil)

	items := fetchAll(t, s, domain.Filter{Feed: domain.FeedHome})
	assert.Equal(t, items[0].AuthorFollowed, true)
	assert.Equal(t, items[1].AuthorFollowed, false)

	assert.Equal(t, s.UnfollowUser(context.Background(), "u1"), nil)
	items = fetchAll(t, s, domain.Filter{Feed: domain.FeedHome})
	assert.Equal(t, items[0].AuthorFollowed, false)
}

func TestSearchRanksMatches(t *testing.T) {
	s := openTest(t)
	ids := seedThree(t, s)

	items := fetchAll(t, s, domain.Filter{Feed: domain.FeedSearch, Query: "amoxicillin"})
	assert.Equal(t, len(items), 1)
	assert.Equal(t, items[0].ID, ids[2])

	assert.Equal(t, len(fetchAll(t, s, domain.Filter{Feed: domain.FeedSearch})), 0)
}

func TestCaseDetailLeadsWithCase(t *testing.T) {
	s := openTest(t)
	ids, err := s.Seed([]SeedItem{
		{Kind: domain.KindCase, AuthorID: "u1", Title: "A", Age: time.Hour},
		{Kind: domain.KindCase, AuthorID: "u1", Title: "B", Age: 2 * time.Hour},
		{Kind: domain.KindPost, AuthorID: "u1", Body: "C", Age: 3 * time.Hour},
		{Kind: domain.KindCase, AuthorID: "u2", Title: "D", Age: 4 * time.Hour},
	})
	assert.Equal(t, err, nil)

	items := fetchAll(t, s, domain.Filter{Feed: domain.FeedCaseDetail, CaseID: ids[1]})
	assert.Equal(t, len(items), 2)
	assert.Equal(t, items[0].ID, ids[1])
	assert.Equal(t, items[1].ID, ids[0])

	_, err = s.FetchPage(context.Background(), domain.Filter{Feed: domain.FeedCaseDetail, CaseID: "nope"}, "")
	assert.Equal(t, errors.Is(err, domain.ErrNotFound), true)
}

func TestSeedDemoOnlyOnce(t *testing.T) {
	s := openTest(t)
	n, err := s.SeedDemo()
	assert.Equal(t, err, nil)
	assert.NotEqual(t, n, 0)

	n, err = s.SeedDemo()
	assert.Equal(t, err, nil)
	assert.Equal(t, n, 0)
}

func TestCanceledContext(t *testing.T) {
	s := openTest(t)
	ids := seedThree(t, s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, errors.Is(s.LikeItem(ctx, ids[0]), context.Canceled), true)
	_, err := s.FetchPage(ctx, domain.Filter{Feed: domain.FeedHome}, "")
	assert.Equal(t, errors.Is(err, context.Canceled), true)
}
