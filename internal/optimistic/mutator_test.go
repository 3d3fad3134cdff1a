package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/dev-Pau/evidens/internal/bus"
	"github.com/dev-Pau/evidens/internal/cache"
	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/echo"
	"github.com/dev-Pau/evidens/internal/log"
	"github.com/dev-Pau/evidens/internal/reconcile"
	"github.com/dev-Pau/evidens/internal/servicetest"
)

type fixture struct {
	bus   *bus.Bus
	svc   *servicetest.Service
	cache *cache.Cache
	guard *echo.Guard
	m     *Mutator
}

func newFixture(items ...*domain.ContentItem) *fixture {
	b := bus.New(log.NullLogger())
	svc := servicetest.New()
	c := cache.New(context.Background())
	c.Replace(items, "")
	g := echo.NewGuard()
	return &fixture{bus: b, svc: svc, cache: c, guard: g, m: New("home", c, g, b, svc, log.NullLogger())}
}

func (f *fixture) do(t *testing.T, a Action) (Result, error) {
	t.Helper()
	p, err := f.m.Begin(a)
	assert.Equal(t, err, nil)
	return f.m.Complete(p.Run(context.Background()))
}

func (f *fixture) item(id string) *domain.ContentItem {
	item, _, _ := f.cache.Lookup(id)
	return item
}

func sampleCase() *domain.ContentItem {
	return &domain.ContentItem{ID: "x", Kind: domain.KindCase, AuthorID: "u1", LikeCount: 5, CommentCount: 2}
}

func TestLikeConvergesOnOtherScreen(t *testing.T) {
	f := newFixture(sampleCase())

	other := cache.New(context.Background())
	other.Replace([]*domain.ContentItem{sampleCase()}, "")
	f.bus.SubscribeAll("search", func(env bus.Envelope) error {
		reconcile.Apply(env.Event, other)
		return nil
	})

	p, err := f.m.Begin(ToggleLike("x"))
	assert.Equal(t, err, nil)
	assert.Equal(t, f.item("x").LikeCount, 6)
	assert.Equal(t, f.item("x").DidLike, true)
	assert.Equal(t, p.Delta, reconcile.Delta{Kind: reconcile.DeltaUpdate, Indexes: []int{0}})

	res, err := f.m.Complete(p.Run(context.Background()))
	assert.Equal(t, err, nil)
	assert.Equal(t, res.Confirmed, true)
	assert.Equal(t, res.Envelope.Event, bus.ChangeEvent(bus.Like{ContentID: "x", DidLike: true}))
	// no own handler consumed the id, so it was dropped after publish
	assert.Equal(t, f.guard.Consume(res.Envelope.ID), false)
	assert.Equal(t, f.guard.Pending(), 0)

	seen, _, _ := other.Lookup("x")
	assert.Equal(t, seen.LikeCount, 6)
	assert.Equal(t, seen.DidLike, true)
	assert.Equal(t, f.svc.Calls(), []string{"LikeItem:x"})
}

func TestUnlikeCallsUnlike(t *testing.T) {
	item := sampleCase()
	item.DidLike = true
	f := newFixture(item)

	_, err := f.do(t, ToggleLike("x"))
	assert.Equal(t, err, nil)
	assert.Equal(t, f.item("x").LikeCount, 4)
	assert.Equal(t, f.svc.Calls(), []string{"UnlikeItem:x"})
}

func TestFailureRollsBackEveryAction(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		action Action
	}{
		{"like", "LikeItem", ToggleLike("x")},
		{"bookmark", "BookmarkItem", ToggleBookmark("x")},
		{"comment", "AddComment", AddComment("x", "consider sarcoid")},
		{"delete comment", "DeleteComment", DeleteComment("x", "c1")},
		{"revision", "AddRevision", AddRevision("x", "biopsy back")},
		{"solve", "MarkSolved", MarkSolved("x", "sarcoidosis")},
		{"follow", "FollowUser", ToggleFollow("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(sampleCase())
			f.svc.FailWith(tt.op, domain.ErrServerOffline)
			before := *f.item("x")

			published := 0
			f.bus.SubscribeAll("other", func(bus.Envelope) error {
				published++
				return nil
			})

			p, err := f.m.Begin(tt.action)
			assert.Equal(t, err, nil)
			assert.NotEqual(t, *f.item("x"), before)

			res, err := f.m.Complete(p.Run(context.Background()))
			var ne *domain.NetworkError
			assert.Equal(t, errors.As(err, &ne), true)
			assert.Equal(t, ne.Message, "Check your connection and try again.")
			assert.Equal(t, res.Confirmed, false)
			assert.Equal(t, *f.item("x"), before)
			assert.Equal(t, published, 0)
			assert.Equal(t, f.m.InFlight(), 0)
		})
	}
}

func TestHideRemovesAndRollbackReinsertsAtIndex(t *testing.T) {
	f := newFixture(
		&domain.ContentItem{ID: "a"},
		&domain.ContentItem{ID: "x"},
		&domain.ContentItem{ID: "b"},
	)
	f.svc.FailWith("SetVisibility", domain.ErrServerOffline)

	p, err := f.m.Begin(Hide("x"))
	assert.Equal(t, err, nil)
	assert.Equal(t, p.Delta, reconcile.Delta{Kind: reconcile.DeltaRemove, Indexes: []int{1}})
	assert.Equal(t, f.cache.Len(), 2)

	res, err := f.m.Complete(p.Run(context.Background()))
	assert.NotEqual(t, err, nil)
	assert.Equal(t, res.Delta, reconcile.Delta{Kind: reconcile.DeltaInsert, Indexes: []int{1}})
	_, i, ok := f.cache.Lookup("x")
	assert.Equal(t, ok, true)
	assert.Equal(t, i, 1)
}

func TestHidePublishesRemoval(t *testing.T) {
	f := newFixture(&domain.ContentItem{ID: "x"})
	p, err := f.m.Begin(Hide("x"))
	assert.Equal(t, err, nil)
	assert.Equal(t, p.Delta.Kind, reconcile.DeltaReload)

	res, err := f.m.Complete(p.Run(context.Background()))
	assert.Equal(t, err, nil)
	assert.Equal(t, res.Envelope.Event, bus.ChangeEvent(bus.Visibility{ContentID: "x", Removed: true}))
	assert.Equal(t, f.cache.Len(), 0)
}

func TestUnhideRollback(t *testing.T) {
	f := newFixture(&domain.ContentItem{ID: "x", Visibility: domain.Hidden})
	f.svc.FailWith("SetVisibility", domain.ErrAuthFailed)

	p, _ := f.m.Begin(Unhide("x"))
	assert.Equal(t, f.item("x").Visibility, domain.Visible)
	f.m.Complete(p.Run(context.Background()))
	assert.Equal(t, f.item("x").Visibility, domain.Hidden)
}

func TestDuplicateActionPending(t *testing.T) {
	f := newFixture(sampleCase())

	p, err := f.m.Begin(ToggleLike("x"))
	assert.Equal(t, err, nil)
	_, err = f.m.Begin(ToggleLike("x"))
	assert.Equal(t, errors.Is(err, domain.ErrActionPending), true)
	assert.Equal(t, f.item("x").LikeCount, 6)

	// a different action on the same item is independent
	_, err = f.m.Begin(ToggleBookmark("x"))
	assert.Equal(t, err, nil)

	f.m.Complete(p.Run(context.Background()))
	_, err = f.m.Begin(ToggleLike("x"))
	assert.Equal(t, err, nil)
}

func TestBeginUnknownItem(t *testing.T) {
	f := newFixture(sampleCase())
	_, err := f.m.Begin(ToggleLike("missing"))
	assert.Equal(t, errors.Is(err, domain.ErrNotFoundInCache), true)
	assert.Equal(t, domain.IsSteadyState(err), true)
}

func TestCaseOnlyActionsRejectPosts(t *testing.T) {
	f := newFixture(&domain.ContentItem{ID: "p", Kind: domain.KindPost})
	_, err := f.m.Begin(MarkSolved("p", ""))
	assert.Equal(t, err, ErrNotACase)
	_, err = f.m.Begin(AddRevision("p", "text"))
	assert.Equal(t, err, ErrNotACase)
	assert.Equal(t, f.m.InFlight(), 0)
}

func TestEmptyCommentRejected(t *testing.T) {
	f := newFixture(sampleCase())
	_, err := f.m.Begin(AddComment("x", "   "))
	assert.Equal(t, err, ErrEmptyText)
	assert.Equal(t, f.item("x").CommentCount, 2)
}

func TestCommentReturnsCreatedComment(t *testing.T) {
	f := newFixture(sampleCase())
	res, err := f.do(t, AddComment("x", "consider sarcoid"))
	assert.Equal(t, err, nil)
	assert.NotEqual(t, res.Comment, nil)
	assert.Equal(t, res.Comment.Body, "consider sarcoid")
	assert.Equal(t, f.item("x").CommentCount, 3)
	assert.Equal(t, res.Envelope.Event, bus.ChangeEvent(bus.CommentCountDelta{ContentID: "x", Delta: 1}))
}

func TestSolveMovesRevisionToDiagnosed(t *testing.T) {
	f := newFixture(sampleCase())
	_, err := f.do(t, MarkSolved("x", "sarcoidosis"))
	assert.Equal(t, err, nil)
	assert.Equal(t, f.item("x").Solved, domain.Solved)
	assert.Equal(t, f.item("x").Revision, domain.RevisionDiagnosed)
}

func TestFollowFlipsEveryItemByAuthor(t *testing.T) {
	f := newFixture(
		&domain.ContentItem{ID: "a", AuthorID: "u1"},
		&domain.ContentItem{ID: "b", AuthorID: "u2"},
		&domain.ContentItem{ID: "c", AuthorID: "u1"},
	)

	p, err := f.m.Begin(ToggleFollow("a"))
	assert.Equal(t, err, nil)
	assert.Equal(t, p.Delta.Indexes, []int{0, 2})

	// following is keyed by author, not item
	_, err = f.m.Begin(ToggleFollow("c"))
	assert.Equal(t, errors.Is(err, domain.ErrActionPending), true)

	res, err := f.m.Complete(p.Run(context.Background()))
	assert.Equal(t, err, nil)
	assert.Equal(t, res.Envelope.Event, bus.ChangeEvent(bus.Follow{UserID: "u1", Following: true}))
	assert.Equal(t, f.item("c").AuthorFollowed, true)
	assert.Equal(t, f.item("b").AuthorFollowed, false)
}

func TestCompleteAfterCloseLeavesCacheAlone(t *testing.T) {
	f := newFixture(sampleCase())
	f.svc.FailWith("LikeItem", domain.ErrServerOffline)
	item := f.item("x")

	p, _ := f.m.Begin(ToggleLike("x"))
	f.cache.Close()

	_, err := f.m.Complete(p.Run(context.Background()))
	assert.Equal(t, errors.Is(err, domain.ErrStaleCallback), true)
	assert.Equal(t, item.LikeCount, 6)
}

func TestConfirmAfterCloseStillPublishes(t *testing.T) {
	f := newFixture(sampleCase())
	got := 0
	f.bus.SubscribeAll("other", func(bus.Envelope) error {
		got++
		return nil
	})

	p, _ := f.m.Begin(ToggleBookmark("x"))
	f.cache.Close()
	_, err := f.m.Complete(p.Run(context.Background()))

	assert.Equal(t, errors.Is(err, domain.ErrStaleCallback), true)
	assert.Equal(t, got, 1)
	assert.Equal(t, f.guard.Pending(), 0)
}

func TestRefreshDuringPendingSkipsRollback(t *testing.T) {
	f := newFixture(sampleCase())
	f.svc.FailWith("LikeItem", domain.ErrServerOffline)

	p, _ := f.m.Begin(ToggleLike("x"))
	fresh := sampleCase()
	fresh.LikeCount = 9
	f.cache.Replace([]*domain.ContentItem{fresh}, "")

	res, err := f.m.Complete(p.Run(context.Background()))
	assert.NotEqual(t, err, nil)
	assert.Equal(t, res.Delta.Kind, reconcile.DeltaNone)
	assert.Equal(t, f.item("x").LikeCount, 9)
}

func TestCompleteTwiceIsStale(t *testing.T) {
	f := newFixture(sampleCase())
	p, _ := f.m.Begin(ToggleLike("x"))
	o := p.Run(context.Background())

	_, err := f.m.Complete(o)
	assert.Equal(t, err, nil)
	_, err = f.m.Complete(o)
	assert.Equal(t, errors.Is(err, domain.ErrStaleCallback), true)
	assert.Equal(t, f.item("x").LikeCount, 6)
}

func TestOwnHandlerSeesArmedID(t *testing.T) {
	f := newFixture(sampleCase())
	echoed := false
	f.bus.SubscribeAll("home", func(env bus.Envelope) error {
		echoed = f.guard.Consume(env.ID)
		return nil
	})

	_, err := f.do(t, ToggleLike("x"))
	assert.Equal(t, err, nil)
	assert.Equal(t, echoed, true)
	assert.Equal(t, f.item("x").LikeCount, 6)
}

func TestConfirmAfterRefreshIsNotTreatedAsEcho(t *testing.T) {
	f := newFixture(sampleCase())
	echoed := false
	f.bus.SubscribeAll("home", func(env bus.Envelope) error {
		if echoed = f.guard.Consume(env.ID); !echoed {
			reconcile.Apply(env.Event, f.cache)
		}
		return nil
	})

	p, _ := f.m.Begin(ToggleLike("x"))
	// next page hands back the server copy from before the like
	f.cache.Append([]*domain.ContentItem{sampleCase()}, "")

	res, err := f.m.Complete(p.Run(context.Background()))
	assert.Equal(t, err, nil)
	assert.Equal(t, res.Confirmed, true)
	assert.Equal(t, echoed, false)
	assert.Equal(t, f.item("x").LikeCount, 6)
	assert.Equal(t, f.item("x").DidLike, true)
	assert.Equal(t, f.guard.Pending(), 0)
}

func TestDeleteCommentAtZeroStillPublishes(t *testing.T) {
	item := sampleCase()
	item.CommentCount = 0
	f := newFixture(item)

	other := cache.New(context.Background())
	other.Replace([]*domain.ContentItem{sampleCase()}, "")
	f.bus.SubscribeAll("search", func(env bus.Envelope) error {
		reconcile.Apply(env.Event, other)
		return nil
	})

	_, err := f.do(t, DeleteComment("x", "c1"))
	assert.Equal(t, err, nil)
	assert.Equal(t, f.item("x").CommentCount, 0)
	seen, _, _ := other.Lookup("x")
	assert.Equal(t, seen.CommentCount, 1)
}

func TestHideRollbackSkippedAfterRefresh(t *testing.T) {
	f := newFixture(&domain.ContentItem{ID: "a"}, &domain.ContentItem{ID: "x"})
	f.svc.FailWith("SetVisibility", domain.ErrServerOffline)

	p, _ := f.m.Begin(Hide("x"))
	f.cache.Replace([]*domain.ContentItem{{ID: "b"}}, "")

	res, err := f.m.Complete(p.Run(context.Background()))
	assert.NotEqual(t, err, nil)
	assert.Equal(t, res.Delta.Kind, reconcile.DeltaNone)
	_, _, ok := f.cache.Lookup("x")
	assert.Equal(t, ok, false)
	assert.Equal(t, f.cache.Len(), 1)
}
