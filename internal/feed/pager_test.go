package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/dev-Pau/evidens/internal/cache"
	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/log"
	"github.com/dev-Pau/evidens/internal/servicetest"
)

func items(ids ...string) []*domain.ContentItem {
	out := make([]*domain.ContentItem, len(ids))
	for i, id := range ids {
		out[i] = &domain.ContentItem{ID: id}
	}
	return out
}

func ids(c *cache.Cache) []string {
	out := []string{}
	for _, item := range c.Items() {
		out = append(out, item.ID)
	}
	return out
}

func twoPageService() *servicetest.Service {
	svc := servicetest.New()
	svc.Pages[""] = domain.Page{Items: items("a", "b"), Next: "p2"}
	svc.Pages["p2"] = domain.Page{Items: items("b", "c"), Next: ""}
	return svc
}

func newPager(svc domain.ContentService) (*Pager, *cache.Cache) {
	c := cache.New(context.Background())
	return NewPager(c, domain.Filter{Feed: domain.FeedHome}, svc, log.NullLogger()), c
}

func fetch(t *testing.T, p *Pager, req Request, ok bool) (Merge, error) {
	t.Helper()
	assert.Equal(t, ok, true)
	return p.Merge(req.Run(context.Background()))
}

func TestFirstPageTwiceEqualsOnce(t *testing.T) {
	p, c := newPager(twoPageService())

	req, ok := p.FirstPage()
	_, err := fetch(t, p, req, ok)
	assert.Equal(t, err, nil)
	req, ok = p.FirstPage()
	m, err := fetch(t, p, req, ok)
	assert.Equal(t, err, nil)

	assert.Equal(t, m.First, true)
	assert.Equal(t, ids(c), []string{"a", "b"})
	assert.Equal(t, c.Cursor(), domain.Cursor("p2"))
}

func TestNextPageAppendsWithoutDuplicates(t *testing.T) {
	p, c := newPager(twoPageService())

	req, ok := p.FirstPage()
	fetch(t, p, req, ok)
	req, ok = p.NextPage()
	m, err := fetch(t, p, req, ok)

	assert.Equal(t, err, nil)
	assert.Equal(t, m.Added, 1)
	assert.Equal(t, m.Exhausted, true)
	assert.Equal(t, ids(c), []string{"a", "b", "c"})
}

func TestExhaustedCursorSuppressesNextPage(t *testing.T) {
	svc := twoPageService()
	p, _ := newPager(svc)

	req, ok := p.FirstPage()
	fetch(t, p, req, ok)
	req, ok = p.NextPage()
	fetch(t, p, req, ok)

	for i := 0; i < 5; i++ {
		_, ok = p.NextPage()
		assert.Equal(t, ok, false)
	}
	assert.Equal(t, svc.Count("FetchPage"), 2)
}

func TestNextPageBeforeLoadIsRefused(t *testing.T) {
	p, _ := newPager(twoPageService())
	_, ok := p.NextPage()
	assert.Equal(t, ok, false)
}

func TestNextPageSingleFlight(t *testing.T) {
	p, _ := newPager(twoPageService())
	req, ok := p.FirstPage()
	fetch(t, p, req, ok)

	first, ok := p.NextPage()
	assert.Equal(t, ok, true)
	_, ok = p.NextPage()
	assert.Equal(t, ok, false)
	assert.Equal(t, p.Loading(), true)

	p.Merge(first.Run(context.Background()))
	assert.Equal(t, p.Loading(), false)
}

func TestSupersededFirstPageDropped(t *testing.T) {
	svc := twoPageService()
	p, c := newPager(svc)

	stale, _ := p.FirstPage()
	fresh, _ := p.FirstPage()

	staleRes := stale.Run(context.Background())
	svc.Pages[""] = domain.Page{Items: items("z"), Next: ""}
	freshRes := fresh.Run(context.Background())

	_, err := p.Merge(freshRes)
	assert.Equal(t, err, nil)
	_, err = p.Merge(staleRes)
	assert.Equal(t, errors.Is(err, domain.ErrStaleCallback), true)
	assert.Equal(t, ids(c), []string{"z"})
}

func TestRefreshDropsInFlightNextPage(t *testing.T) {
	p, c := newPager(twoPageService())
	req, ok := p.FirstPage()
	fetch(t, p, req, ok)

	next, ok := p.NextPage()
	assert.Equal(t, ok, true)
	refresh, _ := p.FirstPage()

	_, err := p.Merge(next.Run(context.Background()))
	assert.Equal(t, errors.Is(err, domain.ErrStaleCallback), true)
	p.Merge(refresh.Run(context.Background()))
	assert.Equal(t, ids(c), []string{"a", "b"})
}

func TestMergeAfterCloseIsStale(t *testing.T) {
	p, c := newPager(twoPageService())
	req, _ := p.FirstPage()
	res := req.Run(context.Background())
	c.Close()

	_, err := p.Merge(res)
	assert.Equal(t, errors.Is(err, domain.ErrStaleCallback), true)
	assert.Equal(t, c.Len(), 0)

	_, ok := p.FirstPage()
	assert.Equal(t, ok, false)
}

func TestRemoteFailureIsNetworkError(t *testing.T) {
	svc := twoPageService()
	svc.FailWith("FetchPage", domain.ErrServerOffline)
	p, c := newPager(svc)

	req, ok := p.FirstPage()
	_, err := fetch(t, p, req, ok)

	var ne *domain.NetworkError
	assert.Equal(t, errors.As(err, &ne), true)
	assert.Equal(t, ne.Title, "Couldn't load home")
	assert.Equal(t, errors.Is(err, domain.ErrServerOffline), true)
	assert.Equal(t, c.Loaded(), false)
	assert.Equal(t, p.Loading(), false)
}

func TestNearEnd(t *testing.T) {
	p, c := newPager(twoPageService())
	assert.Equal(t, p.NearEnd(0, 5), false)

	c.Replace(items("a", "b", "c", "d", "e", "f", "g", "h", "i", "j"), "next")
	assert.Equal(t, p.NearEnd(3, 5), false)
	assert.Equal(t, p.NearEnd(4, 5), true)
	assert.Equal(t, p.NearEnd(9, 0), true)
	assert.Equal(t, p.NearEnd(8, 0), false)
}

func TestSetFilterDropsOldResults(t *testing.T) {
	p, c := newPager(twoPageService())
	req, _ := p.FirstPage()
	res := req.Run(context.Background())

	p.SetFilter(domain.Filter{Feed: domain.FeedSearch, Query: "rash"})
	_, err := p.Merge(res)
	assert.Equal(t, errors.Is(err, domain.ErrStaleCallback), true)
	assert.Equal(t, c.Loaded(), false)
	assert.Equal(t, p.Filter().Query, "rash")
}
