// Package feed pages a remote list into a screen's cache.
//
// Each fetch is split in three so the cache is only touched on the update
// loop: FirstPage or NextPage builds a Request (on-loop), Request.Run calls
// the ContentService (off-loop), and Merge folds the Result back in (on-loop).
package feed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dev-Pau/evidens/internal/cache"
	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/metrics"
)

// Pager issues page requests for one cache and filter
type Pager struct {
	cache   *cache.Cache
	filter  domain.Filter
	service domain.ContentService
	logger  *slog.Logger

	generation    uint64 // bumped by every FirstPage
	firstInFlight bool
	nextInFlight  bool
}

// NewPager binds a pager to a screen's cache
func NewPager(c *cache.Cache, filter domain.Filter, service domain.ContentService, logger *slog.Logger) *Pager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager{cache: c, filter: filter, service: service, logger: logger}
}

// Filter returns the list this pager fetches
func (p *Pager) Filter() domain.Filter { return p.filter }

// SetFilter switches the list (e.g. a new search query). The caller follows
// with FirstPage; results for the old filter are dropped as stale.
func (p *Pager) SetFilter(filter domain.Filter) {
	p.filter = filter
	p.generation++
	p.firstInFlight = false
	p.nextInFlight = false
}

// Loading reports whether any request is outstanding
func (p *Pager) Loading() bool { return p.firstInFlight || p.nextInFlight }

// Request is a page fetch ready to run off the update loop
type Request struct {
	First      bool
	Generation uint64
	Filter     domain.Filter
	Cursor     domain.Cursor

	service domain.ContentService
}

// Result is what Run hands back to the update loop
type Result struct {
	Request Request
	Page    domain.Page
	Err     error
}

// Run performs the remote call. It must not touch any cache.
func (r Request) Run(ctx context.Context) Result {
	page, err := r.service.FetchPage(ctx, r.Filter, r.Cursor)
	return Result{Request: r, Page: page, Err: err}
}

// FirstPage starts a fresh load, superseding any in-flight request.
// It is refused only when the cache is dead.
func (p *Pager) FirstPage() (Request, bool) {
	if !p.cache.Alive() {
		return Request{}, false
	}
	p.generation++
	p.firstInFlight = true
	p.nextInFlight = false
	return Request{First: true, Generation: p.generation, Filter: p.filter, service: p.service}, true
}

// NextPage continues from the cache's cursor. It is refused when the cache
// is dead, not yet loaded, exhausted, or a request is already in flight.
func (p *Pager) NextPage() (Request, bool) {
	if !p.cache.Alive() || !p.cache.Loaded() || p.cache.Exhausted() {
		return Request{}, false
	}
	if p.firstInFlight || p.nextInFlight {
		return Request{}, false
	}
	p.nextInFlight = true
	return Request{Generation: p.generation, Filter: p.filter, Cursor: p.cache.Cursor(), service: p.service}, true
}

// NearEnd reports whether the row at visibleIndex is within threshold rows
// of the end of the cached list.
func (p *Pager) NearEnd(visibleIndex, threshold int) bool {
	n := p.cache.Len()
	if n == 0 || visibleIndex < 0 {
		return false
	}
	return visibleIndex >= n-1-threshold
}

// Merge summarizes what a Result did to the cache
type Merge struct {
	First     bool
	Added     int
	Exhausted bool
}

// Merge folds res into the cache. Results for a dead cache or a superseded
// generation are dropped with ErrStaleCallback. Remote failures come back
// as *domain.NetworkError and leave the cache unchanged.
func (p *Pager) Merge(res Result) (Merge, error) {
	req := res.Request
	if req.Generation != p.generation {
		p.logger.Debug("dropping superseded page", "feed", req.Filter.Feed.String(), "first", req.First)
		return Merge{}, domain.ErrStaleCallback
	}
	if req.First {
		p.firstInFlight = false
	} else {
		p.nextInFlight = false
	}

	if !p.cache.Alive() {
		p.logger.Debug("dropping page for closed screen", "feed", req.Filter.Feed.String())
		return Merge{}, domain.ErrStaleCallback
	}

	feed := req.Filter.Feed.String()
	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) {
			return Merge{}, domain.ErrStaleCallback
		}
		metrics.PagesFetchedTotal.WithLabelValues(feed, "error").Inc()
		p.logger.Error("failed to fetch page", "error", res.Err, "feed", feed, "cursor", string(req.Cursor))
		return Merge{}, domain.NewNetworkError("Couldn't load "+feed, res.Err)
	}
	metrics.PagesFetchedTotal.WithLabelValues(feed, "ok").Inc()

	m := Merge{First: req.First}
	if req.First {
		p.cache.Replace(res.Page.Items, res.Page.Next)
		m.Added = p.cache.Len()
	} else {
		m.Added = p.cache.Append(res.Page.Items, res.Page.Next)
	}
	m.Exhausted = p.cache.Exhausted()

	p.logger.Debug("merged page", "feed", feed, "first", req.First, "added", m.Added, "total", p.cache.Len(), "exhausted", m.Exhausted)
	return m, nil
}
