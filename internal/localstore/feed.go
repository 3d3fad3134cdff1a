package localstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	bolt "go.etcd.io/bbolt"

	"github.com/dev-Pau/evidens/internal/domain"
)

const defaultPageSize = 20

func hasPrefix(k, prefix []byte) bool { return bytes.HasPrefix(k, prefix) }

func unmarshal(data []byte, dest any) error { return json.Unmarshal(data, dest) }

func sortByTime[T any](items []T, at func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int { return at(a).Compare(at(b)) })
}

// FetchPage selects the list for filter and slices it at the cursor.
// The cursor is the decimal offset of the next row.
func (s *Store) FetchPage(ctx context.Context, filter domain.Filter, cursor domain.Cursor) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}

	offset := 0
	if !cursor.IsNull() {
		n, err := strconv.Atoi(string(cursor))
		if err != nil || n < 0 {
			return domain.Page{}, fmt.Errorf("invalid cursor %q", cursor)
		}
		offset = n
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var page domain.Page
	err := s.db.View(func(tx *bolt.Tx) error {
		records, err := s.selectRecords(tx, filter)
		if err != nil {
			return err
		}
		if offset > len(records) {
			offset = len(records)
		}
		end := min(offset+limit, len(records))
		for _, r := range records[offset:end] {
			page.Items = append(page.Items, s.toItem(tx, r))
		}
		if end < len(records) {
			page.Next = domain.Cursor(strconv.Itoa(end))
		}
		return nil
	})
	if err != nil {
		return domain.Page{}, err
	}

	s.logger.Debug("local page", "feed", filter.Feed.String(), "offset", offset, "count", len(page.Items), "next", string(page.Next))
	return page, nil
}

// visibleTo reports whether the current user may see r
func (s *Store) visibleTo(r *record) bool {
	return r.Visibility == domain.Visible || r.AuthorID == s.userID
}

func (s *Store) selectRecords(tx *bolt.Tx, filter domain.Filter) ([]*record, error) {
	var all []*record
	err := tx.Bucket(bucketItems).ForEach(func(k, v []byte) error {
		var r record
		if err := unmarshal(v, &r); err != nil {
			return err
		}
		if s.visibleTo(&r) {
			all = append(all, &r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// newest first, id breaks ties so pages are stable
	slices.SortFunc(all, func(a, b *record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare([]byte(a.ID), []byte(b.ID))
	})

	switch filter.Feed {
	case domain.FeedHome:
		return all, nil

	case domain.FeedSearch:
		return search(all, filter.Query), nil

	case domain.FeedProfile:
		return keep(all, func(r *record) bool { return r.AuthorID == filter.UserID }), nil

	case domain.FeedBookmarks:
		return keep(all, func(r *record) bool {
			return has(tx, bucketBookmarks, pairKey(s.userID, r.ID))
		}), nil

	case domain.FeedCaseDetail:
		i := slices.IndexFunc(all, func(r *record) bool { return r.ID == filter.CaseID })
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		head := all[i]
		related := keep(all, func(r *record) bool {
			return r.ID != head.ID && r.Kind == domain.KindCase && r.AuthorID == head.AuthorID
		})
		return append([]*record{head}, related...), nil
	}
	return nil, fmt.Errorf("unknown feed %d", filter.Feed)
}

func keep(records []*record, fn func(*record) bool) []*record {
	var out []*record
	for _, r := range records {
		if fn(r) {
			out = append(out, r)
		}
	}
	return out
}

// search ranks records by fuzzy distance of query against title and body
func search(records []*record, query string) []*record {
	if query == "" {
		return nil
	}
	haystack := make([]string, len(records))
	for i, r := range records {
		haystack[i] = r.Title + " " + r.Body
	}

	ranks := fuzzy.RankFindFold(query, haystack)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int { return a.Distance - b.Distance })

	out := make([]*record, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, records[rank.OriginalIndex])
	}
	return out
}
