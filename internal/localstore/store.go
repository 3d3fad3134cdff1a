// Package localstore is an embedded domain.ContentService backed by bbolt.
// It lets the client run against seeded data without a server.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dev-Pau/evidens/internal/domain"
)

// Bucket names
var (
	bucketItems     = []byte("items")
	bucketLikes     = []byte("likes")
	bucketBookmarks = []byte("bookmarks")
	bucketFollows   = []byte("follows")
	bucketComments  = []byte("comments")
	bucketRevisions = []byte("revisions")
)

// record is the server-side state of an item; per-user flags live in
// their own buckets keyed by user and target.
type record struct {
	ID           string                 `json:"id"`
	Kind         domain.ContentKind     `json:"kind"`
	AuthorID     string                 `json:"author_id"`
	Author       string                 `json:"author"`
	Title        string                 `json:"title,omitempty"`
	Body         string                 `json:"body"`
	CreatedAt    time.Time              `json:"created_at"`
	LikeCount    int                    `json:"like_count"`
	CommentCount int                    `json:"comment_count"`
	Revision     domain.RevisionState   `json:"revision"`
	Visibility   domain.VisibilityState `json:"visibility"`
	Solved       domain.SolvedState     `json:"solved"`
	Diagnosis    string                 `json:"diagnosis,omitempty"`
}

// Store implements domain.ContentService on a bbolt file
type Store struct {
	db     *bolt.DB
	userID string
	logger *slog.Logger
}

// Open opens or creates the database at path, acting as userID
func Open(path, userID string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketItems, bucketLikes, bucketBookmarks, bucketFollows, bucketComments, bucketRevisions} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, userID: userID, logger: logger}, nil
}

// CurrentUserID implements domain.Identity
func (s *Store) CurrentUserID() string { return s.userID }

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func getJSON(b *bolt.Bucket, key string, dest any) bool {
	v := b.Get([]byte(key))
	if v == nil {
		return false
	}
	return json.Unmarshal(v, dest) == nil
}

func putJSON(b *bolt.Bucket, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

func pairKey(a, b string) string { return a + "\x00" + b }

func has(tx *bolt.Tx, bucket []byte, key string) bool {
	return tx.Bucket(bucket).Get([]byte(key)) != nil
}

// update loads the item record, lets fn change it and writes it back
func (s *Store) update(ctx context.Context, id string, fn func(tx *bolt.Tx, r *record) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		items := tx.Bucket(bucketItems)
		var r record
		if !getJSON(items, id, &r) {
			return domain.ErrNotFound
		}
		if err := fn(tx, &r); err != nil {
			return err
		}
		return putJSON(items, id, &r)
	})
}

// toItem decorates a record with the current user's flags
func (s *Store) toItem(tx *bolt.Tx, r *record) *domain.ContentItem {
	return &domain.ContentItem{
		ID:             r.ID,
		Kind:           r.Kind,
		AuthorID:       r.AuthorID,
		Author:         r.Author,
		Title:          r.Title,
		Body:           r.Body,
		CreatedAt:      r.CreatedAt,
		LikeCount:      r.LikeCount,
		DidLike:        has(tx, bucketLikes, pairKey(s.userID, r.ID)),
		DidBookmark:    has(tx, bucketBookmarks, pairKey(s.userID, r.ID)),
		CommentCount:   r.CommentCount,
		Revision:       r.Revision,
		Visibility:     r.Visibility,
		Solved:         r.Solved,
		Diagnosis:      r.Diagnosis,
		AuthorFollowed: has(tx, bucketFollows, pairKey(s.userID, r.AuthorID)),
	}
}

// setFlag adds or removes a per-user flag and reports whether it changed
func setFlag(tx *bolt.Tx, bucket []byte, key string, on bool) (bool, error) {
	b := tx.Bucket(bucket)
	present := b.Get([]byte(key)) != nil
	if present == on {
		return false, nil
	}
	if on {
		return true, b.Put([]byte(key), []byte{1})
	}
	return true, b.Delete([]byte(key))
}

// === Likes and bookmarks ===

func (s *Store) setLike(ctx context.Context, id string, on bool) error {
	return s.update(ctx, id, func(tx *bolt.Tx, r *record) error {
		changed, err := setFlag(tx, bucketLikes, pairKey(s.userID, id), on)
		if err != nil || !changed {
			return err
		}
		if on {
			r.LikeCount++
		} else if r.LikeCount > 0 {
			r.LikeCount--
		}
		return nil
	})
}

func (s *Store) LikeItem(ctx context.Context, id string) error   { return s.setLike(ctx, id, true) }
func (s *Store) UnlikeItem(ctx context.Context, id string) error { return s.setLike(ctx, id, false) }

func (s *Store) setBookmark(ctx context.Context, id string, on bool) error {
	return s.update(ctx, id, func(tx *bolt.Tx, r *record) error {
		_, err := setFlag(tx, bucketBookmarks, pairKey(s.userID, id), on)
		return err
	})
}

func (s *Store) BookmarkItem(ctx context.Context, id string) error {
	return s.setBookmark(ctx, id, true)
}

func (s *Store) UnbookmarkItem(ctx context.Context, id string) error {
	return s.setBookmark(ctx, id, false)
}

// === Follows ===

func (s *Store) setFollow(ctx context.Context, userID string, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := setFlag(tx, bucketFollows, pairKey(s.userID, userID), on)
		return err
	})
}

func (s *Store) FollowUser(ctx context.Context, userID string) error {
	return s.setFollow(ctx, userID, true)
}

func (s *Store) UnfollowUser(ctx context.Context, userID string) error {
	return s.setFollow(ctx, userID, false)
}

// === Case state ===

func (s *Store) MarkSolved(ctx context.Context, contentID, diagnosis string) error {
	return s.update(ctx, contentID, func(tx *bolt.Tx, r *record) error {
		if r.Kind != domain.KindCase {
			return fmt.Errorf("%s is not a case", contentID)
		}
		r.Solved = domain.Solved
		if diagnosis != "" {
			r.Diagnosis = diagnosis
			r.Revision = domain.RevisionDiagnosed
		}
		return nil
	})
}

func (s *Store) SetVisibility(ctx context.Context, contentID string, v domain.VisibilityState) error {
	return s.update(ctx, contentID, func(tx *bolt.Tx, r *record) error {
		r.Visibility = v
		return nil
	})
}

var (
	_ domain.ContentService = (*Store)(nil)
	_ domain.Identity       = (*Store)(nil)
)
