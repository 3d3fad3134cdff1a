package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/dev-Pau/evidens/internal/domain"
)

func (s *Store) AddComment(ctx context.Context, contentID, body string) (*domain.Comment, error) {
	comment := &domain.Comment{
		ID:        uuid.New().String(),
		ContentID: contentID,
		AuthorID:  s.userID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	err := s.update(ctx, contentID, func(tx *bolt.Tx, r *record) error {
		if err := putJSON(tx.Bucket(bucketComments), pairKey(contentID, comment.ID), comment); err != nil {
			return err
		}
		r.CommentCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("comment added", "contentID", contentID, "commentID", comment.ID)
	return comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, contentID, commentID string) error {
	return s.update(ctx, contentID, func(tx *bolt.Tx, r *record) error {
		b := tx.Bucket(bucketComments)
		key := pairKey(contentID, commentID)
		var c domain.Comment
		if !getJSON(b, key, &c) {
			return domain.ErrNotFound
		}
		if c.AuthorID != s.userID {
			return domain.ErrAuthFailed
		}
		if err := b.Delete([]byte(key)); err != nil {
			return err
		}
		if r.CommentCount > 0 {
			r.CommentCount--
		}
		return nil
	})
}

// Comments lists the comments on contentID, oldest first
func (s *Store) Comments(ctx context.Context, contentID string) ([]*domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*domain.Comment
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketComments).Cursor()
		prefix := []byte(pairKey(contentID, ""))
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var cm domain.Comment
			if err := unmarshal(v, &cm); err != nil {
				return err
			}
			out = append(out, &cm)
		}
		return nil
	})
	sortByTime(out, func(c *domain.Comment) time.Time { return c.CreatedAt })
	return out, err
}

func (s *Store) AddRevision(ctx context.Context, contentID, body string) (*domain.Revision, error) {
	rev := &domain.Revision{
		ID:        uuid.New().String(),
		ContentID: contentID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	err := s.update(ctx, contentID, func(tx *bolt.Tx, r *record) error {
		if r.Kind != domain.KindCase {
			return fmt.Errorf("%s is not a case", contentID)
		}
		if r.AuthorID != s.userID {
			return domain.ErrAuthFailed
		}
		if r.Revision != domain.RevisionDiagnosed {
			r.Revision = domain.RevisionUpdated
		}
		rev.State = r.Revision
		return putJSON(tx.Bucket(bucketRevisions), pairKey(contentID, rev.ID), rev)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}
