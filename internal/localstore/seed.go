package localstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/dev-Pau/evidens/internal/domain"
)

// SeedItem describes one item to insert with Seed
type SeedItem struct {
	Kind     domain.ContentKind
	AuthorID string
	Author   string
	Title    string
	Body     string
	Likes    int
	Comments int
	Age      time.Duration
}

// Seed inserts items with fresh ids and returns the ids in order
func (s *Store) Seed(items []SeedItem) ([]string, error) {
	now := time.Now()
	ids := make([]string, len(items))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketItems)
		for i, it := range items {
			ids[i] = uuid.New().String()
			r := &record{
				ID:           ids[i],
				Kind:         it.Kind,
				AuthorID:     it.AuthorID,
				Author:       it.Author,
				Title:        it.Title,
				Body:         it.Body,
				CreatedAt:    now.Add(-it.Age),
				LikeCount:    it.Likes,
				CommentCount: it.Comments,
			}
			if err := putJSON(b, r.ID, r); err != nil {
				return fmt.Errorf("failed to seed item %d: %w", i, err)
			}
		}
		return nil
	})
	return ids, err
}

// Empty reports whether the store has no items
func (s *Store) Empty() (bool, error) {
	empty := true
	err := s.db.View(func(tx *bolt.Tx) error {
		k, _ := tx.Bucket(bucketItems).Cursor().First()
		empty = k == nil
		return nil
	})
	return empty, err
}

// SeedDemo fills an empty store with a small clinical feed. The current
// user authors a couple of cases so revise, solve and hide are exercisable.
func (s *Store) SeedDemo() (int, error) {
	empty, err := s.Empty()
	if err != nil || !empty {
		return 0, err
	}

	h := time.Hour
	items := []SeedItem{
		{domain.KindCase, "u-ortiz", "Dr. Ortiz", "Migratory polyarthritis after a sore throat", "17-year-old, fever, new murmur, erythema marginatum on the trunk. ASO titre pending.", 42, 7, 2 * h},
		{domain.KindPost, "u-chen", "Dr. Chen", "", "Reminder: check a fingerstick glucose in every altered patient before anything else.", 118, 12, 3 * h},
		{domain.KindCase, s.userID, "You", "Bilateral hilar lymphadenopathy in a non-smoker", "34-year-old with dry cough, erythema nodosum and ankle arthritis. Calcium slightly raised.", 25, 4, 5 * h},
		{domain.KindCase, "u-ortiz", "Dr. Ortiz", "Painless jaundice and a palpable gallbladder", "68-year-old, weight loss over three months, new-onset diabetes.", 61, 9, 8 * h},
		{domain.KindPost, "u-haddad", "Dr. Haddad", "", "Great grand rounds today on anticoagulation reversal. Slides in the comments.", 33, 15, 11 * h},
		{domain.KindCase, "u-chen", "Dr. Chen", "Recurrent syncope on exertion", "22-year-old athlete, harsh systolic murmur that increases with Valsalva.", 77, 21, 14 * h},
		{domain.KindCase, s.userID, "You", "Target lesions on palms after a cold sore", "Healthy 29-year-old, lesions appeared two weeks after HSV-1 outbreak.", 12, 2, 20 * h},
		{domain.KindPost, "u-ortiz", "Dr. Ortiz", "", "Which scoring systems do you actually use for PE in the ED?", 9, 30, 26 * h},
		{domain.KindCase, "u-haddad", "Dr. Haddad", "Hypokalaemia with hypertension", "45-year-old, resistant hypertension on three agents, K 2.9.", 54, 11, 30 * h},
		{domain.KindCase, "u-chen", "Dr. Chen", "Facial droop sparing the forehead", "Sudden onset, 71-year-old with atrial fibrillation off anticoagulation.", 88, 19, 36 * h},
		{domain.KindPost, "u-haddad", "Dr. Haddad", "", "Night shift tip: label your syringes, every time.", 140, 8, 40 * h},
		{domain.KindCase, "u-ortiz", "Dr. Ortiz", "Microcytic anaemia unresponsive to iron", "Mediterranean family history, normal ferritin, target cells on film.", 37, 6, 48 * h},
	}
	if _, err := s.Seed(items); err != nil {
		return 0, err
	}
	s.logger.Info("seeded demo content", "count", len(items))
	return len(items), nil
}
