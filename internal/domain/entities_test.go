package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestSetLikedMovesCountWithFlag(t *testing.T) {
	item := &ContentItem{ID: "x", LikeCount: 5}

	assert.Equal(t, item.SetLiked(true), true)
	assert.Equal(t, item.LikeCount, 6)
	assert.Equal(t, item.DidLike, true)

	// repeating the same state is a no-op
	assert.Equal(t, item.SetLiked(true), false)
	assert.Equal(t, item.LikeCount, 6)

	assert.Equal(t, item.SetLiked(false), true)
	assert.Equal(t, item.LikeCount, 5)
	assert.Equal(t, item.DidLike, false)
}

func TestSetLikedNeverNegative(t *testing.T) {
	item := &ContentItem{ID: "x", LikeCount: 0, DidLike: true}
	item.SetLiked(false)
	assert.Equal(t, item.LikeCount, 0)
}

func TestAddCommentsClamps(t *testing.T) {
	item := &ContentItem{CommentCount: 1}
	assert.Equal(t, item.AddComments(-1), true)
	assert.Equal(t, item.AddComments(-1), false)
	assert.Equal(t, item.CommentCount, 0)
}

func TestSetSolvedWithDiagnosis(t *testing.T) {
	item := &ContentItem{}
	assert.Equal(t, item.SetSolved(Solved, "sarcoidosis"), true)
	assert.Equal(t, item.Solved, Solved)
	assert.Equal(t, item.Revision, RevisionDiagnosed)
	assert.Equal(t, item.Diagnosis, "sarcoidosis")
	assert.Equal(t, item.SetSolved(Solved, "sarcoidosis"), false)
}

func TestNewNetworkErrorMessage(t *testing.T) {
	err := NewNetworkError("Couldn't like", fmt.Errorf("like: %w", ErrServerOffline))
	assert.Equal(t, err.Title, "Couldn't like")
	assert.Equal(t, err.Message, "Check your connection and try again.")
	assert.Equal(t, errors.Is(err, ErrServerOffline), true)
}

func TestIsSteadyState(t *testing.T) {
	assert.Equal(t, IsSteadyState(fmt.Errorf("apply: %w", ErrNotFoundInCache)), true)
	assert.Equal(t, IsSteadyState(ErrStaleCallback), true)
	assert.Equal(t, IsSteadyState(ErrServerOffline), false)
}
