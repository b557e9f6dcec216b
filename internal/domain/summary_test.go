package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fbWithRating(value float64) UserFeedback {
	return UserFeedback{Rating: &Rating{Value: value}}
}

func fbWithReview() UserFeedback {
	return UserFeedback{Review: &Review{Title: "t", Body: "b"}}
}

// ============================================================================
// Recompute Tests
// ============================================================================

func TestRecompute_NoFeedback(t *testing.T) {
	s := &ProductSummary{ProductID: "p1", AverageRating: 4.5, RatingCount: 3, ReviewCount: 2}

	s.Recompute(nil)

	assert.Zero(t, s.AverageRating)
	assert.Zero(t, s.RatingCount)
	assert.Zero(t, s.ReviewCount)
}

func TestRecompute_OnlyReviews(t *testing.T) {
	s := &ProductSummary{ProductID: "p1"}

	s.Recompute([]UserFeedback{fbWithReview(), fbWithReview()})

	assert.Zero(t, s.AverageRating, "average must be zero when no ratings exist")
	assert.Equal(t, 0, s.RatingCount)
	assert.Equal(t, 2, s.ReviewCount)
}

func TestRecompute_AverageRoundsToTwoDecimals(t *testing.T) {
	s := &ProductSummary{ProductID: "p1"}

	// (5 + 4 + 4) / 3 = 4.3333...
	s.Recompute([]UserFeedback{fbWithRating(5), fbWithRating(4), fbWithRating(4)})

	assert.Equal(t, 4.33, s.AverageRating)
	assert.Equal(t, 3, s.RatingCount)
}

func TestRecompute_MixedFeedback(t *testing.T) {
	s := &ProductSummary{ProductID: "p1"}

	both := UserFeedback{
		Rating: &Rating{Value: 2},
		Review: &Review{Title: "ok", Body: "fine"},
	}
	s.Recompute([]UserFeedback{both, fbWithRating(4), fbWithReview()})

	assert.Equal(t, 3.0, s.AverageRating)
	assert.Equal(t, 2, s.RatingCount)
	assert.Equal(t, 2, s.ReviewCount)
}

func TestRecompute_ZeroRatingCountsTowardAverage(t *testing.T) {
	s := &ProductSummary{ProductID: "p1"}

	s.Recompute([]UserFeedback{fbWithRating(0), fbWithRating(5)})

	assert.Equal(t, 2.5, s.AverageRating)
	assert.Equal(t, 2, s.RatingCount)
}

// ============================================================================
// UserFeedback Tests
// ============================================================================

func TestUserFeedback_IsEmpty(t *testing.T) {
	var f UserFeedback
	assert.True(t, f.IsEmpty())

	f.Rating = &Rating{Value: 3}
	assert.False(t, f.IsEmpty())

	f.Rating = nil
	f.Review = &Review{Title: "t"}
	assert.False(t, f.IsEmpty())
}
