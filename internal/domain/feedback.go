package domain

import (
	"time"
)

// Rating bounds and review length limits enforced at the service boundary.
const (
	MinRatingValue = 0
	MaxRatingValue = 5
	MaxTitleLength = 120
	MaxBodyLength  = 5000
)

// Rating is a numeric score a user gave a product. At most one rating exists
// per feedback row.
type Rating struct {
	ID         string    `json:"id"`
	FeedbackID string    `json:"-"`
	Value      float64   `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Review is a textual review a user wrote for a product. At most one review
// exists per feedback row. OriginallyPostedAt is set once when the review is
// first created and never changes on later edits.
type Review struct {
	ID                 string    `json:"id"`
	FeedbackID         string    `json:"-"`
	Title              string    `json:"title"`
	Body               string    `json:"body"`
	OriginallyPostedAt time.Time `json:"originally_posted_at"`
	LastUpdatedAt      time.Time `json:"last_updated_at"`
}

// UserFeedback is one user's feedback on one product. It exists only while it
// carries at least one of a rating or a review; an emptied row is removed.
type UserFeedback struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    *Rating   `json:"rating,omitempty"`
	Review    *Review   `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty reports whether the feedback carries neither a rating nor a review.
func (f *UserFeedback) IsEmpty() bool {
	return f.Rating == nil && f.Review == nil
}
