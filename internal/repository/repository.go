package repository

import (
	"context"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
)

// FeedbackFilter defines filter criteria for listing user feedback.
// Empty slices mean no restriction on that dimension. Take <= 0 means
// no limit.
type FeedbackFilter struct {
	ProductIDs []string
	UserIDs    []string
	Skip       int
	Take       int
}

// SummaryRepository persists per-product aggregate summaries.
type SummaryRepository interface {
	// Get retrieves the summary for a product. Returns apperrors.ErrNotFound
	// when no summary row exists yet.
	Get(ctx context.Context, productID string) (*domain.ProductSummary, error)

	// Create inserts a new summary row. Returns apperrors.ErrAlreadyExists
	// when a row for the product is already present.
	Create(ctx context.Context, summary *domain.ProductSummary) error

	// Update writes the aggregate fields of an existing summary row.
	Update(ctx context.Context, summary *domain.ProductSummary) error
}

// UserFeedbackRepository persists per-user feedback rows together with their
// attached rating and review.
type UserFeedbackRepository interface {
	// GetByProductAndUser retrieves one user's feedback on one product,
	// including its rating and review. Returns apperrors.ErrNotFound when
	// the user has no feedback on the product.
	GetByProductAndUser(ctx context.Context, productID, userID string) (*domain.UserFeedback, error)

	// ListByProduct returns all feedback rows for a product with ratings and
	// reviews attached. Used to recompute the product summary.
	ListByProduct(ctx context.Context, productID string) ([]domain.UserFeedback, error)

	// List returns feedback rows matching the filter along with the total
	// count before skip/take are applied. Rows are ordered by review posted
	// date descending; rows without a review sort last.
	List(ctx context.Context, filter FeedbackFilter) ([]domain.UserFeedback, int, error)

	// Create inserts a new feedback row (without rating or review).
	Create(ctx context.Context, feedback *domain.UserFeedback) error

	// Touch updates the feedback row's updated_at timestamp.
	Touch(ctx context.Context, feedback *domain.UserFeedback) error

	// Delete removes a feedback row. Attached rating and review rows are
	// removed with it.
	Delete(ctx context.Context, id string) error
}

// RatingRepository persists rating rows attached to feedback.
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
	Update(ctx context.Context, rating *domain.Rating) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository persists review rows attached to feedback.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id string) error
}

// Changeset groups the repositories bound to one transaction. All writes made
// through a changeset commit or roll back together.
type Changeset struct {
	Summaries SummaryRepository
	Feedback  UserFeedbackRepository
	Ratings   RatingRepository
	Reviews   ReviewRepository
}

// Store is the entry point to feedback persistence. Reads go through the
// plain repositories; multi-row writes go through RunChangeset.
type Store interface {
	// RunChangeset executes fn inside a serializable transaction. The whole
	// function is retried when the database detects a serialization conflict,
	// so fn must be safe to re-execute from scratch. Returns
	// apperrors.ErrConflict when retries are exhausted.
	RunChangeset(ctx context.Context, fn func(ctx context.Context, cs *Changeset) error) error

	// Summaries returns a repository reading outside any transaction.
	Summaries() SummaryRepository

	// Feedback returns a repository reading outside any transaction.
	Feedback() UserFeedbackRepository
}
