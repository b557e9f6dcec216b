package postgres

import (
	"context"
	"fmt"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	"github.com/ASP-NET-2/ReviewProvider/pkg/database"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review attached to a feedback row.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, feedback_id, title, body, originally_posted_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.FeedbackID,
		review.Title,
		review.Body,
		review.OriginallyPostedAt,
		review.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("review", "feedback_id", review.FeedbackID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// Update replaces the title and body of an existing review. The original
// posting date is left untouched.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `UPDATE reviews SET title = $2, body = $3, last_updated_at = $4 WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, review.ID, review.Title, review.Body, review.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// Delete removes a review by its identifier.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}
