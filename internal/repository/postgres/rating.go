package postgres

import (
	"context"
	"fmt"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	"github.com/ASP-NET-2/ReviewProvider/pkg/database"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

// RatingRepository implements repository.RatingRepository using PostgreSQL.
type RatingRepository struct {
	pool database.DBTX
}

// NewRatingRepository creates a new PostgreSQL-backed rating repository.
func NewRatingRepository(pool database.DBTX) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Create inserts a new rating attached to a feedback row.
func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	query := `
		INSERT INTO ratings (id, feedback_id, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		rating.ID,
		rating.FeedbackID,
		rating.Value,
		rating.CreatedAt,
		rating.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("rating", "feedback_id", rating.FeedbackID)
		}
		return fmt.Errorf("insert rating: %w", err)
	}

	return nil
}

// Update writes a new value to an existing rating.
func (r *RatingRepository) Update(ctx context.Context, rating *domain.Rating) error {
	query := `UPDATE ratings SET value = $2, updated_at = $3 WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, rating.ID, rating.Value, rating.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("rating", rating.ID)
	}

	return nil
}

// Delete removes a rating by its identifier.
func (r *RatingRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("rating", id)
	}

	return nil
}
