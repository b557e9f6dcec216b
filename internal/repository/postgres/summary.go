package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	"github.com/ASP-NET-2/ReviewProvider/pkg/database"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

// SummaryRepository implements repository.SummaryRepository using PostgreSQL.
type SummaryRepository struct {
	pool database.DBTX
}

// NewSummaryRepository creates a new PostgreSQL-backed summary repository.
func NewSummaryRepository(pool database.DBTX) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

// Get retrieves the summary row for a product.
func (r *SummaryRepository) Get(ctx context.Context, productID string) (*domain.ProductSummary, error) {
	query := `
		SELECT product_id, average_rating, rating_count, review_count, created_at, updated_at
		FROM product_feedback
		WHERE product_id = $1`

	var s domain.ProductSummary

	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&s.ProductID,
		&s.AverageRating,
		&s.RatingCount,
		&s.ReviewCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product summary: %w", err)
	}

	return &s, nil
}

// Create inserts a new summary row for a product.
func (r *SummaryRepository) Create(ctx context.Context, summary *domain.ProductSummary) error {
	query := `
		INSERT INTO product_feedback (product_id, average_rating, rating_count, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		summary.ProductID,
		summary.AverageRating,
		summary.RatingCount,
		summary.ReviewCount,
		summary.CreatedAt,
		summary.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product summary", "product_id", summary.ProductID)
		}
		return fmt.Errorf("insert product summary: %w", err)
	}

	return nil
}

// Update writes the aggregate fields of an existing summary row.
func (r *SummaryRepository) Update(ctx context.Context, summary *domain.ProductSummary) error {
	query := `
		UPDATE product_feedback
		SET average_rating = $2, rating_count = $3, review_count = $4, updated_at = $5
		WHERE product_id = $1`

	ct, err := r.pool.Exec(ctx, query,
		summary.ProductID,
		summary.AverageRating,
		summary.RatingCount,
		summary.ReviewCount,
		summary.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product summary: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product summary", summary.ProductID)
	}

	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
