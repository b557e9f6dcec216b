package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	"github.com/ASP-NET-2/ReviewProvider/internal/repository"
	"github.com/ASP-NET-2/ReviewProvider/pkg/database"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

// feedbackColumns selects a feedback row joined with its optional rating and
// review. Every query on user_feedback goes through this projection so
// scanFeedbackRow can decode all of them.
const feedbackColumns = `
	uf.id, uf.product_id, uf.user_id, uf.created_at, uf.updated_at,
	rt.id, rt.value, rt.created_at, rt.updated_at,
	rv.id, rv.title, rv.body, rv.originally_posted_at, rv.last_updated_at`

const feedbackJoins = `
	FROM user_feedback uf
	LEFT JOIN ratings rt ON rt.feedback_id = uf.id
	LEFT JOIN reviews rv ON rv.feedback_id = uf.id`

// UserFeedbackRepository implements repository.UserFeedbackRepository using PostgreSQL.
type UserFeedbackRepository struct {
	pool database.DBTX
}

// NewUserFeedbackRepository creates a new PostgreSQL-backed feedback repository.
func NewUserFeedbackRepository(pool database.DBTX) *UserFeedbackRepository {
	return &UserFeedbackRepository{pool: pool}
}

// GetByProductAndUser retrieves one user's feedback on one product with its
// rating and review attached.
func (r *UserFeedbackRepository) GetByProductAndUser(ctx context.Context, productID, userID string) (*domain.UserFeedback, error) {
	query := `SELECT` + feedbackColumns + feedbackJoins + `
	WHERE uf.product_id = $1 AND uf.user_id = $2`

	row := r.pool.QueryRow(ctx, query, productID, userID)

	fb, err := scanFeedbackRow(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user feedback: %w", err)
	}

	return fb, nil
}

// ListByProduct returns all feedback rows for one product, oldest first.
func (r *UserFeedbackRepository) ListByProduct(ctx context.Context, productID string) ([]domain.UserFeedback, error) {
	query := `SELECT` + feedbackColumns + feedbackJoins + `
	WHERE uf.product_id = $1
	ORDER BY uf.created_at ASC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list feedback by product: %w", err)
	}
	defer rows.Close()

	var feedback []domain.UserFeedback
	for rows.Next() {
		fb, err := scanFeedbackRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}
		feedback = append(feedback, *fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback rows: %w", err)
	}

	if feedback == nil {
		feedback = []domain.UserFeedback{}
	}

	return feedback, nil
}

// List returns feedback rows matching the filter along with the total count
// before skip/take. Rows with a review sort by its original posting date,
// newest first; rows without a review come last, oldest feedback first among
// themselves.
func (r *UserFeedbackRepository) List(ctx context.Context, filter repository.FeedbackFilter) ([]domain.UserFeedback, int, error) {
	var (
		whereClause string
		filterArgs  []any
	)

	if len(filter.ProductIDs) > 0 {
		whereClause = fmt.Sprintf("\n\tWHERE uf.product_id = ANY($%d)", len(filterArgs)+1)
		filterArgs = append(filterArgs, filter.ProductIDs)
	}

	if len(filter.UserIDs) > 0 {
		cond := fmt.Sprintf("uf.user_id = ANY($%d)", len(filterArgs)+1)
		if whereClause == "" {
			whereClause = "\n\tWHERE " + cond
		} else {
			whereClause += " AND " + cond
		}
		filterArgs = append(filterArgs, filter.UserIDs)
	}

	query := `SELECT` + feedbackColumns + `,
	       count(*) OVER() AS total_count` + feedbackJoins + whereClause +
		"\n\tORDER BY rv.originally_posted_at DESC NULLS LAST, uf.created_at ASC"

	args := append([]any{}, filterArgs...)
	if filter.Skip > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, filter.Skip)
	}
	if filter.Take > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filter.Take)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var (
		feedback   []domain.UserFeedback
		totalCount int
	)

	for rows.Next() {
		var fb *domain.UserFeedback
		fb, err = scanFeedbackRow(func(dest ...any) error {
			return rows.Scan(append(dest, &totalCount)...)
		})
		if err != nil {
			return nil, 0, fmt.Errorf("scan feedback row: %w", err)
		}
		feedback = append(feedback, *fb)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate feedback rows: %w", err)
	}

	if feedback == nil {
		feedback = []domain.UserFeedback{}
	}

	// count(*) OVER() only materializes on returned rows. A window past the
	// last match returns none, so recount without the window.
	if len(feedback) == 0 {
		countQuery := `SELECT count(*) FROM user_feedback uf` + whereClause
		if err := r.pool.QueryRow(ctx, countQuery, filterArgs...).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count feedback: %w", err)
		}
	}

	return feedback, totalCount, nil
}

// Create inserts a new feedback row without rating or review.
func (r *UserFeedbackRepository) Create(ctx context.Context, feedback *domain.UserFeedback) error {
	query := `
		INSERT INTO user_feedback (id, product_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		feedback.ID,
		feedback.ProductID,
		feedback.UserID,
		feedback.CreatedAt,
		feedback.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user feedback", "user_id", feedback.UserID)
		}
		return fmt.Errorf("insert user feedback: %w", err)
	}

	return nil
}

// Touch updates the feedback row's updated_at timestamp.
func (r *UserFeedbackRepository) Touch(ctx context.Context, feedback *domain.UserFeedback) error {
	query := `UPDATE user_feedback SET updated_at = $2 WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, feedback.ID, feedback.UpdatedAt)
	if err != nil {
		return fmt.Errorf("touch user feedback: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user feedback", feedback.ID)
	}

	return nil
}

// Delete removes a feedback row. Rating and review rows cascade.
func (r *UserFeedbackRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM user_feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user feedback: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user feedback", id)
	}

	return nil
}

// scanFeedbackRow decodes the feedbackColumns projection. The rating and
// review columns come from LEFT JOINs, so they scan through pointers and the
// child structs are only attached when present.
func scanFeedbackRow(scan func(dest ...any) error) (*domain.UserFeedback, error) {
	var (
		fb domain.UserFeedback

		ratingID        *string
		ratingValue     *float64
		ratingCreatedAt *time.Time
		ratingUpdatedAt *time.Time

		reviewID       *string
		reviewTitle    *string
		reviewBody     *string
		reviewPostedAt *time.Time
		reviewUpdated  *time.Time
	)

	err := scan(
		&fb.ID,
		&fb.ProductID,
		&fb.UserID,
		&fb.CreatedAt,
		&fb.UpdatedAt,
		&ratingID,
		&ratingValue,
		&ratingCreatedAt,
		&ratingUpdatedAt,
		&reviewID,
		&reviewTitle,
		&reviewBody,
		&reviewPostedAt,
		&reviewUpdated,
	)
	if err != nil {
		return nil, err
	}

	if ratingID != nil {
		fb.Rating = &domain.Rating{
			ID:         *ratingID,
			FeedbackID: fb.ID,
			Value:      *ratingValue,
			CreatedAt:  *ratingCreatedAt,
			UpdatedAt:  *ratingUpdatedAt,
		}
	}

	if reviewID != nil {
		fb.Review = &domain.Review{
			ID:                 *reviewID,
			FeedbackID:         fb.ID,
			Title:              *reviewTitle,
			Body:               *reviewBody,
			OriginallyPostedAt: *reviewPostedAt,
			LastUpdatedAt:      *reviewUpdated,
		}
	}

	return &fb, nil
}
