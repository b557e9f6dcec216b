package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

var summaryColumns = []string{
	"product_id", "average_rating", "rating_count", "review_count", "created_at", "updated_at",
}

func sampleSummary() domain.ProductSummary {
	return domain.ProductSummary{
		ProductID:     "prod-1",
		AverageRating: 4.25,
		RatingCount:   4,
		ReviewCount:   2,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func summaryRow(s domain.ProductSummary) []any {
	return []any{s.ProductID, s.AverageRating, s.RatingCount, s.ReviewCount, s.CreatedAt, s.UpdatedAt}
}

func TestSummaryRepository_Get_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSummaryRepository(mock)

	s := sampleSummary()
	mock.ExpectQuery("SELECT .+ FROM product_feedback").
		WithArgs(s.ProductID).
		WillReturnRows(
			pgxmock.NewRows(summaryColumns).AddRow(summaryRow(s)...),
		)

	result, err := repo.Get(context.Background(), s.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 4.25, result.AverageRating)
	assert.Equal(t, 4, result.RatingCount)
	assert.Equal(t, 2, result.ReviewCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryRepository_Get_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSummaryRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM product_feedback").
		WithArgs("prod-missing").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.Get(context.Background(), "prod-missing")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryRepository_Create_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSummaryRepository(mock)

	s := sampleSummary()
	mock.ExpectExec("INSERT INTO product_feedback").
		WithArgs(s.ProductID, s.AverageRating, s.RatingCount, s.ReviewCount, s.CreatedAt, s.UpdatedAt).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &s)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryRepository_Update_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSummaryRepository(mock)

	s := sampleSummary()
	mock.ExpectExec("UPDATE product_feedback").
		WithArgs(s.ProductID, s.AverageRating, s.RatingCount, s.ReviewCount, s.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), &s)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSummaryRepository(mock)

	s := sampleSummary()
	mock.ExpectExec("UPDATE product_feedback").
		WithArgs(s.ProductID, s.AverageRating, s.RatingCount, s.ReviewCount, s.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &s)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
