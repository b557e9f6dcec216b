package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	"github.com/ASP-NET-2/ReviewProvider/internal/repository"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

// --- Mock Repositories ---

type mockSummaryRepo struct {
	mock.Mock
}

func (m *mockSummaryRepo) Get(ctx context.Context, productID string) (*domain.ProductSummary, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductSummary), args.Error(1)
}

func (m *mockSummaryRepo) Create(ctx context.Context, summary *domain.ProductSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *mockSummaryRepo) Update(ctx context.Context, summary *domain.ProductSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

type mockFeedbackRepo struct {
	mock.Mock
}

func (m *mockFeedbackRepo) GetByProductAndUser(ctx context.Context, productID, userID string) (*domain.UserFeedback, error) {
	args := m.Called(ctx, productID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserFeedback), args.Error(1)
}

func (m *mockFeedbackRepo) ListByProduct(ctx context.Context, productID string) ([]domain.UserFeedback, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.UserFeedback), args.Error(1)
}

func (m *mockFeedbackRepo) List(ctx context.Context, filter repository.FeedbackFilter) ([]domain.UserFeedback, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.UserFeedback), args.Int(1), args.Error(2)
}

func (m *mockFeedbackRepo) Create(ctx context.Context, feedback *domain.UserFeedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

func (m *mockFeedbackRepo) Touch(ctx context.Context, feedback *domain.UserFeedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

func (m *mockFeedbackRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRatingRepo struct {
	mock.Mock
}

func (m *mockRatingRepo) Create(ctx context.Context, rating *domain.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *mockRatingRepo) Update(ctx context.Context, rating *domain.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *mockRatingRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeStore runs changesets directly against the mock repositories, without
// any transaction machinery.
type fakeStore struct {
	cs *repository.Changeset
}

func (s *fakeStore) RunChangeset(ctx context.Context, fn func(ctx context.Context, cs *repository.Changeset) error) error {
	return fn(ctx, s.cs)
}

func (s *fakeStore) Summaries() repository.SummaryRepository {
	return s.cs.Summaries
}

func (s *fakeStore) Feedback() repository.UserFeedbackRepository {
	return s.cs.Feedback
}

// stubCatalog answers every existence check with a fixed result.
type stubCatalog struct {
	err   error
	calls int
}

func (c *stubCatalog) EnsureProductExists(_ context.Context, _ string) error {
	c.calls++
	return c.err
}

// recordingPublisher counts published events per kind.
type recordingPublisher struct {
	ratingUpserted int
	ratingDeleted  int
	reviewUpserted int
	reviewDeleted  int
}

func (p *recordingPublisher) PublishRatingUpserted(context.Context, string, *domain.ProductSummary) error {
	p.ratingUpserted++
	return nil
}

func (p *recordingPublisher) PublishRatingDeleted(context.Context, string, *domain.ProductSummary) error {
	p.ratingDeleted++
	return nil
}

func (p *recordingPublisher) PublishReviewUpserted(context.Context, string, *domain.ProductSummary) error {
	p.reviewUpserted++
	return nil
}

func (p *recordingPublisher) PublishReviewDeleted(context.Context, string, *domain.ProductSummary) error {
	p.reviewDeleted++
	return nil
}

// --- Test Helpers ---

type testEnv struct {
	summaries *mockSummaryRepo
	feedback  *mockFeedbackRepo
	ratings   *mockRatingRepo
	reviews   *mockReviewRepo
	catalog   *stubCatalog
	publisher *recordingPublisher
	svc       *FeedbackService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		summaries: &mockSummaryRepo{},
		feedback:  &mockFeedbackRepo{},
		ratings:   &mockRatingRepo{},
		reviews:   &mockReviewRepo{},
		catalog:   &stubCatalog{},
		publisher: &recordingPublisher{},
	}
	store := &fakeStore{cs: &repository.Changeset{
		Summaries: env.summaries,
		Feedback:  env.feedback,
		Ratings:   env.ratings,
		Reviews:   env.reviews,
	}}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	env.svc = NewFeedbackService(store, env.catalog, env.publisher, logger)
	return env
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func existingSummary() *domain.ProductSummary {
	return &domain.ProductSummary{
		ProductID:     "prod-1",
		AverageRating: 4,
		RatingCount:   1,
		ReviewCount:   0,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
}

// --- RateProduct ---

func TestRateProduct_FirstRatingMaterializesEverything(t *testing.T) {
	env := newTestEnv()

	env.summaries.On("Get", mock.Anything, "prod-1").Return(nil, apperrors.ErrNotFound).Once()
	env.summaries.On("Create", mock.Anything, mock.AnythingOfType("*domain.ProductSummary")).Return(nil).Once()
	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(nil, apperrors.ErrNotFound).Once()
	env.feedback.On("Create", mock.Anything, mock.AnythingOfType("*domain.UserFeedback")).Return(nil).Once()
	env.ratings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Rating")).Return(nil).Once()
	env.feedback.On("Touch", mock.Anything, mock.AnythingOfType("*domain.UserFeedback")).Return(nil).Once()

	// Recompute sees the single new rating.
	env.feedback.On("ListByProduct", mock.Anything, "prod-1").Return([]domain.UserFeedback{
		{ID: "fb-1", Rating: &domain.Rating{Value: 4}},
	}, nil).Once()
	env.summaries.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.ProductSummary) bool {
		return s.AverageRating == 4 && s.RatingCount == 1 && s.ReviewCount == 0
	})).Return(nil).Once()

	fb, err := env.svc.RateProduct(context.Background(), &RateProductInput{
		ProductID: "prod-1",
		UserID:    "user-1",
		Value:     4,
	})

	require.NoError(t, err)
	require.NotNil(t, fb.Rating)
	assert.Equal(t, 4.0, fb.Rating.Value)
	assert.Equal(t, 1, env.catalog.calls)
	assert.Equal(t, 1, env.publisher.ratingUpserted)
	env.summaries.AssertExpectations(t)
	env.feedback.AssertExpectations(t)
	env.ratings.AssertExpectations(t)
}

func TestRateProduct_SecondRatingUpdatesInPlace(t *testing.T) {
	env := newTestEnv()

	existing := &domain.UserFeedback{
		ID:        "fb-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Rating:    &domain.Rating{ID: "rt-1", FeedbackID: "fb-1", Value: 2, CreatedAt: testNow, UpdatedAt: testNow},
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}

	env.summaries.On("Get", mock.Anything, "prod-1").Return(existingSummary(), nil).Once()
	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(existing, nil).Once()
	env.ratings.On("Update", mock.Anything, mock.MatchedBy(func(rt *domain.Rating) bool {
		return rt.ID == "rt-1" && rt.Value == 5
	})).Return(nil).Once()
	env.feedback.On("Touch", mock.Anything, existing).Return(nil).Once()
	env.feedback.On("ListByProduct", mock.Anything, "prod-1").Return([]domain.UserFeedback{*existing}, nil).Once()
	env.summaries.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.ProductSummary) bool {
		return s.AverageRating == 5 && s.RatingCount == 1
	})).Return(nil).Once()

	fb, err := env.svc.RateProduct(context.Background(), &RateProductInput{
		ProductID: "prod-1",
		UserID:    "user-1",
		Value:     5,
	})

	require.NoError(t, err)
	assert.Equal(t, 5.0, fb.Rating.Value)
	env.ratings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.ratings.AssertExpectations(t)
	env.summaries.AssertExpectations(t)
}

func TestRateProduct_ValueOutOfRange(t *testing.T) {
	env := newTestEnv()

	for _, value := range []float64{-0.5, 5.01, 10} {
		_, err := env.svc.RateProduct(context.Background(), &RateProductInput{
			ProductID: "prod-1",
			UserID:    "user-1",
			Value:     value,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "value %v must be rejected", value)
	}

	assert.Zero(t, env.catalog.calls, "invalid input must be rejected before the catalog call")
}

func TestRateProduct_UnknownProduct(t *testing.T) {
	env := newTestEnv()
	env.catalog.err = apperrors.NotFound("product", "prod-ghost")

	_, err := env.svc.RateProduct(context.Background(), &RateProductInput{
		ProductID: "prod-ghost",
		UserID:    "user-1",
		Value:     3,
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	env.summaries.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	assert.Zero(t, env.publisher.ratingUpserted)
}

// --- DeleteRating ---

func TestDeleteRating_KeepsFeedbackWhenReviewRemains(t *testing.T) {
	env := newTestEnv()

	existing := &domain.UserFeedback{
		ID:        "fb-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Rating:    &domain.Rating{ID: "rt-1", Value: 4},
		Review:    &domain.Review{ID: "rv-1", Title: "Good"},
	}

	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(existing, nil).Once()
	env.ratings.On("Delete", mock.Anything, "rt-1").Return(nil).Once()
	env.feedback.On("Touch", mock.Anything, existing).Return(nil).Once()
	env.summaries.On("Get", mock.Anything, "prod-1").Return(existingSummary(), nil).Once()
	env.feedback.On("ListByProduct", mock.Anything, "prod-1").Return([]domain.UserFeedback{
		{ID: "fb-1", Review: &domain.Review{ID: "rv-1"}},
	}, nil).Once()
	env.summaries.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.ProductSummary) bool {
		return s.AverageRating == 0 && s.RatingCount == 0 && s.ReviewCount == 1
	})).Return(nil).Once()

	err := env.svc.DeleteRating(context.Background(), "prod-1", "user-1")

	require.NoError(t, err)
	env.feedback.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Equal(t, 1, env.publisher.ratingDeleted)
	env.summaries.AssertExpectations(t)
}

func TestDeleteRating_PrunesEmptyFeedbackRow(t *testing.T) {
	env := newTestEnv()

	existing := &domain.UserFeedback{
		ID:        "fb-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Rating:    &domain.Rating{ID: "rt-1", Value: 4},
	}

	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(existing, nil).Once()
	env.ratings.On("Delete", mock.Anything, "rt-1").Return(nil).Once()
	env.feedback.On("Delete", mock.Anything, "fb-1").Return(nil).Once()
	env.summaries.On("Get", mock.Anything, "prod-1").Return(existingSummary(), nil).Once()
	env.feedback.On("ListByProduct", mock.Anything, "prod-1").Return([]domain.UserFeedback{}, nil).Once()
	env.summaries.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.ProductSummary) bool {
		return s.AverageRating == 0 && s.RatingCount == 0 && s.ReviewCount == 0
	})).Return(nil).Once()

	err := env.svc.DeleteRating(context.Background(), "prod-1", "user-1")

	require.NoError(t, err)
	env.feedback.AssertNotCalled(t, "Touch", mock.Anything, mock.Anything)
	env.feedback.AssertExpectations(t)
}

func TestDeleteRating_NoRatingOnFeedback(t *testing.T) {
	env := newTestEnv()

	existing := &domain.UserFeedback{
		ID:        "fb-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Review:    &domain.Review{ID: "rv-1"},
	}

	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(existing, nil).Once()

	err := env.svc.DeleteRating(context.Background(), "prod-1", "user-1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "fb-1", "error should name the feedback row the rating is missing from")
	env.ratings.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Zero(t, env.publisher.ratingDeleted)
}

func TestDeleteRating_NoFeedbackRow(t *testing.T) {
	env := newTestEnv()

	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(nil, apperrors.ErrNotFound).Once()

	err := env.svc.DeleteRating(context.Background(), "prod-1", "user-1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- ReviewProduct ---

func TestReviewProduct_EditKeepsOriginalPostDate(t *testing.T) {
	env := newTestEnv()

	postedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &domain.UserFeedback{
		ID:        "fb-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Review: &domain.Review{
			ID:                 "rv-1",
			FeedbackID:         "fb-1",
			Title:              "Original",
			Body:               "First impressions.",
			OriginallyPostedAt: postedAt,
			LastUpdatedAt:      postedAt,
		},
	}

	env.summaries.On("Get", mock.Anything, "prod-1").Return(existingSummary(), nil).Once()
	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(existing, nil).Once()
	env.reviews.On("Update", mock.Anything, mock.MatchedBy(func(rv *domain.Review) bool {
		return rv.ID == "rv-1" && rv.Title == "Updated" && rv.OriginallyPostedAt.Equal(postedAt) && rv.LastUpdatedAt.After(postedAt)
	})).Return(nil).Once()
	env.feedback.On("Touch", mock.Anything, existing).Return(nil).Once()
	env.feedback.On("ListByProduct", mock.Anything, "prod-1").Return([]domain.UserFeedback{*existing}, nil).Once()
	env.summaries.On("Update", mock.Anything, mock.AnythingOfType("*domain.ProductSummary")).Return(nil).Once()

	fb, err := env.svc.ReviewProduct(context.Background(), &ReviewProductInput{
		ProductID: "prod-1",
		UserID:    "user-1",
		Title:     "Updated",
		Body:      "Changed my mind.",
	})

	require.NoError(t, err)
	assert.Equal(t, postedAt, fb.Review.OriginallyPostedAt)
	env.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, 1, env.publisher.reviewUpserted)
	env.reviews.AssertExpectations(t)
}

func TestReviewProduct_TitleTooLong(t *testing.T) {
	env := newTestEnv()

	title := make([]byte, domain.MaxTitleLength+1)
	for i := range title {
		title[i] = 'a'
	}

	_, err := env.svc.ReviewProduct(context.Background(), &ReviewProductInput{
		ProductID: "prod-1",
		UserID:    "user-1",
		Title:     string(title),
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Zero(t, env.catalog.calls)
}

func TestReviewProduct_EmptyBody(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.ReviewProduct(context.Background(), &ReviewProductInput{
		ProductID: "prod-1",
		UserID:    "user-1",
		Title:     "Great",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Zero(t, env.catalog.calls)
}

func TestReviewProduct_FirstReviewOnRatedProduct(t *testing.T) {
	env := newTestEnv()

	existing := &domain.UserFeedback{
		ID:        "fb-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Rating:    &domain.Rating{ID: "rt-1", Value: 3},
	}

	// The recompute re-reads the product's rows after the review is
	// attached, so the listed row carries both details.
	afterWrite := domain.UserFeedback{
		ID:        "fb-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Rating:    &domain.Rating{ID: "rt-1", Value: 3},
		Review:    &domain.Review{ID: "rv-1", FeedbackID: "fb-1", Title: "Nice"},
	}

	env.summaries.On("Get", mock.Anything, "prod-1").Return(existingSummary(), nil).Once()
	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(existing, nil).Once()
	env.reviews.On("Create", mock.Anything, mock.MatchedBy(func(rv *domain.Review) bool {
		return rv.FeedbackID == "fb-1" && rv.Title == "Nice"
	})).Return(nil).Once()
	env.feedback.On("Touch", mock.Anything, existing).Return(nil).Once()
	env.feedback.On("ListByProduct", mock.Anything, "prod-1").Return([]domain.UserFeedback{afterWrite}, nil).Once()
	env.summaries.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.ProductSummary) bool {
		return s.RatingCount == 1 && s.ReviewCount == 1
	})).Return(nil).Once()

	fb, err := env.svc.ReviewProduct(context.Background(), &ReviewProductInput{
		ProductID: "prod-1",
		UserID:    "user-1",
		Title:     "Nice",
		Body:      "Works well.",
	})

	require.NoError(t, err)
	require.NotNil(t, fb.Review)
	require.NotNil(t, fb.Rating, "rating must survive adding a review")
	env.reviews.AssertExpectations(t)
}

// --- DeleteReview ---

func TestDeleteReview_PrunesEmptyFeedbackRow(t *testing.T) {
	env := newTestEnv()

	existing := &domain.UserFeedback{
		ID:        "fb-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Review:    &domain.Review{ID: "rv-1", Title: "Bye"},
	}

	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(existing, nil).Once()
	env.reviews.On("Delete", mock.Anything, "rv-1").Return(nil).Once()
	env.feedback.On("Delete", mock.Anything, "fb-1").Return(nil).Once()
	env.summaries.On("Get", mock.Anything, "prod-1").Return(existingSummary(), nil).Once()
	env.feedback.On("ListByProduct", mock.Anything, "prod-1").Return([]domain.UserFeedback{}, nil).Once()
	env.summaries.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.ProductSummary) bool {
		return s.ReviewCount == 0
	})).Return(nil).Once()

	err := env.svc.DeleteReview(context.Background(), "prod-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, 1, env.publisher.reviewDeleted)
	env.feedback.AssertExpectations(t)
}

func TestDeleteReview_NoReviewOnFeedback(t *testing.T) {
	env := newTestEnv()

	existing := &domain.UserFeedback{
		ID:        "fb-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Rating:    &domain.Rating{ID: "rt-1", Value: 4},
	}

	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(existing, nil).Once()

	err := env.svc.DeleteReview(context.Background(), "prod-1", "user-1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "fb-1", "error should name the feedback row the review is missing from")
	env.reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- Queries ---

func TestGetUserFeedback_NotFound(t *testing.T) {
	env := newTestEnv()

	env.feedback.On("GetByProductAndUser", mock.Anything, "prod-1", "user-1").Return(nil, apperrors.ErrNotFound).Once()

	fb, err := env.svc.GetUserFeedback(context.Background(), "prod-1", "user-1")

	assert.Nil(t, fb)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListUserFeedback_EmptyFilterShortCircuits(t *testing.T) {
	env := newTestEnv()

	result, err := env.svc.ListUserFeedback(context.Background(), &ListFeedbackInput{})

	require.NoError(t, err)
	assert.Empty(t, result.Feedback)
	assert.Zero(t, result.TotalCount)
	env.feedback.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListUserFeedback_PassesFilterThrough(t *testing.T) {
	env := newTestEnv()

	env.feedback.On("List", mock.Anything, repository.FeedbackFilter{
		UserIDs: []string{"user-1"},
		Skip:    10,
		Take:    5,
	}).Return([]domain.UserFeedback{{ID: "fb-1"}}, 42, nil).Once()

	result, err := env.svc.ListUserFeedback(context.Background(), &ListFeedbackInput{
		UserIDs: []string{"user-1"},
		Skip:    10,
		Take:    5,
	})

	require.NoError(t, err)
	assert.Len(t, result.Feedback, 1)
	assert.Equal(t, 42, result.TotalCount)
	env.feedback.AssertExpectations(t)
}

func TestListUserFeedback_NegativeSkip(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.ListUserFeedback(context.Background(), &ListFeedbackInput{
		UserIDs: []string{"user-1"},
		Skip:    -1,
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- GetProductSummary ---

func TestGetProductSummary_ExistingRow(t *testing.T) {
	env := newTestEnv()

	env.summaries.On("Get", mock.Anything, "prod-1").Return(existingSummary(), nil).Once()

	summary, err := env.svc.GetProductSummary(context.Background(), "prod-1")

	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.AverageRating)
	assert.Zero(t, env.catalog.calls, "existing summaries are served without a catalog lookup")
}

func TestGetProductSummary_MaterializesOnFirstRead(t *testing.T) {
	env := newTestEnv()

	// Both the direct read and the one inside the changeset miss.
	env.summaries.On("Get", mock.Anything, "prod-1").Return(nil, apperrors.ErrNotFound).Twice()
	env.summaries.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.ProductSummary) bool {
		return s.ProductID == "prod-1" && s.AverageRating == 0 && s.RatingCount == 0 && s.ReviewCount == 0
	})).Return(nil).Once()

	summary, err := env.svc.GetProductSummary(context.Background(), "prod-1")

	require.NoError(t, err)
	assert.Equal(t, "prod-1", summary.ProductID)
	assert.Zero(t, summary.AverageRating)
	assert.Equal(t, 1, env.catalog.calls)
	env.summaries.AssertExpectations(t)
}

func TestGetProductSummary_UnknownProduct(t *testing.T) {
	env := newTestEnv()
	env.catalog.err = apperrors.NotFound("product", "prod-ghost")

	env.summaries.On("Get", mock.Anything, "prod-ghost").Return(nil, apperrors.ErrNotFound).Once()

	summary, err := env.svc.GetProductSummary(context.Background(), "prod-ghost")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	env.summaries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
