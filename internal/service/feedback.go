package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	"github.com/ASP-NET-2/ReviewProvider/internal/repository"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

// ProductChecker verifies a product exists before feedback is accepted for it.
type ProductChecker interface {
	EnsureProductExists(ctx context.Context, productID string) error
}

// EventPublisher publishes feedback domain events after a change commits.
type EventPublisher interface {
	PublishRatingUpserted(ctx context.Context, userID string, summary *domain.ProductSummary) error
	PublishRatingDeleted(ctx context.Context, userID string, summary *domain.ProductSummary) error
	PublishReviewUpserted(ctx context.Context, userID string, summary *domain.ProductSummary) error
	PublishReviewDeleted(ctx context.Context, userID string, summary *domain.ProductSummary) error
}

// FeedbackService implements the business logic for product feedback. Every
// mutation runs as one changeset: the feedback row and its rating or review
// are changed together with a full recompute of the product summary, and they
// commit or roll back as a unit.
type FeedbackService struct {
	store    repository.Store
	catalog  ProductChecker
	producer EventPublisher
	logger   *slog.Logger
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(store repository.Store, catalog ProductChecker, producer EventPublisher, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{
		store:    store,
		catalog:  catalog,
		producer: producer,
		logger:   logger,
	}
}

// getOrCreateSummary loads the product's summary row, materializing an empty
// one on first touch. A duplicate insert from a racing transaction bubbles up
// as ErrAlreadyExists, which the store treats as a retry signal.
func getOrCreateSummary(ctx context.Context, cs *repository.Changeset, productID string, now time.Time) (*domain.ProductSummary, error) {
	summary, err := cs.Summaries.Get(ctx, productID)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get product summary: %w", err)
	}

	summary = domain.NewProductSummary(productID, now)
	if err := cs.Summaries.Create(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// getOrCreateFeedback loads the user's feedback row on the product, creating
// an empty one when the user has none yet.
func getOrCreateFeedback(ctx context.Context, cs *repository.Changeset, productID, userID string, now time.Time) (*domain.UserFeedback, error) {
	feedback, err := cs.Feedback.GetByProductAndUser(ctx, productID, userID)
	if err == nil {
		return feedback, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get user feedback: %w", err)
	}

	feedback = &domain.UserFeedback{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := cs.Feedback.Create(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

// recomputeSummary rebuilds the aggregate from every feedback row the product
// currently has and writes it back.
func recomputeSummary(ctx context.Context, cs *repository.Changeset, summary *domain.ProductSummary, now time.Time) error {
	all, err := cs.Feedback.ListByProduct(ctx, summary.ProductID)
	if err != nil {
		return fmt.Errorf("list feedback for recompute: %w", err)
	}

	summary.Recompute(all)
	summary.UpdatedAt = now

	if err := cs.Summaries.Update(ctx, summary); err != nil {
		return fmt.Errorf("write recomputed summary: %w", err)
	}
	return nil
}

// pruneOrTouch deletes the feedback row when it carries neither a rating nor
// a review, otherwise bumps its updated_at.
func pruneOrTouch(ctx context.Context, cs *repository.Changeset, feedback *domain.UserFeedback, now time.Time) error {
	if feedback.IsEmpty() {
		return cs.Feedback.Delete(ctx, feedback.ID)
	}
	feedback.UpdatedAt = now
	return cs.Feedback.Touch(ctx, feedback)
}
