package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	"github.com/ASP-NET-2/ReviewProvider/internal/repository"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

// ReviewProductInput holds the parameters for reviewing a product.
type ReviewProductInput struct {
	ProductID string
	UserID    string
	Title     string
	Body      string
}

// ReviewProduct creates or replaces the user's review text on a product.
// Editing an existing review keeps its original posting date; only the title,
// body and last_updated_at change.
func (s *FeedbackService) ReviewProduct(ctx context.Context, input *ReviewProductInput) (*domain.UserFeedback, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if len(input.Title) > domain.MaxTitleLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("title must be at most %d characters", domain.MaxTitleLength))
	}
	if input.Body == "" {
		return nil, apperrors.InvalidInput("body is required")
	}
	if len(input.Body) > domain.MaxBodyLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("body must be at most %d characters", domain.MaxBodyLength))
	}

	if err := s.catalog.EnsureProductExists(ctx, input.ProductID); err != nil {
		return nil, err
	}

	var (
		feedback *domain.UserFeedback
		summary  *domain.ProductSummary
	)

	err := s.store.RunChangeset(ctx, func(ctx context.Context, cs *repository.Changeset) error {
		now := time.Now().UTC()

		var err error
		summary, err = getOrCreateSummary(ctx, cs, input.ProductID, now)
		if err != nil {
			return err
		}

		feedback, err = getOrCreateFeedback(ctx, cs, input.ProductID, input.UserID, now)
		if err != nil {
			return err
		}

		if feedback.Review == nil {
			feedback.Review = &domain.Review{
				ID:                 uuid.New().String(),
				FeedbackID:         feedback.ID,
				Title:              input.Title,
				Body:               input.Body,
				OriginallyPostedAt: now,
				LastUpdatedAt:      now,
			}
			if err := cs.Reviews.Create(ctx, feedback.Review); err != nil {
				return err
			}
		} else {
			feedback.Review.Title = input.Title
			feedback.Review.Body = input.Body
			feedback.Review.LastUpdatedAt = now
			if err := cs.Reviews.Update(ctx, feedback.Review); err != nil {
				return err
			}
		}

		feedback.UpdatedAt = now
		if err := cs.Feedback.Touch(ctx, feedback); err != nil {
			return err
		}

		return recomputeSummary(ctx, cs, summary, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review saved",
		slog.String("product_id", input.ProductID),
		slog.String("user_id", input.UserID),
		slog.Int("review_count", summary.ReviewCount),
	)

	if err := s.producer.PublishReviewUpserted(ctx, input.UserID, summary); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review event",
			slog.String("product_id", input.ProductID),
			slog.String("error", err.Error()),
		)
	}

	return feedback, nil
}

// DeleteReview removes the user's review from a product. The feedback row is
// pruned when no rating remains on it, and the product summary is recomputed
// in the same changeset.
func (s *FeedbackService) DeleteReview(ctx context.Context, productID, userID string) error {
	if productID == "" {
		return apperrors.InvalidInput("product_id is required")
	}
	if userID == "" {
		return apperrors.InvalidInput("user_id is required")
	}

	var summary *domain.ProductSummary

	err := s.store.RunChangeset(ctx, func(ctx context.Context, cs *repository.Changeset) error {
		now := time.Now().UTC()

		feedback, err := cs.Feedback.GetByProductAndUser(ctx, productID, userID)
		if err != nil {
			return err
		}
		if feedback.Review == nil {
			return apperrors.NotFound("review on feedback", feedback.ID)
		}

		if err := cs.Reviews.Delete(ctx, feedback.Review.ID); err != nil {
			return err
		}
		feedback.Review = nil

		if err := pruneOrTouch(ctx, cs, feedback, now); err != nil {
			return err
		}

		summary, err = cs.Summaries.Get(ctx, productID)
		if err != nil {
			return fmt.Errorf("get product summary: %w", err)
		}

		return recomputeSummary(ctx, cs, summary, now)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("product_id", productID),
		slog.String("user_id", userID),
		slog.Int("review_count", summary.ReviewCount),
	)

	if err := s.producer.PublishReviewDeleted(ctx, userID, summary); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
