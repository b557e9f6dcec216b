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

// RateProductInput holds the parameters for rating a product.
type RateProductInput struct {
	ProductID string
	UserID    string
	Value     float64
}

// RateProduct creates or replaces the user's rating on a product and
// recomputes the product summary in the same changeset. The first rating a
// user gives a product materializes the feedback row; rating again overwrites
// the value in place.
func (s *FeedbackService) RateProduct(ctx context.Context, input *RateProductInput) (*domain.UserFeedback, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if input.Value < domain.MinRatingValue || input.Value > domain.MaxRatingValue {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRatingValue, domain.MaxRatingValue))
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

		if feedback.Rating == nil {
			feedback.Rating = &domain.Rating{
				ID:         uuid.New().String(),
				FeedbackID: feedback.ID,
				Value:      input.Value,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := cs.Ratings.Create(ctx, feedback.Rating); err != nil {
				return err
			}
		} else {
			feedback.Rating.Value = input.Value
			feedback.Rating.UpdatedAt = now
			if err := cs.Ratings.Update(ctx, feedback.Rating); err != nil {
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

	s.logger.InfoContext(ctx, "rating saved",
		slog.String("product_id", input.ProductID),
		slog.String("user_id", input.UserID),
		slog.Float64("value", input.Value),
		slog.Float64("average_rating", summary.AverageRating),
	)

	if err := s.producer.PublishRatingUpserted(ctx, input.UserID, summary); err != nil {
		s.logger.WarnContext(ctx, "failed to publish rating event",
			slog.String("product_id", input.ProductID),
			slog.String("error", err.Error()),
		)
	}

	return feedback, nil
}

// DeleteRating removes the user's rating from a product. The feedback row is
// pruned when no review remains on it, and the product summary is recomputed
// in the same changeset.
func (s *FeedbackService) DeleteRating(ctx context.Context, productID, userID string) error {
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
		if feedback.Rating == nil {
			return apperrors.NotFound("rating on feedback", feedback.ID)
		}

		if err := cs.Ratings.Delete(ctx, feedback.Rating.ID); err != nil {
			return err
		}
		feedback.Rating = nil

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

	s.logger.InfoContext(ctx, "rating deleted",
		slog.String("product_id", productID),
		slog.String("user_id", userID),
		slog.Float64("average_rating", summary.AverageRating),
	)

	if err := s.producer.PublishRatingDeleted(ctx, userID, summary); err != nil {
		s.logger.WarnContext(ctx, "failed to publish rating event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
