package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	"github.com/ASP-NET-2/ReviewProvider/internal/repository"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

// ListFeedbackInput holds the filter parameters for listing feedback.
type ListFeedbackInput struct {
	ProductIDs []string
	UserIDs    []string
	Skip       int
	Take       int
}

// FeedbackListResult contains feedback rows and paging information.
type FeedbackListResult struct {
	Feedback   []domain.UserFeedback `json:"feedback"`
	TotalCount int                   `json:"total_count"`
	Skip       int                   `json:"skip"`
	Take       int                   `json:"take"`
}

// GetUserFeedback returns one user's feedback on one product.
func (s *FeedbackService) GetUserFeedback(ctx context.Context, productID, userID string) (*domain.UserFeedback, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if userID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}

	feedback, err := s.store.Feedback().GetByProductAndUser(ctx, productID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user feedback", productID)
		}
		return nil, fmt.Errorf("get user feedback: %w", err)
	}

	return feedback, nil
}

// ListUserFeedback returns feedback rows matching the filter, ordered by
// review posting date with the newest reviews first. An empty filter matches
// nothing: at least one product or user must be named.
func (s *FeedbackService) ListUserFeedback(ctx context.Context, input *ListFeedbackInput) (*FeedbackListResult, error) {
	if input.Skip < 0 {
		return nil, apperrors.InvalidInput("skip must not be negative")
	}

	if len(input.ProductIDs) == 0 && len(input.UserIDs) == 0 {
		return &FeedbackListResult{
			Feedback: []domain.UserFeedback{},
			Skip:     input.Skip,
			Take:     input.Take,
		}, nil
	}

	feedback, total, err := s.store.Feedback().List(ctx, repository.FeedbackFilter{
		ProductIDs: input.ProductIDs,
		UserIDs:    input.UserIDs,
		Skip:       input.Skip,
		Take:       input.Take,
	})
	if err != nil {
		return nil, fmt.Errorf("list user feedback: %w", err)
	}

	return &FeedbackListResult{
		Feedback:   feedback,
		TotalCount: total,
		Skip:       input.Skip,
		Take:       input.Take,
	}, nil
}

// GetProductSummary returns the aggregate summary for a product. A product
// without a summary row gets an empty one materialized on first read, after
// the catalog confirms the product exists.
func (s *FeedbackService) GetProductSummary(ctx context.Context, productID string) (*domain.ProductSummary, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}

	summary, err := s.store.Summaries().Get(ctx, productID)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get product summary: %w", err)
	}

	if err := s.catalog.EnsureProductExists(ctx, productID); err != nil {
		return nil, err
	}

	err = s.store.RunChangeset(ctx, func(ctx context.Context, cs *repository.Changeset) error {
		var err error
		summary, err = getOrCreateSummary(ctx, cs, productID, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product summary materialized",
		slog.String("product_id", productID),
	)

	return summary, nil
}
