package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ASP-NET-2/ReviewProvider/internal/domain"
	pkgkafka "github.com/ASP-NET-2/ReviewProvider/pkg/kafka"
)

// Kafka topic constants for feedback domain events.
const (
	TopicRatingUpserted = "reviews.feedback.rating.upserted"
	TopicRatingDeleted  = "reviews.feedback.rating.deleted"
	TopicReviewUpserted = "reviews.feedback.review.upserted"
	TopicReviewDeleted  = "reviews.feedback.review.deleted"
)

// Aggregate type constant. Events are keyed by product so consumers see all
// changes to one product's feedback in order.
const AggregateTypeProductFeedback = "product_feedback"

// Source identifier for events originating from this service.
const SourceFeedbackService = "feedback-service"

// FeedbackChangedData is the payload shared by all feedback events. It
// carries the summary snapshot taken after the change was committed.
type FeedbackChangedData struct {
	ProductID     string  `json:"product_id"`
	UserID        string  `json:"user_id"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
	ReviewCount   int     `json:"review_count"`
}

// Producer publishes feedback domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the feedback service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishRatingUpserted publishes an event after a rating is created or updated.
func (p *Producer) PublishRatingUpserted(ctx context.Context, userID string, summary *domain.ProductSummary) error {
	return p.publish(ctx, TopicRatingUpserted, userID, summary)
}

// PublishRatingDeleted publishes an event after a rating is removed.
func (p *Producer) PublishRatingDeleted(ctx context.Context, userID string, summary *domain.ProductSummary) error {
	return p.publish(ctx, TopicRatingDeleted, userID, summary)
}

// PublishReviewUpserted publishes an event after a review is created or updated.
func (p *Producer) PublishReviewUpserted(ctx context.Context, userID string, summary *domain.ProductSummary) error {
	return p.publish(ctx, TopicReviewUpserted, userID, summary)
}

// PublishReviewDeleted publishes an event after a review is removed.
func (p *Producer) PublishReviewDeleted(ctx context.Context, userID string, summary *domain.ProductSummary) error {
	return p.publish(ctx, TopicReviewDeleted, userID, summary)
}

func (p *Producer) publish(ctx context.Context, topic, userID string, summary *domain.ProductSummary) error {
	data := FeedbackChangedData{
		ProductID:     summary.ProductID,
		UserID:        userID,
		AverageRating: summary.AverageRating,
		RatingCount:   summary.RatingCount,
		ReviewCount:   summary.ReviewCount,
	}

	event, err := pkgkafka.NewEvent(topic, summary.ProductID, AggregateTypeProductFeedback, SourceFeedbackService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published feedback event",
		slog.String("topic", topic),
		slog.String("product_id", summary.ProductID),
		slog.String("user_id", userID),
	)

	return nil
}
