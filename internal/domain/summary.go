package domain

import (
	"math"
	"time"
)

// ProductSummary is the denormalized per-product aggregate kept alongside the
// feedback rows. It is recomputed in full from the product's feedback on every
// change rather than adjusted incrementally.
type ProductSummary struct {
	ProductID     string    `json:"product_id"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
	ReviewCount   int       `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProductSummary returns an empty summary for a product that has no
// feedback yet.
func NewProductSummary(productID string, now time.Time) *ProductSummary {
	return &ProductSummary{
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Recompute replaces the aggregate fields from the full set of feedback rows
// for this product. The average is rounded to two decimal places and is zero
// when no ratings exist.
func (s *ProductSummary) Recompute(feedback []UserFeedback) {
	var (
		sum         float64
		ratingCount int
		reviewCount int
	)

	for i := range feedback {
		if feedback[i].Rating != nil {
			sum += feedback[i].Rating.Value
			ratingCount++
		}
		if feedback[i].Review != nil {
			reviewCount++
		}
	}

	s.RatingCount = ratingCount
	s.ReviewCount = reviewCount
	if ratingCount == 0 {
		s.AverageRating = 0
		return
	}
	s.AverageRating = math.Round(sum/float64(ratingCount)*100) / 100
}
