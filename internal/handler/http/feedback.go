package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ASP-NET-2/ReviewProvider/internal/service"
	"github.com/ASP-NET-2/ReviewProvider/pkg/httputil"
	"github.com/ASP-NET-2/ReviewProvider/pkg/pagination"
	"github.com/ASP-NET-2/ReviewProvider/pkg/validator"
)

// FeedbackHandler handles HTTP requests for feedback endpoints.
type FeedbackHandler struct {
	service *service.FeedbackService
	logger  *slog.Logger
}

// NewFeedbackHandler creates a new feedback HTTP handler.
func NewFeedbackHandler(svc *service.FeedbackService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// PutRatingRequest is the JSON request body for rating a product.
type PutRatingRequest struct {
	Value float64 `json:"value" validate:"min=0,max=5"`
}

// PutReviewRequest is the JSON request body for reviewing a product.
type PutReviewRequest struct {
	Title string `json:"title" validate:"required,max=120"`
	Body  string `json:"body" validate:"required,max=5000"`
}

// --- Helpers ---

func requireIdentity(w http.ResponseWriter, r *http.Request) (productID, userID string, ok bool) {
	productID = chi.URLParam(r, "productId")
	if productID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "product id is required"},
		})
		return "", "", false
	}

	userID = r.Header.Get("X-User-ID")
	if userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID header is required"},
		})
		return "", "", false
	}

	return productID, userID, true
}

// --- Handlers ---

// PutRating handles PUT /api/v1/products/{productId}/feedback/rating
// @Summary Rate a product
// @Description Creates or replaces the caller's rating. Requires X-User-ID header.
// @Tags feedback
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param X-User-ID header string true "Authenticated user ID"
// @Param request body PutRatingRequest true "Rating to store"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/feedback/rating [put]
func (h *FeedbackHandler) PutRating(w http.ResponseWriter, r *http.Request) {
	productID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req PutRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	feedback, err := h.service.RateProduct(r.Context(), &service.RateProductInput{
		ProductID: productID,
		UserID:    userID,
		Value:     req.Value,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: feedback})
}

// DeleteRating handles DELETE /api/v1/products/{productId}/feedback/rating
// @Summary Remove the caller's rating
// @Tags feedback
// @Produce json
// @Param productId path string true "Product ID"
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/feedback/rating [delete]
func (h *FeedbackHandler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	productID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteRating(r.Context(), productID, userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PutReview handles PUT /api/v1/products/{productId}/feedback/review
// @Summary Review a product
// @Description Creates or replaces the caller's review text. Requires X-User-ID header.
// @Tags feedback
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param X-User-ID header string true "Authenticated user ID"
// @Param request body PutReviewRequest true "Review to store"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/feedback/review [put]
func (h *FeedbackHandler) PutReview(w http.ResponseWriter, r *http.Request) {
	productID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req PutReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	feedback, err := h.service.ReviewProduct(r.Context(), &service.ReviewProductInput{
		ProductID: productID,
		UserID:    userID,
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: feedback})
}

// DeleteReview handles DELETE /api/v1/products/{productId}/feedback/review
// @Summary Remove the caller's review
// @Tags feedback
// @Produce json
// @Param productId path string true "Product ID"
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/feedback/review [delete]
func (h *FeedbackHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	productID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), productID, userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMyFeedback handles GET /api/v1/products/{productId}/feedback/me
// @Summary Get the caller's feedback on a product
// @Tags feedback
// @Produce json
// @Param productId path string true "Product ID"
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/feedback/me [get]
func (h *FeedbackHandler) GetMyFeedback(w http.ResponseWriter, r *http.Request) {
	productID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	feedback, err := h.service.GetUserFeedback(r.Context(), productID, userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: feedback})
}

// GetSummary handles GET /api/v1/products/{productId}/feedback/summary
// @Summary Get a product's feedback summary
// @Description Returns the average rating and the rating and review counts.
// @Tags feedback
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/feedback/summary [get]
func (h *FeedbackHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "product id is required"},
		})
		return
	}

	summary, err := h.service.GetProductSummary(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// ListFeedback handles GET /api/v1/feedback
// @Summary List feedback across products and users
// @Description Filters by repeated product_id and user_id query parameters.
// @Tags feedback
// @Produce json
// @Param product_id query []string false "Product IDs to include"
// @Param user_id query []string false "User IDs to include"
// @Param skip query int false "Rows to skip" default(0)
// @Param take query int false "Rows to return (0 = all)" default(0)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/feedback [get]
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	window, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
		})
		return
	}

	result, err := h.service.ListUserFeedback(r.Context(), &service.ListFeedbackInput{
		ProductIDs: q["product_id"],
		UserIDs:    q["user_id"],
		Skip:       window.Skip,
		Take:       window.Take,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(result.Feedback, result.TotalCount, result.Skip, result.Take))
}
