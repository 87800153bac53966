package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tropharbour-backend/internal/domains/review/model"
	"tropharbour-backend/internal/domains/review/service"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/middleware"
	"tropharbour-backend/internal/shared/request"
	"tropharbour-backend/internal/shared/response"
)

// ContextTourID holds the tour of a nested /tours/:id/reviews request.
const ContextTourID = "tourID"

// =====================================================
// REVIEW HANDLER
// =====================================================
type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// NestedUnderTour copies the tour id path parameter of the nested routes
// into the context.
func NestedUnderTour(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextTourID, c.Param(param))
		c.Next()
	}
}

func (h *ReviewHandler) GetAllReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context(), c.GetString(ContextTourID), c.Request.URL.Query())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.List(c, gin.H{"data": reviews}, len(reviews), nil)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.reviewService.GetReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": review})
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req model.CreateReviewRequest
	if !request.BindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), caller, c.GetString(ContextTourID), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"data": review})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req model.UpdateReviewRequest
	if !request.BindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), caller, c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ReviewHandler) caller(c *gin.Context) (*shared.Principal, bool) {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, apperror.Authentication("You are not logged in! Please log in to get access."))
		return nil, false
	}
	return p, true
}
