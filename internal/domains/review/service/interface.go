package service

import (
	"context"
	"net/url"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tropharbour-backend/internal/domains/review/model"
	usermodel "tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/shared"
)

// TourRatings is the part of the tour store reviews write to.
type TourRatings interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	UpdateRatings(ctx context.Context, id primitive.ObjectID, quantity int, average float64) error
}

// AuthorLookup resolves review authors into summaries.
type AuthorLookup interface {
	FindSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]usermodel.Summary, error)
}

// =====================================================
// REVIEW SERVICE INTERFACE
// =====================================================
type ReviewService interface {
	// ListReviews lists every review, or those of tourID when it is set.
	ListReviews(ctx context.Context, tourID string, params url.Values) ([]map[string]interface{}, error)
	ForTour(ctx context.Context, tourID primitive.ObjectID) ([]model.View, error)
	GetReview(ctx context.Context, id string) (*model.View, error)

	// tourID comes from the nested route and is used when the body names no tour.
	CreateReview(ctx context.Context, author *shared.Principal, tourID string, req model.CreateReviewRequest) (*model.View, error)
	UpdateReview(ctx context.Context, caller *shared.Principal, id string, req model.UpdateReviewRequest) (*model.View, error)
	DeleteReview(ctx context.Context, caller *shared.Principal, id string) error

	// CalcAverageRatings recomputes the rating aggregate of a tour.
	CalcAverageRatings(ctx context.Context, tourID primitive.ObjectID) error
}
