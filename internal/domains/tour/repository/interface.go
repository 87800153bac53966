package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tropharbour-backend/internal/domains/tour/model"
	"tropharbour-backend/internal/infrastructure/database"
)

// =====================================================
// TOUR REPOSITORY INTERFACE
// =====================================================
type TourRepository interface {
	database.Repository[model.Tour]

	// Aggregations
	Stats(ctx context.Context, minRating float64) ([]model.Stat, error)
	MonthlyPlan(ctx context.Context, year int) ([]model.MonthPlan, error)

	// Geo
	Within(ctx context.Context, lng, lat, radius float64) ([]model.Tour, error)
	Distances(ctx context.Context, lng, lat, multiplier float64) ([]model.Distance, error)

	// Rating aggregate written by the review service
	UpdateRatings(ctx context.Context, id primitive.ObjectID, quantity int, average float64) error
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}
