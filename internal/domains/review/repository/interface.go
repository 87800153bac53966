package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tropharbour-backend/internal/domains/review/model"
	"tropharbour-backend/internal/infrastructure/database"
)

// =====================================================
// REVIEW REPOSITORY INTERFACE
// =====================================================
type ReviewRepository interface {
	database.Repository[model.Review]

	ForTour(ctx context.Context, tourID primitive.ObjectID) ([]model.Review, error)
	HasReviewed(ctx context.Context, tourID, userID primitive.ObjectID) (bool, error)

	// RatingStats returns nil when the tour has no reviews.
	RatingStats(ctx context.Context, tourID primitive.ObjectID) (*model.RatingStats, error)
}
