package service

import (
	"context"
	"net/url"

	"go.mongodb.org/mongo-driver/bson/primitive"

	reviewmodel "tropharbour-backend/internal/domains/review/model"
	"tropharbour-backend/internal/domains/tour/model"
	usermodel "tropharbour-backend/internal/domains/user/model"
)

// =====================================================
// COLLABORATORS
// =====================================================

// GuideLookup resolves guide ids into embeddable summaries.
type GuideLookup interface {
	FindSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]usermodel.Summary, error)
}

// ReviewLister returns the populated reviews of a tour.
type ReviewLister interface {
	ForTour(ctx context.Context, tourID primitive.ObjectID) ([]reviewmodel.View, error)
}

// ImageStore resizes and stores tour images and returns the file names.
type ImageStore interface {
	TourCover(ctx context.Context, tourID string, data []byte) (string, error)
	TourImages(ctx context.Context, tourID string, files [][]byte) ([]string, error)
	DeleteTour(ctx context.Context, tourID string) error
}

// Uploads carries the optional files of a tour update.
type Uploads struct {
	Cover  []byte
	Images [][]byte
}

// =====================================================
// TOUR SERVICE INTERFACE
// =====================================================
type TourService interface {
	ListTours(ctx context.Context, params url.Values) ([]map[string]interface{}, error)
	GetTour(ctx context.Context, id string) (*model.View, error)
	CreateTour(ctx context.Context, req model.CreateTourRequest) (*model.View, error)
	UpdateTour(ctx context.Context, id string, req model.UpdateTourRequest, uploads Uploads) (*model.View, error)
	DeleteTour(ctx context.Context, id string) error

	// Aggregations, cached
	Stats(ctx context.Context) ([]model.Stat, error)
	MonthlyPlan(ctx context.Context, year string) ([]model.MonthPlan, error)

	// Geo
	ToursWithin(ctx context.Context, distance, latlng, unit string) ([]*model.View, error)
	Distances(ctx context.Context, latlng, unit string) ([]model.Distance, error)
}
