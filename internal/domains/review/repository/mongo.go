package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tropharbour-backend/internal/domains/review/model"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/shared/query"
)

type mongoRepository struct {
	*database.MongoRepository[model.Review]
}

func NewMongoRepository(coll *mongo.Collection) ReviewRepository {
	return &mongoRepository{
		MongoRepository: database.NewMongoRepository[model.Review](coll, nil),
	}
}

// RatingStatsPipeline averages the ratings of one tour.
func RatingStatsPipeline(tourID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tour"},
			{Key: "nRating", Value: bson.M{"$sum": 1}},
			{Key: "avgRating", Value: bson.M{"$avg": "$rating"}},
		}}},
	}
}

func (r *mongoRepository) ForTour(ctx context.Context, tourID primitive.ObjectID) ([]model.Review, error) {
	q, err := query.Apply(bson.M{"tour": tourID}, nil)
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, q)
}

func (r *mongoRepository) HasReviewed(ctx context.Context, tourID, userID primitive.ObjectID) (bool, error) {
	n, err := r.Count(ctx, bson.M{"tour": tourID, "user": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoRepository) RatingStats(ctx context.Context, tourID primitive.ObjectID) (*model.RatingStats, error) {
	var stats []model.RatingStats
	if err := r.Aggregate(ctx, RatingStatsPipeline(tourID), &stats); err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, nil
	}
	return &stats[0], nil
}
