package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tropharbour-backend/internal/domains/tour/model"
	"tropharbour-backend/internal/infrastructure/database"
)

const planMonths = 12

type mongoRepository struct {
	*database.MongoRepository[model.Tour]
}

func NewMongoRepository(coll *mongo.Collection) TourRepository {
	return &mongoRepository{
		MongoRepository: database.NewMongoRepository[model.Tour](coll, model.PublicScope),
	}
}

// StatsPipeline groups rated public tours by difficulty.
func StatsPipeline(minRating float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ratingsAverage": bson.M{"$gte": minRating},
			"secretTour":     bson.M{"$ne": true},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.M{"$toUpper": "$difficulty"}},
			{Key: "numTours", Value: bson.M{"$sum": 1}},
			{Key: "numRatings", Value: bson.M{"$sum": "$ratingsQuantity"}},
			{Key: "avgRating", Value: bson.M{"$avg": "$ratingsAverage"}},
			{Key: "avgPrice", Value: bson.M{"$avg": "$price"}},
			{Key: "minPrice", Value: bson.M{"$min": "$price"}},
			{Key: "maxPrice", Value: bson.M{"$max": "$price"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgPrice", Value: 1}}}},
	}
}

// MonthlyPlanPipeline counts tour starts per month of year.
func MonthlyPlanPipeline(year int) mongo.Pipeline {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"secretTour": bson.M{"$ne": true}}}},
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.M{"$month": "$startDates"}},
			{Key: "numTours", Value: bson.M{"$sum": 1}},
			{Key: "tours", Value: bson.M{"$push": "$name"}},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "numTours", Value: -1}, {Key: "month", Value: 1}}}},
		{{Key: "$limit", Value: planMonths}},
	}
}

// DistancesPipeline must start with $geoNear, so the public scope goes into
// its query option.
func DistancesPipeline(lng, lat, multiplier float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near":               bson.M{"type": "Point", "coordinates": bson.A{lng, lat}},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
			"query":              model.PublicScope,
		}}},
		{{Key: "$project", Value: bson.M{"distance": 1, "name": 1}}},
	}
}

func (r *mongoRepository) Stats(ctx context.Context, minRating float64) ([]model.Stat, error) {
	stats := []model.Stat{}
	if err := r.Aggregate(ctx, StatsPipeline(minRating), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *mongoRepository) MonthlyPlan(ctx context.Context, year int) ([]model.MonthPlan, error) {
	plan := []model.MonthPlan{}
	if err := r.Aggregate(ctx, MonthlyPlanPipeline(year), &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *mongoRepository) Within(ctx context.Context, lng, lat, radius float64) ([]model.Tour, error) {
	filter := bson.M{
		"startLocation": bson.M{
			"$geoWithin": bson.M{"$centerSphere": bson.A{bson.A{lng, lat}, radius}},
		},
	}

	cursor, err := r.Collection().Find(ctx, r.Scoped(filter), options.Find().SetProjection(bson.M{"__v": 0}))
	if err != nil {
		return nil, fmt.Errorf("find tours within: %w", err)
	}
	defer cursor.Close(ctx)

	tours := []model.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("decode tours within: %w", err)
	}
	return tours, nil
}

func (r *mongoRepository) Distances(ctx context.Context, lng, lat, multiplier float64) ([]model.Distance, error) {
	distances := []model.Distance{}
	if err := r.Aggregate(ctx, DistancesPipeline(lng, lat, multiplier), &distances); err != nil {
		return nil, err
	}
	return distances, nil
}

// UpdateRatings writes the aggregate regardless of the secret flag.
func (r *mongoRepository) UpdateRatings(ctx context.Context, id primitive.ObjectID, quantity int, average float64) error {
	return r.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"ratingsQuantity": quantity,
			"ratingsAverage":  model.RoundRating(average),
		},
	})
}

func (r *mongoRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.Count(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
