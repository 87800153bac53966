package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/infrastructure/database"
)

type mongoRepository struct {
	*database.MongoRepository[model.User]
}

func NewMongoRepository(coll *mongo.Collection) UserRepository {
	return &mongoRepository{
		MongoRepository: database.NewMongoRepository[model.User](coll, model.ActiveScope),
	}
}

func (r *mongoRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.FindOne(ctx, bson.M{"email": model.NormalizeEmail(email)})
}

func (r *mongoRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	return r.FindOne(ctx, bson.M{
		"passwordResetToken":   tokenHash,
		"passwordResetExpires": bson.M{"$gt": now},
	})
}

func (r *mongoRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string, changedAt time.Time) error {
	return r.UpdateOne(ctx, r.Scoped(bson.M{"_id": id}), bson.M{
		"$set":   bson.M{"password": hash, "passwordChangedAt": changedAt},
		"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""},
		"$inc":   bson.M{"__v": 1},
	})
}

func (r *mongoRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	return r.UpdateOne(ctx, r.Scoped(bson.M{"_id": id}), bson.M{
		"$set": bson.M{"passwordResetToken": tokenHash, "passwordResetExpires": expires},
	})
}

func (r *mongoRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""},
	})
}

func (r *mongoRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateOne(ctx, r.Scoped(bson.M{"_id": id}), bson.M{"$set": bson.M{"active": false}})
}

func (r *mongoRepository) FindSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.Summary, error) {
	out := make(map[primitive.ObjectID]model.Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.D{
		{Key: "name", Value: 1}, {Key: "email", Value: 1}, {Key: "photo", Value: 1}, {Key: "role", Value: 1},
	})
	cursor, err := r.Collection().Find(ctx, r.Scoped(bson.M{"_id": bson.M{"$in": ids}}), opts)
	if err != nil {
		return nil, fmt.Errorf("find user summaries: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []model.Summary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("decode user summaries: %w", err)
	}
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out, nil
}
