package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/query"
)

// MsgNoDocument is returned for lookups by id that match nothing.
const MsgNoDocument = "No document found with that ID"

// Repository is the generic CRUD surface every document collection gets.
type Repository[T any] interface {
	Find(ctx context.Context, q *query.Query) ([]T, error)
	FindOne(ctx context.Context, filter bson.M) (*T, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	Create(ctx context.Context, doc *T) (primitive.ObjectID, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error
}

// MongoRepository implements Repository over one collection. The scope
// filter is ANDed into every read, update and delete so that documents
// outside it (inactive users, secret tours) are invisible.
type MongoRepository[T any] struct {
	coll  *mongo.Collection
	scope bson.M
}

func NewMongoRepository[T any](coll *mongo.Collection, scope bson.M) *MongoRepository[T] {
	return &MongoRepository[T]{coll: coll, scope: scope}
}

// Collection exposes the underlying collection to domain repositories that
// need queries outside the generic surface.
func (r *MongoRepository[T]) Collection() *mongo.Collection {
	return r.coll
}

// Scoped ANDs the repository scope into filter.
func (r *MongoRepository[T]) Scoped(filter bson.M) bson.M {
	switch {
	case len(r.scope) == 0:
		if filter == nil {
			return bson.M{}
		}
		return filter
	case len(filter) == 0:
		return r.scope
	default:
		return bson.M{"$and": bson.A{r.scope, filter}}
	}
}

func (r *MongoRepository[T]) Find(ctx context.Context, q *query.Query) ([]T, error) {
	filter := bson.M{}
	opts := options.Find()
	if q != nil {
		filter = q.Filter
		opts = q.FindOptions()
	}

	cursor, err := r.coll.Find(ctx, r.Scoped(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.coll.Name(), err)
	}
	return docs, nil
}

func (r *MongoRepository[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := r.coll.FindOne(ctx, r.Scoped(filter)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.Wrap(apperror.KindNotFound, MsgNoDocument, err)
		}
		return nil, fmt.Errorf("find one %s: %w", r.coll.Name(), err)
	}
	return &doc, nil
}

func (r *MongoRepository[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return r.FindOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository[T]) Create(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, apperror.Translate(fmt.Errorf("insert %s: %w", r.coll.Name(), err))
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert %s: unexpected id type %T", r.coll.Name(), res.InsertedID)
	}
	return id, nil
}

// UpdateByID sets fields on a scoped document, bumps its version key and
// returns the document after the update.
func (r *MongoRepository[T]) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	update := bson.M{"$inc": bson.M{"__v": 1}}
	if len(set) > 0 {
		update["$set"] = set
	}

	var doc T
	err := r.coll.FindOneAndUpdate(ctx,
		r.Scoped(bson.M{"_id": id}),
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.Wrap(apperror.KindNotFound, MsgNoDocument, err)
		}
		return nil, apperror.Translate(fmt.Errorf("update %s: %w", r.coll.Name(), err))
	}
	return &doc, nil
}

// UpdateOne applies a raw update operator document without the scope.
func (r *MongoRepository[T]) UpdateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperror.Translate(fmt.Errorf("update %s: %w", r.coll.Name(), err))
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound(MsgNoDocument)
	}
	return nil
}

func (r *MongoRepository[T]) DeleteByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	err := r.coll.FindOneAndDelete(ctx, r.Scoped(bson.M{"_id": id})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.Wrap(apperror.KindNotFound, MsgNoDocument, err)
		}
		return nil, fmt.Errorf("delete %s: %w", r.coll.Name(), err)
	}
	return &doc, nil
}

func (r *MongoRepository[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, r.Scoped(filter))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.coll.Name(), err)
	}
	return n, nil
}

// Aggregate runs pipeline unscoped; callers add their own $match.
func (r *MongoRepository[T]) Aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", r.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s aggregate: %w", r.coll.Name(), err)
	}
	return nil
}

// ParseID converts a hex id from a request into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperror.Wrap(apperror.KindInvalidArgument, "Invalid _id: "+hex, err)
	}
	return id, nil
}
