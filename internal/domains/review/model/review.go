package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	usermodel "tropharbour-backend/internal/domains/user/model"
)

const (
	DefaultRating = 4.5
	MinRating     = 1.0
	MaxRating     = 5.0
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Review    string             `bson:"review" json:"review"`
	Rating    float64            `bson:"rating" json:"rating"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Version   int                `bson:"__v" json:"-"`
}

func (r Review) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Review, validation.Required.Error("A review must contain text")),
		validation.Field(&r.Rating, validation.By(ratingInRange)),
		validation.Field(&r.Tour, validation.By(requiredID("Review must belong to a tour"))),
		validation.Field(&r.User, validation.By(requiredID("Review must belong to a user"))),
	)
}

// ratingInRange bounds the rating. Unlike validation.Min it does not let a
// zero value through.
func ratingInRange(value interface{}) error {
	v, _ := value.(float64)
	switch {
	case v < MinRating:
		return validation.NewError("validation_rating_min", "Rating must be above 1.0")
	case v > MaxRating:
		return validation.NewError("validation_rating_max", "Rating must be below 5.0")
	}
	return nil
}

func requiredID(message string) validation.RuleFunc {
	return func(value interface{}) error {
		if id, _ := value.(primitive.ObjectID); id.IsZero() {
			return validation.NewError("validation_required", message)
		}
		return nil
	}
}

// View is a review with its author populated.
type View struct {
	*Review
	User *usermodel.Summary `json:"user"`
}

// =====================================================
// REQUESTS
// =====================================================

// CreateReviewRequest may name the tour in the body; the nested route
// supplies it otherwise.
type CreateReviewRequest struct {
	Review string   `json:"review"`
	Rating *float64 `json:"rating"`
	Tour   string   `json:"tour"`
}

// ToReview applies the defaults for the author and tour resolved by the
// caller.
func (r CreateReviewRequest) ToReview(tour, user primitive.ObjectID, now time.Time) *Review {
	rating := DefaultRating
	if r.Rating != nil {
		rating = *r.Rating
	}
	return &Review{
		Review:    strings.TrimSpace(r.Review),
		Rating:    rating,
		CreatedAt: now,
		Tour:      tour,
		User:      user,
	}
}

// UpdateReviewRequest can only change the text and the rating.
type UpdateReviewRequest struct {
	Review *string  `json:"review"`
	Rating *float64 `json:"rating"`
}

// RatingStats is the aggregate of one tour's reviews.
type RatingStats struct {
	Tour    primitive.ObjectID `bson:"_id"`
	Count   int                `bson:"nRating"`
	Average float64            `bson:"avgRating"`
}
