package model

import (
	"math"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	usermodel "tropharbour-backend/internal/domains/user/model"
)

const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"

	DefaultRatingsAverage = 4.5

	NameMinLength = 10
	NameMaxLength = 40
)

// PublicScope hides secret tours from every find.
var PublicScope = bson.M{"secretTour": bson.M{"$ne": true}}

// GeoPoint is a GeoJSON point with the descriptive fields tours attach to it.
// Coordinates are [lng, lat].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

func (p GeoPoint) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.In("Point").Error("Location type must be Point")),
		validation.Field(&p.Coordinates, validation.Required, validation.Length(2, 2).Error("Coordinates must be [lng, lat]")),
	)
}

type Tour struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name"`
	Slug            string               `bson:"slug" json:"slug"`
	Duration        int                  `bson:"duration" json:"duration"`
	MaxGroupSize    int                  `bson:"maxGroupSize" json:"maxGroupSize"`
	Difficulty      string               `bson:"difficulty" json:"difficulty"`
	RatingsAverage  float64              `bson:"ratingsAverage" json:"ratingsAverage"`
	RatingsQuantity int                  `bson:"ratingsQuantity" json:"ratingsQuantity"`
	Price           float64              `bson:"price" json:"price"`
	PriceDiscount   *float64             `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty"`
	Summary         string               `bson:"summary" json:"summary"`
	Description     string               `bson:"description" json:"description"`
	ImageCover      string               `bson:"imageCover" json:"imageCover"`
	Images          []string             `bson:"images" json:"images"`
	CreatedAt       time.Time            `bson:"createdAt" json:"-"`
	StartDates      []time.Time          `bson:"startDates" json:"startDates"`
	SecretTour      bool                 `bson:"secretTour" json:"secretTour"`
	StartLocation   *GeoPoint            `bson:"startLocation,omitempty" json:"startLocation,omitempty"`
	Locations       []GeoPoint           `bson:"locations" json:"locations"`
	Guides          []primitive.ObjectID `bson:"guides" json:"guides"`
	Version         int                  `bson:"__v" json:"-"`
}

// Validate checks a tour before it is written.
func (t Tour) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name,
			validation.Required.Error("A tour must have a name"),
			validation.RuneLength(NameMinLength, 0).Error("A tour name must have more than or equal to 10 characters"),
			validation.RuneLength(0, NameMaxLength).Error("A tour name must have less than or equal to 40 characters"),
		),
		validation.Field(&t.Duration, validation.Required.Error("A tour must have a duration")),
		validation.Field(&t.MaxGroupSize, validation.Required.Error("A tour must have a group size")),
		validation.Field(&t.Difficulty,
			validation.Required.Error("A tour must have a difficulty"),
			validation.In(DifficultyEasy, DifficultyMedium, DifficultyDifficult).Error("Difficulty is either easy, medium or difficult"),
		),
		validation.Field(&t.RatingsAverage, validation.By(ratingsInRange)),
		validation.Field(&t.Price, validation.Required.Error("A tour must have a price")),
		validation.Field(&t.PriceDiscount, validation.By(t.discountBelowPrice)),
		validation.Field(&t.Description, validation.Required.Error("A tour must have a description")),
		validation.Field(&t.ImageCover, validation.Required.Error("A tour must have a cover image")),
		validation.Field(&t.StartLocation),
		validation.Field(&t.Locations),
	)
}

func ratingsInRange(value interface{}) error {
	v, _ := value.(float64)
	if v < 1 {
		return validation.NewError("validation_ratings_min", "Rating must be above 1.0")
	}
	if v > 5 {
		return validation.NewError("validation_ratings_max", "Rating must be below 5.0")
	}
	return nil
}

func (t Tour) discountBelowPrice(value interface{}) error {
	d, _ := value.(*float64)
	if d == nil || *d < t.Price {
		return nil
	}
	return validation.NewError("validation_price_discount", "Discounted price should be lesser than actual price")
}

// Normalize trims text fields, rounds the rating and derives the slug.
func (t *Tour) Normalize(slugify func(string) string) {
	t.Name = strings.TrimSpace(t.Name)
	t.Summary = strings.TrimSpace(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	t.RatingsAverage = RoundRating(t.RatingsAverage)
	t.Slug = slugify(t.Name)
	if t.StartLocation != nil && t.StartLocation.Type == "" {
		t.StartLocation.Type = "Point"
	}
	for i := range t.Locations {
		if t.Locations[i].Type == "" {
			t.Locations[i].Type = "Point"
		}
	}
}

// RoundRating rounds to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// DurationWeeks is derived and never stored.
func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

// PriceDecimal is the price in major units rounded to cents, what a
// booking is charged.
func (t *Tour) PriceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(t.Price).Round(2)
}

// View is a tour as returned to clients: guides populated and, on single
// reads, its reviews attached.
type View struct {
	*Tour
	DurationWeeks float64             `json:"durationWeeks"`
	Guides        []usermodel.Summary `json:"guides"`
	Reviews       interface{}         `json:"reviews,omitempty"`
}

// NewView builds the client view of t using the guide summaries found.
func NewView(t *Tour, guides map[primitive.ObjectID]usermodel.Summary) *View {
	v := &View{Tour: t, DurationWeeks: t.DurationWeeks(), Guides: []usermodel.Summary{}}
	for _, id := range t.Guides {
		if g, ok := guides[id]; ok {
			v.Guides = append(v.Guides, g)
		}
	}
	return v
}
