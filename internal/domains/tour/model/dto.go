package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateTourRequest is the body of POST /tours.
type CreateTourRequest struct {
	Name           string      `json:"name"`
	Duration       int         `json:"duration"`
	MaxGroupSize   int         `json:"maxGroupSize"`
	Difficulty     string      `json:"difficulty"`
	RatingsAverage *float64    `json:"ratingsAverage"`
	Price          float64     `json:"price"`
	PriceDiscount  *float64    `json:"priceDiscount"`
	Summary        string      `json:"summary"`
	Description    string      `json:"description"`
	ImageCover     string      `json:"imageCover"`
	Images         []string    `json:"images"`
	StartDates     []time.Time `json:"startDates"`
	SecretTour     bool        `json:"secretTour"`
	StartLocation  *GeoPoint   `json:"startLocation"`
	Locations      []GeoPoint  `json:"locations"`
	Guides         []string    `json:"guides"`
}

// ToTour applies the defaults. Guide ids must already be valid hex.
func (r CreateTourRequest) ToTour(guides []primitive.ObjectID, now time.Time) *Tour {
	t := &Tour{
		Name:           r.Name,
		Duration:       r.Duration,
		MaxGroupSize:   r.MaxGroupSize,
		Difficulty:     r.Difficulty,
		RatingsAverage: DefaultRatingsAverage,
		Price:          r.Price,
		PriceDiscount:  r.PriceDiscount,
		Summary:        r.Summary,
		Description:    r.Description,
		ImageCover:     r.ImageCover,
		Images:         nonNil(r.Images),
		CreatedAt:      now,
		StartDates:     r.StartDates,
		SecretTour:     r.SecretTour,
		StartLocation:  r.StartLocation,
		Locations:      r.Locations,
		Guides:         guides,
	}
	if r.RatingsAverage != nil {
		t.RatingsAverage = *r.RatingsAverage
	}
	if t.StartDates == nil {
		t.StartDates = []time.Time{}
	}
	if t.Locations == nil {
		t.Locations = []GeoPoint{}
	}
	if t.Guides == nil {
		t.Guides = []primitive.ObjectID{}
	}
	return t
}

// UpdateTourRequest is a partial update; nil fields are left unchanged.
// Rating aggregates are derived from reviews and cannot be patched.
type UpdateTourRequest struct {
	Name          *string     `json:"name" form:"name"`
	Duration      *int        `json:"duration" form:"duration"`
	MaxGroupSize  *int        `json:"maxGroupSize" form:"maxGroupSize"`
	Difficulty    *string     `json:"difficulty" form:"difficulty"`
	Price         *float64    `json:"price" form:"price"`
	PriceDiscount *float64    `json:"priceDiscount" form:"priceDiscount"`
	Summary       *string     `json:"summary" form:"summary"`
	Description   *string     `json:"description" form:"description"`
	ImageCover    *string     `json:"imageCover" form:"-"`
	Images        []string    `json:"images" form:"-"`
	StartDates    []time.Time `json:"startDates" form:"-"`
	SecretTour    *bool       `json:"secretTour" form:"secretTour"`
	StartLocation *GeoPoint   `json:"startLocation" form:"-"`
	Locations     []GeoPoint  `json:"locations" form:"-"`
	Guides        []string    `json:"guides" form:"-"`
}

// Apply writes the present fields onto t and returns them as a $set
// document. Derived fields (slug) are added by the caller after Normalize.
func (r UpdateTourRequest) Apply(t *Tour, guides []primitive.ObjectID) bson.M {
	set := bson.M{}
	if r.Name != nil {
		t.Name = *r.Name
		set["name"] = nil
	}
	if r.Duration != nil {
		t.Duration = *r.Duration
		set["duration"] = nil
	}
	if r.MaxGroupSize != nil {
		t.MaxGroupSize = *r.MaxGroupSize
		set["maxGroupSize"] = nil
	}
	if r.Difficulty != nil {
		t.Difficulty = *r.Difficulty
		set["difficulty"] = nil
	}
	if r.Price != nil {
		t.Price = *r.Price
		set["price"] = nil
	}
	if r.PriceDiscount != nil {
		t.PriceDiscount = r.PriceDiscount
		set["priceDiscount"] = nil
	}
	if r.Summary != nil {
		t.Summary = *r.Summary
		set["summary"] = nil
	}
	if r.Description != nil {
		t.Description = *r.Description
		set["description"] = nil
	}
	if r.ImageCover != nil {
		t.ImageCover = *r.ImageCover
		set["imageCover"] = nil
	}
	if r.Images != nil {
		t.Images = r.Images
		set["images"] = nil
	}
	if r.StartDates != nil {
		t.StartDates = r.StartDates
		set["startDates"] = nil
	}
	if r.SecretTour != nil {
		t.SecretTour = *r.SecretTour
		set["secretTour"] = nil
	}
	if r.StartLocation != nil {
		t.StartLocation = r.StartLocation
		set["startLocation"] = nil
	}
	if r.Locations != nil {
		t.Locations = r.Locations
		set["locations"] = nil
	}
	if r.Guides != nil {
		t.Guides = guides
		set["guides"] = nil
	}
	return set
}

// Fields fills a $set document produced by Apply with the normalized values
// of t and always refreshes the slug.
func (t *Tour) Fields(set bson.M) bson.M {
	values := bson.M{
		"name":          t.Name,
		"duration":      t.Duration,
		"maxGroupSize":  t.MaxGroupSize,
		"difficulty":    t.Difficulty,
		"price":         t.Price,
		"priceDiscount": t.PriceDiscount,
		"summary":       t.Summary,
		"description":   t.Description,
		"imageCover":    t.ImageCover,
		"images":        t.Images,
		"startDates":    t.StartDates,
		"secretTour":    t.SecretTour,
		"startLocation": t.StartLocation,
		"locations":     t.Locations,
		"guides":        t.Guides,
	}
	out := bson.M{"slug": t.Slug}
	for k := range set {
		out[k] = values[k]
	}
	return out
}

// Stat is one difficulty group of the tour statistics.
type Stat struct {
	Difficulty string  `bson:"_id" json:"_id"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

// MonthPlan counts the tour starts of one month.
type MonthPlan struct {
	Month    int      `bson:"month" json:"month"`
	NumTours int      `bson:"numTours" json:"numTours"`
	Tours    []string `bson:"tours" json:"tours"`
}

// Distance is a tour's distance from a point in the requested unit.
type Distance struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Distance float64            `bson:"distance" json:"distance"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
