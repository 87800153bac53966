// Package seed loads development data from JSON exports into the document
// store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	reviewmodel "tropharbour-backend/internal/domains/review/model"
	reviewRepo "tropharbour-backend/internal/domains/review/repository"
	tourmodel "tropharbour-backend/internal/domains/tour/model"
	tourRepo "tropharbour-backend/internal/domains/tour/repository"
	usermodel "tropharbour-backend/internal/domains/user/model"
	userRepo "tropharbour-backend/internal/domains/user/repository"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/shared/utils"
)

// startDateLayouts are accepted besides RFC 3339.
var startDateLayouts = []string{"2006-01-02,15:04", "2006-01-02"}

// RatingsCalculator recomputes a tour's rating aggregate after import.
type RatingsCalculator interface {
	CalcAverageRatings(ctx context.Context, tourID primitive.ObjectID) error
}

// Files holds the raw exports; nil entries are skipped.
type Files struct {
	Tours   []byte
	Users   []byte
	Reviews []byte
}

type Counts struct {
	Tours, Users, Reviews int
}

type Importer struct {
	tours   tourRepo.TourRepository
	users   userRepo.UserRepository
	reviews reviewRepo.ReviewRepository
	ratings RatingsCalculator
	now     func() time.Time
}

func NewImporter(tours tourRepo.TourRepository, users userRepo.UserRepository, reviews reviewRepo.ReviewRepository, ratings RatingsCalculator) *Importer {
	return &Importer{tours: tours, users: users, reviews: reviews, ratings: ratings, now: time.Now}
}

// Import inserts users first so tour guides and review authors resolve.
// Passwords in the user export are stored as given, already hashed.
func (im *Importer) Import(ctx context.Context, files Files) (Counts, error) {
	var counts Counts
	now := im.now().UTC()

	if files.Users != nil {
		users, err := ParseUsers(files.Users)
		if err != nil {
			return counts, err
		}
		for i := range users {
			if _, err := im.users.Create(ctx, &users[i]); err != nil {
				return counts, fmt.Errorf("import user %s: %w", users[i].Email, err)
			}
			counts.Users++
		}
	}

	if files.Tours != nil {
		tours, err := ParseTours(files.Tours, now)
		if err != nil {
			return counts, err
		}
		for i := range tours {
			if _, err := im.tours.Create(ctx, &tours[i]); err != nil {
				return counts, fmt.Errorf("import tour %s: %w", tours[i].Name, err)
			}
			counts.Tours++
		}
	}

	if files.Reviews != nil {
		reviews, err := ParseReviews(files.Reviews, now)
		if err != nil {
			return counts, err
		}
		touched := map[primitive.ObjectID]bool{}
		for i := range reviews {
			if _, err := im.reviews.Create(ctx, &reviews[i]); err != nil {
				return counts, fmt.Errorf("import review %d: %w", i, err)
			}
			touched[reviews[i].Tour] = true
			counts.Reviews++
		}
		for id := range touched {
			if err := im.ratings.CalcAverageRatings(ctx, id); err != nil {
				return counts, fmt.Errorf("recalculate ratings of %s: %w", id.Hex(), err)
			}
		}
	}

	return counts, nil
}

// Delete empties the seeded collections.
func Delete(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{database.CollectionReviews, database.CollectionTours, database.CollectionUsers} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}
	return nil
}

// ParseTours decodes a tour export, normalizes and validates every tour.
func ParseTours(data []byte, now time.Time) ([]tourmodel.Tour, error) {
	docs, err := decode(data, "tours")
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if err := normalizeStartDates(d); err != nil {
			return nil, err
		}
	}

	var tours []tourmodel.Tour
	if err := recode(docs, &tours); err != nil {
		return nil, fmt.Errorf("decode tours: %w", err)
	}
	for i := range tours {
		t := &tours[i]
		if t.RatingsAverage == 0 {
			t.RatingsAverage = tourmodel.DefaultRatingsAverage
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.Normalize(utils.GenerateSlug)
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("tour %q: %w", t.Name, err)
		}
	}
	return tours, nil
}

// ParseUsers decodes a user export. The password field is not part of the
// JSON view of a user, so it is copied over separately.
func ParseUsers(data []byte) ([]usermodel.User, error) {
	docs, err := decode(data, "users")
	if err != nil {
		return nil, err
	}

	var users []usermodel.User
	if err := recode(docs, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for i := range users {
		u := &users[i]
		u.Password, _ = docs[i]["password"].(string)
		u.Email = usermodel.NormalizeEmail(u.Email)
		if active, ok := docs[i]["active"].(bool); ok {
			u.Active = active
		} else {
			u.Active = true
		}
		if u.Photo == "" {
			u.Photo = usermodel.DefaultPhoto
		}
		if u.Role == "" {
			u.Role = usermodel.RoleUser
		}
	}
	return users, nil
}

func ParseReviews(data []byte, now time.Time) ([]reviewmodel.Review, error) {
	docs, err := decode(data, "reviews")
	if err != nil {
		return nil, err
	}

	var reviews []reviewmodel.Review
	if err := recode(docs, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	for i := range reviews {
		if reviews[i].CreatedAt.IsZero() {
			reviews[i].CreatedAt = now
		}
		if err := reviews[i].Validate(); err != nil {
			return nil, fmt.Errorf("review %d: %w", i, err)
		}
	}
	return reviews, nil
}

// decode reads an array of documents and maps the export's _id onto the
// id key the models decode from.
func decode(data []byte, what string) ([]map[string]interface{}, error) {
	var docs []map[string]interface{}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", what, err)
	}
	for _, d := range docs {
		if id, ok := d["_id"]; ok {
			d["id"] = id
			delete(d, "_id")
		}
	}
	return docs, nil
}

func recode(docs []map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func normalizeStartDates(d map[string]interface{}) error {
	dates, ok := d["startDates"].([]interface{})
	if !ok {
		return nil
	}
	for i, v := range dates {
		s, ok := v.(string)
		if !ok {
			continue
		}
		t, err := parseStartDate(s)
		if err != nil {
			return err
		}
		dates[i] = t.Format(time.RFC3339)
	}
	return nil
}

func parseStartDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start date %q", s)
}
