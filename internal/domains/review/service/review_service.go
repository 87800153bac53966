package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tropharbour-backend/internal/domains/review/model"
	"tropharbour-backend/internal/domains/review/repository"
	usermodel "tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/query"
	"tropharbour-backend/pkg/cache"
	"tropharbour-backend/pkg/logger"
)

// Rating aggregates feed the cached tour statistics.
const tourCachePattern = "tours:*"

type reviewService struct {
	repo    repository.ReviewRepository
	tours   TourRatings
	authors AuthorLookup
	cache   cache.Cache
	now     func() time.Time
}

func NewReviewService(repo repository.ReviewRepository, tours TourRatings, authors AuthorLookup, c cache.Cache) ReviewService {
	if c == nil {
		c = cache.Noop{}
	}
	return &reviewService{
		repo:    repo,
		tours:   tours,
		authors: authors,
		cache:   c,
		now:     time.Now,
	}
}

// =====================================================
// READS
// =====================================================

func (s *reviewService) ListReviews(ctx context.Context, tourID string, params url.Values) ([]map[string]interface{}, error) {
	var base bson.M
	if tourID != "" {
		oid, err := database.ParseID(tourID)
		if err != nil {
			return nil, err
		}
		base = bson.M{"tour": oid}
	}

	q, err := query.Apply(base, params)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	views, err := s.populate(ctx, reviews)
	if err != nil {
		return nil, err
	}
	return q.Shape(views)
}

func (s *reviewService) ForTour(ctx context.Context, tourID primitive.ObjectID) ([]model.View, error) {
	reviews, err := s.repo.ForTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, reviews)
}

func (s *reviewService) GetReview(ctx context.Context, id string) (*model.View, error) {
	review, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, review)
}

// =====================================================
// WRITES
// =====================================================

func (s *reviewService) CreateReview(ctx context.Context, author *shared.Principal, tourID string, req model.CreateReviewRequest) (*model.View, error) {
	if strings.TrimSpace(req.Tour) != "" {
		tourID = req.Tour
	}
	tour, err := database.ParseID(tourID)
	if err != nil {
		return nil, err
	}
	user, err := database.ParseID(author.ID)
	if err != nil {
		return nil, err
	}

	review := req.ToReview(tour, user, s.now())
	if err := review.Validate(); err != nil {
		return nil, apperror.Translate(err)
	}

	exists, err := s.tours.Exists(ctx, tour)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrTourNotFound
	}

	reviewed, err := s.repo.HasReviewed(ctx, tour, user)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, model.ErrDuplicateReview
	}

	// The unique (tour, user) index still guards a concurrent duplicate.
	id, err := s.repo.Create(ctx, review)
	if err != nil {
		return nil, err
	}
	review.ID = id

	s.recalculate(ctx, tour)
	return s.view(ctx, review)
}

func (s *reviewService) UpdateReview(ctx context.Context, caller *shared.Principal, id string, req model.UpdateReviewRequest) (*model.View, error) {
	review, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, review); err != nil {
		return nil, err
	}

	set := bson.M{}
	if req.Review != nil {
		review.Review = strings.TrimSpace(*req.Review)
		set["review"] = review.Review
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
		set["rating"] = review.Rating
	}
	if err := review.Validate(); err != nil {
		return nil, apperror.Translate(err)
	}

	updated, err := s.repo.UpdateByID(ctx, review.ID, set)
	if err != nil {
		return nil, err
	}

	s.recalculate(ctx, updated.Tour)
	return s.view(ctx, updated)
}

func (s *reviewService) DeleteReview(ctx context.Context, caller *shared.Principal, id string) error {
	review, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(caller, review); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteByID(ctx, review.ID)
	if err != nil {
		return err
	}

	s.recalculate(ctx, deleted.Tour)
	return nil
}

// =====================================================
// RATING AGGREGATE
// =====================================================

// CalcAverageRatings reads the surviving reviews and writes their count and
// average to the tour, or the defaults when none remain. Concurrent review
// writes for one tour may interleave; the last recomputation wins.
func (s *reviewService) CalcAverageRatings(ctx context.Context, tourID primitive.ObjectID) error {
	stats, err := s.repo.RatingStats(ctx, tourID)
	if err != nil {
		return err
	}

	quantity, average := 0, model.DefaultRating
	if stats != nil {
		quantity, average = stats.Count, stats.Average
	}

	if err := s.tours.UpdateRatings(ctx, tourID, quantity, average); err != nil {
		return err
	}

	if err := s.cache.DeletePattern(ctx, tourCachePattern); err != nil {
		logger.Warn("tour cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// recalculate runs after the review write has already succeeded, so a
// failure is logged rather than returned.
func (s *reviewService) recalculate(ctx context.Context, tourID primitive.ObjectID) {
	if err := s.CalcAverageRatings(ctx, tourID); err != nil {
		logger.Error("failed to recalculate tour ratings", err)
	}
}

// =====================================================
// HELPERS
// =====================================================

func (s *reviewService) find(ctx context.Context, id string) (*model.Review, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, oid)
}

func (s *reviewService) populate(ctx context.Context, reviews []model.Review) ([]model.View, error) {
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.User)
	}

	authors, err := s.authors.FindSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]model.View, 0, len(reviews))
	for i := range reviews {
		v := model.View{Review: &reviews[i]}
		if a, ok := authors[reviews[i].User]; ok {
			// Reviews only expose the author's name and photo.
			v.User = &usermodel.Summary{ID: a.ID, Name: a.Name, Photo: a.Photo}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *reviewService) view(ctx context.Context, r *model.Review) (*model.View, error) {
	views, err := s.populate(ctx, []model.Review{*r})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// authorize lets admins change any review and users only their own.
func authorize(caller *shared.Principal, review *model.Review) error {
	if usermodel.Role(caller.Role) == usermodel.RoleAdmin {
		return nil
	}
	if caller.ID != review.User.Hex() {
		return model.ErrNotOwner
	}
	return nil
}
