package service

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tropharbour-backend/internal/domains/tour/model"
	"tropharbour-backend/internal/domains/tour/repository"
	usermodel "tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/query"
	"tropharbour-backend/internal/shared/utils"
	"tropharbour-backend/pkg/cache"
	"tropharbour-backend/pkg/logger"
)

const (
	// CachePattern matches every cached tour aggregation.
	CachePattern = "tours:*"
	CacheTTL     = 10 * time.Minute

	statsKey       = "tours:stats"
	planKeyPrefix  = "tours:plan:"
	statsMinRating = 4.5
)

type tourService struct {
	repo    repository.TourRepository
	guides  GuideLookup
	reviews ReviewLister
	images  ImageStore
	cache   cache.Cache
	now     func() time.Time
}

func NewTourService(repo repository.TourRepository, guides GuideLookup, reviews ReviewLister, images ImageStore, c cache.Cache) TourService {
	if c == nil {
		c = cache.Noop{}
	}
	return &tourService{
		repo:    repo,
		guides:  guides,
		reviews: reviews,
		images:  images,
		cache:   c,
		now:     time.Now,
	}
}

// =====================================================
// CRUD
// =====================================================

func (s *tourService) ListTours(ctx context.Context, params url.Values) ([]map[string]interface{}, error) {
	q, err := query.Apply(nil, params)
	if err != nil {
		return nil, err
	}

	tours, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	views, err := s.populate(ctx, tours)
	if err != nil {
		return nil, err
	}
	return q.Shape(views)
}

func (s *tourService) GetTour(ctx context.Context, id string) (*model.View, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	tour, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	views, err := s.populate(ctx, []model.Tour{*tour})
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ForTour(ctx, oid)
	if err != nil {
		return nil, err
	}
	views[0].Reviews = reviews
	return views[0], nil
}

func (s *tourService) CreateTour(ctx context.Context, req model.CreateTourRequest) (*model.View, error) {
	guides, err := parseIDs(req.Guides)
	if err != nil {
		return nil, err
	}

	tour := req.ToTour(guides, s.now())
	tour.Normalize(utils.GenerateSlug)
	if err := tour.Validate(); err != nil {
		return nil, apperror.Translate(err)
	}

	id, err := s.repo.Create(ctx, tour)
	if err != nil {
		return nil, err
	}
	tour.ID = id

	s.invalidate(ctx)
	return s.view(ctx, tour)
}

func (s *tourService) UpdateTour(ctx context.Context, id string, req model.UpdateTourRequest, uploads Uploads) (*model.View, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	tour, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	guides, err := parseIDs(req.Guides)
	if err != nil {
		return nil, err
	}

	set := req.Apply(tour, guides)
	tour.Normalize(utils.GenerateSlug)
	if err := tour.Validate(); err != nil {
		return nil, apperror.Translate(err)
	}

	// Images are stored only once the patch is known to be valid.
	if len(uploads.Cover) > 0 {
		cover, err := s.images.TourCover(ctx, id, uploads.Cover)
		if err != nil {
			return nil, err
		}
		tour.ImageCover = cover
		set["imageCover"] = nil
	}
	if len(uploads.Images) > 0 {
		images, err := s.images.TourImages(ctx, id, uploads.Images)
		if err != nil {
			return nil, err
		}
		tour.Images = images
		set["images"] = nil
	}

	updated, err := s.repo.UpdateByID(ctx, oid, tour.Fields(set))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.view(ctx, updated)
}

func (s *tourService) DeleteTour(ctx context.Context, id string) error {
	oid, err := database.ParseID(id)
	if err != nil {
		return err
	}

	if _, err := s.repo.DeleteByID(ctx, oid); err != nil {
		return err
	}

	if err := s.images.DeleteTour(ctx, id); err != nil {
		logger.Error("failed to delete tour images", err)
	}
	s.invalidate(ctx)
	return nil
}

// =====================================================
// AGGREGATIONS
// =====================================================

func (s *tourService) Stats(ctx context.Context) ([]model.Stat, error) {
	var stats []model.Stat
	if s.cached(ctx, statsKey, &stats) {
		return stats, nil
	}

	stats, err := s.repo.Stats(ctx, statsMinRating)
	if err != nil {
		return nil, err
	}
	s.store(ctx, statsKey, stats)
	return stats, nil
}

func (s *tourService) MonthlyPlan(ctx context.Context, yearParam string) ([]model.MonthPlan, error) {
	year, err := strconv.Atoi(yearParam)
	if err != nil || year < 1 || year > 9999 {
		return nil, model.ErrInvalidYear
	}

	key := planKeyPrefix + strconv.Itoa(year)
	var plan []model.MonthPlan
	if s.cached(ctx, key, &plan) {
		return plan, nil
	}

	plan, err = s.repo.MonthlyPlan(ctx, year)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, plan)
	return plan, nil
}

// =====================================================
// GEO
// =====================================================

func (s *tourService) ToursWithin(ctx context.Context, distance, latlng, unit string) ([]*model.View, error) {
	d, err := model.ParseDistance(distance)
	if err != nil {
		return nil, err
	}
	lat, lng, err := model.ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	u, err := model.ParseUnit(unit)
	if err != nil {
		return nil, err
	}

	tours, err := s.repo.Within(ctx, lng, lat, model.Radius(d, u))
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, tours)
}

func (s *tourService) Distances(ctx context.Context, latlng, unit string) ([]model.Distance, error) {
	lat, lng, err := model.ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	u, err := model.ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	return s.repo.Distances(ctx, lng, lat, u.DistanceMultiplier())
}

// =====================================================
// HELPERS
// =====================================================

// populate attaches guide summaries with one lookup for all tours.
func (s *tourService) populate(ctx context.Context, tours []model.Tour) ([]*model.View, error) {
	var ids []primitive.ObjectID
	for _, t := range tours {
		ids = append(ids, t.Guides...)
	}

	guides := map[primitive.ObjectID]usermodel.Summary{}
	if len(ids) > 0 {
		found, err := s.guides.FindSummaries(ctx, ids)
		if err != nil {
			return nil, err
		}
		guides = found
	}

	views := make([]*model.View, 0, len(tours))
	for i := range tours {
		views = append(views, model.NewView(&tours[i], guides))
	}
	return views, nil
}

func (s *tourService) view(ctx context.Context, t *model.Tour) (*model.View, error) {
	views, err := s.populate(ctx, []model.Tour{*t})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// cached reports a hit. Cache failures are logged and treated as misses.
func (s *tourService) cached(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn("tour cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	}
	return hit
}

func (s *tourService) store(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, CacheTTL); err != nil {
		logger.Warn("tour cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (s *tourService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, CachePattern); err != nil {
		logger.Warn("tour cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func parseIDs(hexes []string) ([]primitive.ObjectID, error) {
	if hexes == nil {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := database.ParseID(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
