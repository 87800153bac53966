package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	reviewmodel "tropharbour-backend/internal/domains/review/model"
	"tropharbour-backend/internal/domains/tour/model"
	usermodel "tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/query"
	"tropharbour-backend/pkg/cache"
)

// =====================================================
// FAKES
// =====================================================

type fakeTourRepo struct {
	mu         sync.Mutex
	tours      map[primitive.ObjectID]*model.Tour
	statsCalls int
	planCalls  int
	within     []float64
	distances  []float64
}

func newFakeTourRepo() *fakeTourRepo {
	return &fakeTourRepo{tours: map[primitive.ObjectID]*model.Tour{}}
}

func (r *fakeTourRepo) visible(id primitive.ObjectID) (*model.Tour, error) {
	t, ok := r.tours[id]
	if !ok || t.SecretTour {
		return nil, apperror.NotFound(database.MsgNoDocument)
	}
	return t, nil
}

func (r *fakeTourRepo) Find(context.Context, *query.Query) ([]model.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Tour{}
	for _, t := range r.tours {
		if !t.SecretTour {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTourRepo) FindOne(context.Context, bson.M) (*model.Tour, error) {
	return nil, apperror.NotFound(database.MsgNoDocument)
}

func (r *fakeTourRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.visible(id)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTourRepo) Create(_ context.Context, doc *model.Tour) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tours {
		if t.Name == doc.Name {
			return primitive.NilObjectID, apperror.Validation("Duplicate field value")
		}
	}
	cp := *doc
	cp.ID = primitive.NewObjectID()
	r.tours[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeTourRepo) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*model.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.visible(id)
	if err != nil {
		return nil, err
	}
	for k, v := range set {
		switch k {
		case "name":
			t.Name = v.(string)
		case "slug":
			t.Slug = v.(string)
		case "price":
			t.Price = v.(float64)
		case "imageCover":
			t.ImageCover = v.(string)
		case "images":
			t.Images = v.([]string)
		}
	}
	t.Version++
	cp := *t
	return &cp, nil
}

func (r *fakeTourRepo) DeleteByID(_ context.Context, id primitive.ObjectID) (*model.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.visible(id)
	if err != nil {
		return nil, err
	}
	delete(r.tours, id)
	return t, nil
}

func (r *fakeTourRepo) Count(context.Context, bson.M) (int64, error) {
	return int64(len(r.tours)), nil
}

func (r *fakeTourRepo) Aggregate(context.Context, mongo.Pipeline, interface{}) error {
	return nil
}

func (r *fakeTourRepo) Stats(context.Context, float64) ([]model.Stat, error) {
	r.statsCalls++
	return []model.Stat{{Difficulty: "EASY", NumTours: 4, AvgPrice: 1272}}, nil
}

func (r *fakeTourRepo) MonthlyPlan(_ context.Context, year int) ([]model.MonthPlan, error) {
	r.planCalls++
	return []model.MonthPlan{{Month: 7, NumTours: 3, Tours: []string{"The Sea Explorer"}}}, nil
}

func (r *fakeTourRepo) Within(_ context.Context, lng, lat, radius float64) ([]model.Tour, error) {
	r.within = []float64{lng, lat, radius}
	return []model.Tour{}, nil
}

func (r *fakeTourRepo) Distances(_ context.Context, lng, lat, multiplier float64) ([]model.Distance, error) {
	r.distances = []float64{lng, lat, multiplier}
	return []model.Distance{}, nil
}

func (r *fakeTourRepo) UpdateRatings(_ context.Context, id primitive.ObjectID, quantity int, average float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tours[id]
	if !ok {
		return apperror.NotFound(database.MsgNoDocument)
	}
	t.RatingsQuantity = quantity
	t.RatingsAverage = model.RoundRating(average)
	return nil
}

func (r *fakeTourRepo) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := r.tours[id]
	return ok, nil
}

type fakeGuides map[primitive.ObjectID]usermodel.Summary

func (g fakeGuides) FindSummaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]usermodel.Summary, error) {
	out := map[primitive.ObjectID]usermodel.Summary{}
	for _, id := range ids {
		if s, ok := g[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeReviews struct{}

func (fakeReviews) ForTour(_ context.Context, tourID primitive.ObjectID) ([]reviewmodel.View, error) {
	return []reviewmodel.View{{Review: &reviewmodel.Review{Review: "Great", Rating: 5, Tour: tourID}}}, nil
}

type fakeImages struct {
	deleted  []string
	uploaded int
	err      error
}

func (f *fakeImages) TourCover(_ context.Context, id string, _ []byte) (string, error) {
	f.uploaded++
	return "tour-" + id + "-1-cover.jpeg", f.err
}

func (f *fakeImages) TourImages(_ context.Context, id string, files [][]byte) ([]string, error) {
	f.uploaded += len(files)
	names := make([]string, len(files))
	for i := range files {
		names[i] = "tour-" + id + "-1-" + string(rune('1'+i)) + ".jpeg"
	}
	return names, f.err
}

func (f *fakeImages) DeleteTour(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type tourFixture struct {
	svc    *tourService
	repo   *fakeTourRepo
	images *fakeImages
	guide  usermodel.Summary
}

func newTourFixture() *tourFixture {
	repo := newFakeTourRepo()
	images := &fakeImages{}
	guide := usermodel.Summary{ID: primitive.NewObjectID(), Name: "Miyah Myles", Role: usermodel.RoleLeadGuide}
	svc := NewTourService(repo, fakeGuides{guide.ID: guide}, fakeReviews{}, images, cache.NewMemory()).(*tourService)
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }
	return &tourFixture{svc: svc, repo: repo, images: images, guide: guide}
}

func (f *tourFixture) create(t *testing.T, name string) *model.View {
	t.Helper()
	view, err := f.svc.CreateTour(context.Background(), model.CreateTourRequest{
		Name:         name,
		Duration:     7,
		MaxGroupSize: 15,
		Difficulty:   model.DifficultyMedium,
		Price:        497,
		Description:  "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-2-cover.jpg",
		Guides:       []string{f.guide.ID.Hex()},
	})
	require.NoError(t, err)
	return view
}

// =====================================================
// TESTS
// =====================================================

func TestCreateTour(t *testing.T) {
	f := newTourFixture()

	view := f.create(t, "The Forest Hiker")

	assert.Equal(t, "the-forest-hiker", view.Slug)
	assert.Equal(t, model.DefaultRatingsAverage, view.RatingsAverage)
	assert.Equal(t, 1.0, view.DurationWeeks)
	require.Len(t, view.Guides, 1)
	assert.Equal(t, "Miyah Myles", view.Guides[0].Name)
}

func TestCreateTourValidates(t *testing.T) {
	f := newTourFixture()

	_, err := f.svc.CreateTour(context.Background(), model.CreateTourRequest{Name: "Short"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "A tour must have a duration")

	_, err = f.svc.CreateTour(context.Background(), model.CreateTourRequest{Name: "The Forest Hiker", Guides: []string{"nope"}})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
}

func TestGetTourAttachesReviews(t *testing.T) {
	f := newTourFixture()
	created := f.create(t, "The Forest Hiker")

	view, err := f.svc.GetTour(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	reviews, ok := view.Reviews.([]reviewmodel.View)
	require.True(t, ok)
	assert.Len(t, reviews, 1)
}

func TestSecretToursAreHidden(t *testing.T) {
	f := newTourFixture()
	created := f.create(t, "The Secret Getaway")
	f.repo.tours[created.ID].SecretTour = true

	_, err := f.svc.GetTour(context.Background(), created.ID.Hex())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	tours, err := f.svc.ListTours(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Empty(t, tours)
}

func TestListToursShapesFields(t *testing.T) {
	f := newTourFixture()
	f.create(t, "The Forest Hiker")

	tours, err := f.svc.ListTours(context.Background(), url.Values{"fields": {"name,price"}})
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.ElementsMatch(t, []string{"id", "name", "price"}, keys(tours[0]))
}

func TestUpdateTourRefreshesSlugAndImages(t *testing.T) {
	f := newTourFixture()
	created := f.create(t, "The Forest Hiker")
	id := created.ID.Hex()
	name := "The Snow Adventurer"

	view, err := f.svc.UpdateTour(context.Background(), id, model.UpdateTourRequest{Name: &name}, Uploads{
		Cover:  []byte("cover"),
		Images: [][]byte{[]byte("a"), []byte("b")},
	})
	require.NoError(t, err)

	assert.Equal(t, "the-snow-adventurer", view.Slug)
	assert.Equal(t, "tour-"+id+"-1-cover.jpeg", view.ImageCover)
	assert.Equal(t, []string{"tour-" + id + "-1-1.jpeg", "tour-" + id + "-1-2.jpeg"}, view.Images)
}

func TestUpdateTourRejectsDiscountAbovePrice(t *testing.T) {
	f := newTourFixture()
	created := f.create(t, "The Forest Hiker")
	discount := 600.0

	_, err := f.svc.UpdateTour(context.Background(), created.ID.Hex(), model.UpdateTourRequest{PriceDiscount: &discount}, Uploads{})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestUpdateTourInvalidPatchStoresNoImages(t *testing.T) {
	f := newTourFixture()
	created := f.create(t, "The Forest Hiker")
	short := "Hiker"

	_, err := f.svc.UpdateTour(context.Background(), created.ID.Hex(), model.UpdateTourRequest{Name: &short}, Uploads{
		Cover:  []byte("cover"),
		Images: [][]byte{[]byte("a")},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Zero(t, f.images.uploaded)
	assert.Equal(t, "tour-2-cover.jpg", f.repo.tours[created.ID].ImageCover)
}

func TestDeleteTourRemovesImages(t *testing.T) {
	f := newTourFixture()
	created := f.create(t, "The Forest Hiker")
	f.images.err = errors.New("bucket offline")

	require.NoError(t, f.svc.DeleteTour(context.Background(), created.ID.Hex()))
	assert.Equal(t, []string{created.ID.Hex()}, f.images.deleted)

	err := f.svc.DeleteTour(context.Background(), created.ID.Hex())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestStatsAreCachedUntilMutation(t *testing.T) {
	f := newTourFixture()

	for i := 0; i < 2; i++ {
		stats, err := f.svc.Stats(context.Background())
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, "EASY", stats[0].Difficulty)
	}
	assert.Equal(t, 1, f.repo.statsCalls)

	f.create(t, "The Forest Hiker")

	_, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.statsCalls)
}

func TestMonthlyPlan(t *testing.T) {
	f := newTourFixture()

	plan, err := f.svc.MonthlyPlan(context.Background(), "2021")
	require.NoError(t, err)
	assert.Equal(t, 7, plan[0].Month)

	_, err = f.svc.MonthlyPlan(context.Background(), "2021")
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.planCalls)

	for _, bad := range []string{"abc", "0", "-1", "10000"} {
		_, err := f.svc.MonthlyPlan(context.Background(), bad)
		assert.ErrorIs(t, err, model.ErrInvalidYear, bad)
	}
}

func TestToursWithin(t *testing.T) {
	f := newTourFixture()

	_, err := f.svc.ToursWithin(context.Background(), "400", "34.111745,-118.113491", "mi")
	require.NoError(t, err)
	require.Len(t, f.repo.within, 3)
	assert.Equal(t, -118.113491, f.repo.within[0])
	assert.Equal(t, 34.111745, f.repo.within[1])
	assert.InDelta(t, 400/3963.2, f.repo.within[2], 1e-9)

	_, err = f.svc.ToursWithin(context.Background(), "400", "34.11", "mi")
	assert.ErrorIs(t, err, model.ErrLatLng)
	_, err = f.svc.ToursWithin(context.Background(), "far", "34.1,-118.1", "mi")
	assert.ErrorIs(t, err, model.ErrLatLng)
}

func TestDistances(t *testing.T) {
	f := newTourFixture()

	_, err := f.svc.Distances(context.Background(), "34.1,-118.1", "km")
	require.NoError(t, err)
	assert.Equal(t, []float64{-118.1, 34.1, 0.001}, f.repo.distances)

	_, err = f.svc.Distances(context.Background(), "34.1,-118.1", "yd")
	assert.ErrorIs(t, err, model.ErrLatLng)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
