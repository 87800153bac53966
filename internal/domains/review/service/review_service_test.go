package service

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tropharbour-backend/internal/domains/review/model"
	usermodel "tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/query"
	"tropharbour-backend/pkg/cache"
)

// =====================================================
// FAKES
// =====================================================

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]*model.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[primitive.ObjectID]*model.Review{}}
}

func (r *fakeReviewRepo) Find(_ context.Context, q *query.Query) ([]model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tour, _ := q.Filter["tour"].(primitive.ObjectID)
	out := []model.Review{}
	for _, rv := range r.reviews {
		if tour.IsZero() || rv.Tour == tour {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) FindOne(context.Context, bson.M) (*model.Review, error) {
	return nil, apperror.NotFound(database.MsgNoDocument)
}

func (r *fakeReviewRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound(database.MsgNoDocument)
	}
	cp := *rv
	return &cp, nil
}

func (r *fakeReviewRepo) Create(_ context.Context, doc *model.Review) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	cp.ID = primitive.NewObjectID()
	r.reviews[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeReviewRepo) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound(database.MsgNoDocument)
	}
	if v, ok := set["review"]; ok {
		rv.Review = v.(string)
	}
	if v, ok := set["rating"]; ok {
		rv.Rating = v.(float64)
	}
	cp := *rv
	return &cp, nil
}

func (r *fakeReviewRepo) DeleteByID(_ context.Context, id primitive.ObjectID) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound(database.MsgNoDocument)
	}
	delete(r.reviews, id)
	return rv, nil
}

func (r *fakeReviewRepo) Count(context.Context, bson.M) (int64, error) {
	return int64(len(r.reviews)), nil
}

func (r *fakeReviewRepo) Aggregate(context.Context, mongo.Pipeline, interface{}) error {
	return nil
}

func (r *fakeReviewRepo) ForTour(ctx context.Context, tourID primitive.ObjectID) ([]model.Review, error) {
	return r.Find(ctx, &query.Query{Filter: bson.M{"tour": tourID}})
}

func (r *fakeReviewRepo) HasReviewed(_ context.Context, tourID, userID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.Tour == tourID && rv.User == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReviewRepo) RatingStats(_ context.Context, tourID primitive.ObjectID) (*model.RatingStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	var sum float64
	for _, rv := range r.reviews {
		if rv.Tour == tourID {
			n++
			sum += rv.Rating
		}
	}
	if n == 0 {
		return nil, nil
	}
	return &model.RatingStats{Tour: tourID, Count: n, Average: sum / float64(n)}, nil
}

type ratings struct {
	quantity int
	average  float64
}

type fakeTours struct {
	known   map[primitive.ObjectID]bool
	written map[primitive.ObjectID]ratings
}

func (f *fakeTours) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	return f.known[id], nil
}

func (f *fakeTours) UpdateRatings(_ context.Context, id primitive.ObjectID, quantity int, average float64) error {
	f.written[id] = ratings{quantity, average}
	return nil
}

type fakeAuthors map[primitive.ObjectID]usermodel.Summary

func (a fakeAuthors) FindSummaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]usermodel.Summary, error) {
	out := map[primitive.ObjectID]usermodel.Summary{}
	for _, id := range ids {
		if s, ok := a[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type reviewFixture struct {
	svc   ReviewService
	repo  *fakeReviewRepo
	tours *fakeTours
	cache *cache.Memory
	tour  primitive.ObjectID
	alice *shared.Principal
	bob   *shared.Principal
	admin *shared.Principal
}

func newReviewFixture() *reviewFixture {
	tour := primitive.NewObjectID()
	aliceID, bobID := primitive.NewObjectID(), primitive.NewObjectID()
	repo := newFakeReviewRepo()
	tours := &fakeTours{known: map[primitive.ObjectID]bool{tour: true}, written: map[primitive.ObjectID]ratings{}}
	authors := fakeAuthors{
		aliceID: {ID: aliceID, Name: "Alice", Email: "alice@example.com", Photo: "alice.jpg", Role: usermodel.RoleUser},
		bobID:   {ID: bobID, Name: "Bob", Photo: "bob.jpg", Role: usermodel.RoleUser},
	}
	mem := cache.NewMemory()

	svc := NewReviewService(repo, tours, authors, mem)
	svc.(*reviewService).now = func() time.Time { return time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC) }

	return &reviewFixture{
		svc:   svc,
		repo:  repo,
		tours: tours,
		cache: mem,
		tour:  tour,
		alice: &shared.Principal{ID: aliceID.Hex(), Role: "user"},
		bob:   &shared.Principal{ID: bobID.Hex(), Role: "user"},
		admin: &shared.Principal{ID: primitive.NewObjectID().Hex(), Role: "admin"},
	}
}

func rating(v float64) *float64 { return &v }

func (f *reviewFixture) create(t *testing.T, author *shared.Principal, r float64) *model.View {
	t.Helper()
	view, err := f.svc.CreateReview(context.Background(), author, f.tour.Hex(), model.CreateReviewRequest{
		Review: "Amazing tour",
		Rating: rating(r),
	})
	require.NoError(t, err)
	return view
}

// =====================================================
// TESTS
// =====================================================

func TestCreateReviewRecalculatesRatings(t *testing.T) {
	f := newReviewFixture()

	view := f.create(t, f.alice, 4)
	f.create(t, f.bob, 5)

	require.NotNil(t, view.User)
	assert.Equal(t, "Alice", view.User.Name)
	assert.Empty(t, view.User.Email)
	assert.Equal(t, ratings{2, 4.5}, f.tours.written[f.tour])
}

func TestCreateReviewDefaultsAndTourFromBody(t *testing.T) {
	f := newReviewFixture()

	view, err := f.svc.CreateReview(context.Background(), f.alice, "", model.CreateReviewRequest{
		Review: "Nice",
		Tour:   f.tour.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRating, view.Rating)
	assert.Equal(t, f.tour, view.Tour)
}

func TestCreateReviewRejectsDuplicate(t *testing.T) {
	f := newReviewFixture()
	f.create(t, f.alice, 4)

	_, err := f.svc.CreateReview(context.Background(), f.alice, f.tour.Hex(), model.CreateReviewRequest{Review: "Again"})
	assert.ErrorIs(t, err, model.ErrDuplicateReview)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCreateReviewValidation(t *testing.T) {
	f := newReviewFixture()

	_, err := f.svc.CreateReview(context.Background(), f.alice, f.tour.Hex(), model.CreateReviewRequest{Review: "Meh", Rating: rating(6)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rating must be below 5.0")

	_, err = f.svc.CreateReview(context.Background(), f.alice, f.tour.Hex(), model.CreateReviewRequest{Review: "Zero stars", Rating: rating(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rating must be above 1.0")
	assert.Empty(t, f.tours.written)

	_, err = f.svc.CreateReview(context.Background(), f.alice, f.tour.Hex(), model.CreateReviewRequest{Rating: rating(3)})
	assert.Contains(t, err.Error(), "A review must contain text")

	_, err = f.svc.CreateReview(context.Background(), f.alice, primitive.NewObjectID().Hex(), model.CreateReviewRequest{Review: "Where?"})
	assert.ErrorIs(t, err, model.ErrTourNotFound)
}

func TestUpdateReviewOwnership(t *testing.T) {
	f := newReviewFixture()
	view := f.create(t, f.alice, 3)
	id := view.ID.Hex()

	_, err := f.svc.UpdateReview(context.Background(), f.bob, id, model.UpdateReviewRequest{Rating: rating(1)})
	assert.ErrorIs(t, err, model.ErrNotOwner)

	_, err = f.svc.UpdateReview(context.Background(), f.alice, id, model.UpdateReviewRequest{Rating: rating(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rating must be above 1.0")

	updated, err := f.svc.UpdateReview(context.Background(), f.alice, id, model.UpdateReviewRequest{Rating: rating(5)})
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Rating)
	assert.Equal(t, ratings{1, 5}, f.tours.written[f.tour])

	_, err = f.svc.UpdateReview(context.Background(), f.admin, id, model.UpdateReviewRequest{Rating: rating(2)})
	assert.NoError(t, err)
}

func TestDeleteLastReviewResetsRatings(t *testing.T) {
	f := newReviewFixture()
	view := f.create(t, f.alice, 2)

	err := f.svc.DeleteReview(context.Background(), f.bob, view.ID.Hex())
	assert.ErrorIs(t, err, model.ErrNotOwner)

	require.NoError(t, f.svc.DeleteReview(context.Background(), f.alice, view.ID.Hex()))
	assert.Equal(t, ratings{0, model.DefaultRating}, f.tours.written[f.tour])

	_, err = f.svc.GetReview(context.Background(), view.ID.Hex())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRatingChangesInvalidateTourCache(t *testing.T) {
	f := newReviewFixture()
	require.NoError(t, f.cache.Set(context.Background(), "tours:stats", []int{1}, time.Minute))

	f.create(t, f.alice, 4)

	var out []int
	hit, err := f.cache.Get(context.Background(), "tours:stats", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestListReviewsNested(t *testing.T) {
	f := newReviewFixture()
	f.create(t, f.alice, 4)

	other := primitive.NewObjectID()
	f.tours.known[other] = true
	_, err := f.svc.CreateReview(context.Background(), f.bob, other.Hex(), model.CreateReviewRequest{Review: "Ok"})
	require.NoError(t, err)

	all, err := f.svc.ListReviews(context.Background(), "", url.Values{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	nested, err := f.svc.ListReviews(context.Background(), f.tour.Hex(), url.Values{})
	require.NoError(t, err)
	require.Len(t, nested, 1)
	author := nested[0]["user"].(map[string]interface{})
	assert.Equal(t, "Alice", author["name"])

	_, err = f.svc.ListReviews(context.Background(), "bad", url.Values{})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
}
