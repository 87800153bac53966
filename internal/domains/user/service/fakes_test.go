package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/query"
)

// fakeRepo keeps users in memory and hides inactive ones like the real
// scope does.
type fakeRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[primitive.ObjectID]*model.User{}}
}

func (r *fakeRepo) put(u *model.User) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	r.users[u.ID] = &cp
	return u
}

func (r *fakeRepo) get(id primitive.ObjectID) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (r *fakeRepo) active(id primitive.ObjectID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok || !u.Active {
		return nil, apperror.NotFound(database.MsgNoDocument)
	}
	return u, nil
}

func (r *fakeRepo) Find(_ context.Context, _ *query.Query) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.User{}
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindOne(context.Context, bson.M) (*model.User, error) {
	return nil, apperror.NotFound(database.MsgNoDocument)
}

func (r *fakeRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.active(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) Create(_ context.Context, doc *model.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == doc.Email {
			return primitive.NilObjectID, apperror.Validation(`Duplicate field value: "` + doc.Email + `". Please use another value!`)
		}
	}
	cp := *doc
	cp.ID = primitive.NewObjectID()
	r.users[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeRepo) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.active(id)
	if err != nil {
		return nil, err
	}
	for k, v := range set {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "photo":
			u.Photo = v.(string)
		case "role":
			u.Role = v.(model.Role)
		case "active":
			u.Active = v.(bool)
		}
	}
	u.Version++
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) DeleteByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.active(id)
	if err != nil {
		return nil, err
	}
	delete(r.users, id)
	return u, nil
}

func (r *fakeRepo) Count(context.Context, bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeRepo) Aggregate(context.Context, mongo.Pipeline, interface{}) error {
	return nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, u := range r.users {
		if u.Active && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound(database.MsgNoDocument)
}

func (r *fakeRepo) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Active && u.PasswordResetToken == tokenHash && u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound(database.MsgNoDocument)
}

func (r *fakeRepo) SetPassword(_ context.Context, id primitive.ObjectID, hash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.active(id)
	if err != nil {
		return err
	}
	u.Password = hash
	u.PasswordChangedAt = &changedAt
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	return nil
}

func (r *fakeRepo) SetResetToken(_ context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.active(id)
	if err != nil {
		return err
	}
	u.PasswordResetToken = tokenHash
	u.PasswordResetExpires = &expires
	return nil
}

func (r *fakeRepo) ClearResetToken(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperror.NotFound(database.MsgNoDocument)
	}
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	return nil
}

func (r *fakeRepo) Deactivate(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.active(id)
	if err != nil {
		return err
	}
	u.Active = false
	return nil
}

func (r *fakeRepo) FindSummaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[primitive.ObjectID]model.Summary{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok && u.Active {
			out[id] = model.Summary{ID: id, Name: u.Name, Email: u.Email, Photo: u.Photo, Role: u.Role}
		}
	}
	return out, nil
}

type sentMail struct {
	kind, name, address, url string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendWelcome(_ context.Context, name, address, url string) error {
	m.sent = append(m.sent, sentMail{"welcome", name, address, url})
	return m.err
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, name, address, url string) error {
	m.sent = append(m.sent, sentMail{"reset", name, address, url})
	return m.err
}

type fakePhotos struct {
	calls int
}

func (p *fakePhotos) UserPhoto(_ context.Context, userID string, _ []byte) (string, error) {
	p.calls++
	return "user-" + userID + "-1.jpeg", nil
}
