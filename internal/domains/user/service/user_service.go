package service

import (
	"context"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.mongodb.org/mongo-driver/bson"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/domains/user/repository"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/internal/shared/query"
)

type userService struct {
	repo   repository.UserRepository
	photos PhotoStore
}

func NewUserService(repo repository.UserRepository, photos PhotoStore) UserService {
	return &userService{repo: repo, photos: photos}
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, oid)
}

func (s *userService) ListUsers(ctx context.Context, params url.Values) ([]map[string]interface{}, error) {
	q, err := query.Apply(nil, params)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return q.Shape(users)
}

// UpdateMe applies name, email and photo only. Every other field in the
// request is ignored.
func (s *userService) UpdateMe(ctx context.Context, userID string, req model.UpdateMeRequest, photo []byte) (*model.User, error) {
	if req.Password != "" || req.PasswordConfirm != "" {
		return nil, model.ErrPasswordRoute
	}

	id, err := database.ParseID(userID)
	if err != nil {
		return nil, err
	}

	set, err := profileFields(req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	if len(photo) > 0 {
		name, err := s.photos.UserPhoto(ctx, userID, photo)
		if err != nil {
			return nil, err
		}
		set["photo"] = name
	}

	return s.repo.UpdateByID(ctx, id, set)
}

func (s *userService) DeleteMe(ctx context.Context, userID string) error {
	id, err := database.ParseID(userID)
	if err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *userService) UpdateUser(ctx context.Context, id string, req model.AdminUpdateUserRequest) (*model.User, error) {
	if req.Password != "" || req.PasswordConfirm != "" {
		return nil, model.ErrPasswordRoute
	}

	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	set, err := profileFields(req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if req.Photo != nil {
		set["photo"] = *req.Photo
	}
	if req.Role != nil {
		if !model.Authorize(*req.Role, model.RoleUser, model.RoleGuide, model.RoleLeadGuide, model.RoleAdmin) {
			return nil, apperror.Validation("Invalid input data. role: Role is either: user, guide, lead-guide, admin")
		}
		set["role"] = *req.Role
	}
	if req.Active != nil {
		set["active"] = *req.Active
	}

	return s.repo.UpdateByID(ctx, oid, set)
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	oid, err := database.ParseID(id)
	if err != nil {
		return err
	}
	_, err = s.repo.DeleteByID(ctx, oid)
	return err
}

func profileFields(name, email *string) (bson.M, error) {
	set := bson.M{}
	if name != nil {
		n := strings.TrimSpace(*name)
		if err := validation.Validate(n, validation.Required.Error("Please tell us your name!")); err != nil {
			return nil, apperror.Translate(validation.Errors{"name": err})
		}
		set["name"] = n
	}
	if email != nil {
		e := model.NormalizeEmail(*email)
		if err := validation.Validate(e,
			validation.Required.Error("Please provide your email"),
			is.EmailFormat.Error("Please provide a valid email"),
		); err != nil {
			return nil, apperror.Translate(validation.Errors{"email": err})
		}
		set["email"] = e
	}
	return set, nil
}
