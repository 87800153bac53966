package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/shared/apperror"
)

func strPtr(s string) *string { return &s }

func seedUser(repo *fakeRepo, email string) *model.User {
	return repo.put(model.New("Jonas Schmedtmann", email, "hash"))
}

func TestUpdateMeAppliesProfileFieldsOnly(t *testing.T) {
	repo := newFakeRepo()
	photos := &fakePhotos{}
	svc := NewUserService(repo, photos)
	u := seedUser(repo, "jonas@example.com")

	updated, err := svc.UpdateMe(context.Background(), u.ID.Hex(), model.UpdateMeRequest{
		Name:  strPtr("  Jonas S "),
		Email: strPtr("JONAS@new.io"),
	}, []byte("image"))
	require.NoError(t, err)

	assert.Equal(t, "Jonas S", updated.Name)
	assert.Equal(t, "jonas@new.io", updated.Email)
	assert.Equal(t, "user-"+u.ID.Hex()+"-1.jpeg", updated.Photo)
	assert.Equal(t, model.RoleUser, updated.Role)
	assert.Equal(t, 1, photos.calls)
}

func TestUpdateMeRejectsPasswordFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakePhotos{})
	u := seedUser(repo, "jonas@example.com")

	_, err := svc.UpdateMe(context.Background(), u.ID.Hex(), model.UpdateMeRequest{Password: "newpass123"}, nil)
	assert.ErrorIs(t, err, model.ErrPasswordRoute)

	_, err = svc.UpdateMe(context.Background(), u.ID.Hex(), model.UpdateMeRequest{PasswordConfirm: "newpass123"}, nil)
	assert.ErrorIs(t, err, model.ErrPasswordRoute)
}

func TestUpdateMeValidatesEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakePhotos{})
	u := seedUser(repo, "jonas@example.com")

	_, err := svc.UpdateMe(context.Background(), u.ID.Hex(), model.UpdateMeRequest{Email: strPtr("not-an-email")}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestDeleteMeHidesUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakePhotos{})
	u := seedUser(repo, "jonas@example.com")

	require.NoError(t, svc.DeleteMe(context.Background(), u.ID.Hex()))

	_, err := svc.GetUser(context.Background(), u.ID.Hex())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	users, err := svc.ListUsers(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUpdateUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakePhotos{})
	u := seedUser(repo, "jonas@example.com")

	role := model.RoleGuide
	updated, err := svc.UpdateUser(context.Background(), u.ID.Hex(), model.AdminUpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuide, updated.Role)

	bad := model.Role("owner")
	_, err = svc.UpdateUser(context.Background(), u.ID.Hex(), model.AdminUpdateUserRequest{Role: &bad})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.UpdateUser(context.Background(), u.ID.Hex(), model.AdminUpdateUserRequest{Password: "newpass123"})
	assert.ErrorIs(t, err, model.ErrPasswordRoute)
}

func TestGetUserRejectsMalformedID(t *testing.T) {
	svc := NewUserService(newFakeRepo(), &fakePhotos{})

	_, err := svc.GetUser(context.Background(), "abc")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindInvalidArgument, appErr.Kind)
	assert.Equal(t, "Invalid _id: abc", appErr.Message)
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakePhotos{})
	u := seedUser(repo, "jonas@example.com")

	require.NoError(t, svc.DeleteUser(context.Background(), u.ID.Hex()))
	assert.Nil(t, repo.get(u.ID))

	err := svc.DeleteUser(context.Background(), u.ID.Hex())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
