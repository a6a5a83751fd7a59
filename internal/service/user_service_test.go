package service

import (
	"context"
	"testing"

	"lendit/internal/database"
	"lendit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(repo *mockUserRepo) *UserService {
	return NewUserService(repo, testLogger())
}

func TestUserCreate(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	svc := newUserService(repo)

	err := svc.Create(context.Background(), &models.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUserCreateValidation(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserService(repo)
	ctx := context.Background()

	tests := []struct {
		name string
		user models.User
	}{
		{"blank name", models.User{Name: " ", Email: "a@b.com"}},
		{"blank email", models.User{Name: "Ann", Email: ""}},
		{"email without at sign", models.User{Name: "Ann", Email: "ann.example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(ctx, &tt.user)
			assert.ErrorIs(t, err, database.ErrInvalidArgument)
		})
	}
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("CreateUser", mock.Anything, mock.Anything).Return(database.ErrConflict)
	svc := newUserService(repo)

	err := svc.Create(context.Background(), &models.User{Name: "Ann", Email: "ann@example.com"})
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestUserUpdate(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("GetUser", mock.Anything, int64(1)).Return(&models.User{ID: 1, Name: "Ann", Email: "ann@example.com"}, nil)
	repo.On("UpdateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	svc := newUserService(repo)

	user, err := svc.Update(context.Background(), 1, models.UserPatch{Email: strPtr("annie@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "annie@example.com", user.Email)
}

func TestUserUpdateRejectsMalformedEmail(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("GetUser", mock.Anything, int64(1)).Return(&models.User{ID: 1, Name: "Ann", Email: "ann@example.com"}, nil)
	svc := newUserService(repo)

	_, err := svc.Update(context.Background(), 1, models.UserPatch{Email: strPtr("nope")})
	assert.ErrorIs(t, err, database.ErrInvalidArgument)
	repo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestUserGetMissing(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("GetUser", mock.Anything, int64(404)).Return(nil, database.ErrNotFound)
	svc := newUserService(repo)

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUserList(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("ListUsers", mock.Anything).Return([]models.User{{ID: 1}, {ID: 2}}, nil)
	svc := newUserService(repo)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
