package database

import (
	"context"
	"testing"

	"lendit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "Ann", "ann@example.com")
	require.NotZero(t, user.ID)

	got, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "ann@example.com", got.Email)

	got.Name = "Annie"
	require.NoError(t, db.UpdateUser(ctx, got))

	got, err = db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Annie", got.Name)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, db.DeleteUser(ctx, user.ID))
	_, err = db.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedUser(t, db, "Ann", "ann@example.com")

	err := db.CreateUser(ctx, &models.User{Name: "Other Ann", Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserUpdateToTakenEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedUser(t, db, "Ann", "ann@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")

	bob.Email = "ann@example.com"
	err := db.UpdateUser(ctx, bob)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserMissing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetUser(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.DeleteUser(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.UpdateUser(ctx, &models.User{ID: 404, Name: "Ghost", Email: "ghost@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}
