package service

import (
	"context"
	"testing"
	"time"

	"lendit/internal/database"
	"lendit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type itemFixture struct {
	items    *mockItemRepo
	users    *mockUserRepo
	bookings *mockBookingRepo
	comments *mockCommentRepo
	bus      *mockEventBus
	svc      *ItemService
}

func newItemFixture(t *testing.T) *itemFixture {
	t.Helper()
	f := &itemFixture{
		items:    &mockItemRepo{},
		users:    &mockUserRepo{},
		bookings: &mockBookingRepo{},
		comments: &mockCommentRepo{},
		bus:      &mockEventBus{},
	}
	f.svc = NewItemService(f.items, f.users, f.bookings, f.comments, f.bus, fixedClock{t: anchor}, testLogger())
	return f
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestItemCreate(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.users.On("GetUser", ctx, ownerID).Return(&models.User{ID: ownerID}, nil)
	f.items.On("CreateItem", ctx, mock.AnythingOfType("*models.Item")).Return(nil)

	item := &models.Item{Name: "drill", Description: "cordless", Available: true}
	require.NoError(t, f.svc.Create(ctx, ownerID, item))
	assert.Equal(t, ownerID, item.OwnerID)
}

func TestItemCreateValidation(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.users.On("GetUser", ctx, ownerID).Return(&models.User{ID: ownerID}, nil)

	err := f.svc.Create(ctx, ownerID, &models.Item{Name: "  ", Description: "cordless"})
	assert.ErrorIs(t, err, database.ErrInvalidArgument)

	err = f.svc.Create(ctx, ownerID, &models.Item{Name: "drill", Description: ""})
	assert.ErrorIs(t, err, database.ErrInvalidArgument)
	f.items.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
}

func TestItemCreateUnknownOwner(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.users.On("GetUser", ctx, strangerID).Return(nil, database.ErrNotFound)

	err := f.svc.Create(ctx, strangerID, &models.Item{Name: "drill", Description: "cordless"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestItemUpdate(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.items.On("GetItem", ctx, itemID).Return(availableItem(), nil)
	f.items.On("UpdateItem", ctx, mock.AnythingOfType("*models.Item")).Return(nil)

	patch := models.ItemPatch{Name: strPtr("hammer drill"), Available: boolPtr(false)}
	item, err := f.svc.Update(ctx, ownerID, itemID, patch)
	require.NoError(t, err)
	assert.Equal(t, "hammer drill", item.Name)
	assert.Equal(t, "cordless", item.Description)
	assert.False(t, item.Available)
}

func TestItemUpdateNotOwner(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.items.On("GetItem", ctx, itemID).Return(availableItem(), nil)

	_, err := f.svc.Update(ctx, strangerID, itemID, models.ItemPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, database.ErrNotFound)
	f.items.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
}

func TestItemUpdateBlankPatch(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.items.On("GetItem", ctx, itemID).Return(availableItem(), nil)

	_, err := f.svc.Update(ctx, ownerID, itemID, models.ItemPatch{Name: strPtr(" ")})
	assert.ErrorIs(t, err, database.ErrInvalidArgument)
}

func TestItemGetForOwner(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	last := &models.Booking{ID: 1, ItemID: itemID, End: anchor.Add(-time.Hour)}
	next := &models.Booking{ID: 2, ItemID: itemID, Start: anchor.Add(time.Hour)}
	f.items.On("GetItem", ctx, itemID).Return(availableItem(), nil)
	f.comments.On("ListCommentsByItem", ctx, itemID).Return([]models.Comment{{ID: 5, Text: "solid"}}, nil)
	f.bookings.On("LastBookingForItem", ctx, itemID, anchor).Return(last, nil)
	f.bookings.On("NextBookingForItem", ctx, itemID, anchor).Return(next, nil)

	detail, err := f.svc.Get(ctx, ownerID, itemID)
	require.NoError(t, err)
	require.NotNil(t, detail.LastBooking)
	require.NotNil(t, detail.NextBooking)
	assert.Equal(t, int64(1), detail.LastBooking.ID)
	assert.Equal(t, int64(2), detail.NextBooking.ID)
	assert.Len(t, detail.Comments, 1)
}

func TestItemGetForStranger(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.items.On("GetItem", ctx, itemID).Return(availableItem(), nil)
	f.comments.On("ListCommentsByItem", ctx, itemID).Return(nil, nil)

	detail, err := f.svc.Get(ctx, strangerID, itemID)
	require.NoError(t, err)
	assert.Nil(t, detail.LastBooking)
	assert.Nil(t, detail.NextBooking)
	assert.NotNil(t, detail.Comments)
	f.bookings.AssertNotCalled(t, "LastBookingForItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestItemListByOwner(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	items := []models.Item{
		{ID: 10, OwnerID: ownerID, Name: "drill"},
		{ID: 11, OwnerID: ownerID, Name: "ladder"},
	}
	f.users.On("GetUser", ctx, ownerID).Return(&models.User{ID: ownerID}, nil)
	f.items.On("ListItemsByOwner", ctx, ownerID).Return(items, nil)
	f.comments.On("ListCommentsByItem", ctx, mock.AnythingOfType("int64")).Return([]models.Comment{}, nil)
	f.bookings.On("LastBookingForItem", ctx, mock.AnythingOfType("int64"), anchor).Return(nil, nil)
	f.bookings.On("NextBookingForItem", ctx, mock.AnythingOfType("int64"), anchor).Return(nil, nil)

	details, err := f.svc.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "drill", details[0].Name)
}

func TestAddComment(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.users.On("GetUser", ctx, bookerID).Return(&models.User{ID: bookerID, Name: "Bo"}, nil)
	f.items.On("GetItem", ctx, itemID).Return(availableItem(), nil)
	f.bookings.On("HasFinishedBooking", ctx, bookerID, itemID, anchor).Return(true, nil)
	f.comments.On("CreateComment", ctx, mock.AnythingOfType("*models.Comment")).Return(nil)
	f.bus.On("PublishJSON", "comment_added", mock.Anything).Return(nil)

	comment, err := f.svc.AddComment(ctx, bookerID, itemID, "works great")
	require.NoError(t, err)
	assert.Equal(t, "Bo", comment.AuthorName)
	assert.Equal(t, "works great", comment.Text)
}

func TestAddCommentWithoutFinishedBooking(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.users.On("GetUser", ctx, strangerID).Return(&models.User{ID: strangerID}, nil)
	f.items.On("GetItem", ctx, itemID).Return(availableItem(), nil)
	f.bookings.On("HasFinishedBooking", ctx, strangerID, itemID, anchor).Return(false, nil)

	_, err := f.svc.AddComment(ctx, strangerID, itemID, "never tried it")
	assert.ErrorIs(t, err, database.ErrInvalidArgument)
	f.comments.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything)
}

func TestAddCommentBlankText(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	f.users.On("GetUser", ctx, bookerID).Return(&models.User{ID: bookerID}, nil)
	f.items.On("GetItem", ctx, itemID).Return(availableItem(), nil)

	_, err := f.svc.AddComment(ctx, bookerID, itemID, "   ")
	assert.ErrorIs(t, err, database.ErrInvalidArgument)
}
