package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"lendit/internal/database"
	"lendit/internal/events"
	"lendit/internal/models"
	"lendit/internal/repository"
	"lendit/internal/service"
	"lendit/internal/worker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	srv *httptest.Server
	db  *database.DB
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache := repository.NewMemoryBookingCache(time.Minute)
	bus := events.NewEventBus()
	reports := worker.NewReportWorker(db, t.TempDir(), 4, worker.DefaultRetryPolicy(), &logger)

	bookings := service.NewBookingService(db, db, db, cache, bus, nil, &logger)
	items := service.NewItemService(db, db, db, db, bus, nil, &logger)
	users := service.NewUserService(db, &logger)

	handlers := NewHandlers(bookings, items, users, reports, &logger)
	mux := http.NewServeMux()
	handlers.Register(mux)

	srv := httptest.NewServer(requestIDMiddleware(mux))
	t.Cleanup(srv.Close)
	return &apiFixture{srv: srv, db: db}
}

func (f *apiFixture) do(t *testing.T, method, path string, sharer int64, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.srv.URL+path, reader)
	require.NoError(t, err)
	if sharer > 0 {
		req.Header.Set("X-Sharer-User-Id", strconv.FormatInt(sharer, 10))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (f *apiFixture) createUser(t *testing.T, name, email string) models.User {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/users", 0, map[string]string{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var user models.User
	decode(t, resp, &user)
	return user
}

func (f *apiFixture) createItem(t *testing.T, ownerID int64, name string) models.Item {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/items", ownerID, map[string]interface{}{
		"name": name, "description": name + " for rent", "available": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item models.Item
	decode(t, resp, &item)
	return item
}

func TestUserEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	user := f.createUser(t, "Ann", "ann@example.com")
	require.NotZero(t, user.ID)

	resp := f.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "Fake Ann", "email": "ann@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "Bad", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, fmt.Sprintf("/users/%d", user.ID), 0, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", user.ID), 0, map[string]string{"name": "Annie"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.User
	decode(t, resp, &updated)
	assert.Equal(t, "Annie", updated.Name)

	resp = f.do(t, http.MethodGet, "/users/404", 0, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", user.ID), 0, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBookingLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	owner := f.createUser(t, "Owner", "owner@example.com")
	booker := f.createUser(t, "Booker", "booker@example.com")
	stranger := f.createUser(t, "Stranger", "stranger@example.com")
	item := f.createItem(t, owner.ID, "drill")

	start := time.Now().UTC().Add(time.Hour)
	end := start.Add(time.Hour)

	resp := f.do(t, http.MethodPost, "/bookings", booker.ID, map[string]interface{}{
		"item_id": item.ID, "start": start, "end": end,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var booking models.Booking
	decode(t, resp, &booking)
	assert.Equal(t, models.StatusWaiting, booking.Status)

	// Same window again conflicts.
	resp = f.do(t, http.MethodPost, "/bookings", stranger.ID, map[string]interface{}{
		"item_id": item.ID, "start": start, "end": end,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The owner cannot book their own item.
	resp = f.do(t, http.MethodPost, "/bookings", owner.ID, map[string]interface{}{
		"item_id": item.ID, "start": start.Add(3 * time.Hour), "end": end.Add(3 * time.Hour),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	bookingPath := fmt.Sprintf("/bookings/%d", booking.ID)

	resp = f.do(t, http.MethodGet, bookingPath, booker.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodGet, bookingPath, owner.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodGet, bookingPath, stranger.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Only the owner may decide.
	resp = f.do(t, http.MethodPatch, bookingPath+"?approved=true", booker.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPatch, bookingPath+"?approved=true", owner.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &booking)
	assert.Equal(t, models.StatusApproved, booking.Status)

	// Approving a second time is refused; rejecting still works.
	resp = f.do(t, http.MethodPatch, bookingPath+"?approved=true", owner.ID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPatch, bookingPath+"?approved=false", owner.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &booking)
	assert.Equal(t, models.StatusRejected, booking.Status)
}

func TestBookingListEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	owner := f.createUser(t, "Owner", "owner@example.com")
	booker := f.createUser(t, "Booker", "booker@example.com")
	item := f.createItem(t, owner.ID, "drill")

	start := time.Now().UTC().Add(time.Hour)
	resp := f.do(t, http.MethodPost, "/bookings", booker.ID, map[string]interface{}{
		"item_id": item.ID, "start": start, "end": start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/bookings?state=FUTURE", booker.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bookings []models.Booking
	decode(t, resp, &bookings)
	assert.Len(t, bookings, 1)

	resp = f.do(t, http.MethodGet, "/bookings/owner", owner.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &bookings)
	assert.Len(t, bookings, 1)

	resp = f.do(t, http.MethodGet, "/bookings?state=PAST", booker.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &bookings)
	assert.Empty(t, bookings)

	resp = f.do(t, http.MethodGet, "/bookings?state=UNSUPPORTED_STATUS", booker.ID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/bookings?from=-1", booker.ID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/bookings", 0, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItemEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	owner := f.createUser(t, "Owner", "owner@example.com")
	stranger := f.createUser(t, "Stranger", "stranger@example.com")
	item := f.createItem(t, owner.ID, "drill")

	itemPath := fmt.Sprintf("/items/%d", item.ID)

	resp := f.do(t, http.MethodPatch, itemPath, owner.ID, map[string]interface{}{"available": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Item
	decode(t, resp, &updated)
	assert.False(t, updated.Available)

	// Non-owners cannot tell the item exists when patching.
	resp = f.do(t, http.MethodPatch, itemPath, stranger.ID, map[string]interface{}{"available": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, itemPath, stranger.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/items", owner.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var details []models.ItemDetail
	decode(t, resp, &details)
	assert.Len(t, details, 1)

	resp = f.do(t, http.MethodPost, "/items", owner.ID, map[string]interface{}{"name": "", "description": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCommentEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	owner := f.createUser(t, "Owner", "owner@example.com")
	booker := f.createUser(t, "Booker", "booker@example.com")
	item := f.createItem(t, owner.ID, "drill")

	commentPath := fmt.Sprintf("/items/%d/comment", item.ID)

	// Without a finished rental the comment is refused.
	resp := f.do(t, http.MethodPost, commentPath, booker.ID, map[string]string{"text": "nice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Seed a finished booking directly; the admission path refuses
	// intervals in the past.
	now := time.Now().UTC()
	seeded := &models.Booking{
		ItemID:   item.ID,
		BookerID: booker.ID,
		Start:    now.Add(-2 * time.Hour),
		End:      now.Add(-time.Hour),
		Status:   models.StatusApproved,
	}
	require.NoError(t, f.db.CreateBooking(context.Background(), seeded))

	resp = f.do(t, http.MethodPost, commentPath, booker.ID, map[string]string{"text": "worked great"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decode(t, resp, &comment)
	assert.Equal(t, "worked great", comment.Text)
	assert.Equal(t, "Booker", comment.AuthorName)
}

func TestReportAndHealthEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/admin/reports/bookings", 0, nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}
