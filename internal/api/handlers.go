package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"lendit/internal/database"
	"lendit/internal/domain"
	"lendit/internal/models"
	"lendit/internal/worker"

	"github.com/rs/zerolog"
)

const sharerHeader = "X-Sharer-User-Id"

const (
	defaultPageFrom = 0
	defaultPageSize = 10
)

type Handlers struct {
	bookings domain.BookingService
	items    domain.ItemService
	users    domain.UserService
	reports  domain.ReportWorker
	logger   *zerolog.Logger
}

func NewHandlers(
	bookings domain.BookingService,
	items domain.ItemService,
	users domain.UserService,
	reports domain.ReportWorker,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		bookings: bookings,
		items:    items,
		users:    users,
		reports:  reports,
		logger:   logger,
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /bookings", h.createBooking)
	mux.HandleFunc("GET /bookings", h.listBookerBookings)
	mux.HandleFunc("GET /bookings/owner", h.listOwnerBookings)
	mux.HandleFunc("GET /bookings/{id}", h.getBooking)
	mux.HandleFunc("PATCH /bookings/{id}", h.updateBooking)

	mux.HandleFunc("POST /items", h.createItem)
	mux.HandleFunc("GET /items", h.listItems)
	mux.HandleFunc("GET /items/{id}", h.getItem)
	mux.HandleFunc("PATCH /items/{id}", h.updateItem)
	mux.HandleFunc("POST /items/{id}/comment", h.addComment)

	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("GET /users", h.listUsers)
	mux.HandleFunc("GET /users/{id}", h.getUser)
	mux.HandleFunc("PATCH /users/{id}", h.updateUser)
	mux.HandleFunc("DELETE /users/{id}", h.deleteUser)

	mux.HandleFunc("POST /admin/reports/bookings", h.enqueueBookingsReport)
	mux.HandleFunc("GET /healthz", h.health)
}

type createBookingRequest struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sharer(w, r)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.bookings.Create(r.Context(), userID, req.ItemID, req.Start, req.End)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sharer(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	booking, err := h.bookings.UpdateStatus(r.Context(), userID, bookingID, approved)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sharer(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := h.bookings.GetByParticipant(r.Context(), userID, bookingID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handlers) listBookerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, h.bookings.ListForBooker)
}

func (h *Handlers) listOwnerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, h.bookings.ListForOwner)
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, userID int64, state string, from, size int) ([]models.Booking, error),
) {
	userID, ok := h.sharer(w, r)
	if !ok {
		return
	}

	state := r.URL.Query().Get("state")
	from, size, ok := pageParams(w, r)
	if !ok {
		return
	}

	bookings, err := list(r.Context(), userID, state, from, size)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *Handlers) createItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sharer(w, r)
	if !ok {
		return
	}

	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.items.Create(r.Context(), userID, &item); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handlers) updateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sharer(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch models.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.items.Update(r.Context(), userID, itemID, patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handlers) getItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sharer(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}

	detail, err := h.items.Get(r.Context(), userID, itemID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handlers) listItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sharer(w, r)
	if !ok {
		return
	}

	details, err := h.items.ListByOwner(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if details == nil {
		details = []models.ItemDetail{}
	}
	writeJSON(w, http.StatusOK, details)
}

type addCommentRequest struct {
	Text string `json:"text"`
}

func (h *Handlers) addComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sharer(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.items.AddComment(r.Context(), userID, itemID, req.Text)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.users.Create(r.Context(), &user); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch models.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Update(r.Context(), userID, patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handlers) enqueueBookingsReport(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.EnqueueBookingsReport(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) sharer(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(sharerHeader)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing "+sharerHeader+" header")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+sharerHeader+" header")
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id in path")
		return 0, false
	}
	return id, true
}

// pageParams reads from/size; absent values fall back to defaults and
// range validation is left to the service.
func pageParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	from := defaultPageFrom
	size := defaultPageSize
	var err error

	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "from must be an integer")
			return 0, 0, false
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "size must be an integer")
			return 0, 0, false
		}
	}
	return from, size, true
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrNotAvailable),
		errors.Is(err, database.ErrInvalidInterval),
		errors.Is(err, database.ErrInvalidPagination),
		errors.Is(err, database.ErrUnknownState),
		errors.Is(err, database.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, worker.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
