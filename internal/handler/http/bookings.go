package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/utils"
	"github.com/tripwell/trippy-server/models"
)

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
		return
	}

	var input struct {
		TourID int64 `json:"tour_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid JSON body"))
		return
	}

	booking, err := h.services.BookingService.CreateBooking(r.Context(), principal.UserID, input.TourID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"booking": booking}), http.StatusCreated)
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperr.InvalidIdentifier("invalid booking id: "+chi.URLParam(r, "id")))
		return
	}

	booking, err := h.services.BookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Regular users may only see their own bookings.
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if ok && principal.Role == models.RoleUser && booking.UserID != principal.UserID {
		h.writeError(w, r, apperr.Forbidden("you do not have permission to perform this action"))
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"booking": booking}), http.StatusOK)
}

func (h *Handler) myBookings(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
		return
	}

	bookings, err := h.services.BookingService.ListBookingsForUser(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewListResponse(len(bookings), map[string]any{"bookings": bookings}), http.StatusOK)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.services.BookingService.ListBookings(r.Context(), r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewListResponse(len(bookings), map[string]any{"bookings": bookings}), http.StatusOK)
}

func (h *Handler) deleteBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperr.InvalidIdentifier("invalid booking id: "+chi.URLParam(r, "id")))
		return
	}

	if err := h.services.BookingService.DeleteBooking(r.Context(), bookingID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
