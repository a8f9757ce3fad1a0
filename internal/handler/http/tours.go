package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/store"
	"github.com/tripwell/trippy-server/internal/utils"
	"github.com/tripwell/trippy-server/models"
)

func (h *Handler) listTours(w http.ResponseWriter, r *http.Request) {
	tours, err := h.services.TourService.ListTours(r.Context(), r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewListResponse(len(tours), map[string]any{"tours": tours}), http.StatusOK)
}

// aliasTopTours presets the query string for the "top 5 cheap" shortcut
// before handing off to the regular list handler: the five best-rated
// tours, cheapest first among ties.
func (h *Handler) aliasTopTours(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		q.Set("limit", "5")
		q.Set("sort", "-ratings_average,price")
		q.Set("fields", "name,price,ratings_average,summary,difficulty")
		r.URL.RawQuery = q.Encode()

		next(w, r)
	}
}

func (h *Handler) getTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperr.InvalidIdentifier("invalid tour id: "+chi.URLParam(r, "id")))
		return
	}

	tour, err := h.services.TourService.GetTour(r.Context(), tourID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"tour": tour}), http.StatusOK)
}

// getTourBySlug resolves a tour by the URL slug derived from its name.
func (h *Handler) getTourBySlug(w http.ResponseWriter, r *http.Request) {
	tour, err := h.services.TourService.GetTourBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"tour": tour}), http.StatusOK)
}

func (h *Handler) createTour(w http.ResponseWriter, r *http.Request) {
	var tour models.Tour
	if err := json.NewDecoder(r.Body).Decode(&tour); err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid JSON body"))
		return
	}

	created, err := h.services.TourService.CreateTour(r.Context(), tour)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"tour": created}), http.StatusCreated)
}

func (h *Handler) updateTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperr.InvalidIdentifier("invalid tour id: "+chi.URLParam(r, "id")))
		return
	}

	var update store.TourUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid JSON body"))
		return
	}
	update.TourID = tourID

	tour, err := h.services.TourService.UpdateTour(r.Context(), update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"tour": tour}), http.StatusOK)
}

func (h *Handler) deleteTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperr.InvalidIdentifier("invalid tour id: "+chi.URLParam(r, "id")))
		return
	}

	if err := h.services.TourService.DeleteTour(r.Context(), tourID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) tourStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.TourService.TourStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"stats": stats}), http.StatusOK)
}

func (h *Handler) monthlyPlan(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.writeError(w, r, apperr.InvalidIdentifier("invalid year: "+chi.URLParam(r, "year")))
		return
	}

	plan, err := h.services.TourService.MonthlyPlan(r.Context(), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewListResponse(len(plan), map[string]any{"plan": plan}), http.StatusOK)
}

// toursWithin finds tours starting within a distance of a center point.
// The center arrives as a "lat,lng" path segment; both halves must be
// present and numeric.
func (h *Handler) toursWithin(w http.ResponseWriter, r *http.Request) {
	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid distance: "+chi.URLParam(r, "distance")))
		return
	}

	lat, lng, err := parseLatLng(chi.URLParam(r, "latlng"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	unit := chi.URLParam(r, "unit")

	tours, err := h.services.TourService.ToursWithin(r.Context(), lat, lng, distance, unit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewListResponse(len(tours), map[string]any{"tours": tours}), http.StatusOK)
}

// toggleLike flips the caller's like on a tour: a first call records the
// like and returns it with 201, a second call removes it and returns 204.
func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
		return
	}

	tourID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperr.InvalidIdentifier("invalid tour id: "+chi.URLParam(r, "id")))
		return
	}

	like, created, err := h.services.TourService.ToggleLike(r.Context(), tourID, principal.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !created {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"like": like}), http.StatusCreated)
}

// likedTours lists the ids of the tours the caller has liked. The data
// payload collapses away when the caller has liked nothing.
func (h *Handler) likedTours(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
		return
	}

	ids, err := h.services.TourService.LikedTourIDs(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if len(ids) == 0 {
		writeJSON(w, r, models.NewListResponse(0, nil), http.StatusOK)
		return
	}

	writeJSON(w, r, models.NewListResponse(len(ids), map[string]any{"tour_ids": ids}), http.StatusOK)
}

func parseLatLng(latlng string) (lat, lng float64, err error) {
	latPart, lngPart, found := strings.Cut(latlng, ",")
	if !found {
		return 0, 0, apperr.New(http.StatusBadRequest,
			"please provide latitude and longitude in the format lat,lng")
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latPart), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(lngPart), 64)
	if latErr != nil || lngErr != nil {
		return 0, 0, apperr.New(http.StatusBadRequest,
			"please provide latitude and longitude in the format lat,lng")
	}

	return lat, lng, nil
}
