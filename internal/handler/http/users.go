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

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
		return
	}

	user, err := h.services.UserService.GetUser(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"user": user}), http.StatusOK)
}

// updateMe changes the caller's own name and email. Password fields are
// rejected outright: password changes go through the dedicated
// update-password endpoint so they get the full credential checks.
func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
		return
	}

	var input struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid JSON body"))
		return
	}

	if input.Password != "" || input.PasswordConfirm != "" {
		h.writeError(w, r, apperr.New(http.StatusBadRequest,
			"this route is not for password updates, please use /update-password"))
		return
	}

	user, err := h.services.UserService.UpdateProfile(r.Context(), principal.UserID, input.Name, input.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"user": user}), http.StatusOK)
}

func (h *Handler) deleteMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
		return
	}

	if err := h.services.UserService.DeactivateUser(r.Context(), principal.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.services.UserService.ListUsers(r.Context(), r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewListResponse(len(users), map[string]any{"users": users}), http.StatusOK)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperr.InvalidIdentifier("invalid user id: "+chi.URLParam(r, "id")))
		return
	}

	user, err := h.services.UserService.GetUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.NewSuccessResponse(map[string]any{"user": user}), http.StatusOK)
}
