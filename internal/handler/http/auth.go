package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/service"
	"github.com/tripwell/trippy-server/internal/utils"
	"github.com/tripwell/trippy-server/models"
)

// createSendToken issues a fresh session token for the user and delivers it
// both ways at once: as the "jwt" cookie for browser clients and inside the
// JSON envelope for API clients. The user payload rides along; its password
// material never serializes.
func (h *Handler) createSendToken(w http.ResponseWriter, r *http.Request, user models.User, statusCode int) {
	token, err := h.services.AuthService.CreateToken(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token.String(),
		Path:     "/",
		Expires:  time.Now().Add(h.cookieTTL),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteNoneMode,
	})

	writeJSON(w, r, models.SuccessResponse{
		Status:     "success",
		Token:      token.String(),
		IsLoggedIn: true,
		Data:       map[string]any{"user": user},
	}, statusCode)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var input service.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid JSON body"))
		return
	}

	user, err := h.services.AuthService.Signup(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.createSendToken(w, r, user, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid JSON body"))
		return
	}

	user, err := h.services.AuthService.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.createSendToken(w, r, user, http.StatusOK)
}

// logout overwrites the session cookie with a short-lived dummy value so
// browser clients drop their credential without needing cookie deletion.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "loggedOut",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	writeJSON(w, r, models.SuccessResponse{Status: "success"}, http.StatusOK)
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid JSON body"))
		return
	}

	if err := h.services.AuthService.ForgotPassword(r.Context(), input.Email); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, models.SuccessResponse{
		Status:  "success",
		Message: "token sent to email",
	}, http.StatusOK)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	rawToken := chi.URLParam(r, "token")

	var input struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid JSON body"))
		return
	}

	user, err := h.services.AuthService.ResetPassword(r.Context(), rawToken, input.Password, input.PasswordConfirm)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.createSendToken(w, r, user, http.StatusOK)
}

func (h *Handler) updateMyPassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
		return
	}

	var input struct {
		PasswordCurrent string `json:"password_current"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, apperr.New(http.StatusBadRequest, "invalid JSON body"))
		return
	}

	user, err := h.services.AuthService.UpdatePassword(r.Context(), principal.UserID,
		input.PasswordCurrent, input.Password, input.PasswordConfirm)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.createSendToken(w, r, user, http.StatusOK)
}
