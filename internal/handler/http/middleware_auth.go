package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/utils"
	"github.com/tripwell/trippy-server/models"
)

// sessionCookieName is the cookie carrying the JWT for browser clients.
const sessionCookieName = "jwt"

// maxTokenBodyBytes bounds how much of a request body the credential
// fallback is willing to buffer while looking for a token field.
const maxTokenBodyBytes = 1 << 20

var (
	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header is present but not in the "Bearer <token>" format.
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrEmptyToken is returned when the "Authorization" header contains the
	// Bearer scheme but no token.
	ErrEmptyToken = errors.New("empty token in `Authorization` header")
)

// protect enforces authentication. It extracts the session token from the
// request, resolves it to a live user, and stores that user in the request
// context as the principal. Requests without a valid token are rejected
// with 401 before reaching the handler.
func (h *Handler) protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := extractToken(r)
		if err != nil {
			h.writeError(w, r, apperr.Unauthenticated(err.Error()))
			return
		}
		if tokenString == "" {
			h.writeError(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
			return
		}

		ctx := r.Context()
		user, err := h.services.AuthService.ResolvePrincipal(ctx, tokenString)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		ctx = context.WithValue(ctx, utils.PrincipalCtxKey, user)
		ctx = context.WithValue(ctx, utils.IsLoggedInCtxKey, true)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isLoggedIn is the permissive sibling of protect: it resolves the session
// token when one is present but never rejects the request. Handlers can
// check the context to vary the response for authenticated callers.
func (h *Handler) isLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := extractToken(r)
		if err != nil || tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		user, err := h.services.AuthService.ResolvePrincipal(ctx, tokenString)
		if err != nil {
			logger.FromRequest(r).Debug().Err(err).Msg("optional auth check failed")
			next.ServeHTTP(w, r)
			return
		}

		ctx = context.WithValue(ctx, utils.PrincipalCtxKey, user)
		ctx = context.WithValue(ctx, utils.IsLoggedInCtxKey, true)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// restrictTo gates a route to the given roles. It must run after protect;
// a missing principal means the route chain was miswired, which is a defect
// and renders as a 500, not an auth failure.
func (h *Handler) restrictTo(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := utils.GetPrincipalFromContext(r.Context())
			if !ok {
				h.writeError(w, r, errors.New("role restriction reached without an authenticated principal"))
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			h.writeError(w, r, apperr.Forbidden("you do not have permission to perform this action"))
		})
	}
}

// extractToken pulls the session token from the request, checking the
// "Authorization" header, then the session cookie, then a "token" field in
// a JSON body. An empty string with a nil error means no credential was
// offered at all.
//
// The body fallback buffers and restores r.Body so downstream decoding
// still sees the full payload.
func extractToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return getTokenFromAuthHeader(authHeader)
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return getTokenFromBody(r)
}

// getTokenFromAuthHeader extracts the bearer token from a raw
// "Authorization" header value in the standard "Bearer <token>" format.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidAuthorizationHeader
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func getTokenFromBody(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return "", nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyBytes))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return "", nil
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil
	}

	return payload.Token, nil
}
