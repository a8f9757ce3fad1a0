package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/models"
)

// Init assembles the router: the shared middleware chain, the /api/v1
// resource routes, and normalized handlers for unknown paths and methods.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()

	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withRecover)
	router.Use(h.withRateLimit)
	router.Use(withGZip)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/version", h.getServerVersion)
		r.Get("/tourFromSlug/{slug}", h.getTourBySlug)

		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", h.signup)
			r.Post("/login", h.login)
			r.Get("/logout", h.logout)
			r.Post("/forgot-password", h.forgotPassword)
			r.Patch("/reset-password/{token}", h.resetPassword)

			r.Group(func(r chi.Router) {
				r.Use(h.protect)

				r.Patch("/update-password", h.updateMyPassword)
				r.Get("/me", h.getMe)
				r.Patch("/me", h.updateMe)
				r.Delete("/me", h.deleteMe)
				r.Get("/my-bookings", h.myBookings)

				r.Group(func(r chi.Router) {
					r.Use(h.restrictTo(models.RoleAdmin))

					r.Get("/", h.listUsers)
					r.Get("/{id}", h.getUser)
				})
			})
		})

		r.Route("/tours", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(h.isLoggedIn)

				r.Get("/", h.listTours)
				r.Get("/top-5-cheap", h.aliasTopTours(h.listTours))
				r.Get("/tour-stats", h.tourStats)
				r.Get("/tours-within/{distance}/center/{latlng}/unit/{unit}", h.toursWithin)
				r.Get("/{id}", h.getTour)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.protect)

				r.Post("/liked-tours", h.likedTours)
				r.Post("/{id}/toggle-like", h.toggleLike)

				r.With(h.restrictTo(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide)).
					Get("/monthly-plan/{year}", h.monthlyPlan)

				r.Group(func(r chi.Router) {
					r.Use(h.restrictTo(models.RoleAdmin, models.RoleLeadGuide))

					r.Post("/", h.createTour)
					r.Patch("/{id}", h.updateTour)
					r.Delete("/{id}", h.deleteTour)
				})
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(h.protect)

			r.Post("/", h.createBooking)
			r.Get("/{id}", h.getBooking)

			r.Group(func(r chi.Router) {
				r.Use(h.restrictTo(models.RoleAdmin, models.RoleLeadGuide))

				r.Get("/", h.listBookings)
				r.Delete("/{id}", h.deleteBooking)
			})
		})
	})

	router.NotFound(h.routeNotFound)
	router.MethodNotAllowed(h.methodNotAllowed)

	return router
}

// routeNotFound renders unknown paths through the same error pipeline as
// everything else instead of the chi plain-text default.
func (h *Handler) routeNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, apperr.NotFound("can't find "+r.URL.Path+" on this server"))
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, apperr.New(http.StatusMethodNotAllowed,
		r.Method+" is not allowed on "+r.URL.Path))
}

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(h.version)) //nolint:errcheck
}
