// Package http carries the REST surface of the trippy server: the chi
// router, the authentication middleware chain, the resource handlers for
// tours, users and bookings, and the centralized error rendering.
package http

import (
	"time"

	"github.com/tripwell/trippy-server/internal/config"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/service"
)

// Handler bundles the services and the request-scoped settings every
// endpoint needs. All route handlers and middleware hang off it.
type Handler struct {
	services *service.Services
	logger   *logger.Logger

	// production switches error rendering from full detail to the
	// operational-only view and marks session cookies Secure.
	production bool

	cookieTTL      time.Duration
	requestTimeout time.Duration
	rateLimitRPS   float64
	rateLimitBurst int
	version        string
}

// NewHandler creates a Handler wired to the given services and config.
func NewHandler(services *service.Services, cfg config.StructuredConfig, log *logger.Logger) *Handler {
	return &Handler{
		services:       services,
		logger:         log,
		production:     cfg.App.IsProduction(),
		cookieTTL:      time.Duration(cfg.App.CookieTTLDays) * 24 * time.Hour,
		requestTimeout: cfg.Server.RequestTimeout,
		rateLimitRPS:   cfg.Server.RateLimitRPS,
		rateLimitBurst: cfg.Server.RateLimitBurst,
		version:        cfg.App.Version,
	}
}
