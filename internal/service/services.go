package service

import (
	"github.com/tripwell/trippy-server/internal/config"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/store"
)

// Services bundles the application services handed to the transport layer.
type Services struct {
	AuthService    AuthService
	UserService    UserService
	TourService    TourService
	BookingService BookingService
}

// NewServices constructs every service over the shared repositories.
func NewServices(repos *store.Repositories, mailer Mailer, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	return &Services{
		AuthService:    NewAuthService(repos.UserRepository, mailer, cfg.App, logger),
		UserService:    NewUserService(repos.UserRepository, logger),
		TourService:    NewTourService(repos.TourRepository, repos.TourLikeRepository, logger),
		BookingService: NewBookingService(repos.BookingRepository, repos.TourRepository, logger),
	}
}
