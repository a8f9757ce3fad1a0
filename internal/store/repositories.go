package store

import "github.com/tripwell/trippy-server/internal/logger"

// Repositories bundles the persistence capabilities handed to the service
// layer.
type Repositories struct {
	UserRepository     UserRepository
	TourRepository     TourRepository
	TourLikeRepository TourLikeRepository
	BookingRepository  BookingRepository
}

// NewRepositories constructs every repository over the shared database
// connection.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository:     NewUserRepository(db, log),
		TourRepository:     NewTourRepository(db, log),
		TourLikeRepository: NewTourLikeRepository(db, log),
		BookingRepository:  NewBookingRepository(db, log),
	}
}
