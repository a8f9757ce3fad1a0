package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/store"
	"github.com/tripwell/trippy-server/models"
)

// bookingService is the concrete implementation of BookingService.
type bookingService struct {
	bookingRepository store.BookingRepository
	tourRepository    store.TourRepository
	logger            *logger.Logger
}

// NewBookingService constructs a BookingService wired to the given
// repositories. The tour repository is needed to price bookings and to
// verify the tour exists.
func NewBookingService(bookingRepository store.BookingRepository, tourRepository store.TourRepository, logger *logger.Logger) BookingService {
	return &bookingService{
		bookingRepository: bookingRepository,
		tourRepository:    tourRepository,
		logger:            logger,
	}
}

// CreateBooking books the given tour for the user at the tour's current
// price. The booking starts unpaid; payment settlement happens through an
// external provider and is recorded separately.
func (s *bookingService) CreateBooking(ctx context.Context, userID, tourID int64) (models.Booking, error) {
	log := logger.FromContext(ctx)

	tour, err := s.tourRepository.GetTour(ctx, tourID)
	if err != nil {
		if errors.Is(err, store.ErrTourNotFound) {
			return models.Booking{}, apperr.NotFound("no tour found with that ID")
		}
		return models.Booking{}, fmt.Errorf("tour lookup failed: %w", err)
	}

	booking, err := s.bookingRepository.CreateBooking(ctx, models.Booking{
		TourID: tourID,
		UserID: userID,
		Price:  tour.Price,
	})
	if err != nil {
		log.Err(err).Int64("tour_id", tourID).Int64("user_id", userID).Msg("booking creation failed")
		return models.Booking{}, fmt.Errorf("booking creation failed: %w", err)
	}

	return booking, nil
}

// GetBooking retrieves a booking by id.
func (s *bookingService) GetBooking(ctx context.Context, bookingID int64) (models.Booking, error) {
	booking, err := s.bookingRepository.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrBookingNotFound) {
			return models.Booking{}, apperr.NotFound("no booking found with that ID")
		}
		return models.Booking{}, fmt.Errorf("booking lookup failed: %w", err)
	}

	return booking, nil
}

// ListBookingsForUser lists the user's bookings, most recent first.
func (s *bookingService) ListBookingsForUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	bookings, err := s.bookingRepository.SelectBookingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("booking list failed: %w", err)
	}

	return bookings, nil
}

// ListBookings lists bookings according to the raw list parameters.
func (s *bookingService) ListBookings(ctx context.Context, params url.Values) ([]models.Booking, error) {
	bookings, err := s.bookingRepository.SelectBookings(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("booking list failed: %w", err)
	}

	return bookings, nil
}

// DeleteBooking removes a booking.
func (s *bookingService) DeleteBooking(ctx context.Context, bookingID int64) error {
	if err := s.bookingRepository.DeleteBooking(ctx, bookingID); err != nil {
		if errors.Is(err, store.ErrBookingNotFound) {
			return apperr.NotFound("no booking found with that ID")
		}
		return fmt.Errorf("booking deletion failed: %w", err)
	}

	return nil
}
