package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/query"
	"github.com/tripwell/trippy-server/models"
)

// bookingListColumns is the whitelist of columns list requests may filter,
// sort, or project on.
var bookingListColumns = []string{"booking_id", "tour_id", "user_id", "price", "paid", "created_at"}

// bookingRepository is the PostgreSQL-backed implementation of
// [BookingRepository].
type bookingRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewBookingRepository constructs a [BookingRepository] backed by the
// provided database connection and logger.
func NewBookingRepository(db *DB, logger *logger.Logger) BookingRepository {
	logger.Debug().Msg("creating booking repository")
	return &bookingRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBooking persists a booking and returns it with server-assigned
// fields populated. Foreign-key violations keep the driver cause wrapped so
// the error normalizer can classify them.
func (r *bookingRepository) CreateBooking(ctx context.Context, booking models.Booking) (models.Booking, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createBooking, booking.TourID, booking.UserID, booking.Price, booking.Paid)

	if err := row.Scan(&booking.BookingID, &booking.CreatedAt); err != nil {
		log.Err(err).Str("func", "*bookingRepository.CreateBooking").Msg("error: creating booking")
		return models.Booking{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return booking, nil
}

// GetBooking retrieves a booking by primary key.
func (r *bookingRepository) GetBooking(ctx context.Context, bookingID int64) (models.Booking, error) {
	log := logger.FromContext(ctx)

	var booking models.Booking
	row := r.db.QueryRowContext(ctx, getBooking, bookingID)

	if err := row.Scan(&booking.BookingID, &booking.TourID, &booking.UserID, &booking.Price, &booking.Paid, &booking.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, fmt.Errorf("%w: %w", ErrBookingNotFound, err)
		}
		log.Err(err).Str("func", "*bookingRepository.GetBooking").Msg("error: scanning booking")
		return models.Booking{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return booking, nil
}

// SelectBookingsByUser lists a user's bookings, most recent first.
func (r *bookingRepository) SelectBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, selectBookingsByUser, userID)
	if err != nil {
		log.Err(err).Str("func", "*bookingRepository.SelectBookingsByUser").Msg("error: executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// SelectBookings lists bookings according to the raw list parameters,
// translating them into SQL via [query.Features].
func (r *bookingRepository) SelectBookings(ctx context.Context, params url.Values) ([]models.Booking, error) {
	log := logger.FromContext(ctx)

	features := query.NewFeatures(models.Booking{}.TableName(), bookingListColumns, params).
		Filter().
		Sort().
		Project().
		Paginate()

	sqlQuery, args, err := features.Builder().ToSql()
	if err != nil {
		log.Err(err).Str("func", "*bookingRepository.SelectBookings").Msg("error: building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		log.Err(err).Str("func", "*bookingRepository.SelectBookings").Msg("error: executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	selected := features.SelectedColumns()
	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var booking models.Booking
		dest := make([]any, 0, len(selected))
		for _, column := range selected {
			target, ok := bookingColumnDest(&booking, column)
			if !ok {
				return nil, fmt.Errorf("%w: unknown column %q", ErrScanningRows, column)
			}
			dest = append(dest, target)
		}
		if err := rows.Scan(dest...); err != nil {
			log.Err(err).Str("func", "*bookingRepository.SelectBookings").Msg("error: scanning rows")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return bookings, nil
}

// bookingColumnDest maps a projected column name to its scan destination.
func bookingColumnDest(booking *models.Booking, column string) (any, bool) {
	switch column {
	case "booking_id":
		return &booking.BookingID, true
	case "tour_id":
		return &booking.TourID, true
	case "user_id":
		return &booking.UserID, true
	case "price":
		return &booking.Price, true
	case "paid":
		return &booking.Paid, true
	case "created_at":
		return &booking.CreatedAt, true
	}
	return nil, false
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var booking models.Booking
		if err := rows.Scan(&booking.BookingID, &booking.TourID, &booking.UserID, &booking.Price, &booking.Paid, &booking.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return bookings, nil
}

// DeleteBooking removes a booking.
func (r *bookingRepository) DeleteBooking(ctx context.Context, bookingID int64) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteBooking, bookingID)
	if err != nil {
		log.Err(err).Str("func", "*bookingRepository.DeleteBooking").Msg("error: deleting booking")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}

	return nil
}
