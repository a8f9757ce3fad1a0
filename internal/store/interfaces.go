package store

import (
	"context"
	"net/url"
	"time"

	"github.com/tripwell/trippy-server/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_store.go -package=mock

// UserRepository is the persistence capability the auth pipeline consumes:
// principal lookup by id, email, or reset digest, plus credential updates.
type UserRepository interface {
	// CreateUser persists a new account and returns it with server-assigned
	// fields populated.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByID resolves an active principal by primary key.
	FindUserByID(ctx context.Context, userID int64) (models.User, error)

	// FindUserByEmail resolves an active principal by its login identifier.
	FindUserByEmail(ctx context.Context, email string) (models.User, error)

	// FindUserByResetDigest resolves the principal whose stored password-reset
	// digest matches and whose reset window has not expired.
	FindUserByResetDigest(ctx context.Context, digest string) (models.User, error)

	// SaveResetToken stores the reset digest and its expiry on the account.
	SaveResetToken(ctx context.Context, userID int64, digest string, expiresAt time.Time) error

	// ClearResetToken removes any pending reset digest from the account.
	ClearResetToken(ctx context.Context, userID int64) error

	// UpdatePassword stores a new password hash, stamps password_changed_at,
	// and clears any pending reset digest in the same statement.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error

	// UpdateProfile updates the mutable non-credential fields (name, email).
	UpdateProfile(ctx context.Context, user models.User) (models.User, error)

	// DeactivateUser soft-deletes the account.
	DeactivateUser(ctx context.Context, userID int64) error

	// DeleteExpiredResetTokens clears reset digests whose window has passed.
	// Returns the number of cleaned accounts. Used by the janitor.
	DeleteExpiredResetTokens(ctx context.Context) (int64, error)

	// SelectUsers lists accounts according to raw list parameters.
	SelectUsers(ctx context.Context, params url.Values) ([]models.User, error)
}

// TourRepository covers tour CRUD, list translation, and the reporting
// aggregates.
type TourRepository interface {
	SelectTours(ctx context.Context, params url.Values) ([]models.Tour, error)
	GetTour(ctx context.Context, tourID int64) (models.Tour, error)

	// GetTourBySlug resolves a tour by its URL slug.
	GetTourBySlug(ctx context.Context, slug string) (models.Tour, error)

	CreateTour(ctx context.Context, tour models.Tour) (models.Tour, error)
	UpdateTour(ctx context.Context, tour TourUpdate) (models.Tour, error)
	DeleteTour(ctx context.Context, tourID int64) error

	// TourStats aggregates tours per difficulty.
	TourStats(ctx context.Context) ([]models.TourStats, error)

	// MonthlyPlan reports tour starts per month of the given year, busiest
	// month first.
	MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlanEntry, error)

	// ToursWithin returns tours whose start location lies within radius
	// (expressed in radians of great-circle distance) of the given point.
	ToursWithin(ctx context.Context, lat, lng, radius float64) ([]models.Tour, error)
}

// TourUpdate carries the partially-set fields of a tour update. Nil fields
// are left untouched by the generated UPDATE statement. Slug is never taken
// from the request body; the service derives it whenever Name changes.
type TourUpdate struct {
	TourID       int64    `json:"-"`
	Name         *string  `json:"name"`
	Slug         *string  `json:"-"`
	Duration     *int     `json:"duration"`
	MaxGroupSize *int     `json:"max_group_size"`
	Difficulty   *string  `json:"difficulty"`
	Price        *float64 `json:"price"`
	Summary      *string  `json:"summary"`
	Description  *string  `json:"description"`
}

// TourLikeRepository persists per-user tour likes. The unique (tour, user)
// constraint keeps a like idempotent at the storage level; the service turns
// it into toggle semantics.
type TourLikeRepository interface {
	// FindLike returns the like the user placed on the tour, or
	// [ErrTourLikeNotFound].
	FindLike(ctx context.Context, tourID, userID int64) (models.TourLike, error)

	// CreateLike records a like and returns it with server-assigned fields.
	CreateLike(ctx context.Context, tourID, userID int64) (models.TourLike, error)

	// DeleteLike removes a like by primary key.
	DeleteLike(ctx context.Context, tourLikeID int64) error

	// LikedTourIDs lists the ids of tours the user has liked, oldest first.
	LikedTourIDs(ctx context.Context, userID int64) ([]int64, error)
}

// BookingRepository persists bookings. Payment state is handled by an
// external provider; only the settled flag is stored.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking models.Booking) (models.Booking, error)
	GetBooking(ctx context.Context, bookingID int64) (models.Booking, error)
	SelectBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error)
	SelectBookings(ctx context.Context, params url.Values) ([]models.Booking, error)
	DeleteBooking(ctx context.Context, bookingID int64) error
}
