package service

import (
	"context"
	"net/url"

	"github.com/tripwell/trippy-server/internal/store"
	"github.com/tripwell/trippy-server/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_service.go -package=mock

// SignupInput carries the fields accepted from a registration request.
// Role is deliberately absent: every signup produces a regular user, and
// elevated roles are assigned out-of-band.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// AuthService covers the credential lifecycle: registration, login, token
// issue and verification, and the password-reset scheme.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (models.User, error)

	// Login verifies the email/password pair and returns the account.
	// A missing account and a wrong password are indistinguishable to the
	// caller.
	Login(ctx context.Context, email, password string) (models.User, error)

	// CreateToken issues a signed session token for the user.
	CreateToken(ctx context.Context, user models.User) (models.Token, error)

	// ParseToken validates a raw token string. Verification failures keep the
	// jwt sentinel errors reachable for the error normalizer.
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)

	// ResolvePrincipal runs the full credential check: parse the token, load
	// the account it names, and reject tokens issued before the account's
	// last password change.
	ResolvePrincipal(ctx context.Context, tokenString string) (models.User, error)

	// ForgotPassword generates a reset token, stores its digest, and mails
	// the plaintext token to the account's email.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword redeems a plaintext reset token and sets a new password.
	ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (models.User, error)

	// UpdatePassword changes the password of a logged-in user after
	// re-verifying the current one.
	UpdatePassword(ctx context.Context, userID int64, currentPassword, password, passwordConfirm string) (models.User, error)
}

// UserService covers account reads and profile maintenance.
type UserService interface {
	GetUser(ctx context.Context, userID int64) (models.User, error)
	UpdateProfile(ctx context.Context, userID int64, name, email string) (models.User, error)
	DeactivateUser(ctx context.Context, userID int64) error
	ListUsers(ctx context.Context, params url.Values) ([]models.User, error)
}

// TourService covers tour CRUD, list translation, geospatial lookup, and the
// reporting aggregates.
type TourService interface {
	ListTours(ctx context.Context, params url.Values) ([]models.Tour, error)
	GetTour(ctx context.Context, tourID int64) (models.Tour, error)

	// GetTourBySlug resolves a tour by its URL slug.
	GetTourBySlug(ctx context.Context, slug string) (models.Tour, error)

	CreateTour(ctx context.Context, tour models.Tour) (models.Tour, error)
	UpdateTour(ctx context.Context, update store.TourUpdate) (models.Tour, error)
	DeleteTour(ctx context.Context, tourID int64) error
	TourStats(ctx context.Context) ([]models.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlanEntry, error)

	// ToursWithin returns tours starting within distance of the point.
	// unit is "mi" or "km".
	ToursWithin(ctx context.Context, lat, lng, distance float64, unit string) ([]models.Tour, error)

	// ToggleLike flips the user's like on a tour. When no like exists one is
	// recorded and returned with created=true; an existing like is removed
	// and created=false comes back with a zero like.
	ToggleLike(ctx context.Context, tourID, userID int64) (like models.TourLike, created bool, err error)

	// LikedTourIDs lists the ids of tours the user has liked.
	LikedTourIDs(ctx context.Context, userID int64) ([]int64, error)
}

// BookingService covers booking creation and lookup.
type BookingService interface {
	CreateBooking(ctx context.Context, userID, tourID int64) (models.Booking, error)
	GetBooking(ctx context.Context, bookingID int64) (models.Booking, error)
	ListBookingsForUser(ctx context.Context, userID int64) ([]models.Booking, error)
	ListBookings(ctx context.Context, params url.Values) ([]models.Booking, error)
	DeleteBooking(ctx context.Context, bookingID int64) error
}

// Mailer delivers transactional mail. The concrete client lives in the
// mailer package; a no-op implementation is substituted when no provider is
// configured.
type Mailer interface {
	SendWelcome(ctx context.Context, user models.User, loginURL string) error
	SendPasswordReset(ctx context.Context, user models.User, resetURL string) error
}
