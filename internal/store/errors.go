package store

import "errors"

// Sentinel errors surfaced by the repositories. Callers match them with
// errors.Is; driver-level causes stay wrapped underneath so the error
// normalizer can still classify constraint violations and cast failures.
var (
	// ErrEmailAlreadyExists is returned when an INSERT hits the users table's
	// unique email constraint.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when no active user matches the lookup.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrTourNotFound is returned when a tour lookup matches no row.
	ErrTourNotFound = errors.New("tour was not found")

	// ErrTourLikeNotFound is returned when the user has no like on the tour.
	ErrTourLikeNotFound = errors.New("tour like was not found")

	// ErrBookingNotFound is returned when a booking lookup matches no row.
	ErrBookingNotFound = errors.New("booking was not found")

	// ErrBuildingSQLQuery is returned when the query builder fails to
	// produce a statement.
	ErrBuildingSQLQuery = errors.New("error building SQL query")

	// ErrExecutingQuery is returned for driver-level execution failures.
	ErrExecutingQuery = errors.New("error executing query")

	// ErrScanningRows is returned when result rows cannot be scanned into
	// their models.
	ErrScanningRows = errors.New("error scanning rows")
)
