package config

import "errors"

// Sentinel errors returned by [StructuredConfig.validate] when the merged
// configuration is not usable. Callers can match against them with errors.Is.
var (
	// ErrNoTokenSignKey is returned when no JWT signing key was supplied by
	// any configuration source. The server cannot issue or verify session
	// tokens without it.
	ErrNoTokenSignKey = errors.New("token sign key is not configured")

	// ErrUnknownEnvironment is returned when APP_ENV is neither
	// "development" nor "production".
	ErrUnknownEnvironment = errors.New("unknown runtime environment")

	// ErrNoDatabaseDSN is returned when no database connection string was
	// supplied by any configuration source.
	ErrNoDatabaseDSN = errors.New("database DSN is not configured")
)
