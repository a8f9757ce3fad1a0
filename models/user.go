package models

import "time"

// Role is the authorization role attached to a user account.
type Role string

// The enumerated role set. Route-level restrictions are expressed as lists
// of these values.
const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User represents an account entity used for authentication and authorization.
// It contains identity attributes and credential-related data.
// Sensitive fields must never be exposed outside trusted boundaries: the
// password hash and reset-token material carry `json:"-"` so that no response
// envelope can ever serialize them.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the unique login identifier.
	Email string `json:"email"`

	// Role determines which restricted routes the user may call.
	Role Role `json:"role"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized and never compared outside the auth service.
	PasswordHash string `json:"-"`

	// PasswordChangedAt records the last password change. Session tokens
	// issued before this moment are rejected by the auth pipeline.
	PasswordChangedAt time.Time `json:"-"`

	// ResetTokenDigest is the hex SHA-256 digest of the outstanding
	// password-reset token, empty when none is pending. The plaintext token
	// is mailed out-of-band and never stored.
	ResetTokenDigest string `json:"-"`

	// ResetTokenExpiresAt bounds the reset token's redemption window.
	// Zero when no reset is pending.
	ResetTokenExpiresAt time.Time `json:"-"`

	// Active is false for soft-deleted accounts. Inactive users cannot
	// authenticate.
	Active bool `json:"-"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// ChangedPasswordAfter reports whether the user's password was changed after
// the given moment (typically a token's issued-at claim).
//
// JWT iat claims have second resolution, so both sides are truncated to
// whole seconds before comparison; otherwise a token issued in the same
// second as a password change would be rejected spuriously.
func (u User) ChangedPasswordAfter(t time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(t.Truncate(time.Second))
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
