// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// JWT token generation and validation, and other common operations.
package utils

import (
	"context"

	"github.com/tripwell/trippy-server/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// PrincipalCtxKey is the key used to store the authenticated user in the
// context. Set by the protect middleware after a successful pipeline run.
var PrincipalCtxKey = contextKey("principal")

// IsLoggedInCtxKey is the key used to store the boolean result of the
// permissive isLoggedIn middleware variant.
var IsLoggedInCtxKey = contextKey("isLoggedIn")

// GetPrincipalFromContext retrieves the authenticated user from the context.
//
// Returns the user and an ok flag:
//   - ok == true  — value is found and has the correct type
//   - ok == false — value is missing or has an unexpected type
//
// Example usage:
//
//	principal, ok := utils.GetPrincipalFromContext(ctx)
//	if !ok {
//	    // handle missing principal in context
//	}
func GetPrincipalFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(PrincipalCtxKey).(models.User)
	return user, ok
}

// GetIsLoggedInFromContext retrieves the isLoggedIn flag set by the
// permissive auth middleware. A missing value reads as false.
func GetIsLoggedInFromContext(ctx context.Context) bool {
	loggedIn, ok := ctx.Value(IsLoggedInCtxKey).(bool)
	return ok && loggedIn
}
