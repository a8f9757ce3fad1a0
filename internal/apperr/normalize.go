// SPDX-License-Identifier: Apache-2.0

package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Normalize classifies any failure into a *Error. Classification order is
// fixed and deterministic, first match wins:
//
//  1. store-layer cast error (malformed identifier)     → InvalidIdentifier, 400
//  2. store-layer uniqueness-constraint violation       → DuplicateValue, 400
//  3. store-layer not-null / check constraint violation → ValidationFailed, 400
//  4. credential verification: malformed / bad signature → InvalidToken, 401
//  5. credential verification: expired                   → TokenExpired, 401
//  6. already-normalized *Error                          → passed through unchanged
//  7. store-layer empty result                           → NotFound, 404
//  8. anything else                                      → Internal, 500
//
// Classification always inspects the original error through errors.Is /
// errors.As, never a reshaped copy, so driver error codes survive wrapping.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.InvalidTextRepresentation, pgerrcode.DatetimeFieldOverflow, pgerrcode.NumericValueOutOfRange:
			return InvalidIdentifier(fmt.Sprintf("invalid value: %s", pgErr.Message))

		case pgerrcode.UniqueViolation:
			return DuplicateValue(fmt.Sprintf("duplicate value for %q, please use another value", pgErr.ConstraintName))

		case pgerrcode.NotNullViolation:
			return ValidationFailed(fmt.Sprintf("field %q is required", pgErr.ColumnName))

		case pgerrcode.CheckViolation:
			return ValidationFailed(fmt.Sprintf("constraint %q violated", pgErr.ConstraintName))
		}
	}

	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidClaims) && !errors.Is(err, jwt.ErrTokenExpired):
		return InvalidToken()

	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenExpired()
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, sql.ErrNoRows) {
		return NotFound("requested resource was not found")
	}

	return Internal(err)
}

func captureStack() string {
	return string(debug.Stack())
}
