package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/query"
	"github.com/tripwell/trippy-server/models"
)

// userListColumns is the whitelist of columns list requests may filter,
// sort, or project on. Credential columns are deliberately absent.
var userListColumns = []string{"user_id", "name", "email", "role", "created_at"}

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation, principal lookup, and the credential and
// reset-token lifecycle against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new account and returns the fully populated
// [models.User] with server-assigned fields (UserID, CreatedAt).
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrEmailAlreadyExists],
//     with the driver cause kept wrapped underneath.
//   - Any other driver-level error → wrapped in [ErrExecutingQuery].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Name, user.Email, user.Role, user.PasswordHash)

	// scan saved user from db
	var changedAt sql.NullTime
	if err := row.Scan(&user.UserID, &user.Name, &user.Email, &user.Role, &user.PasswordHash, &changedAt, &user.CreatedAt); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: creating user")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, fmt.Errorf("%w: %w", ErrEmailAlreadyExists, err)
		}
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if changedAt.Valid {
		user.PasswordChangedAt = changedAt.Time
	}
	user.Active = true

	return user, nil
}

// FindUserByID resolves an active principal by primary key.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findUser(ctx, "*userRepository.FindUserByID", findUserByID, userID)
}

// FindUserByEmail resolves an active principal by its login identifier.
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findUser(ctx, "*userRepository.FindUserByEmail", findUserByEmail, email)
}

// FindUserByResetDigest resolves the principal whose stored reset digest
// matches and whose reset window has not expired. An expired or unknown
// digest surfaces as [ErrNoUserWasFound].
func (r *userRepository) FindUserByResetDigest(ctx context.Context, digest string) (models.User, error) {
	return r.findUser(ctx, "*userRepository.FindUserByResetDigest", findUserByResetDigest, digest)
}

// findUser runs a single-row user lookup and scans the shared column set.
//
// Error handling:
//   - [sql.ErrNoRows] → [ErrNoUserWasFound], cause wrapped underneath.
//   - Any other driver-level error → wrapped in [ErrExecutingQuery].
func (r *userRepository) findUser(ctx context.Context, caller, sqlQuery string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	var found models.User
	var changedAt sql.NullTime
	row := r.db.QueryRowContext(ctx, sqlQuery, arg)

	if err := row.Scan(&found.UserID, &found.Name, &found.Email, &found.Role, &found.PasswordHash, &changedAt, &found.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%w: %w", ErrNoUserWasFound, err)
		}
		log.Err(err).Str("func", caller).Msg("error: scanning user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if changedAt.Valid {
		found.PasswordChangedAt = changedAt.Time
	}
	found.Active = true

	return found, nil
}

// SaveResetToken stores the reset digest and its expiry on the account.
func (r *userRepository) SaveResetToken(ctx context.Context, userID int64, digest string, expiresAt time.Time) error {
	return r.execOnUser(ctx, "*userRepository.SaveResetToken", saveResetToken, userID, digest, expiresAt)
}

// ClearResetToken removes any pending reset digest from the account.
func (r *userRepository) ClearResetToken(ctx context.Context, userID int64) error {
	return r.execOnUser(ctx, "*userRepository.ClearResetToken", clearResetToken, userID)
}

// UpdatePassword stores a new password hash, stamps password_changed_at
// server-side, and clears any pending reset digest in the same statement
// so an already-used reset token cannot be replayed.
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.execOnUser(ctx, "*userRepository.UpdatePassword", updatePassword, userID, passwordHash)
}

// DeactivateUser soft-deletes the account. The row stays in place but is
// invisible to every lookup, which all filter on the active flag.
func (r *userRepository) DeactivateUser(ctx context.Context, userID int64) error {
	return r.execOnUser(ctx, "*userRepository.DeactivateUser", deactivateUser, userID)
}

// execOnUser runs a statement keyed by user id and maps a zero-row update to
// [ErrNoUserWasFound].
func (r *userRepository) execOnUser(ctx context.Context, caller, sqlQuery string, userID int64, args ...any) error {
	log := logger.FromContext(ctx)

	execArgs := append([]any{userID}, args...)
	result, err := r.db.ExecContext(ctx, sqlQuery, execArgs...)
	if err != nil {
		log.Err(err).Str("func", caller).Msg("error: executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", caller).Msg("error: reading rows affected")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

// UpdateProfile updates the mutable non-credential fields (name, email).
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrEmailAlreadyExists].
//   - [sql.ErrNoRows] → [ErrNoUserWasFound].
func (r *userRepository) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	var updated models.User
	var changedAt sql.NullTime
	row := r.db.QueryRowContext(ctx, updateProfile, user.UserID, user.Name, user.Email)

	if err := row.Scan(&updated.UserID, &updated.Name, &updated.Email, &updated.Role, &updated.PasswordHash, &changedAt, &updated.CreatedAt); err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateProfile").Msg("error: updating profile")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, fmt.Errorf("%w: %w", ErrEmailAlreadyExists, err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%w: %w", ErrNoUserWasFound, err)
		}
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if changedAt.Valid {
		updated.PasswordChangedAt = changedAt.Time
	}
	updated.Active = true

	return updated, nil
}

// DeleteExpiredResetTokens clears reset digests whose window has passed and
// returns the number of cleaned accounts.
func (r *userRepository) DeleteExpiredResetTokens(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteExpiredResetTokens)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.DeleteExpiredResetTokens").Msg("error: cleaning reset tokens")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return affected, nil
}

// SelectUsers lists active accounts according to the raw list parameters,
// translating them into SQL via [query.Features]. Only whitelisted columns
// participate in filtering, sorting, and projection.
func (r *userRepository) SelectUsers(ctx context.Context, params url.Values) ([]models.User, error) {
	log := logger.FromContext(ctx)

	features := query.NewFeatures(models.User{}.TableName(), userListColumns, params).
		Filter().
		Sort().
		Project().
		Paginate()

	sqlQuery, args, err := features.Builder().Where("active").ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.SelectUsers").Msg("error: building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.SelectUsers").Msg("error: executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	selected := features.SelectedColumns()
	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		dest := make([]any, 0, len(selected))
		for _, column := range selected {
			target, ok := userColumnDest(&user, column)
			if !ok {
				return nil, fmt.Errorf("%w: unknown column %q", ErrScanningRows, column)
			}
			dest = append(dest, target)
		}
		if err := rows.Scan(dest...); err != nil {
			log.Err(err).Str("func", "*userRepository.SelectUsers").Msg("error: scanning rows")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		user.Active = true
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return users, nil
}

// userColumnDest maps a projected column name to its scan destination.
func userColumnDest(user *models.User, column string) (any, bool) {
	switch column {
	case "user_id":
		return &user.UserID, true
	case "name":
		return &user.Name, true
	case "email":
		return &user.Email, true
	case "role":
		return &user.Role, true
	case "created_at":
		return &user.CreatedAt, true
	}
	return nil, false
}
