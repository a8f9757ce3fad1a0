package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/config"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/store"
	"github.com/tripwell/trippy-server/internal/utils"
	"github.com/tripwell/trippy-server/models"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor applied to every stored password hash.
const bcryptCost = 12

// minPasswordLength is the shortest accepted password.
const minPasswordLength = 8

// authService is the concrete implementation of AuthService.
// It handles registration, credential verification, JWT token lifecycle,
// and the password-reset scheme, using a UserRepository for persistence and
// bcrypt for password hashing.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// mailer delivers welcome and password-reset mail.
	mailer Mailer

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// resetTokenTTL is how long a password-reset token stays redeemable.
	resetTokenTTL time.Duration

	// clientURL is the public base URL used to build links in outbound mail.
	clientURL string

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given
// UserRepository and mailer, populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(userRepository store.UserRepository, mailer Mailer, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository: userRepository,
		mailer:         mailer,
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		resetTokenTTL:  cfg.ResetTokenTTL,
		clientURL:      cfg.ClientURL,
		logger:         logger,
	}
}

// Signup creates a new account with the "user" role, hashes the password
// with bcrypt, and sends a welcome mail. Mail delivery is best-effort: a
// failure is logged but never fails the registration.
func (a *authService) Signup(ctx context.Context, input SignupInput) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := validateSignup(input); err != nil {
		log.Error().Str("email", input.Email).Msg("invalid signup data provided")
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		log.Err(err).Msg("error hashing password")
		return models.User{}, fmt.Errorf("error hashing password: %w", err)
	}

	user := models.User{
		Name:         input.Name,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Role:         models.RoleUser,
		PasswordHash: string(hash),
	}

	created, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("email", user.Email).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	if err := a.mailer.SendWelcome(ctx, created, a.clientURL+"/me"); err != nil {
		log.Err(err).Int64("user_id", created.UserID).Msg("welcome mail delivery failed")
	}

	return created, nil
}

// validateSignup checks the registration input and reports all problems at
// once as a single operational 400.
func validateSignup(input SignupInput) error {
	var problems []string
	if strings.TrimSpace(input.Name) == "" {
		problems = append(problems, "please tell us your name")
	}
	if strings.TrimSpace(input.Email) == "" {
		problems = append(problems, "please provide your email")
	}
	if len(input.Password) < minPasswordLength {
		problems = append(problems, "password must be at least 8 characters long")
	}
	if input.Password != input.PasswordConfirm {
		problems = append(problems, "passwords are not the same")
	}
	if len(problems) > 0 {
		return apperr.ValidationFailed(strings.Join(problems, ". "))
	}
	return nil
}

// Login authenticates an existing user by email and password.
//
// A missing account and a wrong password both surface as the same 401 so
// that the response does not reveal which emails are registered.
func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	if email == "" || password == "" {
		return models.User{}, apperr.New(http.StatusBadRequest, "please provide email and password")
	}

	found, err := a.userRepository.FindUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.User{}, apperr.Unauthenticated("incorrect email or password")
		}
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return models.User{}, fmt.Errorf("user search by email failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		log.Warn().Int64("user_id", found.UserID).Msg("wrong password")
		return models.User{}, apperr.Unauthenticated("incorrect email or password")
	}

	return found, nil
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the
// configured tokenIssuer as the "iss" claim, and expires after
// tokenDuration.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// It delegates to utils.ValidateAndParseJWTToken, verifying the signature
// and the issuer claim. The jwt library's sentinel errors stay reachable in
// the wrap chain so the error normalizer can distinguish an expired token
// from a malformed one.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, err
	}

	return token, nil
}

// ResolvePrincipal runs the full credential check used by the protect
// middleware:
//
//  1. validate and parse the token;
//  2. load the account the token names;
//  3. reject tokens issued before the account's last password change.
func (a *authService) ResolvePrincipal(ctx context.Context, tokenString string) (models.User, error) {
	log := logger.FromContext(ctx)

	token, err := a.ParseToken(ctx, tokenString)
	if err != nil {
		return models.User{}, err
	}

	user, err := a.userRepository.FindUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.User{}, apperr.Unauthenticated("the user belonging to this token does no longer exist")
		}
		log.Err(err).Int64("user_id", token.UserID).Msg("principal lookup failed")
		return models.User{}, fmt.Errorf("principal lookup failed: %w", err)
	}

	if user.ChangedPasswordAfter(token.IssuedAtTime) {
		return models.User{}, apperr.Unauthenticated("user recently changed password, please log in again")
	}

	return user, nil
}

// ForgotPassword starts the password-reset scheme: generate a high-entropy
// token, persist only its SHA-256 digest with an expiry, and mail the
// plaintext token. When mail delivery fails the pending reset is cleared so
// no orphaned digest stays redeemable.
func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	user, err := a.userRepository.FindUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return apperr.NotFound("there is no user with that email address")
		}
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return fmt.Errorf("user search by email failed: %w", err)
	}

	rawToken, err := utils.GenerateRandomToken()
	if err != nil {
		log.Err(err).Msg("error generating reset token")
		return fmt.Errorf("error generating reset token: %w", err)
	}

	digest := utils.SHA256Hex(rawToken)
	expiresAt := time.Now().Add(a.resetTokenTTL)
	if err := a.userRepository.SaveResetToken(ctx, user.UserID, digest, expiresAt); err != nil {
		log.Err(err).Int64("user_id", user.UserID).Msg("error saving reset token")
		return fmt.Errorf("error saving reset token: %w", err)
	}

	resetURL := a.clientURL + "/reset-password/" + rawToken
	if err := a.mailer.SendPasswordReset(ctx, user, resetURL); err != nil {
		log.Err(err).Int64("user_id", user.UserID).Msg("reset mail delivery failed")

		if clearErr := a.userRepository.ClearResetToken(ctx, user.UserID); clearErr != nil {
			log.Err(clearErr).Int64("user_id", user.UserID).Msg("error clearing reset token after mail failure")
		}
		return apperr.New(http.StatusInternalServerError, "there was an error sending the email, try again later")
	}

	return nil
}

// ResetPassword redeems a plaintext reset token. The token is hashed and
// matched against pending digests; an unknown digest and an expired one are
// deliberately indistinguishable. On success the new password is stored,
// password_changed_at is stamped, and the digest is cleared in the same
// statement so the token cannot be redeemed twice.
func (a *authService) ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := validatePassword(password, passwordConfirm); err != nil {
		return models.User{}, err
	}

	digest := utils.SHA256Hex(rawToken)
	user, err := a.userRepository.FindUserByResetDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.User{}, apperr.InvalidOrExpiredResetToken()
		}
		log.Err(err).Msg("reset digest lookup failed")
		return models.User{}, fmt.Errorf("reset digest lookup failed: %w", err)
	}

	if err := a.storeNewPassword(ctx, user.UserID, password); err != nil {
		return models.User{}, err
	}

	return a.userRepository.FindUserByID(ctx, user.UserID)
}

// UpdatePassword changes the password of a logged-in user. The current
// password is re-verified even though the request already carries a valid
// token.
func (a *authService) UpdatePassword(ctx context.Context, userID int64, currentPassword, password, passwordConfirm string) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := a.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("user lookup failed")
		return models.User{}, fmt.Errorf("user lookup failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return models.User{}, apperr.Unauthenticated("your current password is wrong")
	}

	if err := validatePassword(password, passwordConfirm); err != nil {
		return models.User{}, err
	}

	if err := a.storeNewPassword(ctx, userID, password); err != nil {
		return models.User{}, err
	}

	return a.userRepository.FindUserByID(ctx, userID)
}

// validatePassword checks a new password and its confirmation.
func validatePassword(password, passwordConfirm string) error {
	var problems []string
	if len(password) < minPasswordLength {
		problems = append(problems, "password must be at least 8 characters long")
	}
	if password != passwordConfirm {
		problems = append(problems, "passwords are not the same")
	}
	if len(problems) > 0 {
		return apperr.ValidationFailed(strings.Join(problems, ". "))
	}
	return nil
}

// storeNewPassword hashes and persists a new password.
func (a *authService) storeNewPassword(ctx context.Context, userID int64, password string) error {
	log := logger.FromContext(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		log.Err(err).Msg("error hashing password")
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := a.userRepository.UpdatePassword(ctx, userID, string(hash)); err != nil {
		log.Err(err).Int64("user_id", userID).Msg("error updating password")
		return fmt.Errorf("error updating password: %w", err)
	}

	return nil
}
