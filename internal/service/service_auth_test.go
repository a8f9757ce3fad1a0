package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/config"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/mock"
	"github.com/tripwell/trippy-server/internal/store"
	"github.com/tripwell/trippy-server/internal/utils"
	"github.com/tripwell/trippy-server/models"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthSvc(t *testing.T, ctrl *gomock.Controller) (*authService, *mock.MockUserRepository, *mock.MockMailer) {
	t.Helper()
	mockRepo := mock.NewMockUserRepository(ctrl)
	mockMailer := mock.NewMockMailer(ctrl)

	cfg := config.App{
		TokenSignKey:  "test-sign-key",
		TokenIssuer:   "trippy-server",
		TokenDuration: time.Hour,
		ResetTokenTTL: 10 * time.Minute,
		ClientURL:     "https://trippy.example",
	}

	svc := NewAuthService(mockRepo, mockMailer, cfg, logger.Nop()).(*authService)
	return svc, mockRepo, mockMailer
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Signup_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockMailer := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	input := SignupInput{
		Name:            "John",
		Email:           "John@Example.com",
		Password:        "pass12345",
		PasswordConfirm: "pass12345",
	}

	mockRepo.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u models.User) (models.User, error) {
			assert.Equal(t, "john@example.com", u.Email, "email must be normalized to lower case")
			assert.Equal(t, models.RoleUser, u.Role, "signup must never assign an elevated role")
			assert.NotEqual(t, input.Password, u.PasswordHash, "password must be hashed before storage")
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)))
			u.UserID = 1
			return u, nil
		},
	)
	mockMailer.EXPECT().SendWelcome(ctx, gomock.Any(), "https://trippy.example/me").Return(nil)

	created, err := svc.Signup(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.UserID)
}

func TestAuthService_Signup_MailFailureDoesNotFailSignup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockMailer := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockRepo.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u models.User) (models.User, error) {
			u.UserID = 1
			return u, nil
		},
	)
	mockMailer.EXPECT().SendWelcome(ctx, gomock.Any(), gomock.Any()).Return(errors.New("provider down"))

	_, err := svc.Signup(ctx, SignupInput{
		Name:            "John",
		Email:           "john@example.com",
		Password:        "pass12345",
		PasswordConfirm: "pass12345",
	})
	require.NoError(t, err)
}

func TestAuthService_Signup_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	tests := []struct {
		name  string
		input SignupInput
	}{
		{"empty name", SignupInput{Email: "a@b.c", Password: "pass12345", PasswordConfirm: "pass12345"}},
		{"empty email", SignupInput{Name: "John", Password: "pass12345", PasswordConfirm: "pass12345"}},
		{"short password", SignupInput{Name: "John", Email: "a@b.c", Password: "short", PasswordConfirm: "short"}},
		{"mismatched confirmation", SignupInput{Name: "John", Email: "a@b.c", Password: "pass12345", PasswordConfirm: "pass54321"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.input)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, 400, appErr.Code)
			assert.True(t, appErr.Op)
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	found := models.User{
		UserID:       1,
		Email:        "john@example.com",
		PasswordHash: hashFor(t, "pass12345"),
	}
	mockRepo.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(found, nil)

	user, err := svc.Login(ctx, "John@Example.com", "pass12345")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	found := models.User{UserID: 1, PasswordHash: hashFor(t, "pass12345")}
	mockRepo.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(found, nil)

	_, err := svc.Login(ctx, "john@example.com", "wrong-password")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Code)
	assert.Equal(t, "incorrect email or password", appErr.Message)
}

func TestAuthService_Login_UnknownEmailSameMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockRepo.EXPECT().FindUserByEmail(ctx, "ghost@example.com").Return(models.User{}, store.ErrNoUserWasFound)

	_, err := svc.Login(ctx, "ghost@example.com", "pass12345")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "incorrect email or password", appErr.Message,
		"unknown email and wrong password must be indistinguishable")
}

func TestAuthService_Login_MissingCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	_, err := svc.Login(ctx, "", "")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestAuthService_ResolvePrincipal_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, models.User{UserID: 7})
	require.NoError(t, err)

	mockRepo.EXPECT().FindUserByID(ctx, int64(7)).Return(models.User{UserID: 7, Role: models.RoleUser}, nil)

	user, err := svc.ResolvePrincipal(ctx, token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.UserID)
}

func TestAuthService_ResolvePrincipal_ExpiredToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	expired, err := utils.GenerateJWTToken("trippy-server", 7, -time.Hour, "test-sign-key")
	require.NoError(t, err)

	_, err = svc.ResolvePrincipal(ctx, expired.SignedString)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired,
		"the jwt sentinel must stay reachable for the error normalizer")
}

func TestAuthService_ResolvePrincipal_UserGone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, models.User{UserID: 7})
	require.NoError(t, err)

	mockRepo.EXPECT().FindUserByID(ctx, int64(7)).Return(models.User{}, store.ErrNoUserWasFound)

	_, err = svc.ResolvePrincipal(ctx, token.SignedString)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Code)
}

func TestAuthService_ResolvePrincipal_StalePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, models.User{UserID: 7})
	require.NoError(t, err)

	// password changed after the token was issued
	stale := models.User{UserID: 7, PasswordChangedAt: time.Now().Add(time.Hour)}
	mockRepo.EXPECT().FindUserByID(ctx, int64(7)).Return(stale, nil)

	_, err = svc.ResolvePrincipal(ctx, token.SignedString)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Code)
	assert.Contains(t, appErr.Message, "recently changed password")
}

func TestAuthService_ForgotPassword_StoresDigestNotToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockMailer := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	user := models.User{UserID: 1, Email: "john@example.com"}
	mockRepo.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(user, nil)

	var storedDigest string
	mockRepo.EXPECT().SaveResetToken(ctx, int64(1), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, digest string, expiresAt time.Time) error {
			storedDigest = digest
			assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, time.Minute)
			return nil
		},
	)
	mockMailer.EXPECT().SendPasswordReset(ctx, user, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ models.User, resetURL string) error {
			// the mailed URL carries the plaintext token; only its digest is stored
			raw := resetURL[len("https://trippy.example/reset-password/"):]
			assert.NotEqual(t, raw, storedDigest)
			assert.Equal(t, utils.SHA256Hex(raw), storedDigest)
			return nil
		},
	)

	require.NoError(t, svc.ForgotPassword(ctx, "john@example.com"))
}

func TestAuthService_ForgotPassword_MailFailureClearsToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockMailer := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	user := models.User{UserID: 1, Email: "john@example.com"}
	mockRepo.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(user, nil)
	mockRepo.EXPECT().SaveResetToken(ctx, int64(1), gomock.Any(), gomock.Any()).Return(nil)
	mockMailer.EXPECT().SendPasswordReset(ctx, user, gomock.Any()).Return(errors.New("provider down"))
	mockRepo.EXPECT().ClearResetToken(ctx, int64(1)).Return(nil)

	err := svc.ForgotPassword(ctx, "john@example.com")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Code)
	assert.True(t, appErr.Op, "mail failure is an operational error with a precise message")
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockRepo.EXPECT().FindUserByEmail(ctx, "ghost@example.com").Return(models.User{}, store.ErrNoUserWasFound)

	err := svc.ForgotPassword(ctx, "ghost@example.com")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestAuthService_ResetPassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	rawToken := "plaintext-reset-token"
	digest := utils.SHA256Hex(rawToken)
	user := models.User{UserID: 1}

	gomock.InOrder(
		mockRepo.EXPECT().FindUserByResetDigest(ctx, digest).Return(user, nil),
		mockRepo.EXPECT().UpdatePassword(ctx, int64(1), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ int64, hash string) error {
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpass123")))
				return nil
			},
		),
		mockRepo.EXPECT().FindUserByID(ctx, int64(1)).Return(user, nil),
	)

	_, err := svc.ResetPassword(ctx, rawToken, "newpass123", "newpass123")
	require.NoError(t, err)
}

func TestAuthService_ResetPassword_InvalidOrExpiredToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockRepo.EXPECT().FindUserByResetDigest(ctx, gomock.Any()).Return(models.User{}, store.ErrNoUserWasFound)

	_, err := svc.ResetPassword(ctx, "bogus", "newpass123", "newpass123")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, "token is invalid or has expired", appErr.Message)
}

func TestAuthService_UpdatePassword_WrongCurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	found := models.User{UserID: 1, PasswordHash: hashFor(t, "current123")}
	mockRepo.EXPECT().FindUserByID(ctx, int64(1)).Return(found, nil)

	_, err := svc.UpdatePassword(ctx, 1, "not-the-current", "newpass123", "newpass123")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Code)
	assert.Equal(t, "your current password is wrong", appErr.Message)
}

func TestAuthService_UpdatePassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	found := models.User{UserID: 1, PasswordHash: hashFor(t, "current123")}
	gomock.InOrder(
		mockRepo.EXPECT().FindUserByID(ctx, int64(1)).Return(found, nil),
		mockRepo.EXPECT().UpdatePassword(ctx, int64(1), gomock.Any()).Return(nil),
		mockRepo.EXPECT().FindUserByID(ctx, int64(1)).Return(found, nil),
	)

	_, err := svc.UpdatePassword(ctx, 1, "current123", "newpass123", "newpass123")
	require.NoError(t, err)
}
