package identity

import (
	"context"
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/identity"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/auth"
	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "secret123"

type authFixture struct {
	repo      *MockUserRepository
	jwt       *auth.JWTService
	blacklist *auth.MemoryTokenBlacklist
	notifier  *recordingNotifier
	service   *AuthService
}

func newAuthFixture(t *testing.T, captcha CaptchaVerifier) *authFixture {
	t.Helper()
	f := &authFixture{
		repo: new(MockUserRepository),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			RefreshSecret:          "test-refresh-secret-key-32-chars",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "calculation-test",
		}),
		blacklist: auth.NewMemoryTokenBlacklist(),
		notifier:  &recordingNotifier{},
	}
	cfg := DefaultAuthServiceConfig()
	cfg.MaxLoginAttempts = 3
	cfg.CaptchaEnabled = captcha != nil
	f.service = NewAuthService(f.repo, f.jwt, f.blacklist, captcha, f.notifier, cfg, nil, zap.NewNop())
	return f
}

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("john", "john@example.com", testPassword, identity.RoleAdmin)
	require.NoError(t, err)
	return user
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tokens and records the login", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		user := newTestUser(t)
		f.repo.On("FindByUsernameOrEmail", ctx, "john").Return(user, nil)
		f.repo.On("Save", ctx, user).Return(nil)

		result, err := f.service.Login(ctx, LoginInput{Username: "john", Password: testPassword})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "john", result.User.Username)
		assert.Equal(t, "ROLE_ADMIN", result.User.Role)
		assert.NotNil(t, user.LastLoginAt)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
	})

	t.Run("rejects an unknown user", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.repo.On("FindByUsernameOrEmail", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := f.service.Login(ctx, LoginInput{Username: "ghost", Password: testPassword})
		requireDomainCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("counts failures and locks the account", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		user := newTestUser(t)
		f.repo.On("FindByUsernameOrEmail", ctx, "john").Return(user, nil)
		f.repo.On("Save", ctx, user).Return(nil)

		for i := 0; i < 2; i++ {
			_, err := f.service.Login(ctx, LoginInput{Username: "john", Password: "wrong"})
			requireDomainCode(t, err, "INVALID_CREDENTIALS")
		}
		assert.Equal(t, 2, user.FailedAttempts)

		_, err := f.service.Login(ctx, LoginInput{Username: "john", Password: "wrong"})
		requireDomainCode(t, err, "ACCOUNT_LOCKED")
		assert.True(t, user.IsLocked())

		_, err = f.service.Login(ctx, LoginInput{Username: "john", Password: testPassword})
		requireDomainCode(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("rejects a disabled account", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		user := newTestUser(t)
		user.Disable()
		f.repo.On("FindByUsernameOrEmail", ctx, "john").Return(user, nil)

		_, err := f.service.Login(ctx, LoginInput{Username: "john", Password: testPassword})
		requireDomainCode(t, err, "ACCOUNT_DISABLED")
	})

	t.Run("checks the captcha before the credentials", func(t *testing.T) {
		f := newAuthFixture(t, stubCaptcha{answer: "g"})

		_, err := f.service.Login(ctx, LoginInput{Username: "john", Password: testPassword, CaptchaAnswer: "x"})
		requireDomainCode(t, err, "INVALID_CAPTCHA")
		f.repo.AssertNotCalled(t, "FindByUsernameOrEmail", mock.Anything, mock.Anything)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	user := newTestUser(t)
	pair, err := f.jwt.GenerateTokenPair(auth.Subject{UserID: user.ID, Username: user.Username, Role: string(user.Role)})
	require.NoError(t, err)
	f.repo.On("FindByID", ctx, user.ID).Return(user, nil)

	t.Run("issues a new pair and revokes the used refresh token", func(t *testing.T) {
		result, err := f.service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, result.RefreshToken)

		_, err = f.service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
		requireDomainCode(t, err, "TOKEN_REVOKED")
	})

	t.Run("rejects an access token", func(t *testing.T) {
		_, err := f.service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.AccessToken})
		requireDomainCode(t, err, "TOKEN_INVALID")
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	user := newTestUser(t)
	pair, err := f.jwt.GenerateTokenPair(auth.Subject{UserID: user.ID, Username: user.Username})
	require.NoError(t, err)
	access, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	err = f.service.Logout(ctx, LogoutInput{
		UserID:       user.ID,
		TokenJTI:     access.ID,
		TokenTTL:     access.RemainingTTL(),
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)

	revoked, err := f.blacklist.IsRevoked(ctx, access.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	_, err = f.service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
	requireDomainCode(t, err, "TOKEN_REVOKED")
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the password and revokes older tokens", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		user := newTestUser(t)
		f.repo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.repo.On("Save", ctx, user).Return(nil)

		err := f.service.ChangePassword(ctx, ChangePasswordInput{
			UserID: user.ID, OldPassword: testPassword, NewPassword: "another42",
		})
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("another42"))

		revoked, err := f.blacklist.IsUserRevoked(ctx, user.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		user := newTestUser(t)
		f.repo.On("FindByID", ctx, user.ID).Return(user, nil)

		err := f.service.ChangePassword(ctx, ChangePasswordInput{
			UserID: user.ID, OldPassword: "wrong", NewPassword: "another42",
		})
		requireDomainCode(t, err, "INVALID_PASSWORD")
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("does not reveal unknown users", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.repo.On("FindByUsernameOrEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		require.NoError(t, f.service.ForgotPassword(ctx, "ghost@example.com"))
		assert.Empty(t, f.notifier.resets)
	})

	t.Run("sends a token that resets the password once", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		user := newTestUser(t)
		f.repo.On("FindByUsernameOrEmail", ctx, "john@example.com").Return(user, nil)
		f.repo.On("Save", ctx, user).Return(nil)

		require.NoError(t, f.service.ForgotPassword(ctx, "john@example.com"))
		require.Len(t, f.notifier.resets, 1)
		token := f.notifier.resets[0]
		require.NotEmpty(t, token)

		f.repo.On("FindByResetToken", ctx, token).Return(user, nil)
		require.NoError(t, f.service.ResetPassword(ctx, token, "brandnew7"))
		assert.True(t, user.VerifyPassword("brandnew7"))
		assert.Empty(t, user.ResetToken)

		err := f.service.ResetPassword(ctx, token, "brandnew8")
		requireDomainCode(t, err, "INVALID_RESET_TOKEN")
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.repo.On("FindByResetToken", ctx, "nope").Return(nil, shared.ErrNotFound)

		err := f.service.ResetPassword(ctx, "nope", "brandnew7")
		requireDomainCode(t, err, "INVALID_RESET_TOKEN")
	})
}
