package handler_test

import (
	"net/http"
	"testing"

	"github.com/calculation/backend/internal/application/identity"
	"github.com/calculation/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *apiFixture) login(t *testing.T, username, password string) handler.LoginResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeData[handler.LoginResponse](t, w)
}

func TestAuthHandler(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("logs in and reads the current user", func(t *testing.T) {
		resp := f.login(t, "admin", adminPassword)
		assert.NotEmpty(t, resp.Token.AccessToken)
		assert.NotEmpty(t, resp.Token.RefreshToken)
		assert.Equal(t, "admin", resp.User.Username)
		assert.Equal(t, "ROLE_ADMIN", resp.User.Role)

		w := f.do(t, http.MethodGet, "/api/v1/auth/me", resp.Token.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		me := decodeData[identity.UserInfo](t, w)
		assert.Equal(t, f.admin.ID, me.ID)
	})

	t.Run("accepts the email as identifier", func(t *testing.T) {
		resp := f.login(t, "john@example.com", adminPassword)
		assert.Equal(t, "john", resp.User.Username)
	})

	t.Run("a wrong password is unauthorized", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "admin",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))
	})

	t.Run("a missing password is a validation error", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("refreshes the token pair", func(t *testing.T) {
		resp := f.login(t, "admin", adminPassword)
		w := f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
			"refresh_token": resp.Token.RefreshToken,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// the used refresh token is revoked
		w = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
			"refresh_token": resp.Token.RefreshToken,
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout revokes the access token", func(t *testing.T) {
		resp := f.login(t, "admin", adminPassword)
		w := f.do(t, http.MethodPost, "/api/v1/auth/logout", resp.Token.AccessToken, map[string]string{
			"refresh_token": resp.Token.RefreshToken,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = f.do(t, http.MethodGet, "/api/v1/auth/me", resp.Token.AccessToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_REVOKED", errorCode(t, w))
	})

	t.Run("forgot password does not reveal unknown accounts", func(t *testing.T) {
		for _, identifier := range []string{"admin@example.com", "nobody@example.com"} {
			w := f.do(t, http.MethodPost, "/api/v1/auth/password/forgot", "", map[string]string{
				"identifier": identifier,
			})
			assert.Equal(t, http.StatusOK, w.Code, identifier)
		}
	})

	t.Run("an unknown reset token is refused", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/auth/password/reset", "", map[string]string{
			"token":        "unknown",
			"new_password": "new-secret-123",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INVALID_RESET_TOKEN", errorCode(t, w))
	})

	t.Run("issues a captcha", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/captcha", "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		challenge := decodeData[struct {
			ID       string `json:"id"`
			Question string `json:"question"`
		}](t, w)
		assert.NotEmpty(t, challenge.ID)
		assert.NotEmpty(t, challenge.Question)
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, f.user)

	w := f.do(t, http.MethodPut, "/api/v1/auth/password", token, map[string]string{
		"old_password": "wrong-password",
		"new_password": "new-secret-123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "INVALID_PASSWORD", errorCode(t, w))

	w = f.do(t, http.MethodPut, "/api/v1/auth/password", token, map[string]string{
		"old_password": adminPassword,
		"new_password": "new-secret-123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	f.login(t, "john", "new-secret-123")
}
