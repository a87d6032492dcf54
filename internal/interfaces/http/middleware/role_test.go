package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calculation/backend/internal/domain/identity"
	"github.com/calculation/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(claims *auth.Claims, required identity.Role) *httptest.ResponseRecorder {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if claims != nil {
				c.Set(JWTClaimsKey, claims)
			}
			c.Next()
		})
		router.GET("/users", RequireRole(required), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
		return w
	}

	tests := []struct {
		name     string
		claims   *auth.Claims
		required identity.Role
		expected int
	}{
		{"admin reaches an admin route", &auth.Claims{Role: "ROLE_ADMIN"}, identity.RoleAdmin, http.StatusOK},
		{"super admin includes admin", &auth.Claims{Role: "ROLE_SUPER_ADMIN"}, identity.RoleAdmin, http.StatusOK},
		{"user is denied an admin route", &auth.Claims{Role: "ROLE_USER"}, identity.RoleAdmin, http.StatusForbidden},
		{"unknown role is denied", &auth.Claims{Role: "ROLE_GUEST"}, identity.RoleUser, http.StatusForbidden},
		{"missing claims are denied", nil, identity.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, serve(tt.claims, tt.required).Code)
		})
	}
}
