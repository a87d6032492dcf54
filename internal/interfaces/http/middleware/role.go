package middleware

import (
	"net/http"

	"github.com/calculation/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, required identity.Role)
}

// RequireRole creates middleware that requires the given role or a higher one
func RequireRole(role identity.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(role, RoleConfig{})
}

// RequireAdmin is RequireRole(identity.RoleAdmin)
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}

// RequireRoleWithConfig creates role middleware with custom config
func RequireRoleWithConfig(role identity.Role, cfg RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, role, "No authentication claims found")
			return
		}

		userRole, err := identity.ParseRole(claims.Role)
		if err != nil || !userRole.Includes(role) {
			handleRoleDenied(c, cfg, role, "User lacks required role")
			return
		}

		c.Next()
	}
}

func handleRoleDenied(c *gin.Context, cfg RoleConfig, required identity.Role, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Access denied",
			zap.String("reason", reason),
			zap.String("user_id", GetJWTUserID(c)),
			zap.String("role", GetJWTRole(c)),
			zap.String("required_role", string(required)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":       "FORBIDDEN",
			"message":    "Access denied: insufficient role",
			"request_id": c.GetString(RequestIDKey),
		},
	})
}
