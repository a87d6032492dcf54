package identity

import (
	"time"

	"github.com/calculation/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username      string
	Password      string
	CaptchaID     string
	CaptchaAnswer string
	IP            string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Enabled     bool       `json:"enabled"`
	HasImage    bool       `json:"has_image"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToUserInfo converts a domain User to UserInfo
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		Enabled:     u.Enabled,
		HasImage:    u.ImagePath != "",
		LastLoginAt: u.LastLoginAt,
	}
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID       uuid.UUID
	TokenJTI     string
	TokenTTL     time.Duration
	RefreshToken string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// UserListFilter holds the user list options
type UserListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Role     string `form:"role" binding:"omitempty,oneof=ROLE_USER ROLE_ADMIN ROLE_SUPER_ADMIN"`
	Enabled  *bool  `form:"enabled"`
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=2,max=180"`
	Email    string `json:"email" binding:"required,email,max=180"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"omitempty,oneof=ROLE_USER ROLE_ADMIN ROLE_SUPER_ADMIN"`
	Enabled  *bool  `json:"enabled"`
	Notify   bool   `json:"notify"`
}

// UpdateUserRequest represents a request to edit a user
type UpdateUserRequest struct {
	Username string `json:"username" binding:"required,min=2,max=180"`
	Email    string `json:"email" binding:"required,email,max=180"`
	Role     string `json:"role" binding:"required,oneof=ROLE_USER ROLE_ADMIN ROLE_SUPER_ADMIN"`
	Enabled  bool   `json:"enabled"`
}

// SetPasswordRequest represents an administrator setting a user's password
type SetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	UserInfo
	ImageURL       string     `json:"image_url,omitempty"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		UserInfo:       ToUserInfo(u),
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
