package identity

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/calculation/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	numberRegex   = regexp.MustCompile(`[0-9]`)
)

// User is an account allowed to sign in
type User struct {
	shared.BaseAggregateRoot
	Username       string
	Email          string
	PasswordHash   string
	Role           Role
	Enabled        bool
	ImagePath      string
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
	ResetToken     string
	ResetExpiresAt *time.Time
}

// NewUser creates a new enabled user with the given role
func NewUser(username, email, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      hash,
		Role:              role,
		Enabled:           true,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// Update changes the username, email and role
func (u *User) Update(username, email string, role Role) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}
	u.Username = strings.ToLower(strings.TrimSpace(username))
	u.Email = strings.ToLower(strings.TrimSpace(email))
	u.Role = role
	u.touch()
	return nil
}

// ChangePassword changes the password after checking the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword sets a new password without checking the current one
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.ResetToken = ""
	u.ResetExpiresAt = nil
	u.touch()
	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Enable allows the user to sign in
func (u *User) Enable() {
	if u.Enabled {
		return
	}
	u.Enabled = true
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()
}

// Disable prevents the user from signing in
func (u *User) Disable() {
	if !u.Enabled {
		return
	}
	u.Enabled = false
	u.touch()
}

// HasRole reports whether the user's role includes the given role
func (u *User) HasRole(role Role) bool {
	return u.Role.Includes(role)
}

// SetImage sets the storage key of the user's picture
func (u *User) SetImage(path string) {
	u.ImagePath = path
	u.touch()
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()
}

// RecordLoginFailure records a failed login attempt.
// It returns true when the account was locked as a result.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.touch()
	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		u.LockedUntil = &until
		return true
	}
	return false
}

// IsLocked reports whether a lock is still in effect
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// CanLogin reports whether the user may sign in
func (u *User) CanLogin() bool {
	return u.Enabled && !u.IsLocked()
}

// CreateResetToken generates a password reset token valid for ttl
func (u *User) CreateResetToken(ttl time.Duration) (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	expires := time.Now().Add(ttl)
	u.ResetToken = token
	u.ResetExpiresAt = &expires
	u.touch()
	return token, nil
}

// IsResetTokenValid reports whether token matches an unexpired reset request
func (u *User) IsResetTokenValid(token string) bool {
	return token != "" &&
		u.ResetToken == token &&
		u.ResetExpiresAt != nil &&
		time.Now().Before(*u.ResetExpiresAt)
}

// ResetPassword sets a new password using a reset token
func (u *User) ResetPassword(token, newPassword string) error {
	if !u.IsResetTokenValid(token) {
		return shared.NewDomainError("INVALID_RESET_TOKEN", "Password reset token is invalid or expired")
	}
	return u.SetPassword(newPassword)
}

func (u *User) touch() {
	u.MarkModified()
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 2 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 2 characters")
	}
	if len(username) > 180 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 180 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	if !letterRegex.MatchString(password) || !numberRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) > 180 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 180 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// ValidateEmail checks the format of an email address
func ValidateEmail(email string) error {
	return validateEmail(email)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
