package models

import (
	"time"

	"github.com/calculation/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	AggregateModel
	Username       string     `gorm:"type:varchar(180);not null;uniqueIndex"`
	Email          string     `gorm:"type:varchar(180);not null;uniqueIndex"`
	PasswordHash   string     `gorm:"type:varchar(255);not null"`
	Role           string     `gorm:"type:varchar(30);not null;default:'ROLE_USER';index"`
	Enabled        bool       `gorm:"not null;default:true"`
	ImagePath      string     `gorm:"type:varchar(255)"`
	LastLoginAt    *time.Time `gorm:"type:timestamp"`
	FailedAttempts int        `gorm:"not null;default:0"`
	LockedUntil    *time.Time `gorm:"type:timestamp"`
	ResetToken     string     `gorm:"type:varchar(100);index"`
	ResetExpiresAt *time.Time `gorm:"type:timestamp"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "sy_user"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              identity.Role(m.Role),
		Enabled:           m.Enabled,
		ImagePath:         m.ImagePath,
		LastLoginAt:       m.LastLoginAt,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
		ResetToken:        m.ResetToken,
		ResetExpiresAt:    m.ResetExpiresAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = string(u.Role)
	m.Enabled = u.Enabled
	m.ImagePath = u.ImagePath
	m.LastLoginAt = u.LastLoginAt
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.ResetToken = u.ResetToken
	m.ResetExpiresAt = u.ResetExpiresAt
}

// UserModelFromDomain creates a new persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
