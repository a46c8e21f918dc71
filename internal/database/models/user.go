package models

import "time"

// User roles
const (
	RolePending = "pending"
	RoleAlumni  = "alumni"
	RoleAdmin   = "admin"
)

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `gorm:"not null" json:"full_name"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	Role         string `gorm:"default:'pending'" json:"role"` // pending, alumni, admin
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	// Email verification. At most one live token at a time: a reissue
	// overwrites the previous value, consumption clears it.
	EmailVerified           bool       `gorm:"default:false" json:"email_verified"`
	EmailVerificationToken  *string    `gorm:"index" json:"-"`
	EmailVerificationExpiry *time.Time `json:"-"`

	// Password reset, same single-slot rule.
	PasswordResetToken  *string    `gorm:"index" json:"-"`
	PasswordResetExpiry *time.Time `json:"-"`

	// Relationships
	AlumniProfile *AlumniProfile `gorm:"foreignKey:UserID" json:"alumni_profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}
