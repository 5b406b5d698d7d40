package models

import "gorm.io/gorm"

// User roles.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User represents a registered player.
type User struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`

	// Verified gates game sign-up eligibility. Unverified users can view games
	// and be removed from them but never newly added.
	Verified bool `gorm:"not null;default:false"`

	Signups []Signup `gorm:"foreignKey:UserID"`
}

// IsStaff reports whether the user may create, update, or delete games.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}
