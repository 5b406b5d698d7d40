package models

import (
	"time"

	"gorm.io/gorm"
)

// Game represents a scheduled pickup game players can sign up for.
type Game struct {
	gorm.Model
	Date        time.Time `gorm:"not null;index"`
	Time        string    `gorm:"size:100"` // free-text label, e.g. "8:30"
	Description string    `gorm:"size:512"`

	// MaxPlayers caps the confirmed roster; 0 means unlimited. Sign-ups past
	// the cap land on the waitlist.
	MaxPlayers int `gorm:"not null;default:0"`

	Signups []Signup `gorm:"foreignKey:GameID"`
}
