package models

import "time"

// SignupStatus defines the state of a user's membership in a game roster.
type SignupStatus string

const (
	// StatusConfirmed means the user holds a spot on the game's roster.
	StatusConfirmed SignupStatus = "confirmed"

	// StatusWaitlisted means the roster was full at sign-up time; the user is
	// promoted in creation order as confirmed spots free up.
	StatusWaitlisted SignupStatus = "waitlisted"
)

// Signup represents a user's membership in a game.
// The primary key is a composite of (GameID, UserID), so the store itself
// rejects a duplicate sign-up; the roster layer maps that conflict to an
// already-a-member outcome instead of an error.
type Signup struct {
	GameID    uint         `gorm:"primaryKey"`
	UserID    uint         `gorm:"primaryKey"`
	Status    SignupStatus `gorm:"type:varchar(20);not null;default:'confirmed'"`
	CreatedAt time.Time

	Game Game `gorm:"foreignKey:GameID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
