// Package roster maintains game membership: sign-ups, removals, waitlist
// promotion, and the reconciliation pass that prunes references to games
// that no longer exist.
package roster

import (
	"errors"

	"courtside/backend/internal/models"

	"gorm.io/gorm"
)

// Outcome describes the effect of a roster operation.
type Outcome string

const (
	OutcomeJoined        Outcome = "joined"
	OutcomeWaitlisted    Outcome = "waitlisted"
	OutcomeAlreadyMember Outcome = "already_member"
	OutcomeRemoved       Outcome = "removed"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrUserNotFound = errors.New("user not found")
	ErrNotVerified  = errors.New("user is not verified")
)

// CanJoin decides whether a user may be newly added to a game roster.
// Unverified users may view games and be removed from them, but never join.
func CanJoin(user *models.User) error {
	if !user.Verified {
		return ErrNotVerified
	}
	return nil
}

// Join signs a user up for a game. It is idempotent: a second call for the
// same pair reports OutcomeAlreadyMember and leaves the roster unchanged.
// When the game has a player cap and the confirmed roster is full, the user
// is placed on the waitlist instead.
func Join(db *gorm.DB, gameID, userID uint) (Outcome, error) {
	var outcome Outcome
	err := db.Transaction(func(tx *gorm.DB) error {
		game, err := findGame(tx, gameID)
		if err != nil {
			return err
		}
		outcome, err = join(tx, game, userID)
		return err
	})
	return outcome, err
}

// Toggle flips a user's membership in a game: members are removed, everyone
// else goes through the same gated join path as Join.
func Toggle(db *gorm.DB, gameID, userID uint) (Outcome, error) {
	var outcome Outcome
	err := db.Transaction(func(tx *gorm.DB) error {
		game, err := findGame(tx, gameID)
		if err != nil {
			return err
		}

		var signup models.Signup
		err = tx.Where("game_id = ? AND user_id = ?", gameID, userID).First(&signup).Error
		switch {
		case err == nil:
			outcome = OutcomeRemoved
			return removeSignup(tx, game, &signup)
		case errors.Is(err, gorm.ErrRecordNotFound):
			outcome, err = join(tx, game, userID)
			return err
		default:
			return err
		}
	})
	return outcome, err
}

// Remove takes a user off a game's roster, confirmed or waitlisted. Removing
// a user who is not a member is a no-op.
func Remove(db *gorm.DB, gameID, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		game, err := findGame(tx, gameID)
		if err != nil {
			return err
		}

		var signup models.Signup
		err = tx.Where("game_id = ? AND user_id = ?", gameID, userID).First(&signup).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return removeSignup(tx, game, &signup)
	})
}

// DeleteGame deletes a game and every sign-up referencing it, so no player
// is left pointing at a game that no longer exists.
func DeleteGame(db *gorm.DB, gameID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := findGame(tx, gameID); err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&models.Signup{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Game{}, gameID).Error
	})
}

// Reconcile prunes the user's sign-ups whose game has been deleted. It is
// invoked from the profile read path, touches only the given user's rows,
// and is a no-op on an already-clean list.
func Reconcile(db *gorm.DB, userID uint) error {
	return db.
		Where("user_id = ? AND game_id NOT IN (?)", userID, db.Model(&models.Game{}).Select("id")).
		Delete(&models.Signup{}).Error
}

// ActiveGames returns the games the user is signed up for, soonest first,
// after reconciling stale entries.
func ActiveGames(db *gorm.DB, userID uint) ([]models.Game, error) {
	if err := Reconcile(db, userID); err != nil {
		return nil, err
	}

	var games []models.Game
	err := db.
		Joins("JOIN signups ON signups.game_id = games.id").
		Where("signups.user_id = ?", userID).
		Order("games.date ASC").
		Find(&games).Error
	return games, err
}

func findGame(tx *gorm.DB, gameID uint) (*models.Game, error) {
	var game models.Game
	if err := tx.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func join(tx *gorm.DB, game *models.Game, userID uint) (Outcome, error) {
	var existing models.Signup
	err := tx.Where("game_id = ? AND user_id = ?", game.ID, userID).First(&existing).Error
	if err == nil {
		return OutcomeAlreadyMember, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if err := CanJoin(&user); err != nil {
		return "", err
	}

	status := models.StatusConfirmed
	if game.MaxPlayers > 0 {
		confirmed, err := confirmedCount(tx, game.ID)
		if err != nil {
			return "", err
		}
		if confirmed >= int64(game.MaxPlayers) {
			status = models.StatusWaitlisted
		}
	}

	signup := models.Signup{GameID: game.ID, UserID: userID, Status: status}
	if err := tx.Create(&signup).Error; err != nil {
		// Two concurrent joins can both miss the existence check; the
		// composite primary key turns the loser into a no-op.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return OutcomeAlreadyMember, nil
		}
		return "", err
	}

	if status == models.StatusWaitlisted {
		return OutcomeWaitlisted, nil
	}
	return OutcomeJoined, nil
}

func removeSignup(tx *gorm.DB, game *models.Game, signup *models.Signup) error {
	if err := tx.Where("game_id = ? AND user_id = ?", signup.GameID, signup.UserID).
		Delete(&models.Signup{}).Error; err != nil {
		return err
	}
	if signup.Status == models.StatusConfirmed {
		return promote(tx, game)
	}
	return nil
}

// promote moves waitlisted sign-ups to confirmed, oldest first, while the
// game has confirmed spots free.
func promote(tx *gorm.DB, game *models.Game) error {
	if game.MaxPlayers == 0 {
		return nil
	}

	confirmed, err := confirmedCount(tx, game.ID)
	if err != nil {
		return err
	}

	for confirmed < int64(game.MaxPlayers) {
		var next models.Signup
		err := tx.Where("game_id = ? AND status = ?", game.ID, models.StatusWaitlisted).
			Order("created_at ASC").
			First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		err = tx.Model(&models.Signup{}).
			Where("game_id = ? AND user_id = ?", next.GameID, next.UserID).
			Update("status", models.StatusConfirmed).Error
		if err != nil {
			return err
		}
		confirmed++
	}
	return nil
}

func confirmedCount(tx *gorm.DB, gameID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Signup{}).
		Where("game_id = ? AND status = ?", gameID, models.StatusConfirmed).
		Count(&n).Error
	return n, err
}
