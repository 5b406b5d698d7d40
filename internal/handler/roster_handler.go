package handler

import (
	"errors"
	"net/http"
	"strconv"

	"courtside/backend/internal/database"
	"courtside/backend/internal/models"
	"courtside/backend/internal/roster"

	"github.com/gin-gonic/gin"
)

// SignupForGame godoc
// @Summary      Sign up for a game
// @Description  Adds the authenticated user to the game's roster. Signing up twice is a no-op reported as already_member. A full game places the user on the waitlist. Unverified users are rejected.
// @Tags         roster
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"status": "joined"}"
// @Failure      403 {object} ErrorResponse "User is not verified"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/signup [post]
func SignupForGame(c *gin.Context) {
	userID, _ := c.Get("userID")
	gameID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	outcome, err := roster.Join(database.DB, uint(gameID), userID.(uint))
	if err != nil {
		respondRosterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": outcome})
}

// ToggleSignup godoc
// @Summary      Toggle game membership
// @Description  Removes the authenticated user from the game if they are a member, otherwise signs them up through the same verification gate as a plain sign-up.
// @Tags         roster
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"status": "removed"}"
// @Failure      403 {object} ErrorResponse "User is not verified"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/remove [post]
func ToggleSignup(c *gin.Context) {
	userID, _ := c.Get("userID")
	gameID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	outcome, err := roster.Toggle(database.DB, uint(gameID), userID.(uint))
	if err != nil {
		respondRosterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": outcome})
}

// RemovePlayer godoc
// @Summary      Remove a player from a game
// @Description  Takes a player off a game's roster. Players can remove themselves; admins and managers can remove anyone. Removing a non-member is a no-op.
// @Tags         roster
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int true "Game ID"
// @Param        userID  path int true "User ID of the player to remove"
// @Success      200 {object} map[string]string "{"message": "Player removed"}"
// @Failure      403 {object} ErrorResponse "Cannot remove another player"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/players/{userID} [delete]
func RemovePlayer(c *gin.Context) {
	callerID, _ := c.Get("userID")
	gameID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}
	targetID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if callerID.(uint) != uint(targetID) {
		var caller models.User
		if err := database.DB.First(&caller, callerID.(uint)).Error; err != nil || !caller.IsStaff() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot remove another player"})
			return
		}
	}

	if err := roster.Remove(database.DB, uint(gameID), uint(targetID)); err != nil {
		respondRosterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Player removed"})
}

func respondRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, roster.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
	case errors.Is(err, roster.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, roster.ErrNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "User is not verified"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Roster update failed"})
	}
}
