package handler

import (
	"net/http"
	"strconv"

	"courtside/backend/internal/database"
	"courtside/backend/internal/mailer"
	"courtside/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type VerifyUserInput struct {
	Verified *bool `json:"verified" binding:"required"`
}

type BroadcastInput struct {
	Subject string `json:"subject"`
	Body    string `json:"body" binding:"required"`
}

// AdminOverviewResponse bundles the data for the admin dashboard: every game
// sorted by date plus a page of users.
type AdminOverviewResponse struct {
	Games []GameResponse                  `json:"games"`
	Users PaginatedResponse[UserResponse] `json:"users"`
}

// endregion

// AdminOverview godoc
// @Summary      Admin overview
// @Description  Lists all games sorted by date together with a paginated user list.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "User page number" default(1)
// @Param        limit query int false "Users per page" default(10)
// @Success      200 {object} AdminOverviewResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin [get]
func AdminOverview(c *gin.Context) {
	var games []models.Game
	if err := database.DB.
		Preload("Signups", orderSignups).
		Preload("Signups.User").
		Order("date ASC").
		Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	gameResponses := make([]GameResponse, 0, len(games))
	for _, game := range games {
		gameResponses = append(gameResponses, newGameResponse(game))
	}

	page, limit := pageParams(c)
	users, totalUsers, err := paginate[models.User](database.DB.Order("id ASC"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	userResponses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		userResponses = append(userResponses, newUserResponse(user))
	}

	c.JSON(http.StatusOK, AdminOverviewResponse{
		Games: gameResponses,
		Users: NewPaginatedResponse(userResponses, totalUsers, page, limit),
	})
}

// VerifyUser godoc
// @Summary      Set a user's verified flag
// @Description  Grants or revokes sign-up eligibility for a user.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int             true "User ID"
// @Param        input body VerifyUserInput true "Verified flag"
// @Success      200 {object} UserResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /admin/verify-user/{id} [post]
func VerifyUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input VerifyUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := database.DB.Model(&user).Update("verified", *input.Verified).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// BroadcastEmail godoc
// @Summary      Email a game's roster
// @Description  Sends the message to every confirmed player's email address. Delivery is best effort; failures are logged per recipient and the request still succeeds.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int            true "Game ID"
// @Param        input body BroadcastInput true "Message"
// @Success      200 {object} map[string]int "{"sent": 4, "failed": 1}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/email/{id} [post]
func BroadcastEmail(c *gin.Context) {
	gameID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	var input BroadcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Subject == "" {
		input.Subject = "Game announcement"
	}

	var game models.Game
	if err := database.DB.
		Preload("Signups", "status = ?", models.StatusConfirmed).
		Preload("Signups.User").
		First(&game, gameID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	recipients := make([]string, 0, len(game.Signups))
	for _, signup := range game.Signups {
		recipients = append(recipients, signup.User.Email)
	}

	sent, failed := mailer.Broadcast(Mailer, Logger, recipients, input.Subject, input.Body)
	c.JSON(http.StatusOK, gin.H{"sent": sent, "failed": failed})
}
