package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"courtside/backend/internal/database"
	"courtside/backend/internal/models"
	"courtside/backend/internal/roster"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type GameInput struct {
	Date        time.Time `json:"date" binding:"required"`
	Time        string    `json:"time"`
	Description string    `json:"description" binding:"max=512"`
	MaxPlayers  int       `json:"max_players" binding:"min=0"`
}

// RosterEntry identifies a player on a game's roster.
type RosterEntry struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type GameResponse struct {
	ID          uint          `json:"id"`
	Date        time.Time     `json:"date"`
	Time        string        `json:"time,omitempty"`
	Description string        `json:"description,omitempty"`
	MaxPlayers  int           `json:"max_players"`
	Players     []RosterEntry `json:"players"`
	Waitlist    []RosterEntry `json:"waitlist"`
}

func newGameResponse(game models.Game) GameResponse {
	players := []RosterEntry{}
	waitlist := []RosterEntry{}
	for _, signup := range game.Signups {
		entry := RosterEntry{ID: signup.User.ID, Username: signup.User.Username}
		if signup.Status == models.StatusWaitlisted {
			waitlist = append(waitlist, entry)
		} else {
			players = append(players, entry)
		}
	}

	return GameResponse{
		ID:          game.ID,
		Date:        game.Date,
		Time:        game.Time,
		Description: game.Description,
		MaxPlayers:  game.MaxPlayers,
		Players:     players,
		Waitlist:    waitlist,
	}
}

// endregion

// region --- Public Handlers ---

// GetGames godoc
// @Summary      Get a list of games
// @Description  Retrieves a paginated list of games sorted by date, with rosters.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[GameResponse]
// @Router       /games [get]
func GetGames(c *gin.Context) {
	page, limit := pageParams(c)

	query := database.DB.
		Preload("Signups", orderSignups).
		Preload("Signups.User").
		Order("date ASC")

	games, totalItems, err := paginate[models.Game](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	responses := make([]GameResponse, 0, len(games))
	for _, game := range games {
		responses = append(responses, newGameResponse(game))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(responses, totalItems, page, limit))
}

// GetGameByID godoc
// @Summary      Get a single game by ID
// @Description  Retrieves details for a single game, including its confirmed roster and waitlist.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} GameResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGameByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	var game models.Game
	if err := database.DB.
		Preload("Signups", orderSignups).
		Preload("Signups.User").
		First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, newGameResponse(game))
}

// endregion

// region --- Staff Handlers ---

// CreateGame godoc
// @Summary      Create a new game
// @Description  Schedules a new game. Admins and managers only.
// @Tags         staff-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Staff access required"
// @Router       /games [post]
func CreateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game := models.Game{
		Date:        input.Date,
		Time:        input.Time,
		Description: input.Description,
		MaxPlayers:  input.MaxPlayers,
	}

	if err := database.DB.Create(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	c.JSON(http.StatusCreated, newGameResponse(game))
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Updates a game's schedule details. Admins and managers only.
// @Tags         staff-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int       true  "Game ID"
// @Param        input body      GameInput true  "New Game Info"
// @Success      200   {object}  GameResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Staff access required"
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /games/{id} [put]
func UpdateGame(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	var game models.Game
	if err := database.DB.First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game.Date = input.Date
	game.Time = input.Time
	game.Description = input.Description
	game.MaxPlayers = input.MaxPlayers

	if err := database.DB.Save(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update game"})
		return
	}

	database.DB.Preload("Signups", orderSignups).Preload("Signups.User").First(&game, id)
	c.JSON(http.StatusOK, newGameResponse(game))
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Deletes a game and removes it from every player's active games. Admins and managers only.
// @Tags         staff-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game deleted"}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Staff access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [delete]
func DeleteGame(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	if err := roster.DeleteGame(database.DB, uint(id)); err != nil {
		if errors.Is(err, roster.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete game"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

// endregion

func orderSignups(db *gorm.DB) *gorm.DB {
	return db.Order("signups.created_at ASC")
}
