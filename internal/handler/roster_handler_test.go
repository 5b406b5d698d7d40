package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courtside/backend/internal/auth"
	"courtside/backend/internal/config"
	"courtside/backend/internal/database"
	"courtside/backend/internal/models"
	"courtside/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRouter wires an in-memory database and the same route tree as main.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Game{}, &models.Signup{}))
	database.DB = db

	router := gin.New()
	apiV1 := router.Group("/api/v1")

	authRoutes := apiV1.Group("/auth")
	authRoutes.POST("/register", RegisterUser)
	authRoutes.POST("/login", LoginUser)

	userRoutes := apiV1.Group("/users")
	userRoutes.Use(auth.AuthMiddleware())
	userRoutes.GET("/me", GetMe)
	userRoutes.GET("/:id", GetUserProfile)
	userRoutes.PUT("/:id", UpdateUser)

	gameRoutes := apiV1.Group("/games")
	gameRoutes.Use(auth.AuthMiddleware())
	gameRoutes.GET("", GetGames)
	gameRoutes.GET("/:id", GetGameByID)
	gameRoutes.POST("/:id/signup", SignupForGame)
	gameRoutes.POST("/:id/remove", ToggleSignup)
	gameRoutes.DELETE("/:id/players/:userID", RemovePlayer)
	gameRoutes.POST("", auth.StaffMiddleware(), CreateGame)
	gameRoutes.PUT("/:id", auth.StaffMiddleware(), UpdateGame)
	gameRoutes.DELETE("/:id", auth.StaffMiddleware(), DeleteGame)
	gameRoutes.POST("/email/:id", auth.AdminMiddleware(), BroadcastEmail)

	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
	adminRoutes.GET("", AdminOverview)
	adminRoutes.POST("/verify-user/:id", VerifyUser)

	return router
}

func seedUser(t *testing.T, username, role string, verified bool) (*models.User, string) {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Verified:     verified,
	}
	require.NoError(t, database.DB.Create(user).Error)

	token, err := jwt.GenerateToken(user.ID)
	require.NoError(t, err)
	return user, token
}

func seedGame(t *testing.T, maxPlayers int) *models.Game {
	t.Helper()
	game := &models.Game{
		Date:       time.Now().Add(24 * time.Hour),
		Time:       "8:30",
		MaxPlayers: maxPlayers,
	}
	require.NoError(t, database.DB.Create(game).Error)
	return game
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSignupFlow(t *testing.T) {
	router := setupRouter(t)
	seedGame(t, 0)
	_, verifiedToken := seedUser(t, "player", models.RoleUser, true)
	_, unverifiedToken := seedUser(t, "newbie", models.RoleUser, false)

	w := doRequest(router, http.MethodPost, "/api/v1/games/1/signup", verifiedToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "joined", decodeBody(t, w)["status"])

	w = doRequest(router, http.MethodPost, "/api/v1/games/1/signup", verifiedToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "already_member", decodeBody(t, w)["status"])

	w = doRequest(router, http.MethodPost, "/api/v1/games/1/signup", unverifiedToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/games/999/signup", verifiedToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/games/1/signup", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The roster shows exactly one confirmed player.
	w = doRequest(router, http.MethodGet, "/api/v1/games/1", verifiedToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	players := decodeBody(t, w)["players"].([]any)
	assert.Len(t, players, 1)
}

func TestToggleEndpoint(t *testing.T) {
	router := setupRouter(t)
	seedGame(t, 0)
	_, token := seedUser(t, "player", models.RoleUser, true)

	w := doRequest(router, http.MethodPost, "/api/v1/games/1/remove", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "joined", decodeBody(t, w)["status"])

	w = doRequest(router, http.MethodPost, "/api/v1/games/1/remove", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "removed", decodeBody(t, w)["status"])
}

func TestCreateGameValidation(t *testing.T) {
	router := setupRouter(t)
	_, managerToken := seedUser(t, "manager", models.RoleManager, true)
	_, userToken := seedUser(t, "player", models.RoleUser, true)

	valid := gin.H{"date": time.Now().Add(48 * time.Hour).Format(time.RFC3339), "time": "8:30", "description": "Pickup run"}
	w := doRequest(router, http.MethodPost, "/api/v1/games", managerToken, valid)
	assert.Equal(t, http.StatusCreated, w.Code)

	// date is required
	w = doRequest(router, http.MethodPost, "/api/v1/games", managerToken, gin.H{"time": "8:30"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// description capped at 512 chars
	long := make([]byte, 513)
	for i := range long {
		long[i] = 'a'
	}
	w = doRequest(router, http.MethodPost, "/api/v1/games", managerToken,
		gin.H{"date": time.Now().Format(time.RFC3339), "description": string(long)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// plain users cannot schedule games
	w = doRequest(router, http.MethodPost, "/api/v1/games", userToken, valid)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVerifyUserEndpoint(t *testing.T) {
	router := setupRouter(t)
	seedGame(t, 0)
	_, adminToken := seedUser(t, "admin", models.RoleAdmin, true)
	_, pendingToken := seedUser(t, "pending", models.RoleUser, false)

	w := doRequest(router, http.MethodPost, "/api/v1/games/1/signup", pendingToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/admin/verify-user/2", adminToken, gin.H{"verified": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/games/1/signup", pendingToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "joined", decodeBody(t, w)["status"])

	// verification is admin-only
	w = doRequest(router, http.MethodPost, "/api/v1/admin/verify-user/2", pendingToken, gin.H{"verified": false})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRemovePlayerPermissions(t *testing.T) {
	router := setupRouter(t)
	seedGame(t, 0)
	member, memberToken := seedUser(t, "member", models.RoleUser, true)
	_, otherToken := seedUser(t, "other", models.RoleUser, true)
	_, adminToken := seedUser(t, "admin", models.RoleAdmin, true)

	w := doRequest(router, http.MethodPost, "/api/v1/games/1/signup", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// another plain user cannot remove them
	w = doRequest(router, http.MethodDelete, "/api/v1/games/1/players/1", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// admins can
	w = doRequest(router, http.MethodDelete, "/api/v1/games/1/players/1", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.Signup{}).Where("user_id = ?", member.ID).Count(&count).Error)
	assert.Zero(t, count)

	// removing a non-member is a no-op, not an error
	w = doRequest(router, http.MethodDelete, "/api/v1/games/1/players/1", memberToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfileReconcilesDeletedGames(t *testing.T) {
	router := setupRouter(t)
	seedGame(t, 0)
	_, token := seedUser(t, "player", models.RoleUser, true)

	w := doRequest(router, http.MethodPost, "/api/v1/games/1/signup", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Drop the game record out from under the sign-up.
	require.NoError(t, database.DB.Delete(&models.Game{}, 1).Error)

	w = doRequest(router, http.MethodGet, "/api/v1/users/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	games := decodeBody(t, w)["games"].([]any)
	assert.Empty(t, games)

	var count int64
	require.NoError(t, database.DB.Model(&models.Signup{}).Count(&count).Error)
	assert.Zero(t, count)
}

type fakeSender struct {
	sent    []string
	failFor map[string]bool
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.failFor[to] {
		return errors.New("smtp: delivery refused")
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestBroadcastEmail(t *testing.T) {
	router := setupRouter(t)
	seedGame(t, 0)
	_, adminToken := seedUser(t, "admin", models.RoleAdmin, true)
	_, aliceToken := seedUser(t, "alice", models.RoleUser, true)
	_, bobToken := seedUser(t, "bob", models.RoleUser, true)

	for _, token := range []string{aliceToken, bobToken} {
		w := doRequest(router, http.MethodPost, "/api/v1/games/1/signup", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	sender := &fakeSender{failFor: map[string]bool{"bob@example.com": true}}
	Mailer = sender

	w := doRequest(router, http.MethodPost, "/api/v1/games/email/1", adminToken,
		gin.H{"subject": "Rain check", "body": "Moved to Saturday"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["sent"])
	assert.EqualValues(t, 1, body["failed"])
	assert.Equal(t, []string{"alice@example.com"}, sender.sent)

	// broadcast is admin-only and requires a body
	w = doRequest(router, http.MethodPost, "/api/v1/games/email/1", aliceToken, gin.H{"body": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/games/email/1", adminToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/auth/register", "",
		gin.H{"username": "newuser", "email": "new@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	// duplicate username
	w = doRequest(router, http.MethodPost, "/api/v1/auth/register", "",
		gin.H{"username": "newuser", "email": "other@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/auth/login", "",
		gin.H{"login": "newuser", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/auth/login", "",
		gin.H{"login": "newuser", "password": "wrongpassword"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteGameEndpoint(t *testing.T) {
	router := setupRouter(t)
	seedGame(t, 0)
	_, adminToken := seedUser(t, "admin", models.RoleAdmin, true)
	_, playerToken := seedUser(t, "player", models.RoleUser, true)

	w := doRequest(router, http.MethodPost, "/api/v1/games/1/signup", playerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/games/1", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/games/1", playerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// player's profile no longer lists the game
	w = doRequest(router, http.MethodGet, "/api/v1/users/2", playerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["games"])
}
