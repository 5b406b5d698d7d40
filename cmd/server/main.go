package main

import (
	"net/http"

	"courtside/backend/internal/auth"
	"courtside/backend/internal/config"
	"courtside/backend/internal/database"
	"courtside/backend/internal/handler"
	"courtside/backend/internal/mailer"
	"courtside/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	// Swagger imports
	_ "courtside/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Courtside API
// @version         1.0
// @description     This is the API for the Courtside pickup-game signup service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Wire the broadcast mailer
	handler.Logger = logger
	handler.Mailer = mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     config.AppConfig.SMTPHost,
		Port:     config.AppConfig.SMTPPort,
		Username: config.AppConfig.SMTPUsername,
		Password: config.AppConfig.SMTPPassword,
		From:     config.AppConfig.SMTPFrom,
	})

	router := gin.New()
	router.Use(middleware.Logger(logger), gin.Recovery())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.GET("/:id", handler.GetUserProfile)
			userRoutes.PUT("/:id", handler.UpdateUser)
		}

		// Game routes (protected)
		gameRoutes := apiV1.Group("/games")
		gameRoutes.Use(auth.AuthMiddleware())
		{
			gameRoutes.GET("", handler.GetGames)
			gameRoutes.GET("/:id", handler.GetGameByID)

			// Roster operations
			gameRoutes.POST("/:id/signup", handler.SignupForGame)
			gameRoutes.POST("/:id/remove", handler.ToggleSignup)
			gameRoutes.DELETE("/:id/players/:userID", handler.RemovePlayer)

			// Scheduling (admins and managers)
			gameRoutes.POST("", auth.StaffMiddleware(), handler.CreateGame)
			gameRoutes.PUT("/:id", auth.StaffMiddleware(), handler.UpdateGame)
			gameRoutes.DELETE("/:id", auth.StaffMiddleware(), handler.DeleteGame)

			// Roster broadcast (admin only)
			gameRoutes.POST("/email/:id", auth.AdminMiddleware(), handler.BroadcastEmail)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.GET("", handler.AdminOverview)
			adminRoutes.POST("/verify-user/:id", handler.VerifyUser)
		}
	}

	logger.Info("server starting", zap.String("addr", config.AppConfig.ListenAddr))
	if err := router.Run(config.AppConfig.ListenAddr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
