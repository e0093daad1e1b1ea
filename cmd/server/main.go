package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/mkobayashi/discussion-board-api/internal/config"
	"github.com/mkobayashi/discussion-board-api/internal/database"
	"github.com/mkobayashi/discussion-board-api/internal/handlers"
	"github.com/mkobayashi/discussion-board-api/internal/logging"
	"github.com/mkobayashi/discussion-board-api/internal/middleware"
	"github.com/mkobayashi/discussion-board-api/internal/repository"
	"github.com/mkobayashi/discussion-board-api/internal/services"
	"github.com/mkobayashi/discussion-board-api/pkg/auth"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.GinMode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	superuser, err := database.SeedSuperuser(cfg)
	if err != nil {
		logger.Fatal("failed to seed superuser", zap.Error(err))
	}
	logger.Info("superuser ready", zap.String("email", superuser.Email))

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	userRepo := repository.NewUserRepository(database.GetDB())
	topicRepo := repository.NewTopicRepository(database.GetDB())
	taskRepo := repository.NewTaskRepository(database.GetDB())

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	topicService := services.NewTopicService(topicRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, topicRepo)

	authHandler := handlers.NewAuthHandler(authService, tokens)
	userHandler := handlers.NewUserHandler(userService)
	topicHandler := handlers.NewTopicHandler(topicService)
	taskHandler := handlers.NewTaskHandler(taskService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", middleware.RequireAuth(tokens, userRepo), authHandler.Me)
	}

	requireAuth := middleware.RequireAuth(tokens, userRepo)

	users := api.Group("/users", requireAuth)
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	topics := api.Group("/topics", requireAuth)
	{
		topics.POST("", topicHandler.Create)
		topics.GET("", topicHandler.List)
		topics.GET("/:id", topicHandler.Get)
		topics.PUT("/:id", topicHandler.Update)
		topics.DELETE("/:id", topicHandler.Delete)
		topics.POST("/:id/subscribe", topicHandler.Subscribe)
		topics.DELETE("/:id/unsubscribe", topicHandler.Unsubscribe)
		topics.POST("/:id/members", topicHandler.AddMember)
		topics.DELETE("/:id/members/:user_id", topicHandler.RemoveMember)
		topics.GET("/:id/tasks", taskHandler.ListByTopic)
	}

	tasks := api.Group("/tasks", requireAuth)
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("", taskHandler.ListMine)
		tasks.GET("/:id", taskHandler.Get)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.POST("/:id/assign", taskHandler.Assign)
	}

	logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
	if err := router.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
