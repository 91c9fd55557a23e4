package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/teamhub-dev/teamhub/internal/auth"
	"github.com/teamhub-dev/teamhub/internal/config"
	"github.com/teamhub-dev/teamhub/internal/database"
	"github.com/teamhub-dev/teamhub/internal/handlers"
	"github.com/teamhub-dev/teamhub/internal/middleware"
	"github.com/teamhub-dev/teamhub/internal/realtime"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"github.com/teamhub-dev/teamhub/internal/services"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Disconnect(); err != nil {
			logger.Warn("Failed to close database pool", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Realtime broadcaster; nil when redis is not configured
	broadcaster := realtime.NewBroadcaster(cfg, logger)
	defer broadcaster.Close()

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	threadRepo := repository.NewThreadRepository(db)

	// Services
	tokens := auth.NewTokenService(cfg)
	authService := services.NewAuthService(userRepo, tokens)
	projectService := services.NewProjectService(projectRepo, userRepo, broadcaster)
	taskService := services.NewTaskService(taskRepo, projectRepo, broadcaster)
	threadService := services.NewThreadService(threadRepo, broadcaster)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	projectHandler := handlers.NewProjectHandler(projectService, logger)
	taskHandler := handlers.NewTaskHandler(taskService, logger)
	threadHandler := handlers.NewThreadHandler(threadService, logger)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "TeamHub API is running",
		})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(tokens, authService)
	requireProjectAccess := middleware.RequireProjectAccess(projectRepo)
	requireTaskAccess := middleware.RequireTaskAccess(taskRepo)
	requireThreadAccess := middleware.RequireThreadAccess(threadRepo)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/profile", authHandler.GetProfile)
			users.PUT("/profile", authHandler.UpdateProfile)
			users.POST("/logout", authHandler.Logout)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)

			scoped := projects.Group("/:id")
			scoped.Use(requireProjectAccess)
			{
				scoped.GET("", projectHandler.GetProject)
				scoped.PUT("", middleware.RequireProjectOwner(), projectHandler.UpdateProject)
				scoped.DELETE("", middleware.RequireProjectOwner(), projectHandler.DeleteProject)
				scoped.POST("/members", middleware.RequireProjectOwner(), projectHandler.AddMember)
				scoped.DELETE("/members/:userId", middleware.RequireProjectOwner(), projectHandler.RemoveMember)

				scoped.GET("/tasks", taskHandler.ListTasks)
				scoped.POST("/tasks", taskHandler.CreateTask)

				scoped.GET("/threads", threadHandler.ListThreads)
				scoped.POST("/threads", threadHandler.CreateThread)
			}
		}

		// Task routes (protected, access checked per task)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("/my-tasks", taskHandler.ListMyTasks)
			tasks.GET("/:id", requireTaskAccess, taskHandler.GetTask)
			tasks.PUT("/:id", requireTaskAccess, taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", requireTaskAccess, taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", requireTaskAccess, taskHandler.DeleteTask)
		}

		// Thread routes (protected, access checked per thread)
		threads := api.Group("/threads")
		threads.Use(requireAuth)
		{
			threads.GET("/:id", requireThreadAccess, threadHandler.GetThread)
			threads.POST("/:id/replies", requireThreadAccess, threadHandler.AddReply)
		}
	}

	// Start server
	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
