package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/teamhub-dev/teamhub/internal/auth"
	"github.com/teamhub-dev/teamhub/internal/config"
	"github.com/teamhub-dev/teamhub/internal/middleware"
	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"github.com/teamhub-dev/teamhub/internal/services"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type apiTestEnv struct {
	db             *gorm.DB
	router         *gin.Engine
	tokens         *auth.TokenService
	authService    *services.AuthService
	projectService *services.ProjectService
	taskService    *services.TaskService
	threadService  *services.ThreadService
}

// setupAPITestEnv wires the full stack against an in-memory database, with
// the same routes and middleware chain as the server.
func setupAPITestEnv(t *testing.T) apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Thread{},
		&models.Reply{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	tokens := auth.NewTokenService(&config.Config{
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AccessTokenTTL:     time.Minute,
		RefreshTokenTTL:    time.Hour,
	})

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	threadRepo := repository.NewThreadRepository(db)

	authService := services.NewAuthService(userRepo, tokens)
	projectService := services.NewProjectService(projectRepo, userRepo, nil)
	taskService := services.NewTaskService(taskRepo, projectRepo, nil)
	threadService := services.NewThreadService(threadRepo, nil)

	logger := zap.NewNop()
	authHandler := NewAuthHandler(authService, logger)
	projectHandler := NewProjectHandler(projectService, logger)
	taskHandler := NewTaskHandler(taskService, logger)
	threadHandler := NewThreadHandler(threadService, logger)

	requireAuth := middleware.RequireAuth(tokens, authService)
	requireProjectAccess := middleware.RequireProjectAccess(projectRepo)
	requireTaskAccess := middleware.RequireTaskAccess(taskRepo)
	requireThreadAccess := middleware.RequireThreadAccess(threadRepo)

	r := gin.New()
	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/profile", authHandler.GetProfile)
			users.PUT("/profile", authHandler.UpdateProfile)
			users.POST("/logout", authHandler.Logout)
		}

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

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("/my-tasks", taskHandler.ListMyTasks)
			tasks.GET("/:id", requireTaskAccess, taskHandler.GetTask)
			tasks.PUT("/:id", requireTaskAccess, taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", requireTaskAccess, taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", requireTaskAccess, taskHandler.DeleteTask)
		}

		threads := api.Group("/threads")
		threads.Use(requireAuth)
		{
			threads.GET("/:id", requireThreadAccess, threadHandler.GetThread)
			threads.POST("/:id/replies", requireThreadAccess, threadHandler.AddReply)
		}
	}

	return apiTestEnv{
		db:             db,
		router:         r,
		tokens:         tokens,
		authService:    authService,
		projectService: projectService,
		taskService:    taskService,
		threadService:  threadService,
	}
}

// do performs a request against the test router. A non-empty token is sent as
// a bearer credential.
func (env apiTestEnv) do(t *testing.T, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// registerUser creates an account through the service and returns the user
// with a valid access token.
func (env apiTestEnv) registerUser(t *testing.T, name, email string) (*models.User, string) {
	t.Helper()

	user, err := env.authService.Register(services.RegisterInput{
		Name:     name,
		Email:    email,
		Password: "supersecret",
	})
	require.NoError(t, err)

	token, err := env.tokens.IssueAccessToken(user.ID, user.Email)
	require.NoError(t, err)

	return user, token
}

// decodeEnvelope unmarshals the uniform response envelope.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}
