package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkobayashi/discussion-board-api/internal/database"
	"github.com/mkobayashi/discussion-board-api/internal/middleware"
	"github.com/mkobayashi/discussion-board-api/internal/models"
	"github.com/mkobayashi/discussion-board-api/internal/repository"
	"github.com/mkobayashi/discussion-board-api/internal/services"
	"github.com/mkobayashi/discussion-board-api/pkg/auth"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// routerSuite sets up an in-memory database and the full router the way
// the server wires it, so tests exercise the real middleware and
// authorization paths.
type routerSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.TokenManager
}

func (s *routerSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.TopicMember{},
		&models.Task{},
	)
	s.Require().NoError(err)

	database.SetDB(db)
	s.db = db

	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	userService := services.NewUserService(userRepo)
	topicService := services.NewTopicService(topicRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, topicRepo)

	userHandler := NewUserHandler(userService)
	topicHandler := NewTopicHandler(topicService)
	taskHandler := NewTaskHandler(taskService)

	s.tokens = auth.NewTokenManager("test-secret", time.Hour)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	requireAuth := middleware.RequireAuth(s.tokens, userRepo)
	api := r.Group("/api")

	users := api.Group("/users", requireAuth)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	topics := api.Group("/topics", requireAuth)
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

	tasks := api.Group("/tasks", requireAuth)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.ListMine)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)
	tasks.POST("/:id/assign", taskHandler.Assign)

	s.router = r
}

func (s *routerSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *routerSuite) createUser(email string, level models.AuthLevel) *models.User {
	user := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: "hashedpassword",
		AuthLevel:    level,
	}
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *routerSuite) createTopic(owner *models.User, name string) *models.Topic {
	topic := &models.Topic{
		Name:      name,
		CreatorID: owner.ID,
	}
	s.Require().NoError(s.db.Create(topic).Error)
	s.addMember(topic, owner, models.RoleOwner)
	return topic
}

func (s *routerSuite) addMember(topic *models.Topic, user *models.User, role models.TopicRole) *models.TopicMember {
	member := &models.TopicMember{
		TopicID:  topic.ID,
		UserID:   user.ID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	s.Require().NoError(s.db.Create(member).Error)
	return member
}

func (s *routerSuite) createTask(topic *models.Topic, creator *models.User, title string) *models.Task {
	task := &models.Task{
		TopicID:     topic.ID,
		Title:       title,
		Description: "Test Description",
		CreatedByID: creator.ID,
		Status:      models.TaskStatusPending,
	}
	s.Require().NoError(s.db.Create(task).Error)
	return task
}

// do sends an authenticated request through the full router.
func (s *routerSuite) do(user *models.User, method, url string, payload any) *httptest.ResponseRecorder {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		s.Require().NoError(err)
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, url, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, err := s.tokens.Generate(user.ID, string(user.AuthLevel))
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *routerSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}
