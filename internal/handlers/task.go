package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkobayashi/discussion-board-api/internal/dto"
	apierrors "github.com/mkobayashi/discussion-board-api/internal/errors"
	"github.com/mkobayashi/discussion-board-api/internal/middleware"
	"github.com/mkobayashi/discussion-board-api/internal/models"
	"github.com/mkobayashi/discussion-board-api/internal/services"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		TopicID     uint64     `json:"topic_id" binding:"required"`
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		WorkerID    *uint64    `json:"worker_id"`
		StartTime   *time.Time `json:"start_time"`
		EndTime     *time.Time `json:"end_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "topic_id and title are required")
		return
	}

	task, err := h.taskService.Create(actor, services.CreateTaskInput{
		TopicID:     req.TopicID,
		Title:       req.Title,
		Description: req.Description,
		WorkerID:    req.WorkerID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListMine handles GET /api/tasks
func (h *TaskHandler) ListMine(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.taskService.ListMine(actorID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// ListByTopic handles GET /api/topics/:id/tasks
func (h *TaskHandler) ListByTopic(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	topicID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.UnprocessableEntity(c, "invalid topic ID")
		return
	}

	tasks, err := h.taskService.ListByTopic(actor, topicID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// Get handles GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.UnprocessableEntity(c, "invalid task ID")
		return
	}

	task, err := h.taskService.Get(actor, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// Update handles PUT /api/tasks/:id. The body is parsed field by field
// so an explicit null clears optional fields while an absent field
// leaves them untouched.
func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.UnprocessableEntity(c, "invalid task ID")
		return
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.UnprocessableEntity(c, "invalid request body")
		return
	}

	input, err := parseTaskUpdate(body)
	if err != nil {
		apierrors.UnprocessableEntity(c, err.Error())
		return
	}

	task, err := h.taskService.Update(actor, taskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// Delete handles DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.UnprocessableEntity(c, "invalid task ID")
		return
	}

	if err := h.taskService.Delete(actor, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Assign handles POST /api/tasks/:id/assign
func (h *TaskHandler) Assign(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.UnprocessableEntity(c, "invalid task ID")
		return
	}

	var req struct {
		WorkerIDs []uint64 `json:"worker_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "worker_ids is required")
		return
	}

	created, err := h.taskService.Assign(actor, taskID, req.WorkerIDs)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tasks": dto.ToTaskDTOs(created)})
}

func parseTaskUpdate(body map[string]json.RawMessage) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput

	if raw, ok := body["title"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return input, errors.New("title must be a string")
		}
		input.Title = &title
	}
	if raw, ok := body["description"]; ok {
		var description string
		if err := json.Unmarshal(raw, &description); err != nil {
			return input, errors.New("description must be a string")
		}
		input.Description = &description
	}
	if raw, ok := body["status"]; ok {
		var status models.TaskStatus
		if err := json.Unmarshal(raw, &status); err != nil {
			return input, errors.New("status must be a string")
		}
		input.Status = &status
	}
	if raw, ok := body["worker_id"]; ok {
		if isJSONNull(raw) {
			input.ClearWorker = true
		} else {
			var workerID uint64
			if err := json.Unmarshal(raw, &workerID); err != nil {
				return input, errors.New("worker_id must be a number or null")
			}
			input.WorkerID = &workerID
		}
	}
	if raw, ok := body["start_time"]; ok {
		if isJSONNull(raw) {
			input.ClearStartTime = true
		} else {
			var startTime time.Time
			if err := json.Unmarshal(raw, &startTime); err != nil {
				return input, errors.New("start_time must be an RFC 3339 timestamp or null")
			}
			input.StartTime = &startTime
		}
	}
	if raw, ok := body["end_time"]; ok {
		if isJSONNull(raw) {
			input.ClearEndTime = true
		} else {
			var endTime time.Time
			if err := json.Unmarshal(raw, &endTime); err != nil {
				return input, errors.New("end_time must be an RFC 3339 timestamp or null")
			}
			input.EndTime = &endTime
		}
	}

	return input, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrTopicNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTaskManager),
		errors.Is(err, services.ErrNotTopicMember),
		errors.Is(err, services.ErrWorkerNotMember),
		errors.Is(err, services.ErrCannotUpdateTask):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrNoWorkerIDs):
		apierrors.UnprocessableEntity(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
