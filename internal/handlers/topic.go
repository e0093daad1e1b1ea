package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkobayashi/discussion-board-api/internal/dto"
	apierrors "github.com/mkobayashi/discussion-board-api/internal/errors"
	"github.com/mkobayashi/discussion-board-api/internal/middleware"
	"github.com/mkobayashi/discussion-board-api/internal/models"
	"github.com/mkobayashi/discussion-board-api/internal/services"
	"github.com/mkobayashi/discussion-board-api/internal/utils"
)

// TopicHandler handles topic and topic membership endpoints.
type TopicHandler struct {
	topicService *services.TopicService
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(topicService *services.TopicService) *TopicHandler {
	return &TopicHandler{
		topicService: topicService,
	}
}

// Create handles POST /api/topics
func (h *TopicHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "name is required")
		return
	}

	topic, err := h.topicService.Create(services.CreateTopicInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   actor.ID,
	})
	if err != nil {
		respondTopicError(c, err)
		return
	}

	role := models.RoleOwner
	c.JSON(http.StatusCreated, dto.ToTopicDTO(*topic, 1, 0, &role))
}

// List handles GET /api/topics
func (h *TopicHandler) List(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	pagination := utils.GetPaginationParams(c)
	myTopics := c.Query("my_topics") == "true"

	summaries, total, err := h.topicService.List(actor, services.ListTopicsInput{
		Search:   c.Query("search"),
		MyTopics: myTopics,
		Page:     pagination.Page,
		PageSize: pagination.Limit,
	})
	if err != nil {
		respondTopicError(c, err)
		return
	}

	topics := make([]dto.TopicDTO, len(summaries))
	for i, s := range summaries {
		topics[i] = dto.ToTopicDTO(s.Topic, s.MemberCount, s.TaskCount, s.Role)
	}

	c.JSON(http.StatusOK, gin.H{
		"topics": topics,
		"pagination": utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}

// Get handles GET /api/topics/:id
func (h *TopicHandler) Get(c *gin.Context) {
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

	detail, err := h.topicService.Get(actor, topicID)
	if err != nil {
		respondTopicError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTopicDetailDTO(
		detail.Topic, detail.Members, detail.MemberCount, detail.TaskCount, detail.Role))
}

// Update handles PUT /api/topics/:id
func (h *TopicHandler) Update(c *gin.Context) {
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

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "invalid request body")
		return
	}

	topic, err := h.topicService.Update(actor, topicID, services.UpdateTopicInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondTopicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          topic.ID,
		"name":        topic.Name,
		"description": topic.Description,
		"creator_id":  topic.CreatorID,
		"created_at":  topic.CreatedAt,
	})
}

// Delete handles DELETE /api/topics/:id
func (h *TopicHandler) Delete(c *gin.Context) {
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

	if err := h.topicService.Delete(actor, topicID); err != nil {
		respondTopicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Topic deleted successfully"})
}

// Subscribe handles POST /api/topics/:id/subscribe
func (h *TopicHandler) Subscribe(c *gin.Context) {
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

	member, err := h.topicService.Subscribe(actor, topicID)
	if err != nil {
		respondTopicError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"topic_id":  member.TopicID,
		"user_id":   member.UserID,
		"role":      member.Role,
		"joined_at": member.JoinedAt,
	})
}

// Unsubscribe handles DELETE /api/topics/:id/unsubscribe
func (h *TopicHandler) Unsubscribe(c *gin.Context) {
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

	if err := h.topicService.Unsubscribe(actor, topicID); err != nil {
		respondTopicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed successfully"})
}

// AddMember handles POST /api/topics/:id/members
func (h *TopicHandler) AddMember(c *gin.Context) {
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

	var req struct {
		UserID uint64           `json:"user_id" binding:"required"`
		Role   models.TopicRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "user_id is required")
		return
	}

	member, err := h.topicService.AddMember(actor, topicID, req.UserID, req.Role)
	if err != nil {
		respondTopicError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"topic_id":  member.TopicID,
		"user_id":   member.UserID,
		"role":      member.Role,
		"joined_at": member.JoinedAt,
	})
}

// RemoveMember handles DELETE /api/topics/:id/members/:user_id
func (h *TopicHandler) RemoveMember(c *gin.Context) {
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

	targetUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.UnprocessableEntity(c, "invalid user ID")
		return
	}

	if err := h.topicService.RemoveMember(actor, topicID, targetUserID); err != nil {
		respondTopicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

func respondTopicError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTopicNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTopicManager),
		errors.Is(err, services.ErrOnlyOwnerCanDelete),
		errors.Is(err, services.ErrOwnerCannotUnsubscribe),
		errors.Is(err, services.ErrCannotRemoveOwner),
		errors.Is(err, services.ErrCannotRemoveSelf),
		errors.Is(err, services.ErrCannotAddOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrNotSubscribed):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTopicNameRequired),
		errors.Is(err, services.ErrInvalidTopicRole):
		apierrors.UnprocessableEntity(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
