package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkobayashi/discussion-board-api/internal/authz"
	"github.com/mkobayashi/discussion-board-api/internal/models"
	"github.com/mkobayashi/discussion-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTopicNotFound          = errors.New("topic not found")
	ErrTopicNameRequired      = errors.New("topic name cannot be empty")
	ErrNotTopicManager        = errors.New("requires topic owner or admin role")
	ErrOnlyOwnerCanDelete     = errors.New("only the topic owner can delete it")
	ErrAlreadyMember          = errors.New("user is already a member of this topic")
	ErrNotSubscribed          = errors.New("not subscribed to this topic")
	ErrOwnerCannotUnsubscribe = errors.New("the owner cannot unsubscribe from their own topic")
	ErrMemberNotFound         = errors.New("topic member not found")
	ErrCannotRemoveOwner      = errors.New("the topic owner cannot be removed")
	ErrCannotRemoveSelf       = errors.New("cannot remove yourself; use unsubscribe instead")
	ErrInvalidTopicRole       = errors.New("invalid topic role")
	ErrCannotAddOwner         = errors.New("a topic has exactly one owner; owner role cannot be granted")
)

// TopicService provides business logic for topics and their members.
type TopicService struct {
	topicRepo repository.TopicRepository
	userRepo  repository.UserRepository
}

// NewTopicService creates a new TopicService.
func NewTopicService(topicRepo repository.TopicRepository, userRepo repository.UserRepository) *TopicService {
	return &TopicService{
		topicRepo: topicRepo,
		userRepo:  userRepo,
	}
}

// CreateTopicInput represents parameters to create a new topic.
type CreateTopicInput struct {
	Name        string
	Description string
	CreatorID   uint64
}

// Create creates a topic and registers the creator as its owner in the
// same transaction.
func (s *TopicService) Create(input CreateTopicInput) (*models.Topic, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTopicNameRequired
	}

	topic := &models.Topic{
		Name:        input.Name,
		Description: input.Description,
		CreatorID:   input.CreatorID,
	}

	owner := &models.TopicMember{
		UserID:   input.CreatorID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.topicRepo.CreateWithOwner(topic, owner); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	return topic, nil
}

// ListTopicsInput represents filters for listing topics.
type ListTopicsInput struct {
	Search   string
	MyTopics bool
	Page     int
	PageSize int
}

// TopicSummary bundles a topic with its counts and the caller's role.
type TopicSummary struct {
	Topic       models.Topic
	MemberCount int64
	TaskCount   int64
	Role        *models.TopicRole
}

// List returns topics visible to the actor. All topics are listable by
// any authenticated user; my_topics restricts to memberships.
func (s *TopicService) List(actor *models.User, input ListTopicsInput) ([]TopicSummary, int64, error) {
	filter := repository.TopicFilter{
		Search:   strings.TrimSpace(input.Search),
		Page:     input.Page,
		PageSize: input.PageSize,
	}
	if input.MyTopics {
		filter.MemberUserID = &actor.ID
	}

	topics, total, err := s.topicRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list topics: %w", err)
	}

	summaries := make([]TopicSummary, 0, len(topics))
	for _, topic := range topics {
		summary, err := s.summarize(topic, actor.ID)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, total, nil
}

// TopicDetail bundles a topic with its creator, members and counts.
type TopicDetail struct {
	Topic       models.Topic
	Members     []models.TopicMember
	MemberCount int64
	TaskCount   int64
	Role        *models.TopicRole
}

// Get returns a topic with its member list.
func (s *TopicService) Get(actor *models.User, topicID uint64) (*TopicDetail, error) {
	topic, err := s.topicRepo.FindByID(topicID, "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}

	members, err := s.topicRepo.ListMembers(topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic members: %w", err)
	}

	taskCount, err := s.topicRepo.CountTasks(topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	detail := &TopicDetail{
		Topic:       *topic,
		Members:     members,
		MemberCount: int64(len(members)),
		TaskCount:   taskCount,
	}
	for i := range members {
		if members[i].UserID == actor.ID {
			role := members[i].Role
			detail.Role = &role
			break
		}
	}

	return detail, nil
}

// UpdateTopicInput represents a partial topic update.
type UpdateTopicInput struct {
	Name        *string
	Description *string
}

// Update renames or re-describes a topic. Owner, admin or superuser.
func (s *TopicService) Update(actor *models.User, topicID uint64, input UpdateTopicInput) (*models.Topic, error) {
	topic, err := s.topicRepo.FindByID(topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}

	membership, err := s.membership(topicID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanUpdateTopic(actor, membership) {
		return nil, ErrNotTopicManager
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrTopicNameRequired
		}
		topic.Name = *input.Name
	}
	if input.Description != nil {
		topic.Description = *input.Description
	}

	if err := s.topicRepo.Update(topic); err != nil {
		return nil, fmt.Errorf("failed to update topic: %w", err)
	}

	return topic, nil
}

// Delete removes a topic and cascades to its members and tasks. Owner
// or superuser only.
func (s *TopicService) Delete(actor *models.User, topicID uint64) error {
	if _, err := s.topicRepo.FindByID(topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTopicNotFound
		}
		return fmt.Errorf("failed to find topic: %w", err)
	}

	membership, err := s.membership(topicID, actor.ID)
	if err != nil {
		return err
	}
	if !authz.CanDeleteTopic(actor, membership) {
		return ErrOnlyOwnerCanDelete
	}

	if err := s.topicRepo.Delete(topicID); err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}

	return nil
}

// Subscribe adds the actor to a topic with the member role.
func (s *TopicService) Subscribe(actor *models.User, topicID uint64) (*models.TopicMember, error) {
	if _, err := s.topicRepo.FindByID(topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}

	if _, err := s.topicRepo.FindMember(topicID, actor.ID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.TopicMember{
		TopicID:  topicID,
		UserID:   actor.ID,
		Role:     models.RoleMember,
		JoinedAt: time.Now(),
	}

	if err := s.topicRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	return member, nil
}

// Unsubscribe removes the actor's own membership. Owners cannot leave
// their own topic through this path.
func (s *TopicService) Unsubscribe(actor *models.User, topicID uint64) error {
	membership, err := s.topicRepo.FindMember(topicID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotSubscribed
		}
		return fmt.Errorf("failed to find membership: %w", err)
	}

	if !authz.CanLeaveTopic(membership) {
		return ErrOwnerCannotUnsubscribe
	}

	if err := s.topicRepo.RemoveMember(topicID, actor.ID); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	return nil
}

// AddMember adds a user to a topic with the given role. Owner role can
// never be granted this way; the single owner is fixed at creation.
func (s *TopicService) AddMember(actor *models.User, topicID, targetUserID uint64, role models.TopicRole) (*models.TopicMember, error) {
	if _, err := s.topicRepo.FindByID(topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}

	actorMembership, err := s.membership(topicID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageMembers(actor, actorMembership) {
		return nil, ErrNotTopicManager
	}

	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidTopicRole(role) {
		return nil, ErrInvalidTopicRole
	}
	if role == models.RoleOwner {
		return nil, ErrCannotAddOwner
	}

	if _, err := s.userRepo.FindByID(targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.topicRepo.FindMember(topicID, targetUserID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.TopicMember{
		TopicID:  topicID,
		UserID:   targetUserID,
		Role:     role,
		JoinedAt: time.Now(),
	}

	if err := s.topicRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// RemoveMember removes another user from a topic. The owner cannot be
// removed, and actors cannot remove themselves through this path.
func (s *TopicService) RemoveMember(actor *models.User, topicID, targetUserID uint64) error {
	if _, err := s.topicRepo.FindByID(topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTopicNotFound
		}
		return fmt.Errorf("failed to find topic: %w", err)
	}

	actorMembership, err := s.membership(topicID, actor.ID)
	if err != nil {
		return err
	}
	if !authz.CanManageMembers(actor, actorMembership) {
		return ErrNotTopicManager
	}

	target, err := s.topicRepo.FindMember(topicID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	if !authz.CanRemoveMember(actor, actorMembership, target) {
		if target.Role == models.RoleOwner {
			return ErrCannotRemoveOwner
		}
		return ErrCannotRemoveSelf
	}

	if err := s.topicRepo.RemoveMember(topicID, targetUserID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// summarize attaches counts and the caller's role to a topic.
func (s *TopicService) summarize(topic models.Topic, userID uint64) (TopicSummary, error) {
	memberCount, err := s.topicRepo.CountMembers(topic.ID)
	if err != nil {
		return TopicSummary{}, fmt.Errorf("failed to count members: %w", err)
	}
	taskCount, err := s.topicRepo.CountTasks(topic.ID)
	if err != nil {
		return TopicSummary{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	summary := TopicSummary{
		Topic:       topic,
		MemberCount: memberCount,
		TaskCount:   taskCount,
	}

	membership, err := s.membership(topic.ID, userID)
	if err != nil {
		return TopicSummary{}, err
	}
	if membership != nil {
		role := membership.Role
		summary.Role = &role
	}

	return summary, nil
}

// membership fetches the user's membership row, or nil when the user is
// not a member.
func (s *TopicService) membership(topicID, userID uint64) (*models.TopicMember, error) {
	member, err := s.topicRepo.FindMember(topicID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return member, nil
}
