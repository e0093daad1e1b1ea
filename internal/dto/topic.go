package dto

import (
	"time"

	"github.com/mkobayashi/discussion-board-api/internal/models"
)

// TopicDTO represents a topic in API responses, including counts and
// the caller's own role (absent when not a member)
type TopicDTO struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	CreatorID   uint64            `json:"creator_id"`
	CreatedAt   time.Time         `json:"created_at"`
	MemberCount int64             `json:"member_count"`
	TaskCount   int64             `json:"task_count"`
	UserRole    *models.TopicRole `json:"user_role,omitempty"`
}

// TopicMemberDTO represents a member in a topic
type TopicMemberDTO struct {
	ID       uint64           `json:"id"`
	UserID   uint64           `json:"user_id"`
	Role     models.TopicRole `json:"role"`
	JoinedAt time.Time        `json:"joined_at"`
	User     UserDTO          `json:"user"`
}

// TopicDetailDTO represents detailed topic information
type TopicDetailDTO struct {
	TopicDTO
	Creator UserDTO          `json:"creator"`
	Members []TopicMemberDTO `json:"members"`
}

// ToTopicDTO converts a topic with its counts and caller role
func ToTopicDTO(topic models.Topic, memberCount, taskCount int64, role *models.TopicRole) TopicDTO {
	return TopicDTO{
		ID:          topic.ID,
		Name:        topic.Name,
		Description: topic.Description,
		CreatorID:   topic.CreatorID,
		CreatedAt:   topic.CreatedAt,
		MemberCount: memberCount,
		TaskCount:   taskCount,
		UserRole:    role,
	}
}

// ToTopicMemberDTO converts a membership to DTO
func ToTopicMemberDTO(member models.TopicMember) TopicMemberDTO {
	return TopicMemberDTO{
		ID:       member.ID,
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
		User:     ToUserDTO(member.User),
	}
}

// ToTopicDetailDTO converts a topic with members to detailed DTO
func ToTopicDetailDTO(topic models.Topic, members []models.TopicMember, memberCount, taskCount int64, role *models.TopicRole) TopicDetailDTO {
	memberDTOs := make([]TopicMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToTopicMemberDTO(member)
	}

	return TopicDetailDTO{
		TopicDTO: ToTopicDTO(topic, memberCount, taskCount, role),
		Creator:  ToUserDTO(topic.Creator),
		Members:  memberDTOs,
	}
}
