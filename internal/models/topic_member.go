package models

import "time"

type TopicRole string

const (
	RoleOwner  TopicRole = "owner"
	RoleAdmin  TopicRole = "admin"
	RoleMember TopicRole = "member"
)

// ValidTopicRole reports whether s is one of the known topic roles.
func ValidTopicRole(s TopicRole) bool {
	switch s {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// TopicMember links a user to a topic with a topic-scoped role. The
// composite unique index guarantees at most one membership row per
// (topic, user) pair at the storage layer, so concurrent subscribes
// cannot both commit.
type TopicMember struct {
	ID       uint64    `gorm:"primarykey" json:"id"`
	TopicID  uint64    `gorm:"not null;uniqueIndex:idx_topic_members_topic_user" json:"topic_id"`
	UserID   uint64    `gorm:"not null;uniqueIndex:idx_topic_members_topic_user" json:"user_id"`
	Role     TopicRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	Topic Topic `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
