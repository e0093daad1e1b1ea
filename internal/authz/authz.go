// Package authz holds the topic/task permission rules. Every mutating
// or listing operation consults these predicates with the acting user
// and their membership row (nil when the actor is not a member of the
// topic in question); the global superuser level overrides every
// topic-scoped check.
package authz

import "github.com/mkobayashi/discussion-board-api/internal/models"

// roleRank orders topic roles: owner > admin > member.
var roleRank = map[models.TopicRole]int{
	models.RoleMember: 0,
	models.RoleAdmin:  1,
	models.RoleOwner:  2,
}

// hasRole reports whether the membership holds at least the given role.
func hasRole(m *models.TopicMember, min models.TopicRole) bool {
	if m == nil {
		return false
	}
	return roleRank[m.Role] >= roleRank[min]
}

// CanViewTopicTasks reports whether the actor may read a topic's task
// list. Topic metadata itself is visible to any authenticated user;
// task listings require membership.
func CanViewTopicTasks(actor *models.User, m *models.TopicMember) bool {
	return actor.IsSuperuser() || m != nil
}

// CanUpdateTopic covers renaming and editing a topic's description.
func CanUpdateTopic(actor *models.User, m *models.TopicMember) bool {
	return actor.IsSuperuser() || hasRole(m, models.RoleAdmin)
}

// CanDeleteTopic is owner-only; admins cannot delete a topic.
func CanDeleteTopic(actor *models.User, m *models.TopicMember) bool {
	return actor.IsSuperuser() || hasRole(m, models.RoleOwner)
}

// CanManageMembers covers adding and removing topic members.
func CanManageMembers(actor *models.User, m *models.TopicMember) bool {
	return actor.IsSuperuser() || hasRole(m, models.RoleAdmin)
}

// CanRemoveMember checks the remove-member operation against a specific
// target. Owners can never be removed, and actors must use unsubscribe
// rather than removing themselves.
func CanRemoveMember(actor *models.User, actorMembership *models.TopicMember, target *models.TopicMember) bool {
	if !CanManageMembers(actor, actorMembership) {
		return false
	}
	if target.Role == models.RoleOwner {
		return false
	}
	if target.UserID == actor.ID {
		return false
	}
	return true
}

// CanLeaveTopic allows any member except the owner to unsubscribe.
func CanLeaveTopic(m *models.TopicMember) bool {
	return m != nil && m.Role != models.RoleOwner
}

// CanManageTasks covers creating, editing, deleting and assigning tasks
// within a topic.
func CanManageTasks(actor *models.User, m *models.TopicMember) bool {
	return actor.IsSuperuser() || hasRole(m, models.RoleAdmin)
}

// CanUpdateTaskStatus permits the assigned worker to move their own
// task, in addition to anyone with task-management rights.
func CanUpdateTaskStatus(actor *models.User, m *models.TopicMember, task *models.Task) bool {
	if CanManageTasks(actor, m) {
		return true
	}
	return task.WorkerID != nil && *task.WorkerID == actor.ID
}

// CanTransitionStatus encodes the allowed task status moves:
// pending -> in_progress, pending -> completed and
// in_progress -> completed. Completed is terminal. Re-setting the
// current status is treated as a no-op and allowed.
func CanTransitionStatus(from, to models.TaskStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.TaskStatusPending:
		return to == models.TaskStatusInProgress || to == models.TaskStatusCompleted
	case models.TaskStatusInProgress:
		return to == models.TaskStatusCompleted
	}
	return false
}

// CanUpdateUser permits users to edit their own profile; superusers may
// edit anyone.
func CanUpdateUser(actor *models.User, targetID uint64) bool {
	return actor.IsSuperuser() || actor.ID == targetID
}

// CanChangeAuthLevel restricts promotion/demotion to superusers.
func CanChangeAuthLevel(actor *models.User) bool {
	return actor.IsSuperuser()
}

// CanDeleteUser restricts account deletion to superusers.
func CanDeleteUser(actor *models.User) bool {
	return actor.IsSuperuser()
}
