package authz

import (
	"testing"

	"github.com/mkobayashi/discussion-board-api/internal/models"
	"github.com/stretchr/testify/require"
)

func user(id uint64, level models.AuthLevel) *models.User {
	return &models.User{ID: id, AuthLevel: level}
}

func membership(userID uint64, role models.TopicRole) *models.TopicMember {
	return &models.TopicMember{TopicID: 1, UserID: userID, Role: role}
}

func TestTopicManagement(t *testing.T) {
	regular := user(1, models.AuthLevelUser)
	super := user(2, models.AuthLevelSuperuser)

	tests := []struct {
		name       string
		actor      *models.User
		membership *models.TopicMember
		update     bool
		del        bool
	}{
		{"owner", regular, membership(1, models.RoleOwner), true, true},
		{"admin", regular, membership(1, models.RoleAdmin), true, false},
		{"member", regular, membership(1, models.RoleMember), false, false},
		{"non-member", regular, nil, false, false},
		{"superuser non-member", super, nil, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.update, CanUpdateTopic(tt.actor, tt.membership))
			require.Equal(t, tt.del, CanDeleteTopic(tt.actor, tt.membership))
			require.Equal(t, tt.update, CanManageMembers(tt.actor, tt.membership))
			require.Equal(t, tt.update, CanManageTasks(tt.actor, tt.membership))
		})
	}
}

func TestCanRemoveMember(t *testing.T) {
	admin := user(1, models.AuthLevelUser)
	adminMembership := membership(1, models.RoleAdmin)

	require.True(t, CanRemoveMember(admin, adminMembership, membership(3, models.RoleMember)))

	// The owner can never be removed.
	require.False(t, CanRemoveMember(admin, adminMembership, membership(2, models.RoleOwner)))

	// Removing yourself goes through unsubscribe, not remove-member.
	require.False(t, CanRemoveMember(admin, adminMembership, membership(1, models.RoleAdmin)))

	// Plain members cannot remove anyone.
	plain := user(4, models.AuthLevelUser)
	require.False(t, CanRemoveMember(plain, membership(4, models.RoleMember), membership(3, models.RoleMember)))

	// Superuser override still cannot remove the owner.
	super := user(5, models.AuthLevelSuperuser)
	require.True(t, CanRemoveMember(super, nil, membership(3, models.RoleMember)))
	require.False(t, CanRemoveMember(super, nil, membership(2, models.RoleOwner)))
}

func TestCanLeaveTopic(t *testing.T) {
	require.True(t, CanLeaveTopic(membership(1, models.RoleMember)))
	require.True(t, CanLeaveTopic(membership(1, models.RoleAdmin)))
	require.False(t, CanLeaveTopic(membership(1, models.RoleOwner)))
	require.False(t, CanLeaveTopic(nil))
}

func TestCanUpdateTaskStatus(t *testing.T) {
	workerID := uint64(7)
	task := &models.Task{ID: 1, TopicID: 1, WorkerID: &workerID}

	worker := user(7, models.AuthLevelUser)
	require.True(t, CanUpdateTaskStatus(worker, membership(7, models.RoleMember), task))

	other := user(8, models.AuthLevelUser)
	require.False(t, CanUpdateTaskStatus(other, membership(8, models.RoleMember), task))

	admin := user(9, models.AuthLevelUser)
	require.True(t, CanUpdateTaskStatus(admin, membership(9, models.RoleAdmin), task))

	unassigned := &models.Task{ID: 2, TopicID: 1}
	require.False(t, CanUpdateTaskStatus(worker, membership(7, models.RoleMember), unassigned))
}

func TestCanTransitionStatus(t *testing.T) {
	tests := []struct {
		from, to models.TaskStatus
		want     bool
	}{
		{models.TaskStatusPending, models.TaskStatusInProgress, true},
		{models.TaskStatusPending, models.TaskStatusCompleted, true},
		{models.TaskStatusInProgress, models.TaskStatusCompleted, true},
		{models.TaskStatusInProgress, models.TaskStatusPending, false},
		{models.TaskStatusCompleted, models.TaskStatusPending, false},
		{models.TaskStatusCompleted, models.TaskStatusInProgress, false},
		{models.TaskStatusPending, models.TaskStatusPending, true},
		{models.TaskStatusCompleted, models.TaskStatusCompleted, true},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, CanTransitionStatus(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestUserAdministration(t *testing.T) {
	regular := user(1, models.AuthLevelUser)
	super := user(2, models.AuthLevelSuperuser)

	require.True(t, CanUpdateUser(regular, 1))
	require.False(t, CanUpdateUser(regular, 2))
	require.True(t, CanUpdateUser(super, 1))

	require.False(t, CanChangeAuthLevel(regular))
	require.True(t, CanChangeAuthLevel(super))

	require.False(t, CanDeleteUser(regular))
	require.True(t, CanDeleteUser(super))
}
