package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/mkobayashi/discussion-board-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TopicHandlerTestSuite struct {
	routerSuite
}

func (suite *TopicHandlerTestSuite) TestCreateTopic_CreatorBecomesOwner() {
	user := suite.createUser("creator@example.com", models.AuthLevelUser)

	w := suite.do(user, "POST", "/api/topics", map[string]interface{}{
		"name":        "General",
		"description": "General discussion",
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	response := suite.decode(w)
	assert.Equal(suite.T(), "General", response["name"])
	assert.Equal(suite.T(), "owner", response["user_role"])

	var member models.TopicMember
	err := suite.db.Where("user_id = ?", user.ID).First(&member).Error
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleOwner, member.Role)
}

func (suite *TopicHandlerTestSuite) TestCreateTopic_MissingName() {
	user := suite.createUser("creator@example.com", models.AuthLevelUser)

	w := suite.do(user, "POST", "/api/topics", map[string]interface{}{
		"description": "no name",
	})

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *TopicHandlerTestSuite) TestListTopics_MyTopicsFilter() {
	user1 := suite.createUser("user1@example.com", models.AuthLevelUser)
	user2 := suite.createUser("user2@example.com", models.AuthLevelUser)
	suite.createTopic(user1, "Mine")
	suite.createTopic(user2, "Theirs")

	w := suite.do(user1, "GET", "/api/topics?my_topics=true", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	response := suite.decode(w)
	topics := response["topics"].([]interface{})
	assert.Len(suite.T(), topics, 1)
	first := topics[0].(map[string]interface{})
	assert.Equal(suite.T(), "Mine", first["name"])

	// Without the filter both topics are visible
	w = suite.do(user1, "GET", "/api/topics", nil)
	response = suite.decode(w)
	assert.Len(suite.T(), response["topics"].([]interface{}), 2)
}

func (suite *TopicHandlerTestSuite) TestGetTopic_IncludesMembersAndRole() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	member := suite.createUser("member@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Discussion")
	suite.addMember(topic, member, models.RoleMember)

	w := suite.do(member, "GET", fmt.Sprintf("/api/topics/%d", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	response := suite.decode(w)
	assert.Equal(suite.T(), float64(2), response["member_count"])
	assert.Equal(suite.T(), "member", response["user_role"])
	assert.Len(suite.T(), response["members"].([]interface{}), 2)
}

func (suite *TopicHandlerTestSuite) TestGetTopic_NotFound() {
	user := suite.createUser("user@example.com", models.AuthLevelUser)

	w := suite.do(user, "GET", "/api/topics/999", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TopicHandlerTestSuite) TestUpdateTopic_MemberForbidden() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	member := suite.createUser("member@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Original")
	suite.addMember(topic, member, models.RoleMember)

	w := suite.do(member, "PUT", fmt.Sprintf("/api/topics/%d", topic.ID), map[string]interface{}{
		"name": "Hijacked",
	})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TopicHandlerTestSuite) TestUpdateTopic_AdminAllowed() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	admin := suite.createUser("admin@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Original")
	suite.addMember(topic, admin, models.RoleAdmin)

	w := suite.do(admin, "PUT", fmt.Sprintf("/api/topics/%d", topic.ID), map[string]interface{}{
		"name": "Renamed",
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var updated models.Topic
	suite.db.First(&updated, topic.ID)
	assert.Equal(suite.T(), "Renamed", updated.Name)
}

func (suite *TopicHandlerTestSuite) TestUpdateTopic_SuperuserWithoutMembership() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	root := suite.createUser("root@example.com", models.AuthLevelSuperuser)
	topic := suite.createTopic(owner, "Original")

	w := suite.do(root, "PUT", fmt.Sprintf("/api/topics/%d", topic.ID), map[string]interface{}{
		"description": "moderated",
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *TopicHandlerTestSuite) TestDeleteTopic_AdminForbidden() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	admin := suite.createUser("admin@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Protected")
	suite.addMember(topic, admin, models.RoleAdmin)

	w := suite.do(admin, "DELETE", fmt.Sprintf("/api/topics/%d", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TopicHandlerTestSuite) TestDeleteTopic_OwnerCascades() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	member := suite.createUser("member@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Doomed")
	suite.addMember(topic, member, models.RoleMember)
	suite.createTask(topic, owner, "Doomed Task")

	w := suite.do(owner, "DELETE", fmt.Sprintf("/api/topics/%d", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var memberCount, taskCount int64
	suite.db.Model(&models.TopicMember{}).Where("topic_id = ?", topic.ID).Count(&memberCount)
	suite.db.Model(&models.Task{}).Where("topic_id = ?", topic.ID).Count(&taskCount)
	assert.Zero(suite.T(), memberCount)
	assert.Zero(suite.T(), taskCount)
}

func (suite *TopicHandlerTestSuite) TestDeleteTopic_SuperuserOverride() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	root := suite.createUser("root@example.com", models.AuthLevelSuperuser)
	topic := suite.createTopic(owner, "Moderated")

	w := suite.do(root, "DELETE", fmt.Sprintf("/api/topics/%d", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *TopicHandlerTestSuite) TestSubscribe_Success() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	joiner := suite.createUser("joiner@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Open")

	w := suite.do(joiner, "POST", fmt.Sprintf("/api/topics/%d/subscribe", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	response := suite.decode(w)
	assert.Equal(suite.T(), "member", response["role"])
}

func (suite *TopicHandlerTestSuite) TestSubscribe_Duplicate() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	joiner := suite.createUser("joiner@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Open")

	w := suite.do(joiner, "POST", fmt.Sprintf("/api/topics/%d/subscribe", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.do(joiner, "POST", fmt.Sprintf("/api/topics/%d/subscribe", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *TopicHandlerTestSuite) TestUnsubscribe_Success() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	member := suite.createUser("member@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Open")
	suite.addMember(topic, member, models.RoleMember)

	w := suite.do(member, "DELETE", fmt.Sprintf("/api/topics/%d/unsubscribe", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.TopicMember{}).
		Where("topic_id = ? AND user_id = ?", topic.ID, member.ID).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *TopicHandlerTestSuite) TestUnsubscribe_OwnerForbidden() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Open")

	w := suite.do(owner, "DELETE", fmt.Sprintf("/api/topics/%d/unsubscribe", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TopicHandlerTestSuite) TestUnsubscribe_NotSubscribed() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	outsider := suite.createUser("outsider@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Open")

	w := suite.do(outsider, "DELETE", fmt.Sprintf("/api/topics/%d/unsubscribe", topic.ID), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TopicHandlerTestSuite) TestAddMember_OwnerGrantsAdmin() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	target := suite.createUser("target@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")

	w := suite.do(owner, "POST", fmt.Sprintf("/api/topics/%d/members", topic.ID), map[string]interface{}{
		"user_id": target.ID,
		"role":    "admin",
	})
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var member models.TopicMember
	err := suite.db.Where("topic_id = ? AND user_id = ?", topic.ID, target.ID).First(&member).Error
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleAdmin, member.Role)
}

func (suite *TopicHandlerTestSuite) TestAddMember_DefaultRoleIsMember() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	target := suite.createUser("target@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")

	w := suite.do(owner, "POST", fmt.Sprintf("/api/topics/%d/members", topic.ID), map[string]interface{}{
		"user_id": target.ID,
	})
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	response := suite.decode(w)
	assert.Equal(suite.T(), "member", response["role"])
}

func (suite *TopicHandlerTestSuite) TestAddMember_ByMemberForbidden() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	member := suite.createUser("member@example.com", models.AuthLevelUser)
	target := suite.createUser("target@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")
	suite.addMember(topic, member, models.RoleMember)

	w := suite.do(member, "POST", fmt.Sprintf("/api/topics/%d/members", topic.ID), map[string]interface{}{
		"user_id": target.ID,
	})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TopicHandlerTestSuite) TestAddMember_Duplicate() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	target := suite.createUser("target@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")
	suite.addMember(topic, target, models.RoleMember)

	w := suite.do(owner, "POST", fmt.Sprintf("/api/topics/%d/members", topic.ID), map[string]interface{}{
		"user_id": target.ID,
		"role":    "admin",
	})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	// The existing membership keeps its role
	var member models.TopicMember
	suite.db.Where("topic_id = ? AND user_id = ?", topic.ID, target.ID).First(&member)
	assert.Equal(suite.T(), models.RoleMember, member.Role)
}

func (suite *TopicHandlerTestSuite) TestAddMember_OwnerRoleRejected() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	target := suite.createUser("target@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")

	w := suite.do(owner, "POST", fmt.Sprintf("/api/topics/%d/members", topic.ID), map[string]interface{}{
		"user_id": target.ID,
		"role":    "owner",
	})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TopicHandlerTestSuite) TestAddMember_UnknownUser() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")

	w := suite.do(owner, "POST", fmt.Sprintf("/api/topics/%d/members", topic.ID), map[string]interface{}{
		"user_id": 9999,
	})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TopicHandlerTestSuite) TestRemoveMember_AdminRemovesMember() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	admin := suite.createUser("admin@example.com", models.AuthLevelUser)
	member := suite.createUser("member@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")
	suite.addMember(topic, admin, models.RoleAdmin)
	suite.addMember(topic, member, models.RoleMember)

	w := suite.do(admin, "DELETE", fmt.Sprintf("/api/topics/%d/members/%d", topic.ID, member.ID), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.TopicMember{}).
		Where("topic_id = ? AND user_id = ?", topic.ID, member.ID).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *TopicHandlerTestSuite) TestRemoveMember_OwnerProtected() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	admin := suite.createUser("admin@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")
	suite.addMember(topic, admin, models.RoleAdmin)

	w := suite.do(admin, "DELETE", fmt.Sprintf("/api/topics/%d/members/%d", topic.ID, owner.ID), nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TopicHandlerTestSuite) TestRemoveMember_SelfForbidden() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	admin := suite.createUser("admin@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")
	suite.addMember(topic, admin, models.RoleAdmin)

	w := suite.do(admin, "DELETE", fmt.Sprintf("/api/topics/%d/members/%d", topic.ID, admin.ID), nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TopicHandlerTestSuite) TestRemoveMember_NotAMember() {
	owner := suite.createUser("owner@example.com", models.AuthLevelUser)
	outsider := suite.createUser("outsider@example.com", models.AuthLevelUser)
	topic := suite.createTopic(owner, "Team")

	w := suite.do(owner, "DELETE", fmt.Sprintf("/api/topics/%d/members/%d", topic.ID, outsider.ID), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestTopicHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TopicHandlerTestSuite))
}
