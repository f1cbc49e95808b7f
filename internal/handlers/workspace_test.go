package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/dana-ai-api/internal/errors"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
	"github.com/yukikurage/dana-ai-api/internal/utils"
)

var (
	rcOrgA = tenancy.RequestContext{UserID: 1, OrganizationID: "org-a", Role: tenancy.RoleMember}
	rcOrgB = tenancy.RequestContext{UserID: 2, OrganizationID: "org-b", Role: tenancy.RoleMember}
)

func withID(c *gin.Context, id string) *gin.Context {
	c.Params = gin.Params{{Key: "id", Value: id}}
	return c
}

func TestWorkspaceHandler_CreateKnowledgeBaseItemIgnoresClientOrganization(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewWorkspaceHandler(env.workspace)

	body := jsonBody(t, map[string]any{
		"title":           "Refund policy",
		"content":         "30 days",
		"organization_id": "org-b",
	})
	c, w := testContext(http.MethodPost, "/api/knowledge-base", body, rcOrgA.UserID, rcOrgA)
	handler.CreateKnowledgeBaseItem(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var item models.KnowledgeBaseItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	require.NotNil(t, item.OrganizationID)
	assert.Equal(t, "org-a", *item.OrganizationID)

	c, w = testContext(http.MethodGet, "/api/knowledge-base", nil, rcOrgB.UserID, rcOrgB)
	handler.ListKnowledgeBase(c)
	require.Equal(t, http.StatusOK, w.Code)
	var listB struct {
		Items []models.KnowledgeBaseItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listB))
	assert.Empty(t, listB.Items)
}

func TestWorkspaceHandler_CreateBindsOnlyClientFields(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewWorkspaceHandler(env.workspace)

	body := jsonBody(t, map[string]any{
		"id":         77,
		"title":      "Returns",
		"created_by": 99,
		"created_at": "2001-01-01T00:00:00Z",
		"updated_at": "2001-01-01T00:00:00Z",
	})
	c, w := testContext(http.MethodPost, "/api/knowledge-base", body, rcOrgA.UserID, rcOrgA)
	handler.CreateKnowledgeBaseItem(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var item models.KnowledgeBaseItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.NotEqual(t, uint64(77), item.ID)
	assert.Equal(t, rcOrgA.UserID, item.CreatedBy)
	assert.NotEqual(t, 2001, item.CreatedAt.Year())
	assert.NotEqual(t, 2001, item.UpdatedAt.Year())

	body = jsonBody(t, map[string]any{"name": "Shop", "kind": "instagram", "connected": true})
	c, w = testContext(http.MethodPost, "/api/platforms", body, rcOrgA.UserID, rcOrgA)
	handler.CreatePlatform(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var platform models.Platform
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &platform))
	assert.False(t, platform.Connected)

	body = jsonBody(t, map[string]any{"content": "missing title"})
	c, w = testContext(http.MethodPost, "/api/knowledge-base", body, rcOrgA.UserID, rcOrgA)
	handler.CreateKnowledgeBaseItem(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkspaceHandler_ForeignAndMissingRecords(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewWorkspaceHandler(env.workspace)

	created, err := env.workspace.CreateKnowledgeBaseItem(t.Context(), rcOrgB, models.KnowledgeBaseItem{Title: "B secret"})
	require.NoError(t, err)
	id := formatID(created.ID)

	c, w := testContext(http.MethodGet, "/api/knowledge-base/"+id, nil, rcOrgA.UserID, rcOrgA)
	handler.GetKnowledgeBaseItem(withID(c, id))
	assert.Equal(t, http.StatusForbidden, w.Code)
	var denied apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &denied))
	assert.Equal(t, apierrors.MessageAccessDenied, denied.Message)
	assert.NotContains(t, w.Body.String(), "org-b")

	c, w = testContext(http.MethodDelete, "/api/knowledge-base/"+id, nil, rcOrgA.UserID, rcOrgA)
	handler.DeleteKnowledgeBaseItem(withID(c, id))
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = testContext(http.MethodGet, "/api/knowledge-base/999", nil, rcOrgA.UserID, rcOrgA)
	handler.GetKnowledgeBaseItem(withID(c, "999"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = testContext(http.MethodGet, "/api/knowledge-base/abc", nil, rcOrgA.UserID, rcOrgA)
	handler.GetKnowledgeBaseItem(withID(c, "abc"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = testContext(http.MethodGet, "/api/knowledge-base/"+id, nil, rcOrgB.UserID, rcOrgB)
	handler.GetKnowledgeBaseItem(withID(c, id))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWorkspaceHandler_Platforms(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewWorkspaceHandler(env.workspace)

	body := jsonBody(t, map[string]any{"name": "Instagram shop", "kind": "instagram"})
	c, w := testContext(http.MethodPost, "/api/platforms", body, rcOrgA.UserID, rcOrgA)
	handler.CreatePlatform(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var platform models.Platform
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &platform))

	body = jsonBody(t, map[string]any{"name": "Pager", "kind": "pager"})
	c, w = testContext(http.MethodPost, "/api/platforms", body, rcOrgA.UserID, rcOrgA)
	handler.CreatePlatform(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = testContext(http.MethodGet, "/api/platforms", nil, rcOrgA.UserID, rcOrgA)
	handler.ListPlatforms(c)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Platforms []models.Platform `json:"platforms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Platforms, 1)

	id := formatID(platform.ID)
	c, w = testContext(http.MethodDelete, "/api/platforms/"+id, nil, rcOrgB.UserID, rcOrgB)
	handler.DeletePlatform(withID(c, id))
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = testContext(http.MethodDelete, "/api/platforms/"+id, nil, rcOrgA.UserID, rcOrgA)
	handler.DeletePlatform(withID(c, id))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWorkspaceHandler_ConversationMessages(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewWorkspaceHandler(env.workspace)

	body := jsonBody(t, map[string]any{"customer_name": "Jane", "channel": "email"})
	c, w := testContext(http.MethodPost, "/api/conversations", body, rcOrgA.UserID, rcOrgA)
	handler.CreateConversation(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var conversation models.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conversation))
	id := formatID(conversation.ID)

	for i := 0; i < 3; i++ {
		body = jsonBody(t, map[string]any{"sender": "Jane", "content": "hello", "direction": "inbound"})
		c, w = testContext(http.MethodPost, "/api/conversations/"+id+"/messages", body, rcOrgA.UserID, rcOrgA)
		handler.CreateMessage(withID(c, id))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	c, w = testContext(http.MethodGet, "/api/conversations/"+id+"/messages?page=2&limit=2", nil, rcOrgA.UserID, rcOrgA)
	handler.ListMessages(withID(c, id))
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Messages   []models.Message `json:"messages"`
		Pagination utils.PageInfo   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Messages, 1)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	c, w = testContext(http.MethodGet, "/api/conversations/"+id+"/messages", nil, rcOrgB.UserID, rcOrgB)
	handler.ListMessages(withID(c, id))
	assert.Equal(t, http.StatusForbidden, w.Code)

	body = jsonBody(t, map[string]any{"status": "closed"})
	c, w = testContext(http.MethodPatch, "/api/conversations/"+id, body, rcOrgA.UserID, rcOrgA)
	handler.UpdateConversationStatus(withID(c, id))
	require.Equal(t, http.StatusOK, w.Code)

	c, w = testContext(http.MethodGet, "/api/conversations/"+id, nil, rcOrgA.UserID, rcOrgA)
	handler.GetConversation(withID(c, id))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conversation))
	assert.Equal(t, models.ConversationClosed, conversation.Status)

	c, w = testContext(http.MethodGet, "/api/conversations", nil, rcOrgB.UserID, rcOrgB)
	handler.ListConversations(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"conversations":[]}`, w.Body.String())
}
