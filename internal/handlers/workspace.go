package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/dana-ai-api/internal/dto"
	apierrors "github.com/yukikurage/dana-ai-api/internal/errors"
	"github.com/yukikurage/dana-ai-api/internal/services"
	"github.com/yukikurage/dana-ai-api/internal/utils"
)

// WorkspaceHandler serves the tenant-scoped records of the current organization.
// Records are always stored under the resolved organization.
type WorkspaceHandler struct {
	workspace *services.WorkspaceService
}

func NewWorkspaceHandler(workspace *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspace: workspace}
}

// ListPlatforms returns the connected platforms of the current organization
func (h *WorkspaceHandler) ListPlatforms(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	platforms, err := h.workspace.ListPlatforms(c.Request.Context(), rc)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"platforms": platforms})
}

// CreatePlatform connects a platform to the current organization
func (h *WorkspaceHandler) CreatePlatform(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	var req dto.CreatePlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.workspace.CreatePlatform(c.Request.Context(), rc, req.ToPlatform())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// DeletePlatform disconnects a platform
func (h *WorkspaceHandler) DeletePlatform(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.workspace.DeletePlatform(c.Request.Context(), rc, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Platform deleted successfully"})
}

// ListConversations returns the conversations of the current organization
func (h *WorkspaceHandler) ListConversations(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	conversations, err := h.workspace.ListConversations(c.Request.Context(), rc)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetConversation returns a single conversation
func (h *WorkspaceHandler) GetConversation(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	conversation, err := h.workspace.GetConversation(c.Request.Context(), rc, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// CreateConversation opens a conversation
func (h *WorkspaceHandler) CreateConversation(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.workspace.CreateConversation(c.Request.Context(), rc, req.ToConversation())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateConversationStatus opens or closes a conversation
func (h *WorkspaceHandler) UpdateConversationStatus(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateConversationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	conversation, err := h.workspace.UpdateConversationStatus(c.Request.Context(), rc, id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// ListMessages returns the messages of a conversation
func (h *WorkspaceHandler) ListMessages(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.ParsePageParams(c)
	messages, total, err := h.workspace.ListMessages(c.Request.Context(), rc, id, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":   messages,
		"pagination": utils.NewPageInfo(params, total),
	})
}

// CreateMessage appends a message to a conversation
func (h *WorkspaceHandler) CreateMessage(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.workspace.CreateMessage(c.Request.Context(), rc, id, req.ToMessage())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListKnowledgeBase returns the knowledge base of the current organization
func (h *WorkspaceHandler) ListKnowledgeBase(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	items, err := h.workspace.ListKnowledgeBase(c.Request.Context(), rc)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetKnowledgeBaseItem returns a single knowledge-base item
func (h *WorkspaceHandler) GetKnowledgeBaseItem(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.workspace.GetKnowledgeBaseItem(c.Request.Context(), rc, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// CreateKnowledgeBaseItem stores a knowledge-base item
func (h *WorkspaceHandler) CreateKnowledgeBaseItem(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	var req dto.CreateKnowledgeBaseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.workspace.CreateKnowledgeBaseItem(c.Request.Context(), rc, req.ToKnowledgeBaseItem())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// DeleteKnowledgeBaseItem deletes a knowledge-base item
func (h *WorkspaceHandler) DeleteKnowledgeBaseItem(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.workspace.DeleteKnowledgeBaseItem(c.Request.Context(), rc, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Knowledge base item deleted successfully"})
}
