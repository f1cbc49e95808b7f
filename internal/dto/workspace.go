package dto

import (
	"github.com/yukikurage/dana-ai-api/internal/models"
)

// Request bodies for the workspace endpoints. Only the fields a client may set
// are bound; ids, organization, authorship and timestamps are assigned by the
// server.

// CreatePlatformRequest connects a platform account
type CreatePlatformRequest struct {
	Name        string              `json:"name" binding:"required"`
	Kind        models.PlatformKind `json:"kind" binding:"required"`
	AccountName string              `json:"account_name"`
}

// CreateConversationRequest opens a conversation
type CreateConversationRequest struct {
	PlatformID   *uint64                   `json:"platform_id"`
	CustomerName string                    `json:"customer_name" binding:"required"`
	Channel      string                    `json:"channel"`
	Status       models.ConversationStatus `json:"status"`
}

// UpdateConversationStatusRequest opens or closes a conversation
type UpdateConversationStatusRequest struct {
	Status models.ConversationStatus `json:"status" binding:"required"`
}

// CreateMessageRequest appends a message to a conversation
type CreateMessageRequest struct {
	Sender    string                  `json:"sender" binding:"required"`
	Content   string                  `json:"content" binding:"required"`
	Direction models.MessageDirection `json:"direction"`
}

// CreateKnowledgeBaseItemRequest stores a knowledge-base document
type CreateKnowledgeBaseItemRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	FileType string `json:"file_type"`
	Tags     string `json:"tags"`
}

// Conversion functions

// ToPlatform converts the request to an unsaved Platform
func (r CreatePlatformRequest) ToPlatform() models.Platform {
	return models.Platform{
		Name:        r.Name,
		Kind:        r.Kind,
		AccountName: r.AccountName,
	}
}

// ToConversation converts the request to an unsaved Conversation
func (r CreateConversationRequest) ToConversation() models.Conversation {
	return models.Conversation{
		PlatformID:   r.PlatformID,
		CustomerName: r.CustomerName,
		Channel:      r.Channel,
		Status:       r.Status,
	}
}

// ToMessage converts the request to an unsaved Message
func (r CreateMessageRequest) ToMessage() models.Message {
	return models.Message{
		Sender:    r.Sender,
		Content:   r.Content,
		Direction: r.Direction,
	}
}

// ToKnowledgeBaseItem converts the request to an unsaved KnowledgeBaseItem
func (r CreateKnowledgeBaseItemRequest) ToKnowledgeBaseItem() models.KnowledgeBaseItem {
	return models.KnowledgeBaseItem{
		Title:    r.Title,
		Content:  r.Content,
		FileType: r.FileType,
		Tags:     r.Tags,
	}
}
