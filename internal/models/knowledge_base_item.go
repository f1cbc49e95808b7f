package models

import (
	"time"

	"github.com/yukikurage/dana-ai-api/internal/tenancy"
	"gorm.io/gorm"
)

// KnowledgeBaseItem is a document the AI responder may draw on.
type KnowledgeBaseItem struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Content        string         `gorm:"type:text" json:"content"`
	FileType       string         `gorm:"type:varchar(50)" json:"file_type,omitempty"`
	Tags           string         `gorm:"type:varchar(512)" json:"tags,omitempty"`
	OrganizationID *string        `gorm:"type:varchar(36);index" json:"organization_id"`
	CreatedBy      uint64         `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (k KnowledgeBaseItem) TenantScope() tenancy.Scope {
	return tenancy.ScopeOf(k.OrganizationID)
}

func (k KnowledgeBaseItem) WithOrganizationID(organizationID string) KnowledgeBaseItem {
	k.OrganizationID = &organizationID
	return k
}
