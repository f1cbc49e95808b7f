package models

import (
	"time"

	"github.com/yukikurage/dana-ai-api/internal/tenancy"
	"gorm.io/gorm"
)

type ConversationStatus string

const (
	ConversationOpen   ConversationStatus = "open"
	ConversationClosed ConversationStatus = "closed"
)

type Conversation struct {
	ID             uint64             `gorm:"primarykey" json:"id"`
	PlatformID     *uint64            `gorm:"index" json:"platform_id,omitempty"`
	CustomerName   string             `gorm:"type:varchar(255);not null" json:"customer_name"`
	Channel        string             `gorm:"type:varchar(50)" json:"channel,omitempty"`
	Status         ConversationStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	OrganizationID *string            `gorm:"type:varchar(36);index" json:"organization_id"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (c Conversation) TenantScope() tenancy.Scope {
	return tenancy.ScopeOf(c.OrganizationID)
}

func (c Conversation) WithOrganizationID(organizationID string) Conversation {
	c.OrganizationID = &organizationID
	return c
}
