package models

import (
	"time"

	"github.com/yukikurage/dana-ai-api/internal/tenancy"
)

type MessageDirection string

const (
	MessageInbound  MessageDirection = "inbound"
	MessageOutbound MessageDirection = "outbound"
)

type Message struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	ConversationID uint64           `gorm:"not null;index" json:"conversation_id"`
	Sender         string           `gorm:"type:varchar(255);not null" json:"sender"`
	Content        string           `gorm:"type:text;not null" json:"content"`
	Direction      MessageDirection `gorm:"type:varchar(20);not null" json:"direction"`
	OrganizationID *string          `gorm:"type:varchar(36);index" json:"organization_id"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (m Message) TenantScope() tenancy.Scope {
	return tenancy.ScopeOf(m.OrganizationID)
}

func (m Message) WithOrganizationID(organizationID string) Message {
	m.OrganizationID = &organizationID
	return m
}
