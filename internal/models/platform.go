package models

import (
	"time"

	"github.com/yukikurage/dana-ai-api/internal/tenancy"
	"gorm.io/gorm"
)

type PlatformKind string

const (
	PlatformFacebook   PlatformKind = "facebook"
	PlatformInstagram  PlatformKind = "instagram"
	PlatformWhatsApp   PlatformKind = "whatsapp"
	PlatformSlack      PlatformKind = "slack"
	PlatformEmail      PlatformKind = "email"
	PlatformHubSpot    PlatformKind = "hubspot"
	PlatformSalesforce PlatformKind = "salesforce"
)

// Valid reports whether k is a supported platform.
func (k PlatformKind) Valid() bool {
	switch k {
	case PlatformFacebook, PlatformInstagram, PlatformWhatsApp, PlatformSlack,
		PlatformEmail, PlatformHubSpot, PlatformSalesforce:
		return true
	}
	return false
}

// Platform is a connected messaging or CRM account.
type Platform struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Kind           PlatformKind   `gorm:"type:varchar(20);not null" json:"kind"`
	AccountName    string         `gorm:"type:varchar(255)" json:"account_name,omitempty"`
	Connected      bool           `gorm:"not null;default:false" json:"connected"`
	OrganizationID *string        `gorm:"type:varchar(36);index" json:"organization_id"`
	CreatedBy      uint64         `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p Platform) TenantScope() tenancy.Scope {
	return tenancy.ScopeOf(p.OrganizationID)
}

func (p Platform) WithOrganizationID(organizationID string) Platform {
	p.OrganizationID = &organizationID
	return p
}
