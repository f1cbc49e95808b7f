package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanTier string

const (
	PlanBasic        PlanTier = "basic"
	PlanProfessional PlanTier = "professional"
	PlanEnterprise   PlanTier = "enterprise"
)

// Valid reports whether p is a known plan tier.
func (p PlanTier) Valid() bool {
	switch p {
	case PlanBasic, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

type Organization struct {
	ID        string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Plan      PlanTier       `gorm:"type:varchar(20);not null;default:'basic'" json:"plan"`
	Logo      string         `gorm:"type:varchar(512)" json:"logo,omitempty"`
	Website   string         `gorm:"type:varchar(512)" json:"website,omitempty"`
	Industry  string         `gorm:"type:varchar(100)" json:"industry,omitempty"`
	Size      string         `gorm:"type:varchar(50)" json:"size,omitempty"`
	OwnerID   uint64         `gorm:"not null;index" json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
}

// BeforeCreate assigns a new id. Organization ids are never reused.
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Plan == "" {
		o.Plan = PlanBasic
	}
	return nil
}
