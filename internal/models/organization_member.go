package models

import (
	"time"

	"github.com/yukikurage/dana-ai-api/internal/tenancy"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRevoked  InviteStatus = "revoked"
)

// OrganizationMember is a user's membership in one organization.
// (user_id, organization_id) is unique.
type OrganizationMember struct {
	ID              uint64       `gorm:"primarykey" json:"id"`
	OrganizationID  string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_org_members_user_org,priority:2;index" json:"organization_id"`
	UserID          uint64       `gorm:"not null;uniqueIndex:idx_org_members_user_org,priority:1" json:"user_id"`
	Role            tenancy.Role `gorm:"type:varchar(20);not null" json:"role"`
	Status          InviteStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	InviteToken     *string      `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	InviteExpiresAt *time.Time   `json:"invite_expires_at,omitempty"`
	InvitedBy       *uint64      `json:"invited_by,omitempty"`
	JoinedAt        *time.Time   `json:"joined_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsAccepted reports whether the membership grants access.
func (m OrganizationMember) IsAccepted() bool {
	return m.Status == InviteStatusAccepted
}

// InviteExpired reports whether a pending invite can no longer be accepted.
func (m OrganizationMember) InviteExpired(now time.Time) bool {
	return m.InviteExpiresAt != nil && now.After(*m.InviteExpiresAt)
}
