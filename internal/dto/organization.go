package dto

import (
	"time"

	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Plan     models.PlanTier `json:"plan"`
	Logo     string          `json:"logo,omitempty"`
	Website  string          `json:"website,omitempty"`
	Industry string          `json:"industry,omitempty"`
	Size     string          `json:"size,omitempty"`
}

// OrganizationWithRoleDTO represents an organization with the user's role
type OrganizationWithRoleDTO struct {
	OrganizationDTO
	Role tenancy.Role `json:"role"`
}

// OrganizationMemberDTO represents a member in an organization
type OrganizationMemberDTO struct {
	User     UserDTO             `json:"user"`
	Role     tenancy.Role        `json:"role"`
	Status   models.InviteStatus `json:"status"`
	JoinedAt *time.Time          `json:"joined_at,omitempty"`
}

// OrganizationDetailDTO represents detailed organization information
type OrganizationDetailDTO struct {
	OrganizationDTO
	Members  []OrganizationMemberDTO `json:"members"`
	YourRole tenancy.Role            `json:"your_role"`
}

// InviteDTO is returned to the inviter. The token is delivered out of band.
type InviteDTO struct {
	UserID    uint64       `json:"user_id"`
	Role      tenancy.Role `json:"role"`
	Token     string       `json:"invite_token"`
	ExpiresAt *time.Time   `json:"expires_at"`
}

// LoginResponse carries the user and a bearer token for API clients
type LoginResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:       org.ID,
		Name:     org.Name,
		Plan:     org.Plan,
		Logo:     org.Logo,
		Website:  org.Website,
		Industry: org.Industry,
		Size:     org.Size,
	}
}

// ToOrganizationWithRoleDTO converts an organization member to DTO with role
func ToOrganizationWithRoleDTO(member models.OrganizationMember) OrganizationWithRoleDTO {
	return OrganizationWithRoleDTO{
		OrganizationDTO: ToOrganizationDTO(member.Organization),
		Role:            member.Role,
	}
}

// ToOrganizationMemberDTO converts a member to DTO
func ToOrganizationMemberDTO(member models.OrganizationMember) OrganizationMemberDTO {
	return OrganizationMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		Status:   member.Status,
		JoinedAt: member.JoinedAt,
	}
}

// ToOrganizationDetailDTO converts organization with members to detailed DTO
func ToOrganizationDetailDTO(org models.Organization, members []models.OrganizationMember, yourRole tenancy.Role) OrganizationDetailDTO {
	memberDTOs := make([]OrganizationMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToOrganizationMemberDTO(member)
	}

	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org),
		Members:         memberDTOs,
		YourRole:        yourRole,
	}
}

// ToInviteDTO converts a pending membership to InviteDTO
func ToInviteDTO(member models.OrganizationMember) InviteDTO {
	invite := InviteDTO{
		UserID:    member.UserID,
		Role:      member.Role,
		ExpiresAt: member.InviteExpiresAt,
	}
	if member.InviteToken != nil {
		invite.Token = *member.InviteToken
	}
	return invite
}
