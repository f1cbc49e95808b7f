package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/dana-ai-api/internal/constants"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/repository"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
	"github.com/yukikurage/dana-ai-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound       = fmt.Errorf("organization %w", tenancy.ErrNotFound)
	ErrOrganizationMemberNotFound = fmt.Errorf("organization member %w", tenancy.ErrNotFound)
	ErrInvalidOrganizationName    = fmt.Errorf("%w: organization name cannot be empty", tenancy.ErrValidation)
	ErrInvalidPlan                = fmt.Errorf("%w: unknown plan tier", tenancy.ErrValidation)
	ErrInvalidRole                = fmt.Errorf("%w: role must be admin or member", tenancy.ErrValidation)
	ErrNotOrganizationMember      = fmt.Errorf("%w: user is not a member of the organization", tenancy.ErrAuthorization)
	ErrNoOrganization             = fmt.Errorf("%w: user does not belong to any organization", tenancy.ErrAuthorization)
	ErrInsufficientRole           = fmt.Errorf("%w: role does not permit this action", tenancy.ErrAuthorization)
	ErrInvalidInvite              = fmt.Errorf("%w: invite is not valid", tenancy.ErrAuthorization)
	ErrInviteExpired              = fmt.Errorf("%w: invite has expired", tenancy.ErrAuthorization)
	ErrCannotRevokeOwner          = fmt.Errorf("%w: the owner cannot be removed", tenancy.ErrAuthorization)
	ErrCannotRemoveYourself       = fmt.Errorf("%w: cannot remove yourself from the organization", tenancy.ErrValidation)
	ErrAlreadyOrganizationMember  = errors.New("user is already a member of this organization")
	ErrInviteTokenGeneration      = errors.New("failed to generate invite token")
)

// OrganizationService is the organization directory: organizations,
// memberships and the role queries that back request context resolution.
type OrganizationService struct {
	orgRepo   repository.OrganizationRepository
	userRepo  repository.UserRepository
	inviteTTL time.Duration
	now       func() time.Time
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository, inviteTTL time.Duration) *OrganizationService {
	if inviteTTL <= 0 {
		inviteTTL = constants.DefaultInviteTTL
	}
	return &OrganizationService{
		orgRepo:   orgRepo,
		userRepo:  userRepo,
		inviteTTL: inviteTTL,
		now:       time.Now,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name     string
	Plan     models.PlanTier
	Logo     string
	Website  string
	Industry string
	Size     string
	OwnerID  uint64
}

// CreateOrganization creates a new organization owned by the creating user.
func (s *OrganizationService) CreateOrganization(ctx context.Context, input CreateOrganizationInput) (*models.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidOrganizationName
	}
	plan := input.Plan
	if plan == "" {
		plan = models.PlanBasic
	}
	if !plan.Valid() {
		return nil, ErrInvalidPlan
	}

	org := &models.Organization{
		Name:     name,
		Plan:     plan,
		Logo:     input.Logo,
		Website:  input.Website,
		Industry: input.Industry,
		Size:     input.Size,
		OwnerID:  input.OwnerID,
	}

	joinedAt := s.now()
	owner := &models.OrganizationMember{
		UserID:   input.OwnerID,
		Role:     tenancy.RoleOwner,
		Status:   models.InviteStatusAccepted,
		JoinedAt: &joinedAt,
	}

	if err := s.orgRepo.CreateWithOwner(ctx, org, owner); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return org, nil
}

// ListOrganizationsForUser returns the accepted memberships of a user with their organizations.
func (s *OrganizationService) ListOrganizationsForUser(ctx context.Context, userID uint64) ([]models.OrganizationMember, error) {
	memberships, err := s.orgRepo.ListAcceptedByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

// GetOrganizationWithMembers returns an organization and all of its members.
func (s *OrganizationService) GetOrganizationWithMembers(ctx context.Context, orgID string) (*models.Organization, []models.OrganizationMember, error) {
	org, err := s.findOrganization(ctx, orgID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.orgRepo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	return org, members, nil
}

// UpdateOrganizationInput holds optional organization profile changes.
type UpdateOrganizationInput struct {
	Name     *string
	Plan     *models.PlanTier
	Logo     *string
	Website  *string
	Industry *string
	Size     *string
}

// UpdateOrganization updates the profile of the request's organization.
func (s *OrganizationService) UpdateOrganization(ctx context.Context, rc tenancy.RequestContext, input UpdateOrganizationInput) (*models.Organization, error) {
	if !rc.Role.AtLeast(tenancy.RoleAdmin) {
		return nil, ErrInsufficientRole
	}

	org, err := s.findOrganization(ctx, rc.OrganizationID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidOrganizationName
		}
		org.Name = name
	}
	if input.Plan != nil {
		if !input.Plan.Valid() {
			return nil, ErrInvalidPlan
		}
		org.Plan = *input.Plan
	}
	if input.Logo != nil {
		org.Logo = *input.Logo
	}
	if input.Website != nil {
		org.Website = *input.Website
	}
	if input.Industry != nil {
		org.Industry = *input.Industry
	}
	if input.Size != nil {
		org.Size = *input.Size
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// InviteMemberInput identifies who to invite and with which role.
type InviteMemberInput struct {
	Username string
	Role     tenancy.Role
}

// InviteMember creates a pending membership with a single-use token. Inviting
// someone with a pending or revoked membership replaces that row.
func (s *OrganizationService) InviteMember(ctx context.Context, rc tenancy.RequestContext, input InviteMemberInput) (*models.OrganizationMember, error) {
	if !rc.Role.AtLeast(tenancy.RoleAdmin) {
		return nil, ErrInsufficientRole
	}
	if input.Role != tenancy.RoleAdmin && input.Role != tenancy.RoleMember {
		return nil, ErrInvalidRole
	}

	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	existing, err := s.orgRepo.FindMember(ctx, rc.OrganizationID, user.ID)
	switch {
	case err == nil && existing.IsAccepted():
		return nil, ErrAlreadyOrganizationMember
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	token, err := utils.GenerateInviteToken()
	if err != nil {
		return nil, ErrInviteTokenGeneration
	}
	expiresAt := s.now().Add(s.inviteTTL)
	inviter := rc.UserID

	member := &models.OrganizationMember{
		OrganizationID:  rc.OrganizationID,
		UserID:          user.ID,
		Role:            input.Role,
		Status:          models.InviteStatusPending,
		InviteToken:     &token,
		InviteExpiresAt: &expiresAt,
		InvitedBy:       &inviter,
	}

	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member to organization: %w", err)
	}

	return member, nil
}

// AcceptInvite accepts a pending invite addressed to userID.
func (s *OrganizationService) AcceptInvite(ctx context.Context, userID uint64, token string) (*models.OrganizationMember, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidInvite
	}

	member, err := s.orgRepo.FindMemberByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInvite
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}

	if member.UserID != userID || member.Status != models.InviteStatusPending {
		return nil, ErrInvalidInvite
	}
	now := s.now()
	if member.InviteExpired(now) {
		return nil, ErrInviteExpired
	}

	member.Status = models.InviteStatusAccepted
	member.JoinedAt = &now
	member.InviteToken = nil
	member.InviteExpiresAt = nil

	if err := s.orgRepo.UpdateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}

	return member, nil
}

// RevokeMember revokes another user's membership. Admins may revoke members;
// only the owner may revoke admins; nobody may revoke the owner.
func (s *OrganizationService) RevokeMember(ctx context.Context, rc tenancy.RequestContext, targetID uint64) error {
	if !rc.Role.AtLeast(tenancy.RoleAdmin) {
		return ErrInsufficientRole
	}
	if targetID == rc.UserID {
		return ErrCannotRemoveYourself
	}

	member, err := s.orgRepo.FindMember(ctx, rc.OrganizationID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationMemberNotFound
		}
		return fmt.Errorf("failed to find organization member: %w", err)
	}

	if member.Role == tenancy.RoleOwner {
		return ErrCannotRevokeOwner
	}
	if member.Role == tenancy.RoleAdmin && rc.Role != tenancy.RoleOwner {
		return ErrInsufficientRole
	}

	member.Status = models.InviteStatusRevoked
	member.InviteToken = nil
	member.InviteExpiresAt = nil

	if err := s.orgRepo.UpdateMember(ctx, member); err != nil {
		return fmt.Errorf("failed to revoke member: %w", err)
	}

	return nil
}

// AcceptedMembership returns the user's membership in the organization if it
// has been accepted, and ErrNotOrganizationMember otherwise.
func (s *OrganizationService) AcceptedMembership(ctx context.Context, userID uint64, orgID string) (*models.OrganizationMember, error) {
	member, err := s.orgRepo.FindMember(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}
	if !member.IsAccepted() {
		return nil, ErrNotOrganizationMember
	}
	return member, nil
}

// IsMember reports whether the user holds an accepted membership in the organization.
func (s *OrganizationService) IsMember(ctx context.Context, userID uint64, orgID string) (bool, error) {
	_, err := s.AcceptedMembership(ctx, userID, orgID)
	if errors.Is(err, ErrNotOrganizationMember) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RoleOf returns the user's role in the organization. ok is false when the
// user holds no accepted membership.
func (s *OrganizationService) RoleOf(ctx context.Context, userID uint64, orgID string) (role tenancy.Role, ok bool, err error) {
	member, err := s.AcceptedMembership(ctx, userID, orgID)
	if errors.Is(err, ErrNotOrganizationMember) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return member.Role, true, nil
}

// DefaultMembership returns the user's earliest accepted membership.
func (s *OrganizationService) DefaultMembership(ctx context.Context, userID uint64) (*models.OrganizationMember, error) {
	memberships, err := s.orgRepo.ListAcceptedByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return nil, ErrNoOrganization
	}
	return &memberships[0], nil
}

func (s *OrganizationService) findOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}
