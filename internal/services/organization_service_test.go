package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
	"gorm.io/gorm"
)

type orgFixture struct {
	db    *gorm.DB
	svc   *OrganizationService
	owner *models.User
	org   *models.Organization
	rc    tenancy.RequestContext
}

func setupOrgFixture(t *testing.T) orgFixture {
	t.Helper()
	db := newTestDB(t)
	svc := newTestOrganizationService(t, db)
	owner := newTestUser(t, db, "owner")

	org, err := svc.CreateOrganization(bg, CreateOrganizationInput{Name: "Acme", OwnerID: owner.ID})
	require.NoError(t, err)

	return orgFixture{
		db:    db,
		svc:   svc,
		owner: owner,
		org:   org,
		rc:    tenancy.RequestContext{UserID: owner.ID, OrganizationID: org.ID, Role: tenancy.RoleOwner},
	}
}

// join invites username with role and accepts the invite.
func (f orgFixture) join(t *testing.T, username string, role tenancy.Role) *models.User {
	t.Helper()
	user := newTestUser(t, f.db, username)
	invite, err := f.svc.InviteMember(bg, f.rc, InviteMemberInput{Username: username, Role: role})
	require.NoError(t, err)
	_, err = f.svc.AcceptInvite(bg, user.ID, *invite.InviteToken)
	require.NoError(t, err)
	return user
}

func TestOrganizationService_CreateOrganization(t *testing.T) {
	f := setupOrgFixture(t)

	assert.Equal(t, "Acme", f.org.Name)
	assert.Equal(t, models.PlanBasic, f.org.Plan)

	role, ok, err := f.svc.RoleOf(bg, f.owner.ID, f.org.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tenancy.RoleOwner, role)

	_, err = f.svc.CreateOrganization(bg, CreateOrganizationInput{Name: "  ", OwnerID: f.owner.ID})
	assert.ErrorIs(t, err, ErrInvalidOrganizationName)
	assert.ErrorIs(t, err, tenancy.ErrValidation)

	_, err = f.svc.CreateOrganization(bg, CreateOrganizationInput{Name: "Beta", Plan: "platinum", OwnerID: f.owner.ID})
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestOrganizationService_InviteAndAccept(t *testing.T) {
	f := setupOrgFixture(t)
	invitee := newTestUser(t, f.db, "invitee")

	invite, err := f.svc.InviteMember(bg, f.rc, InviteMemberInput{Username: "invitee", Role: tenancy.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, models.InviteStatusPending, invite.Status)
	require.NotNil(t, invite.InviteToken)
	require.NotNil(t, invite.InviteExpiresAt)

	// a pending invite grants nothing
	isMember, err := f.svc.IsMember(bg, invitee.ID, f.org.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
	_, err = f.svc.AcceptedMembership(bg, invitee.ID, f.org.ID)
	assert.ErrorIs(t, err, ErrNotOrganizationMember)

	member, err := f.svc.AcceptInvite(bg, invitee.ID, *invite.InviteToken)
	require.NoError(t, err)
	assert.True(t, member.IsAccepted())
	assert.Nil(t, member.InviteToken)
	assert.NotNil(t, member.JoinedAt)

	role, ok, err := f.svc.RoleOf(bg, invitee.ID, f.org.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tenancy.RoleMember, role)

	// the token is single use
	_, err = f.svc.AcceptInvite(bg, invitee.ID, *invite.InviteToken)
	assert.ErrorIs(t, err, ErrInvalidInvite)

	_, err = f.svc.InviteMember(bg, f.rc, InviteMemberInput{Username: "invitee", Role: tenancy.RoleMember})
	assert.ErrorIs(t, err, ErrAlreadyOrganizationMember)
}

func TestOrganizationService_InviteRules(t *testing.T) {
	f := setupOrgFixture(t)
	newTestUser(t, f.db, "target")
	member := f.join(t, "member", tenancy.RoleMember)

	memberRC := tenancy.RequestContext{UserID: member.ID, OrganizationID: f.org.ID, Role: tenancy.RoleMember}
	_, err := f.svc.InviteMember(bg, memberRC, InviteMemberInput{Username: "target", Role: tenancy.RoleMember})
	assert.ErrorIs(t, err, ErrInsufficientRole)

	_, err = f.svc.InviteMember(bg, f.rc, InviteMemberInput{Username: "target", Role: tenancy.RoleOwner})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.svc.InviteMember(bg, f.rc, InviteMemberInput{Username: "ghost", Role: tenancy.RoleMember})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestOrganizationService_AcceptInviteRejections(t *testing.T) {
	f := setupOrgFixture(t)
	invitee := newTestUser(t, f.db, "invitee")
	stranger := newTestUser(t, f.db, "stranger")

	invite, err := f.svc.InviteMember(bg, f.rc, InviteMemberInput{Username: "invitee", Role: tenancy.RoleAdmin})
	require.NoError(t, err)
	token := *invite.InviteToken

	_, err = f.svc.AcceptInvite(bg, stranger.ID, token)
	assert.ErrorIs(t, err, ErrInvalidInvite)

	_, err = f.svc.AcceptInvite(bg, invitee.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInvite)

	f.svc.now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }
	_, err = f.svc.AcceptInvite(bg, invitee.ID, token)
	assert.ErrorIs(t, err, ErrInviteExpired)
	assert.ErrorIs(t, err, tenancy.ErrAuthorization)
}

func TestOrganizationService_RevokeMember(t *testing.T) {
	f := setupOrgFixture(t)
	admin := f.join(t, "admin", tenancy.RoleAdmin)
	otherAdmin := f.join(t, "admin2", tenancy.RoleAdmin)
	member := f.join(t, "member", tenancy.RoleMember)

	adminRC := tenancy.RequestContext{UserID: admin.ID, OrganizationID: f.org.ID, Role: tenancy.RoleAdmin}

	assert.ErrorIs(t, f.svc.RevokeMember(bg, adminRC, f.owner.ID), ErrCannotRevokeOwner)
	assert.ErrorIs(t, f.svc.RevokeMember(bg, adminRC, otherAdmin.ID), ErrInsufficientRole)
	assert.ErrorIs(t, f.svc.RevokeMember(bg, adminRC, admin.ID), ErrCannotRemoveYourself)
	assert.ErrorIs(t, f.svc.RevokeMember(bg, adminRC, member.ID+100), ErrOrganizationMemberNotFound)

	require.NoError(t, f.svc.RevokeMember(bg, adminRC, member.ID))
	isMember, err := f.svc.IsMember(bg, member.ID, f.org.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	require.NoError(t, f.svc.RevokeMember(bg, f.rc, otherAdmin.ID))
}

func TestOrganizationService_ReinviteRevokedMemberKeepsOneRow(t *testing.T) {
	f := setupOrgFixture(t)
	member := f.join(t, "member", tenancy.RoleMember)
	require.NoError(t, f.svc.RevokeMember(bg, f.rc, member.ID))

	invite, err := f.svc.InviteMember(bg, f.rc, InviteMemberInput{Username: "member", Role: tenancy.RoleAdmin})
	require.NoError(t, err)
	_, err = f.svc.AcceptInvite(bg, member.ID, *invite.InviteToken)
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", f.org.ID, member.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	role, ok, err := f.svc.RoleOf(bg, member.ID, f.org.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tenancy.RoleAdmin, role)
}

func TestOrganizationService_DefaultMembership(t *testing.T) {
	f := setupOrgFixture(t)

	_, err := f.svc.CreateOrganization(bg, CreateOrganizationInput{Name: "Second", OwnerID: f.owner.ID})
	require.NoError(t, err)

	member, err := f.svc.DefaultMembership(bg, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, f.org.ID, member.OrganizationID)

	loner := newTestUser(t, f.db, "loner")
	_, err = f.svc.DefaultMembership(bg, loner.ID)
	assert.ErrorIs(t, err, ErrNoOrganization)

	memberships, err := f.svc.ListOrganizationsForUser(bg, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, memberships, 2)
}

func TestOrganizationService_UpdateOrganization(t *testing.T) {
	f := setupOrgFixture(t)
	member := f.join(t, "member", tenancy.RoleMember)

	name := "Acme Corp"
	plan := models.PlanEnterprise
	updated, err := f.svc.UpdateOrganization(bg, f.rc, UpdateOrganizationInput{Name: &name, Plan: &plan})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, models.PlanEnterprise, updated.Plan)

	memberRC := tenancy.RequestContext{UserID: member.ID, OrganizationID: f.org.ID, Role: tenancy.RoleMember}
	_, err = f.svc.UpdateOrganization(bg, memberRC, UpdateOrganizationInput{Name: &name})
	assert.ErrorIs(t, err, ErrInsufficientRole)

	bad := models.PlanTier("free")
	_, err = f.svc.UpdateOrganization(bg, f.rc, UpdateOrganizationInput{Plan: &bad})
	assert.ErrorIs(t, err, ErrInvalidPlan)

	org, members, err := f.svc.GetOrganizationWithMembers(bg, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", org.Name)
	assert.Len(t, members, 2)
	assert.Equal(t, "owner", members[0].User.Username)

	_, _, err = f.svc.GetOrganizationWithMembers(bg, "missing-org")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}
