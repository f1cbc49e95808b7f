package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/dana-ai-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// memberConflictColumns is the unique (user, organization) pair of a membership.
var memberConflictColumns = []clause.Column{{Name: "user_id"}, {Name: "organization_id"}}

// memberMergeColumns are overwritten when a membership is re-added.
var memberMergeColumns = []string{"role", "status", "invite_token", "invite_expires_at", "invited_by", "joined_at", "updated_at"}

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateWithOwner creates an organization and its owner membership in a transaction
func (r *GormOrganizationRepository) CreateWithOwner(ctx context.Context, org *models.Organization, owner *models.OrganizationMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("create organization: %w", err)
		}

		owner.OrganizationID = org.ID
		if err := tx.Create(owner).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}

		return nil
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// AddMember upserts on (user_id, organization_id) so a user never holds two
// memberships in the same organization.
func (r *GormOrganizationRepository) AddMember(ctx context.Context, member *models.OrganizationMember) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   memberConflictColumns,
			DoUpdates: clause.AssignmentColumns(memberMergeColumns),
		}).
		Create(member).Error
}

// UpdateMember saves changes to an existing membership
func (r *GormOrganizationRepository) UpdateMember(ctx context.Context, member *models.OrganizationMember) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(member).Error
}

// FindMember finds a specific organization member
func (r *GormOrganizationRepository) FindMember(ctx context.Context, organizationID string, userID uint64) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindMemberByInviteToken finds the membership carrying an invite token
func (r *GormOrganizationRepository) FindMemberByInviteToken(ctx context.Context, token string) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	if err := r.db.WithContext(ctx).
		Where("invite_token = ?", token).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListAcceptedByUserID lists the organizations a user has joined, oldest membership first
func (r *GormOrganizationRepository) ListAcceptedByUserID(ctx context.Context, userID uint64) ([]models.OrganizationMember, error) {
	var memberships []models.OrganizationMember
	if err := r.db.WithContext(ctx).
		Preload("Organization").
		Where("user_id = ? AND status = ?", userID, models.InviteStatusAccepted).
		Order("joined_at ASC").
		Order("id ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists all members of an organization
func (r *GormOrganizationRepository) ListMembers(ctx context.Context, organizationID string) ([]models.OrganizationMember, error) {
	var members []models.OrganizationMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("organization_id = ?", organizationID).
		Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
