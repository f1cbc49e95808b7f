package repository

import (
	"context"

	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/utils"
)

// OrganizationRepository defines the interface for organization and membership data access
type OrganizationRepository interface {
	// CreateWithOwner creates an organization and its owner membership atomically
	CreateWithOwner(ctx context.Context, org *models.Organization, owner *models.OrganizationMember) error

	// FindByID finds an organization by ID
	FindByID(ctx context.Context, id string) (*models.Organization, error)

	// Update updates an organization
	Update(ctx context.Context, org *models.Organization) error

	// AddMember inserts a membership, or merges it into the existing row
	// for the same (user, organization) pair
	AddMember(ctx context.Context, member *models.OrganizationMember) error

	// UpdateMember saves changes to an existing membership
	UpdateMember(ctx context.Context, member *models.OrganizationMember) error

	// FindMember finds the membership of a user in an organization, in any status
	FindMember(ctx context.Context, organizationID string, userID uint64) (*models.OrganizationMember, error)

	// FindMemberByInviteToken finds the membership an invite token was issued for
	FindMemberByInviteToken(ctx context.Context, token string) (*models.OrganizationMember, error)

	// ListAcceptedByUserID lists a user's accepted memberships, oldest first
	ListAcceptedByUserID(ctx context.Context, userID uint64) ([]models.OrganizationMember, error)

	// ListMembers lists all members of an organization
	ListMembers(ctx context.Context, organizationID string) ([]models.OrganizationMember, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// CreateWithOrganization creates a user, their first organization,
	// and the owner membership within a single transaction.
	CreateWithOrganization(ctx context.Context, user *models.User, org *models.Organization, member *models.OrganizationMember) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// ScopedRepository defines data access for a tenant-scoped record type.
type ScopedRepository[T any] interface {
	// Create inserts a record. The caller stamps the organization beforehand.
	Create(ctx context.Context, item *T) error

	// FindByID finds a record by ID regardless of organization
	FindByID(ctx context.Context, id uint64) (*T, error)

	// ListVisible lists the records visible to an organization, newest first
	ListVisible(ctx context.Context, organizationID string) ([]T, error)

	// Update saves a record
	Update(ctx context.Context, item *T) error

	// Delete soft deletes a record where the model supports it
	Delete(ctx context.Context, id uint64) error
}

// MessageRepository adds conversation-level queries to message storage
type MessageRepository interface {
	ScopedRepository[models.Message]

	// ListByConversation lists a page of the messages of a conversation visible to an organization, oldest first
	ListByConversation(ctx context.Context, conversationID uint64, organizationID string, params utils.PageParams) ([]models.Message, int64, error)
}
