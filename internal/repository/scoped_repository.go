package repository

import (
	"context"

	"github.com/yukikurage/dana-ai-api/internal/database"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/utils"
	"gorm.io/gorm"
)

// GormScopedRepository is a GORM implementation of ScopedRepository
type GormScopedRepository[T any] struct {
	db    *gorm.DB
	order string
}

// NewScopedRepository creates a ScopedRepository listing records in the given order
func NewScopedRepository[T any](db *gorm.DB, order string) *GormScopedRepository[T] {
	return &GormScopedRepository[T]{db: db, order: order}
}

// NewPlatformRepository creates the repository for connected platforms
func NewPlatformRepository(db *gorm.DB) ScopedRepository[models.Platform] {
	return NewScopedRepository[models.Platform](db, "created_at DESC, id DESC")
}

// NewConversationRepository creates the repository for conversations
func NewConversationRepository(db *gorm.DB) ScopedRepository[models.Conversation] {
	return NewScopedRepository[models.Conversation](db, "updated_at DESC, id DESC")
}

// NewKnowledgeBaseRepository creates the repository for knowledge-base items
func NewKnowledgeBaseRepository(db *gorm.DB) ScopedRepository[models.KnowledgeBaseItem] {
	return NewScopedRepository[models.KnowledgeBaseItem](db, "created_at DESC, id DESC")
}

// Create inserts a record
func (r *GormScopedRepository[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID finds a record by ID
func (r *GormScopedRepository[T]) FindByID(ctx context.Context, id uint64) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListVisible lists the records an organization may see
func (r *GormScopedRepository[T]) ListVisible(ctx context.Context, organizationID string) ([]T, error) {
	items := []T{}
	if err := r.db.WithContext(ctx).
		Model(new(T)).
		Scopes(database.VisibleToOrganization(organizationID)).
		Order(r.order).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update saves a record
func (r *GormScopedRepository[T]) Update(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete deletes a record by ID
func (r *GormScopedRepository[T]) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(new(T), id).Error
}

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	*GormScopedRepository[models.Message]
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{
		GormScopedRepository: NewScopedRepository[models.Message](db, "created_at ASC, id ASC"),
	}
}

// ListByConversation lists one page of the messages of a conversation visible
// to an organization, with the total count of visible messages
func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID uint64, organizationID string, params utils.PageParams) ([]models.Message, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Scopes(database.VisibleToOrganization(organizationID)).
		Where("conversation_id = ?", conversationID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	messages := []models.Message{}
	if err := query.
		Scopes(database.Paginate(params)).
		Order(r.order).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}
