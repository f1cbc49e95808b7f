package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/dana-ai-api/internal/cache"
	"github.com/yukikurage/dana-ai-api/internal/constants"
	"github.com/yukikurage/dana-ai-api/internal/metrics"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/repository"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
	"github.com/yukikurage/dana-ai-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrPlatformNotFound          = fmt.Errorf("platform %w", tenancy.ErrNotFound)
	ErrConversationNotFound      = fmt.Errorf("conversation %w", tenancy.ErrNotFound)
	ErrKnowledgeBaseItemNotFound = fmt.Errorf("knowledge base item %w", tenancy.ErrNotFound)
	ErrRecordAccessDenied        = fmt.Errorf("%w: record belongs to another organization", tenancy.ErrAuthorization)
	ErrSharedRecordReadOnly      = fmt.Errorf("%w: shared records cannot be modified", tenancy.ErrAuthorization)
	ErrInvalidPlatformKind       = fmt.Errorf("%w: unsupported platform", tenancy.ErrValidation)
	ErrNameRequired              = fmt.Errorf("%w: name is required", tenancy.ErrValidation)
	ErrCustomerNameRequired      = fmt.Errorf("%w: customer name is required", tenancy.ErrValidation)
	ErrTitleRequired             = fmt.Errorf("%w: title is required", tenancy.ErrValidation)
	ErrContentRequired           = fmt.Errorf("%w: content is required", tenancy.ErrValidation)
	ErrInvalidDirection          = fmt.Errorf("%w: direction must be inbound or outbound", tenancy.ErrValidation)
	ErrInvalidConversationStatus = fmt.Errorf("%w: status must be open or closed", tenancy.ErrValidation)
)

// WorkspaceService serves the tenant-scoped records of an organization:
// connected platforms, conversations with their messages, and the knowledge
// base. Every read passes through the isolation guard and every write is
// stamped with the request's organization.
type WorkspaceService struct {
	platforms     repository.ScopedRepository[models.Platform]
	conversations repository.ScopedRepository[models.Conversation]
	messages      repository.MessageRepository
	knowledge     repository.ScopedRepository[models.KnowledgeBaseItem]
	cache         cache.Cache
	metrics       *metrics.Metrics
}

// WorkspaceRepositories groups the stores WorkspaceService reads and writes.
type WorkspaceRepositories struct {
	Platforms     repository.ScopedRepository[models.Platform]
	Conversations repository.ScopedRepository[models.Conversation]
	Messages      repository.MessageRepository
	Knowledge     repository.ScopedRepository[models.KnowledgeBaseItem]
}

// NewWorkspaceService creates a new WorkspaceService. A nil cache disables caching.
func NewWorkspaceService(repos WorkspaceRepositories, c cache.Cache, m *metrics.Metrics) *WorkspaceService {
	if c == nil {
		c = cache.Noop{}
	}
	return &WorkspaceService{
		platforms:     repos.Platforms,
		conversations: repos.Conversations,
		messages:      repos.Messages,
		knowledge:     repos.Knowledge,
		cache:         c,
		metrics:       m,
	}
}

// Platforms

// ListPlatforms returns the platforms visible to the request's organization.
func (s *WorkspaceService) ListPlatforms(ctx context.Context, rc tenancy.RequestContext) ([]models.Platform, error) {
	return cachedList(ctx, s, constants.CacheKeyPlatforms, rc, func() ([]models.Platform, error) {
		return s.platforms.ListVisible(ctx, rc.OrganizationID)
	})
}

// CreatePlatform records a platform connection for the request's organization.
func (s *WorkspaceService) CreatePlatform(ctx context.Context, rc tenancy.RequestContext, platform models.Platform) (*models.Platform, error) {
	platform.Name = strings.TrimSpace(platform.Name)
	if platform.Name == "" {
		return nil, ErrNameRequired
	}
	if !platform.Kind.Valid() {
		return nil, ErrInvalidPlatformKind
	}

	platform.ID = 0
	platform.Connected = false
	platform.CreatedBy = rc.UserID
	platform.CreatedAt, platform.UpdatedAt, platform.DeletedAt = time.Time{}, time.Time{}, gorm.DeletedAt{}
	stamped, err := tenancy.EnsureOrganizationContext(platform, rc.OrganizationID)
	if err != nil {
		return nil, err
	}

	if err := s.platforms.Create(ctx, &stamped); err != nil {
		return nil, fmt.Errorf("failed to create platform: %w", err)
	}
	s.invalidate(ctx, constants.CacheKeyPlatforms, rc)

	return &stamped, nil
}

// DeletePlatform disconnects a platform owned by the request's organization.
func (s *WorkspaceService) DeletePlatform(ctx context.Context, rc tenancy.RequestContext, id uint64) error {
	platform, err := s.GetPlatform(ctx, rc, id)
	if err != nil {
		return err
	}
	if !tenancy.MutationAllowed(*platform, rc.OrganizationID) {
		return ErrSharedRecordReadOnly
	}

	if err := s.platforms.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete platform: %w", err)
	}
	s.invalidate(ctx, constants.CacheKeyPlatforms, rc)

	return nil
}

// GetPlatform returns a platform if the request's organization may see it.
func (s *WorkspaceService) GetPlatform(ctx context.Context, rc tenancy.RequestContext, id uint64) (*models.Platform, error) {
	platform, err := s.platforms.FindByID(ctx, id)
	return authorizeRead(platform, err, rc, ErrPlatformNotFound)
}

// Conversations

// ListConversations returns the conversations visible to the request's organization.
func (s *WorkspaceService) ListConversations(ctx context.Context, rc tenancy.RequestContext) ([]models.Conversation, error) {
	return cachedList(ctx, s, constants.CacheKeyConversations, rc, func() ([]models.Conversation, error) {
		return s.conversations.ListVisible(ctx, rc.OrganizationID)
	})
}

// GetConversation returns a conversation if the request's organization may see it.
func (s *WorkspaceService) GetConversation(ctx context.Context, rc tenancy.RequestContext, id uint64) (*models.Conversation, error) {
	conversation, err := s.conversations.FindByID(ctx, id)
	return authorizeRead(conversation, err, rc, ErrConversationNotFound)
}

// CreateConversation opens a conversation for the request's organization.
// A referenced platform must be visible to the same organization.
func (s *WorkspaceService) CreateConversation(ctx context.Context, rc tenancy.RequestContext, conversation models.Conversation) (*models.Conversation, error) {
	conversation.CustomerName = strings.TrimSpace(conversation.CustomerName)
	if conversation.CustomerName == "" {
		return nil, ErrCustomerNameRequired
	}
	if conversation.Status == "" {
		conversation.Status = models.ConversationOpen
	}
	if !validConversationStatus(conversation.Status) {
		return nil, ErrInvalidConversationStatus
	}
	if conversation.PlatformID != nil {
		if _, err := s.GetPlatform(ctx, rc, *conversation.PlatformID); err != nil {
			return nil, err
		}
	}

	conversation.ID = 0
	conversation.CreatedAt, conversation.UpdatedAt, conversation.DeletedAt = time.Time{}, time.Time{}, gorm.DeletedAt{}
	stamped, err := tenancy.EnsureOrganizationContext(conversation, rc.OrganizationID)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.Create(ctx, &stamped); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	s.invalidate(ctx, constants.CacheKeyConversations, rc)

	return &stamped, nil
}

// UpdateConversationStatus opens or closes a conversation owned by the request's organization.
func (s *WorkspaceService) UpdateConversationStatus(ctx context.Context, rc tenancy.RequestContext, id uint64, status models.ConversationStatus) (*models.Conversation, error) {
	if !validConversationStatus(status) {
		return nil, ErrInvalidConversationStatus
	}

	conversation, err := s.GetConversation(ctx, rc, id)
	if err != nil {
		return nil, err
	}
	if !tenancy.MutationAllowed(*conversation, rc.OrganizationID) {
		return nil, ErrSharedRecordReadOnly
	}

	conversation.Status = status
	if err := s.conversations.Update(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	s.invalidate(ctx, constants.CacheKeyConversations, rc)

	return conversation, nil
}

// Messages

// ListMessages returns a page of the messages of a conversation the request's
// organization may see, with the total number of visible messages.
func (s *WorkspaceService) ListMessages(ctx context.Context, rc tenancy.RequestContext, conversationID uint64, params utils.PageParams) ([]models.Message, int64, error) {
	if _, err := s.GetConversation(ctx, rc, conversationID); err != nil {
		return nil, 0, err
	}

	messages, total, err := s.messages.ListByConversation(ctx, conversationID, rc.OrganizationID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return tenancy.FilterByOrganization(messages, rc.OrganizationID), total, nil
}

// CreateMessage appends a message to a conversation the request's organization may see.
func (s *WorkspaceService) CreateMessage(ctx context.Context, rc tenancy.RequestContext, conversationID uint64, message models.Message) (*models.Message, error) {
	if _, err := s.GetConversation(ctx, rc, conversationID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(message.Content) == "" {
		return nil, ErrContentRequired
	}
	if message.Direction == "" {
		message.Direction = models.MessageOutbound
	}
	if message.Direction != models.MessageInbound && message.Direction != models.MessageOutbound {
		return nil, ErrInvalidDirection
	}
	if strings.TrimSpace(message.Sender) == "" {
		return nil, fmt.Errorf("%w: sender is required", tenancy.ErrValidation)
	}

	message.ID = 0
	message.CreatedAt = time.Time{}
	message.ConversationID = conversationID
	stamped, err := tenancy.EnsureOrganizationContext(message, rc.OrganizationID)
	if err != nil {
		return nil, err
	}

	if err := s.messages.Create(ctx, &stamped); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return &stamped, nil
}

// Knowledge base

// ListKnowledgeBase returns the knowledge-base items visible to the request's organization.
func (s *WorkspaceService) ListKnowledgeBase(ctx context.Context, rc tenancy.RequestContext) ([]models.KnowledgeBaseItem, error) {
	return cachedList(ctx, s, constants.CacheKeyKnowledgeBase, rc, func() ([]models.KnowledgeBaseItem, error) {
		return s.knowledge.ListVisible(ctx, rc.OrganizationID)
	})
}

// GetKnowledgeBaseItem returns an item if the request's organization may see it.
func (s *WorkspaceService) GetKnowledgeBaseItem(ctx context.Context, rc tenancy.RequestContext, id uint64) (*models.KnowledgeBaseItem, error) {
	item, err := s.knowledge.FindByID(ctx, id)
	return authorizeRead(item, err, rc, ErrKnowledgeBaseItemNotFound)
}

// CreateKnowledgeBaseItem stores a new item owned by the request's organization,
// whatever organization the caller put in the item.
func (s *WorkspaceService) CreateKnowledgeBaseItem(ctx context.Context, rc tenancy.RequestContext, item models.KnowledgeBaseItem) (*models.KnowledgeBaseItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, ErrTitleRequired
	}

	item.ID = 0
	item.CreatedBy = rc.UserID
	item.CreatedAt, item.UpdatedAt, item.DeletedAt = time.Time{}, time.Time{}, gorm.DeletedAt{}
	stamped, err := tenancy.EnsureOrganizationContext(item, rc.OrganizationID)
	if err != nil {
		return nil, err
	}

	if err := s.knowledge.Create(ctx, &stamped); err != nil {
		return nil, fmt.Errorf("failed to create knowledge base item: %w", err)
	}
	s.invalidate(ctx, constants.CacheKeyKnowledgeBase, rc)

	return &stamped, nil
}

// DeleteKnowledgeBaseItem deletes an item owned by the request's organization.
func (s *WorkspaceService) DeleteKnowledgeBaseItem(ctx context.Context, rc tenancy.RequestContext, id uint64) error {
	item, err := s.GetKnowledgeBaseItem(ctx, rc, id)
	if err != nil {
		return err
	}
	if !tenancy.MutationAllowed(*item, rc.OrganizationID) {
		return ErrSharedRecordReadOnly
	}

	if err := s.knowledge.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete knowledge base item: %w", err)
	}
	s.invalidate(ctx, constants.CacheKeyKnowledgeBase, rc)

	return nil
}

// cachedList serves a tenant list from the cache, falling back to load on a
// miss. Both paths go through FilterByOrganization.
func cachedList[T tenancy.Scoped](ctx context.Context, s *WorkspaceService, baseKey string, rc tenancy.RequestContext, load func() ([]T, error)) ([]T, error) {
	if rc.OrganizationID == "" {
		return []T{}, nil
	}

	key := tenancy.NamespacedCacheKey(baseKey, rc.UserID, rc.OrganizationID)

	var cached []T
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if found && err == nil {
		s.metrics.CacheHit(baseKey)
		visible := tenancy.FilterByOrganization(cached, rc.OrganizationID)
		if len(visible) != len(cached) {
			zerolog.Ctx(ctx).Warn().Str("key", key).Int("dropped", len(cached)-len(visible)).Msg("cached list held foreign records")
			if err := s.cache.Delete(ctx, key); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache eviction failed")
			}
		}
		return visible, nil
	}
	s.metrics.CacheMiss(baseKey)

	items, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", baseKey, err)
	}
	visible := tenancy.FilterByOrganization(items, rc.OrganizationID)

	if err := s.cache.Set(ctx, key, visible); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}

	return visible, nil
}

// authorizeRead turns a point read into a guarded result: a missing record is
// notFound, a record of another organization is an authorization error.
func authorizeRead[T tenancy.Scoped](item *T, err error, rc tenancy.RequestContext, notFound error) (*T, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if !tenancy.AccessAllowed(*item, rc.OrganizationID) {
		return nil, ErrRecordAccessDenied
	}
	return item, nil
}

func (s *WorkspaceService) invalidate(ctx context.Context, baseKey string, rc tenancy.RequestContext) {
	if err := s.cache.DeleteOrganization(ctx, baseKey, rc.OrganizationID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("resource", baseKey).Msg("cache invalidation failed")
	}
}

func validConversationStatus(status models.ConversationStatus) bool {
	return status == models.ConversationOpen || status == models.ConversationClosed
}
