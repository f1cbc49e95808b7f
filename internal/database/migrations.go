package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"gorm.io/gorm"
)

// tenantIndex is a composite index serving the organization-scoped list queries.
type tenantIndex struct {
	model   interface{}
	table   string
	name    string
	columns string
}

var tenantIndexes = []tenantIndex{
	{&models.Platform{}, "platforms", "idx_platforms_org_created", "organization_id, created_at"},
	{&models.Conversation{}, "conversations", "idx_conversations_org_updated", "organization_id, updated_at"},
	{&models.Message{}, "messages", "idx_messages_conversation_created", "conversation_id, created_at"},
	{&models.KnowledgeBaseItem{}, "knowledge_base_items", "idx_knowledge_base_org_created", "organization_id, created_at"},
}

// AddIndexes adds the composite indexes that struct tags cannot express.
func AddIndexes(db *gorm.DB, log zerolog.Logger) error {
	for _, idx := range tenantIndexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			log.Debug().Str("index", idx.name).Msg("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Msg("created index")
	}

	return nil
}
