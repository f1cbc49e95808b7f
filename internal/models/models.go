package models

// All returns every model managed by migrations, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Organization{},
		&OrganizationMember{},
		&Platform{},
		&Conversation{},
		&Message{},
		&KnowledgeBaseItem{},
	}
}
