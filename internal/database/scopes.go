package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/dana-ai-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PageParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// VisibleToOrganization restricts a query on a tenant-scoped table to rows
// owned by organizationID plus legacy rows without an organization. Without
// an organization the query matches nothing.
func VisibleToOrganization(organizationID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if organizationID == "" {
			return db.Where("1 = 0")
		}
		return db.Where("(organization_id = ? OR organization_id IS NULL)", organizationID)
	}
}
