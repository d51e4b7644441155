package bundles

import (
	"fmt"
	"sort"

	"github.com/thatcatcamp/sitebuilder/internal/models"
	"github.com/thatcatcamp/sitebuilder/internal/validate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Permissions returns the permissions that grant access to a bundle's content
func Permissions(entityType, bundle string) []string {
	switch entityType {
	case "node":
		return []string{
			fmt.Sprintf("create %s content", bundle),
			fmt.Sprintf("edit own %s content", bundle),
			fmt.Sprintf("delete own %s content", bundle),
		}
	case "taxonomy_term":
		return []string{
			fmt.Sprintf("create terms in %s", bundle),
			fmt.Sprintf("edit terms in %s", bundle),
		}
	case "media":
		return []string{
			fmt.Sprintf("create %s media", bundle),
			fmt.Sprintf("edit own %s media", bundle),
		}
	default:
		return []string{fmt.Sprintf("administer %s %s", entityType, bundle)}
	}
}

// GrantPermissions grants permissions to a role, skipping ones it already has
func GrantPermissions(db *gorm.DB, role string, permissions []string) error {
	for _, permission := range permissions {
		grant := &models.RolePermission{Role: role, Permission: permission}
		if err := validate.Struct(grant); err != nil {
			return err
		}

		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(grant).Error; err != nil {
			return fmt.Errorf("failed to grant %q to %s: %w", permission, role, err)
		}
	}
	return nil
}

// RevokePermissions removes permissions from every role
func RevokePermissions(db *gorm.DB, permissions []string) error {
	if len(permissions) == 0 {
		return nil
	}
	if err := db.Where("permission IN ?", permissions).Delete(&models.RolePermission{}).Error; err != nil {
		return fmt.Errorf("failed to revoke permissions: %w", err)
	}
	return nil
}

// RolePermissions returns each role's granted permissions, sorted
func RolePermissions(db *gorm.DB) (map[string][]string, error) {
	var grants []models.RolePermission
	if err := db.Order("role").Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	roles := make(map[string][]string)
	for _, grant := range grants {
		roles[grant.Role] = append(roles[grant.Role], grant.Permission)
	}
	for role := range roles {
		sort.Strings(roles[role])
	}
	return roles, nil
}
