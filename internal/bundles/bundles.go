// SPDX-License-Identifier: MIT
package bundles

import (
	"errors"
	"fmt"

	"github.com/thatcatcamp/sitebuilder/internal/entity"
	"github.com/thatcatcamp/sitebuilder/internal/fields"
	"github.com/thatcatcamp/sitebuilder/internal/models"
	"github.com/thatcatcamp/sitebuilder/internal/validate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrExists   = errors.New("bundle already exists")
	ErrNotFound = errors.New("bundle not found")
)

// DefaultName is offered when asking for a new bundle's machine name
const DefaultName = "custom_bundle"

// Request collects everything needed to build a bundle in one go
type Request struct {
	EntityType  string
	Name        string
	Label       string
	Description string
	Fields      []*fields.Field
	GrantRoles  []string
}

// ValidateNewBundleName checks a bundle name is a machine name not yet used on the entity type
func ValidateNewBundleName(db *gorm.DB, entityType, name string) (string, error) {
	name, err := validate.ShortMachineName(name)
	if err != nil {
		return "", err
	}

	var count int64
	if err := db.Model(&models.Bundle{}).Where("entity_type = ? AND name = ?", entityType, name).Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to check bundle: %w", err)
	}
	if count > 0 {
		return "", fmt.Errorf("There is already a %q bundle.", name)
	}
	return name, nil
}

// CreateBundle saves a new bundle of a bundleable entity type
func CreateBundle(db *gorm.DB, entityType, name, label, description string) (*models.Bundle, error) {
	if _, err := entity.BundleDefinition(entityType); err != nil {
		return nil, err
	}

	if _, err := GetBundle(db, entityType, name); err == nil {
		return nil, fmt.Errorf("%s.%s: %w", entityType, name, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	bundle := &models.Bundle{
		EntityType:  entityType,
		Name:        name,
		Label:       label,
		Description: description,
	}
	if err := validate.Struct(bundle); err != nil {
		return nil, err
	}

	if err := db.Create(bundle).Error; err != nil {
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}
	return bundle, nil
}

// Build creates a bundle with its fields, displays and permission grants.
// Steps run in order and stop at the first failure; earlier steps are kept.
func Build(db *gorm.DB, req Request) (*models.Bundle, error) {
	bundle, err := CreateBundle(db, req.EntityType, req.Name, req.Label, req.Description)
	if err != nil {
		return nil, err
	}

	for _, field := range req.Fields {
		if err := fields.Save(db, field); err != nil {
			return bundle, err
		}
	}

	if err := fields.EnsureDisplays(db, bundle.EntityType, bundle.Name); err != nil {
		return bundle, err
	}

	for _, role := range req.GrantRoles {
		if err := GrantPermissions(db, role, Permissions(bundle.EntityType, bundle.Name)); err != nil {
			return bundle, err
		}
	}

	zap.L().Info("bundle created",
		zap.String("entity_type", bundle.EntityType),
		zap.String("bundle", bundle.Name),
		zap.Int("fields", len(req.Fields)),
		zap.Strings("roles", req.GrantRoles))

	return bundle, nil
}

// GetBundle retrieves a bundle by entity type and name
func GetBundle(db *gorm.DB, entityType, name string) (*models.Bundle, error) {
	var bundle models.Bundle
	result := db.Where("entity_type = ? AND name = ?", entityType, name).Limit(1).Find(&bundle)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load bundle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%s.%s: %w", entityType, name, ErrNotFound)
	}
	return &bundle, nil
}

// ListBundles returns bundles ordered by entity type and name; an empty entity type lists all
func ListBundles(db *gorm.DB, entityType string) ([]models.Bundle, error) {
	query := db.Order("entity_type").Order("name")
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var bundles []models.Bundle
	if err := query.Find(&bundles).Error; err != nil {
		return nil, fmt.Errorf("failed to list bundles: %w", err)
	}
	return bundles, nil
}

// BundleNames returns the machine names of an entity type's bundles
func BundleNames(db *gorm.DB, entityType string) ([]string, error) {
	bundles, err := ListBundles(db, entityType)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(bundles))
	for _, bundle := range bundles {
		names = append(names, bundle.Name)
	}
	return names, nil
}

// DeleteBundle removes a bundle with its fields, displays and permission grants
func DeleteBundle(db *gorm.DB, entityType, name string) error {
	bundle, err := GetBundle(db, entityType, name)
	if err != nil {
		return err
	}

	instances, err := fields.ListConfigurable(db, entityType, name)
	if err != nil {
		return err
	}
	for _, instance := range instances {
		if err := fields.Delete(db, entityType, name, instance.FieldName); err != nil {
			return err
		}
	}

	if err := fields.DeleteDisplays(db, entityType, name); err != nil {
		return err
	}

	if err := RevokePermissions(db, Permissions(entityType, name)); err != nil {
		return err
	}

	if err := db.Delete(bundle).Error; err != nil {
		return fmt.Errorf("failed to delete bundle: %w", err)
	}

	zap.L().Info("bundle deleted",
		zap.String("entity_type", entityType),
		zap.String("bundle", name),
		zap.Int("fields", len(instances)))

	return nil
}
