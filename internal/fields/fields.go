// SPDX-License-Identifier: MIT
package fields

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thatcatcamp/sitebuilder/internal/console"
	"github.com/thatcatcamp/sitebuilder/internal/entity"
	"github.com/thatcatcamp/sitebuilder/internal/models"
	"github.com/thatcatcamp/sitebuilder/internal/validate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrExists   = errors.New("already exists")
	ErrNotFound = errors.New("not found")
)

// Field holds the unsaved definitions gathered for one new field
type Field struct {
	Type     string
	Name     string
	Storage  *models.FieldStorage // nil when the storage already exists
	Instance *models.FieldInstance
}

// StorageID is the ID of a field storage, "<entity_type>.<field_name>"
func StorageID(entityType, fieldName string) string {
	return entityType + "." + fieldName
}

// InstanceID is the ID of a field instance, "<entity_type>.<bundle>.<field_name>"
func InstanceID(entityType, bundle, fieldName string) string {
	return entityType + "." + bundle + "." + fieldName
}

// DefaultLabel derives a field label from its machine name, dropping the "field_" prefix
func DefaultLabel(fieldName string) string {
	return console.Humanize(strings.TrimPrefix(fieldName, "field_"))
}

// NewStorage builds an unsaved storage definition with the field type's defaults
func NewStorage(entityType, fieldName string, ft entity.FieldType) *models.FieldStorage {
	cardinality := 1
	if ft.HasFixedCardinality() {
		cardinality = ft.Cardinality
	}

	storage := &models.FieldStorage{
		ID:          StorageID(entityType, fieldName),
		EntityType:  entityType,
		FieldName:   fieldName,
		Type:        ft.ID,
		Cardinality: cardinality,
	}
	_ = storage.SetSettings(ft.DefaultStorageSettings())
	return storage
}

// NewInstance builds an unsaved instance definition with the field type's defaults
func NewInstance(entityType, bundle, fieldName string, ft entity.FieldType) *models.FieldInstance {
	instance := &models.FieldInstance{
		ID:         InstanceID(entityType, bundle, fieldName),
		EntityType: entityType,
		Bundle:     bundle,
		FieldName:  fieldName,
		FieldType:  ft.ID,
		Label:      DefaultLabel(fieldName),
	}
	_ = instance.SetSettings(ft.DefaultFieldSettings())
	return instance
}

// LoadStorage retrieves a field storage definition
func LoadStorage(db *gorm.DB, entityType, fieldName string) (*models.FieldStorage, error) {
	var storage models.FieldStorage
	result := db.Where("id = ?", StorageID(entityType, fieldName)).Limit(1).Find(&storage)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load field storage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("field storage %s: %w", StorageID(entityType, fieldName), ErrNotFound)
	}
	return &storage, nil
}

// LoadInstance retrieves a field instance
func LoadInstance(db *gorm.DB, entityType, bundle, fieldName string) (*models.FieldInstance, error) {
	id := InstanceID(entityType, bundle, fieldName)

	var instance models.FieldInstance
	result := db.Where("id = ?", id).Limit(1).Find(&instance)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load field: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("field %s: %w", id, ErrNotFound)
	}
	return &instance, nil
}

// ValidateInstanceNotExists checks a field is not yet attached to the bundle
func ValidateInstanceNotExists(db *gorm.DB, entityType, bundle, fieldName string) (string, error) {
	_, err := LoadInstance(db, entityType, bundle, fieldName)
	if err == nil {
		return "", fmt.Errorf("The %q field already exists on the %q %q bundle.", fieldName, entityType, bundle)
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return fieldName, nil
}

// ValidateNewFieldName checks a proposed field name is a short machine name not yet on the bundle
func ValidateNewFieldName(db *gorm.DB, entityType, bundle, fieldName string) (string, error) {
	fieldName, err := validate.ShortMachineName(fieldName)
	if err != nil {
		return "", err
	}
	return ValidateInstanceNotExists(db, entityType, bundle, fieldName)
}

// ListConfigurable returns the field instances attached to a bundle, ordered by name
func ListConfigurable(db *gorm.DB, entityType, bundle string) ([]models.FieldInstance, error) {
	var instances []models.FieldInstance
	result := db.Where("entity_type = ? AND bundle = ?", entityType, bundle).Order("field_name").Find(&instances)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list fields: %w", result.Error)
	}
	return instances, nil
}

// FieldNames returns the names of the fields attached to a bundle
func FieldNames(db *gorm.DB, entityType, bundle string) ([]string, error) {
	instances, err := ListConfigurable(db, entityType, bundle)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(instances))
	for _, instance := range instances {
		names = append(names, instance.FieldName)
	}
	return names, nil
}

// Save persists a field: its storage when new, its instance, and its display components
func Save(db *gorm.DB, field *Field) error {
	instance := field.Instance
	if instance == nil {
		return fmt.Errorf("field %s has no instance definition", field.Name)
	}

	ft, err := entity.LookupFieldType(field.Type)
	if err != nil {
		return err
	}

	var bundles int64
	if err := db.Model(&models.Bundle{}).
		Where("entity_type = ? AND name = ?", instance.EntityType, instance.Bundle).
		Count(&bundles).Error; err != nil {
		return fmt.Errorf("failed to check bundle: %w", err)
	}
	if bundles == 0 {
		return fmt.Errorf("bundle %s.%s: %w", instance.EntityType, instance.Bundle, ErrNotFound)
	}

	if field.Storage != nil {
		if err := validate.Struct(field.Storage); err != nil {
			return err
		}
		if err := db.Create(field.Storage).Error; err != nil {
			return fmt.Errorf("failed to create field storage %s: %w", field.Storage.ID, err)
		}
	} else {
		existing, err := LoadStorage(db, instance.EntityType, instance.FieldName)
		if err != nil {
			return err
		}
		if existing.Type != field.Type {
			return fmt.Errorf("field storage %s has type %s, not %s", existing.ID, existing.Type, field.Type)
		}
	}

	if err := validate.Struct(instance); err != nil {
		return err
	}
	if err := db.Create(instance).Error; err != nil {
		return fmt.Errorf("failed to create field %s: %w", instance.ID, err)
	}

	if err := AddToDisplays(db, instance, ft); err != nil {
		return err
	}

	zap.L().Info("field created",
		zap.String("entity_type", instance.EntityType),
		zap.String("bundle", instance.Bundle),
		zap.String("field", instance.FieldName),
		zap.String("type", field.Type),
		zap.Bool("new_storage", field.Storage != nil))

	return nil
}

// Delete removes a field from a bundle, dropping its storage once no bundle uses it
func Delete(db *gorm.DB, entityType, bundle, fieldName string) error {
	instance, err := LoadInstance(db, entityType, bundle, fieldName)
	if err != nil {
		return err
	}

	if err := db.Delete(instance).Error; err != nil {
		return fmt.Errorf("failed to delete field %s: %w", instance.ID, err)
	}

	if err := RemoveFromDisplays(db, entityType, bundle, fieldName); err != nil {
		return err
	}

	if err := deleteOrphanStorage(db, entityType, fieldName); err != nil {
		return err
	}

	zap.L().Info("field deleted",
		zap.String("entity_type", entityType),
		zap.String("bundle", bundle),
		zap.String("field", fieldName))

	return nil
}

func deleteOrphanStorage(db *gorm.DB, entityType, fieldName string) error {
	var remaining int64
	if err := db.Model(&models.FieldInstance{}).
		Where("entity_type = ? AND field_name = ?", entityType, fieldName).
		Count(&remaining).Error; err != nil {
		return fmt.Errorf("failed to count field instances: %w", err)
	}
	if remaining > 0 {
		return nil
	}

	if err := db.Where("id = ?", StorageID(entityType, fieldName)).Delete(&models.FieldStorage{}).Error; err != nil {
		return fmt.Errorf("failed to delete field storage: %w", err)
	}
	return nil
}
