package fields

import (
	"fmt"

	"github.com/thatcatcamp/sitebuilder/internal/entity"
	"github.com/thatcatcamp/sitebuilder/internal/models"
	"gorm.io/gorm"
)

const (
	FormDisplay = "form"
	ViewDisplay = "view"
	DefaultMode = "default"
)

// LoadDisplay retrieves the default display of a kind, creating it when missing
func LoadDisplay(db *gorm.DB, kind, entityType, bundle string) (*models.EntityDisplay, error) {
	display := models.EntityDisplay{
		Kind:             kind,
		TargetEntityType: entityType,
		Bundle:           bundle,
		Mode:             DefaultMode,
	}

	result := db.Where(&display).FirstOrCreate(&display)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load %s display for %s.%s: %w", kind, entityType, bundle, result.Error)
	}
	return &display, nil
}

// EnsureDisplays creates the default form and view displays of a bundle
func EnsureDisplays(db *gorm.DB, entityType, bundle string) error {
	for _, kind := range []string{FormDisplay, ViewDisplay} {
		if _, err := LoadDisplay(db, kind, entityType, bundle); err != nil {
			return err
		}
	}
	return nil
}

// AddToDisplays places a field on the bundle's default form and view displays
func AddToDisplays(db *gorm.DB, instance *models.FieldInstance, ft entity.FieldType) error {
	for _, kind := range []string{FormDisplay, ViewDisplay} {
		display, err := LoadDisplay(db, kind, instance.EntityType, instance.Bundle)
		if err != nil {
			return err
		}

		components, err := display.GetComponents()
		if err != nil {
			return err
		}

		component := models.DisplayComponent{
			Type:     ft.DefaultWidget,
			Weight:   nextWeight(components),
			Settings: map[string]any{},
		}
		if kind == ViewDisplay {
			component.Type = ft.DefaultFormatter
			component.Label = "above"
		}
		components[instance.FieldName] = component

		if err := saveComponents(db, display, components); err != nil {
			return err
		}
	}
	return nil
}

// nextWeight places a new component after every existing one
func nextWeight(components map[string]models.DisplayComponent) int {
	weight := 0
	for _, component := range components {
		weight = max(weight, component.Weight+1)
	}
	return weight
}

// RemoveFromDisplays drops a field's components from the bundle's displays
func RemoveFromDisplays(db *gorm.DB, entityType, bundle, fieldName string) error {
	var displays []models.EntityDisplay
	if err := db.Where("target_entity_type = ? AND bundle = ?", entityType, bundle).Find(&displays).Error; err != nil {
		return fmt.Errorf("failed to load displays: %w", err)
	}

	for i := range displays {
		components, err := displays[i].GetComponents()
		if err != nil {
			return err
		}
		if _, ok := components[fieldName]; !ok {
			continue
		}
		delete(components, fieldName)

		if err := saveComponents(db, &displays[i], components); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDisplays removes every display of a bundle
func DeleteDisplays(db *gorm.DB, entityType, bundle string) error {
	result := db.Where("target_entity_type = ? AND bundle = ?", entityType, bundle).Delete(&models.EntityDisplay{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete displays: %w", result.Error)
	}
	return nil
}

func saveComponents(db *gorm.DB, display *models.EntityDisplay, components map[string]models.DisplayComponent) error {
	if err := display.SetComponents(components); err != nil {
		return err
	}
	if err := db.Save(display).Error; err != nil {
		return fmt.Errorf("failed to save %s display: %w", display.Kind, err)
	}
	return nil
}
