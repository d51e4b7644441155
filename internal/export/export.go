// SPDX-License-Identifier: MIT

// Package export writes the stored configuration entities to a sync
// directory as one YAML file per configuration name.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/thatcatcamp/sitebuilder/internal/console"
	"github.com/thatcatcamp/sitebuilder/internal/entity"
	"github.com/thatcatcamp/sitebuilder/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

const langcode = "en"

// roleNamespace seeds the UUIDs of roles, which are derived from grants rather than stored
var roleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sitebuilder:user.role"))

type dependencies struct {
	Config []string `yaml:"config,omitempty"`
	Module []string `yaml:"module,omitempty"`
}

type fieldStorageConfig struct {
	UUID         string         `yaml:"uuid"`
	Langcode     string         `yaml:"langcode"`
	Status       bool           `yaml:"status"`
	Dependencies dependencies   `yaml:"dependencies"`
	ID           string         `yaml:"id"`
	FieldName    string         `yaml:"field_name"`
	EntityType   string         `yaml:"entity_type"`
	Type         string         `yaml:"type"`
	Settings     map[string]any `yaml:"settings"`
	Cardinality  int            `yaml:"cardinality"`
	Translatable bool           `yaml:"translatable"`
}

type fieldConfig struct {
	UUID         string         `yaml:"uuid"`
	Langcode     string         `yaml:"langcode"`
	Status       bool           `yaml:"status"`
	Dependencies dependencies   `yaml:"dependencies"`
	ID           string         `yaml:"id"`
	FieldName    string         `yaml:"field_name"`
	EntityType   string         `yaml:"entity_type"`
	Bundle       string         `yaml:"bundle"`
	Label        string         `yaml:"label"`
	Description  string         `yaml:"description"`
	Required     bool           `yaml:"required"`
	Translatable bool           `yaml:"translatable"`
	DefaultValue []any          `yaml:"default_value"`
	Settings     map[string]any `yaml:"settings"`
	FieldType    string         `yaml:"field_type"`
}

type displayConfig struct {
	UUID             string                             `yaml:"uuid"`
	Langcode         string                             `yaml:"langcode"`
	Status           bool                               `yaml:"status"`
	Dependencies     dependencies                       `yaml:"dependencies"`
	ID               string                             `yaml:"id"`
	TargetEntityType string                             `yaml:"targetEntityType"`
	Bundle           string                             `yaml:"bundle"`
	Mode             string                             `yaml:"mode"`
	Content          map[string]models.DisplayComponent `yaml:"content"`
	Hidden           map[string]bool                    `yaml:"hidden"`
}

type roleConfig struct {
	UUID        string   `yaml:"uuid"`
	Langcode    string   `yaml:"langcode"`
	Status      bool     `yaml:"status"`
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	IsAdmin     bool     `yaml:"is_admin"`
	Permissions []string `yaml:"permissions"`
}

type imageStyleConfig struct {
	UUID     string                        `yaml:"uuid"`
	Langcode string                        `yaml:"langcode"`
	Status   bool                          `yaml:"status"`
	Name     string                        `yaml:"name"`
	Label    string                        `yaml:"label"`
	Effects  map[string]models.ImageEffect `yaml:"effects"`
}

type responsiveImageStyleConfig struct {
	UUID               string                     `yaml:"uuid"`
	Langcode           string                     `yaml:"langcode"`
	Status             bool                       `yaml:"status"`
	Dependencies       dependencies               `yaml:"dependencies"`
	ID                 string                     `yaml:"id"`
	Label              string                     `yaml:"label"`
	ImageStyleMappings []models.ImageStyleMapping `yaml:"image_style_mappings"`
	BreakpointGroup    string                     `yaml:"breakpoint_group"`
	FallbackImageStyle string                     `yaml:"fallback_image_style"`
}

// Exporter writes configuration YAML files into Dir
type Exporter struct {
	Dir string
}

// NewExporter creates a new exporter
func NewExporter(dir string) *Exporter {
	return &Exporter{
		Dir: dir,
	}
}

// ExportAll writes every configuration entity and returns the config names written, sorted
func (e *Exporter) ExportAll(db *gorm.DB) ([]string, error) {
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var written []string
	steps := []func(*gorm.DB) ([]string, error){
		e.exportBundles,
		e.exportFieldStorages,
		e.exportFields,
		e.exportDisplays,
		e.exportRoles,
		e.exportImageStyles,
		e.exportResponsiveImageStyles,
	}
	for _, step := range steps {
		names, err := step(db)
		if err != nil {
			return written, err
		}
		written = append(written, names...)
	}

	sort.Strings(written)
	zap.L().Info("configuration exported", zap.String("dir", e.Dir), zap.Int("files", len(written)))
	return written, nil
}

// write marshals one config object to <name>.yml
func (e *Exporter) write(name string, config any) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(e.Dir, name+".yml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) exportBundles(db *gorm.DB) ([]string, error) {
	var bundles []models.Bundle
	if err := db.Find(&bundles).Error; err != nil {
		return nil, fmt.Errorf("failed to load bundles: %w", err)
	}

	names := make([]string, 0, len(bundles))
	for _, bundle := range bundles {
		def, err := entity.BundleDefinition(bundle.EntityType)
		if err != nil {
			return names, err
		}

		// Bundle keys differ per entity type, e.g. "type"/"name" for nodes
		config := map[string]any{
			"uuid":         bundle.UUID,
			"langcode":     langcode,
			"status":       true,
			"dependencies": map[string]any{},
			def.IDKey:      bundle.Name,
			def.LabelKey:   bundle.Label,
			"description":  bundle.Description,
		}

		name := BundleConfigName(def, bundle.Name)
		if err := e.write(name, config); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (e *Exporter) exportFieldStorages(db *gorm.DB) ([]string, error) {
	var storages []models.FieldStorage
	if err := db.Find(&storages).Error; err != nil {
		return nil, fmt.Errorf("failed to load field storages: %w", err)
	}

	names := make([]string, 0, len(storages))
	for _, storage := range storages {
		settings, err := storage.GetSettings()
		if err != nil {
			return names, err
		}

		config := fieldStorageConfig{
			UUID:         storage.UUID,
			Langcode:     langcode,
			Status:       true,
			Dependencies: dependencies{Module: []string{storage.EntityType}},
			ID:           storage.ID,
			FieldName:    storage.FieldName,
			EntityType:   storage.EntityType,
			Type:         storage.Type,
			Settings:     settings,
			Cardinality:  storage.Cardinality,
			Translatable: true,
		}

		name := "field.storage." + storage.ID
		if err := e.write(name, config); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (e *Exporter) exportFields(db *gorm.DB) ([]string, error) {
	var instances []models.FieldInstance
	if err := db.Find(&instances).Error; err != nil {
		return nil, fmt.Errorf("failed to load fields: %w", err)
	}

	names := make([]string, 0, len(instances))
	for _, instance := range instances {
		settings, err := instance.GetSettings()
		if err != nil {
			return names, err
		}

		deps, err := bundleDependency(instance.EntityType, instance.Bundle)
		if err != nil {
			return names, err
		}
		deps = append([]string{"field.storage." + instance.EntityType + "." + instance.FieldName}, deps...)

		config := fieldConfig{
			UUID:         instance.UUID,
			Langcode:     langcode,
			Status:       true,
			Dependencies: dependencies{Config: deps},
			ID:           instance.ID,
			FieldName:    instance.FieldName,
			EntityType:   instance.EntityType,
			Bundle:       instance.Bundle,
			Label:        instance.Label,
			Description:  instance.Description,
			Required:     instance.Required,
			Translatable: true,
			DefaultValue: []any{},
			Settings:     settings,
			FieldType:    instance.FieldType,
		}

		name := "field.field." + instance.ID
		if err := e.write(name, config); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (e *Exporter) exportDisplays(db *gorm.DB) ([]string, error) {
	var displays []models.EntityDisplay
	if err := db.Find(&displays).Error; err != nil {
		return nil, fmt.Errorf("failed to load displays: %w", err)
	}

	names := make([]string, 0, len(displays))
	for _, display := range displays {
		components, err := display.GetComponents()
		if err != nil {
			return names, err
		}

		deps, err := bundleDependency(display.TargetEntityType, display.Bundle)
		if err != nil {
			return names, err
		}
		for fieldName := range components {
			deps = append(deps, "field.field."+display.TargetEntityType+"."+display.Bundle+"."+fieldName)
		}
		sort.Strings(deps)

		id := display.TargetEntityType + "." + display.Bundle + "." + display.Mode
		config := displayConfig{
			UUID:             display.UUID,
			Langcode:         langcode,
			Status:           true,
			Dependencies:     dependencies{Config: deps},
			ID:               id,
			TargetEntityType: display.TargetEntityType,
			Bundle:           display.Bundle,
			Mode:             display.Mode,
			Content:          components,
			Hidden:           map[string]bool{},
		}

		name := "core.entity_" + display.Kind + "_display." + id
		if err := e.write(name, config); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (e *Exporter) exportRoles(db *gorm.DB) ([]string, error) {
	var grants []models.RolePermission
	if err := db.Order("role").Order("permission").Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}

	roles := make(map[string][]string)
	var order []string
	for _, grant := range grants {
		if _, ok := roles[grant.Role]; !ok {
			order = append(order, grant.Role)
		}
		roles[grant.Role] = append(roles[grant.Role], grant.Permission)
	}

	names := make([]string, 0, len(order))
	for _, role := range order {
		config := roleConfig{
			UUID:        uuid.NewSHA1(roleNamespace, []byte(role)).String(),
			Langcode:    langcode,
			Status:      true,
			ID:          role,
			Label:       console.Humanize(role),
			Permissions: roles[role],
		}

		name := "user.role." + role
		if err := e.write(name, config); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (e *Exporter) exportImageStyles(db *gorm.DB) ([]string, error) {
	var styles []models.ImageStyle
	if err := db.Find(&styles).Error; err != nil {
		return nil, fmt.Errorf("failed to load image styles: %w", err)
	}

	names := make([]string, 0, len(styles))
	for _, style := range styles {
		effects, err := style.GetEffects()
		if err != nil {
			return names, err
		}

		keyed := make(map[string]models.ImageEffect, len(effects))
		for _, effect := range effects {
			keyed[effect.UUID] = effect
		}

		config := imageStyleConfig{
			UUID:     style.UUID,
			Langcode: langcode,
			Status:   true,
			Name:     style.Name,
			Label:    style.Label,
			Effects:  keyed,
		}

		name := "image.style." + style.Name
		if err := e.write(name, config); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (e *Exporter) exportResponsiveImageStyles(db *gorm.DB) ([]string, error) {
	var styles []models.ResponsiveImageStyle
	if err := db.Find(&styles).Error; err != nil {
		return nil, fmt.Errorf("failed to load responsive image styles: %w", err)
	}

	names := make([]string, 0, len(styles))
	for _, style := range styles {
		mappings, err := style.GetMappings()
		if err != nil {
			return names, err
		}

		var deps []string
		seen := map[string]bool{}
		for _, mapping := range mappings {
			for _, imageStyle := range mapping.ImageMapping.SizesImageStyles {
				if !seen[imageStyle] {
					seen[imageStyle] = true
					deps = append(deps, "image.style."+imageStyle)
				}
			}
		}
		sort.Strings(deps)

		config := responsiveImageStyleConfig{
			UUID:               style.UUID,
			Langcode:           langcode,
			Status:             true,
			Dependencies:       dependencies{Config: deps, Module: []string{"responsive_image"}},
			ID:                 style.ID,
			Label:              style.Label,
			ImageStyleMappings: mappings,
			BreakpointGroup:    style.BreakpointGroup,
			FallbackImageStyle: style.FallbackImageStyle,
		}

		name := "responsive_image.styles." + style.ID
		if err := e.write(name, config); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// BundleConfigName is the config name of a bundle, e.g. "node.type.article"
func BundleConfigName(def entity.TypeDefinition, bundle string) string {
	return def.ConfigPrefix + "." + bundle
}

func bundleDependency(entityType, bundle string) ([]string, error) {
	def, err := entity.BundleDefinition(entityType)
	if err != nil {
		return nil, err
	}
	return []string{BundleConfigName(def, bundle)}, nil
}
