// SPDX-License-Identifier: MIT
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfigBase carries the fields shared by every configuration entity
type ConfigBase struct {
	UUID      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a UUID to new configuration entities
func (c *ConfigBase) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	return nil
}

// Bundle represents a named sub-type of a content entity type
type Bundle struct {
	ID uint `gorm:"primaryKey"`
	ConfigBase
	EntityType  string `gorm:"uniqueIndex:idx_bundle_entity_name;not null" validate:"required,machine_name"`
	Name        string `gorm:"uniqueIndex:idx_bundle_entity_name;not null" validate:"required,machine_name,max=32"`
	Label       string `gorm:"not null" validate:"required"`
	Description string
}

// FieldStorage is the shared storage definition of a field on an entity type
type FieldStorage struct {
	ID string `gorm:"primaryKey"` // <entity_type>.<field_name>
	ConfigBase
	EntityType  string `gorm:"index;not null" validate:"required,machine_name"`
	FieldName   string `gorm:"not null" validate:"required,machine_name,max=32"`
	Type        string `gorm:"not null" validate:"required"`
	Cardinality int    `gorm:"not null;default:1" validate:"min=-1,ne=0"`
	Settings    string `gorm:"type:text"` // JSON encoded settings
}

// FieldInstance attaches a field storage to one bundle
type FieldInstance struct {
	ID string `gorm:"primaryKey"` // <entity_type>.<bundle>.<field_name>
	ConfigBase
	EntityType  string `gorm:"index:idx_field_bundle;not null" validate:"required,machine_name"`
	Bundle      string `gorm:"index:idx_field_bundle;not null" validate:"required,machine_name"`
	FieldName   string `gorm:"not null" validate:"required,machine_name,max=32"`
	FieldType   string `gorm:"not null" validate:"required"`
	Label       string `gorm:"not null" validate:"required"`
	Description string
	Required    bool   `gorm:"default:false"`
	Settings    string `gorm:"type:text"` // JSON encoded settings
}

// EntityDisplay holds the form or view components of a bundle
type EntityDisplay struct {
	ID uint `gorm:"primaryKey"`
	ConfigBase
	Kind             string `gorm:"uniqueIndex:idx_display;not null"` // "form" or "view"
	TargetEntityType string `gorm:"uniqueIndex:idx_display;not null"`
	Bundle           string `gorm:"uniqueIndex:idx_display;not null"`
	Mode             string `gorm:"uniqueIndex:idx_display;not null;default:default"`
	Components       string `gorm:"type:text"` // JSON map of field name to DisplayComponent
}

// DisplayComponent places a field widget or formatter on a display
type DisplayComponent struct {
	Type     string         `json:"type" yaml:"type"`
	Weight   int            `json:"weight" yaml:"weight"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Settings map[string]any `json:"settings" yaml:"settings"`
}

// RolePermission grants one permission to a user role
type RolePermission struct {
	ID         uint   `gorm:"primaryKey"`
	Role       string `gorm:"uniqueIndex:idx_role_permission;not null" validate:"required,machine_name"`
	Permission string `gorm:"uniqueIndex:idx_role_permission;not null" validate:"required"`
	CreatedAt  time.Time
}

// ImageStyle is a named sequence of image effects
type ImageStyle struct {
	Name string `gorm:"primaryKey" validate:"required,machine_name"`
	ConfigBase
	Label   string `gorm:"not null" validate:"required"`
	Effects string `gorm:"type:text"` // JSON list of ImageEffect
}

// ImageEffect is one step applied when rendering an image style derivative
type ImageEffect struct {
	UUID   string          `json:"uuid" yaml:"uuid"`
	ID     string          `json:"id" yaml:"id"` // "image_scale" or "image_scale_and_crop"
	Weight int             `json:"weight" yaml:"weight"`
	Data   ImageEffectData `json:"data" yaml:"data"`
}

// ImageEffectData holds the effect dimensions; a nil Height scales freely
type ImageEffectData struct {
	Width   int  `json:"width" yaml:"width"`
	Height  *int `json:"height" yaml:"height"`
	Upscale bool `json:"upscale" yaml:"upscale"`
}

// ResponsiveImageStyle maps breakpoints to sets of image styles
type ResponsiveImageStyle struct {
	ID string `gorm:"primaryKey" validate:"required,machine_name"`
	ConfigBase
	Label              string `gorm:"not null" validate:"required"`
	BreakpointGroup    string `gorm:"not null"`
	FallbackImageStyle string
	Mappings           string `gorm:"type:text"` // JSON list of ImageStyleMapping
}

// ImageStyleMapping ties a breakpoint and multiplier to image styles
type ImageStyleMapping struct {
	BreakpointID     string       `json:"breakpoint_id" yaml:"breakpoint_id"`
	Multiplier       string       `json:"multiplier" yaml:"multiplier"`
	ImageMappingType string       `json:"image_mapping_type" yaml:"image_mapping_type"`
	ImageMapping     SizesMapping `json:"image_mapping" yaml:"image_mapping"`
}

// SizesMapping is the "sizes" flavour of an image mapping
type SizesMapping struct {
	Sizes            string   `json:"sizes" yaml:"sizes"`
	SizesImageStyles []string `json:"sizes_image_styles" yaml:"sizes_image_styles"`
}

// TableName overrides for consistent naming
func (Bundle) TableName() string {
	return "bundles"
}

func (FieldStorage) TableName() string {
	return "field_storages"
}

func (FieldInstance) TableName() string {
	return "field_instances"
}

func (EntityDisplay) TableName() string {
	return "entity_displays"
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

func (ImageStyle) TableName() string {
	return "image_styles"
}

func (ResponsiveImageStyle) TableName() string {
	return "responsive_image_styles"
}

// All lists every model for migrations
func All() []interface{} {
	return []interface{}{
		&Bundle{},
		&FieldStorage{},
		&FieldInstance{},
		&EntityDisplay{},
		&RolePermission{},
		&ImageStyle{},
		&ResponsiveImageStyle{},
	}
}

// GetSettings decodes the storage settings
func (s *FieldStorage) GetSettings() (map[string]any, error) {
	return decodeSettings(s.Settings)
}

// SetSettings encodes the storage settings
func (s *FieldStorage) SetSettings(settings map[string]any) error {
	encoded, err := encodeJSON(settings)
	if err != nil {
		return err
	}
	s.Settings = encoded
	return nil
}

// GetSettings decodes the instance settings
func (f *FieldInstance) GetSettings() (map[string]any, error) {
	return decodeSettings(f.Settings)
}

// SetSettings encodes the instance settings
func (f *FieldInstance) SetSettings(settings map[string]any) error {
	encoded, err := encodeJSON(settings)
	if err != nil {
		return err
	}
	f.Settings = encoded
	return nil
}

// GetComponents decodes the display components keyed by field name
func (d *EntityDisplay) GetComponents() (map[string]DisplayComponent, error) {
	components := map[string]DisplayComponent{}
	if d.Components == "" {
		return components, nil
	}
	if err := json.Unmarshal([]byte(d.Components), &components); err != nil {
		return nil, fmt.Errorf("failed to decode display components: %w", err)
	}
	return components, nil
}

// SetComponents encodes the display components
func (d *EntityDisplay) SetComponents(components map[string]DisplayComponent) error {
	encoded, err := encodeJSON(components)
	if err != nil {
		return err
	}
	d.Components = encoded
	return nil
}

// GetEffects decodes the image effects
func (s *ImageStyle) GetEffects() ([]ImageEffect, error) {
	var effects []ImageEffect
	if s.Effects == "" {
		return effects, nil
	}
	if err := json.Unmarshal([]byte(s.Effects), &effects); err != nil {
		return nil, fmt.Errorf("failed to decode image effects: %w", err)
	}
	return effects, nil
}

// AddEffect appends an effect, assigning it a UUID
func (s *ImageStyle) AddEffect(effect ImageEffect) error {
	effects, err := s.GetEffects()
	if err != nil {
		return err
	}
	if effect.UUID == "" {
		effect.UUID = uuid.NewString()
	}
	encoded, err := encodeJSON(append(effects, effect))
	if err != nil {
		return err
	}
	s.Effects = encoded
	return nil
}

// GetMappings decodes the image style mappings
func (r *ResponsiveImageStyle) GetMappings() ([]ImageStyleMapping, error) {
	var mappings []ImageStyleMapping
	if r.Mappings == "" {
		return mappings, nil
	}
	if err := json.Unmarshal([]byte(r.Mappings), &mappings); err != nil {
		return nil, fmt.Errorf("failed to decode image style mappings: %w", err)
	}
	return mappings, nil
}

// AddMapping appends an image style mapping
func (r *ResponsiveImageStyle) AddMapping(mapping ImageStyleMapping) error {
	mappings, err := r.GetMappings()
	if err != nil {
		return err
	}
	encoded, err := encodeJSON(append(mappings, mapping))
	if err != nil {
		return err
	}
	r.Mappings = encoded
	return nil
}

func decodeSettings(raw string) (map[string]any, error) {
	settings := map[string]any{}
	if raw == "" {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return string(data), nil
}
