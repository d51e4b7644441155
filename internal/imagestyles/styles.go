// SPDX-License-Identifier: MIT

// Package imagestyles plans, stores and renders image styles and the
// responsive image styles built from them.
package imagestyles

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/thatcatcamp/sitebuilder/internal/models"
	"github.com/thatcatcamp/sitebuilder/internal/validate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// EffectScale resizes to a width, keeping the aspect ratio
	EffectScale = "image_scale"
	// EffectScaleAndCrop centre-crops to the aspect ratio then resizes to exact dimensions
	EffectScaleAndCrop = "image_scale_and_crop"

	BreakpointGroup    = "responsive_image"
	ViewportBreakpoint = "responsive_image.viewport_sizing"
	DefaultSizes       = "100vw"
)

var (
	ErrExists   = errors.New("already exists")
	ErrNotFound = errors.New("not found")
)

// ResponsiveRequest holds the answers needed to build a responsive image style
type ResponsiveRequest struct {
	ID          string
	Label       string
	Width       int
	Height      *int // nil for free-form aspect
	Lazy        bool
	Breakpoints []int
}

// ResponsiveResult is what CreateResponsiveImageStyle persisted
type ResponsiveResult struct {
	Style       *models.ResponsiveImageStyle
	ImageStyles []*models.ImageStyle
	Lazy        *models.ImageStyle
}

// NewImageStyle builds an unsaved image style with a single resize effect
func NewImageStyle(name, label string, d Derivative) (*models.ImageStyle, error) {
	style := &models.ImageStyle{Name: name, Label: label}

	effect := models.ImageEffect{
		ID:   EffectScale,
		Data: models.ImageEffectData{Width: d.Width},
	}
	if d.Height != nil {
		h := *d.Height
		effect.ID = EffectScaleAndCrop
		effect.Data.Height = &h
	}

	if err := style.AddEffect(effect); err != nil {
		return nil, err
	}
	return style, nil
}

// CreateImageStyle saves a single-effect image style
func CreateImageStyle(db *gorm.DB, name, label string, d Derivative) (*models.ImageStyle, error) {
	style, err := NewImageStyle(name, label, d)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(style); err != nil {
		return nil, err
	}

	if err := db.Create(style).Error; err != nil {
		return nil, fmt.Errorf("failed to create image style %s: %w", name, err)
	}

	zap.L().Debug("image style created", zap.String("name", name), zap.Int("width", d.Width))
	return style, nil
}

// GetImageStyle retrieves an image style by machine name
func GetImageStyle(db *gorm.DB, name string) (*models.ImageStyle, error) {
	var style models.ImageStyle
	result := db.Where("name = ?", name).Limit(1).Find(&style)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load image style %s: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("image style %s: %w", name, ErrNotFound)
	}
	return &style, nil
}

// ListImageStyles returns all image styles ordered by name
func ListImageStyles(db *gorm.DB) ([]models.ImageStyle, error) {
	var styles []models.ImageStyle
	if err := db.Order("name").Find(&styles).Error; err != nil {
		return nil, fmt.Errorf("failed to list image styles: %w", err)
	}
	return styles, nil
}

// GetResponsiveImageStyle retrieves a responsive image style by ID
func GetResponsiveImageStyle(db *gorm.DB, id string) (*models.ResponsiveImageStyle, error) {
	var style models.ResponsiveImageStyle
	result := db.Where("id = ?", id).Limit(1).Find(&style)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load responsive image style %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("responsive image style %s: %w", id, ErrNotFound)
	}
	return &style, nil
}

// ListResponsiveImageStyles returns all responsive image styles ordered by ID
func ListResponsiveImageStyles(db *gorm.DB) ([]models.ResponsiveImageStyle, error) {
	var styles []models.ResponsiveImageStyle
	if err := db.Order("id").Find(&styles).Error; err != nil {
		return nil, fmt.Errorf("failed to list responsive image styles: %w", err)
	}
	return styles, nil
}

// ValidateNewResponsiveImageID checks the ID is a machine name not yet in use
func ValidateNewResponsiveImageID(db *gorm.DB, id string) (string, error) {
	id, err := validate.MachineName(id)
	if err != nil {
		return "", err
	}

	_, err = GetResponsiveImageStyle(db, id)
	if err == nil {
		return "", fmt.Errorf("Responsive image style %q already exists.", id)
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return id, nil
}

// DerivativeName is the image style machine name for a derivative width
func DerivativeName(id string, width int) string {
	return id + "_" + strconv.Itoa(width)
}

// DerivativeLabel is the image style label for a derivative, e.g. "Hero (800×450)" or "Hero (800×h)"
func DerivativeLabel(label string, d Derivative) string {
	height := "h"
	if d.Height != nil {
		height = strconv.Itoa(*d.Height)
	}
	return fmt.Sprintf("%s (%d×%s)", label, d.Width, height)
}

// CreateResponsiveImageStyle creates one image style per planned derivative,
// an optional lazy placeholder style, and the responsive image style that
// maps the viewport-sizing breakpoint to the derivatives.
func CreateResponsiveImageStyle(db *gorm.DB, req ResponsiveRequest) (*ResponsiveResult, error) {
	if _, err := ValidateNewResponsiveImageID(db, req.ID); err != nil {
		return nil, err
	}
	if req.Width < 1 {
		return nil, fmt.Errorf("width must be a positive integer, got %d", req.Width)
	}
	if req.Height != nil && *req.Height < 1 {
		return nil, fmt.Errorf("height must be a positive integer, got %d", *req.Height)
	}

	derivatives := Plan(req.Width, req.Height, req.Breakpoints)

	names := make([]string, 0, len(derivatives)+1)
	for _, d := range derivatives {
		names = append(names, DerivativeName(req.ID, d.Width))
	}
	if req.Lazy {
		names = append(names, req.ID+"_lazy")
	}

	var existing int64
	if err := db.Model(&models.ImageStyle{}).Where("name IN ?", names).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check image styles: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("image styles for %s: %w", req.ID, ErrExists)
	}

	result := &ResponsiveResult{}
	sizes := make([]string, 0, len(derivatives))
	for _, d := range derivatives {
		style, err := CreateImageStyle(db, DerivativeName(req.ID, d.Width), DerivativeLabel(req.Label, d), d)
		if err != nil {
			return nil, err
		}
		result.ImageStyles = append(result.ImageStyles, style)
		sizes = append(sizes, style.Name)
	}

	if req.Lazy {
		lazy, err := CreateImageStyle(db, req.ID+"_lazy", req.Label+" (lazy)", LazySize(req.Width, req.Height))
		if err != nil {
			return nil, err
		}
		result.Lazy = lazy
	}

	responsive := &models.ResponsiveImageStyle{
		ID:              req.ID,
		Label:           req.Label,
		BreakpointGroup: BreakpointGroup,
	}
	if len(sizes) > 0 {
		responsive.FallbackImageStyle = sizes[0]
	}
	if err := responsive.AddMapping(models.ImageStyleMapping{
		BreakpointID:     ViewportBreakpoint,
		Multiplier:       "1x",
		ImageMappingType: "sizes",
		ImageMapping: models.SizesMapping{
			Sizes:            DefaultSizes,
			SizesImageStyles: sizes,
		},
	}); err != nil {
		return nil, err
	}
	if err := validate.Struct(responsive); err != nil {
		return nil, err
	}

	if err := db.Create(responsive).Error; err != nil {
		return nil, fmt.Errorf("failed to create responsive image style: %w", err)
	}
	result.Style = responsive

	zap.L().Info("responsive image style created",
		zap.String("id", req.ID),
		zap.Strings("image_styles", sizes),
		zap.Bool("lazy", req.Lazy))

	return result, nil
}
