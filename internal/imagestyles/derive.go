package imagestyles

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/thatcatcamp/sitebuilder/internal/models"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultJPEGQuality is used when no quality is configured
const DefaultJPEGQuality = 85

// ErrUnsupportedFormat is returned for destinations no encoder can write
var ErrUnsupportedFormat = errors.New("unsupported derivative format")

// derivative encoders keyed by lowercase file extension
var encoders = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
}

// Encodable reports whether a derivative can be written to path
func Encodable(path string) bool {
	_, ok := encoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Derive renders the derivative of srcPath for a style into dstPath, encoded
// in the format named by dstPath's extension (JPEG, PNG or GIF).
func Derive(style *models.ImageStyle, srcPath, dstPath string, quality int) error {
	format, ok := encoders[strings.ToLower(filepath.Ext(dstPath))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(dstPath))
	}

	// Validate file content type using magic bytes
	mtype, err := mimetype.DetectFile(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source image: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return fmt.Errorf("source is not an image: %s", mtype.String())
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source image: %w", err)
	}
	defer srcFile.Close()

	img, _, err := image.Decode(srcFile)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	effects, err := style.GetEffects()
	if err != nil {
		return err
	}

	derivative, err := ApplyEffects(img, effects)
	if err != nil {
		return fmt.Errorf("image style %s: %w", style.Name, err)
	}

	// Create destination directory if needed
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create derivative file: %w", err)
	}
	defer dstFile.Close()

	switch format {
	case "png":
		err = png.Encode(dstFile, derivative)
	case "gif":
		err = gif.Encode(dstFile, derivative, nil)
	default:
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(dstFile, derivative, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return fmt.Errorf("failed to encode derivative: %w", err)
	}

	return nil
}

// ApplyEffects runs effects over an image in weight order
func ApplyEffects(img image.Image, effects []models.ImageEffect) (image.Image, error) {
	ordered := make([]models.ImageEffect, len(effects))
	copy(ordered, effects)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Weight < ordered[j].Weight
	})

	for _, effect := range ordered {
		switch effect.ID {
		case EffectScale:
			img = scale(img, effect.Data.Width, effect.Data.Height, effect.Data.Upscale)
		case EffectScaleAndCrop:
			if effect.Data.Height == nil {
				return nil, fmt.Errorf("%s requires a height", EffectScaleAndCrop)
			}
			img = scaleAndCrop(img, effect.Data.Width, *effect.Data.Height)
		default:
			return nil, fmt.Errorf("unsupported image effect %q", effect.ID)
		}
	}
	return img, nil
}

// scale resizes to fit the given width (and height, if any) keeping the aspect ratio
func scale(img image.Image, width int, height *int, upscale bool) image.Image {
	srcBounds := img.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()

	factor := float64(width) / float64(srcWidth)
	if height != nil {
		factor = min(factor, float64(*height)/float64(srcHeight))
	}
	if factor >= 1 && !upscale {
		return img
	}

	dstWidth := max(int(float64(srcWidth)*factor+0.5), 1)
	dstHeight := max(int(float64(srcHeight)*factor+0.5), 1)

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, srcBounds, draw.Over, nil)
	return dst
}

// scaleAndCrop uses a centre crop to reach exact dimensions
func scaleAndCrop(img image.Image, width, height int) image.Image {
	srcBounds := img.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()

	// Calculate aspect ratios
	srcAspect := float64(srcWidth) / float64(srcHeight)
	dstAspect := float64(width) / float64(height)

	var cropRect image.Rectangle
	if srcAspect > dstAspect {
		// Source is wider - crop width
		newWidth := int(float64(srcHeight) * dstAspect)
		x := srcBounds.Min.X + (srcWidth-newWidth)/2
		cropRect = image.Rect(x, srcBounds.Min.Y, x+newWidth, srcBounds.Max.Y)
	} else {
		// Source is taller - crop height
		newHeight := int(float64(srcWidth) / dstAspect)
		y := srcBounds.Min.Y + (srcHeight-newHeight)/2
		cropRect = image.Rect(srcBounds.Min.X, y, srcBounds.Max.X, y+newHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, cropRect, draw.Over, nil)
	return dst
}
