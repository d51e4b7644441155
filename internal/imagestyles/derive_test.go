// SPDX-License-Identifier: MIT
package imagestyles

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/thatcatcamp/sitebuilder/internal/models"
)

// writeTestImage creates a solid image of the given size
func writeTestImage(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer file.Close()

	if filepath.Ext(path) == ".png" {
		err = png.Encode(file, img)
	} else {
		err = jpeg.Encode(file, img, nil)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func decodeSize(t *testing.T, path string) (int, int, string) {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open derivative: %v", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		t.Fatalf("Failed to decode derivative: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy(), format
}

func TestDeriveScaleAndCrop(t *testing.T) {
	tmpDir := t.TempDir()

	// Wide source (200x100) into a square style: must centre-crop
	srcPath := filepath.Join(tmpDir, "wide.jpg")
	writeTestImage(t, srcPath, 200, 100)

	style, err := NewImageStyle("square_50", "Square (50×50)", Derivative{Width: 50, Height: intPtr(50)})
	if err != nil {
		t.Fatalf("NewImageStyle failed: %v", err)
	}

	dstPath := filepath.Join(tmpDir, "styles", "square_50", "wide.jpg")
	if err := Derive(style, srcPath, dstPath, 0); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	width, height, format := decodeSize(t, dstPath)
	if width != 50 || height != 50 {
		t.Errorf("Expected 50x50 derivative, got %dx%d", width, height)
	}
	if format != "jpeg" {
		t.Errorf("Expected JPEG output, got %s", format)
	}
}

func TestDeriveScaleKeepsAspectRatio(t *testing.T) {
	tmpDir := t.TempDir()

	srcPath := filepath.Join(tmpDir, "photo.png")
	writeTestImage(t, srcPath, 400, 300)

	style, err := NewImageStyle("photo_200", "Photo (200×h)", Derivative{Width: 200})
	if err != nil {
		t.Fatalf("NewImageStyle failed: %v", err)
	}

	dstPath := filepath.Join(tmpDir, "photo_200.png")
	if err := Derive(style, srcPath, dstPath, 90); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	width, height, format := decodeSize(t, dstPath)
	if width != 200 || height != 150 {
		t.Errorf("Expected 200x150 derivative, got %dx%d", width, height)
	}
	if format != "png" {
		t.Errorf("Expected PNG output, got %s", format)
	}
}

func TestScaleDoesNotUpscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))

	scaled := scale(img, 400, nil, false)
	if scaled.Bounds().Dx() != 100 || scaled.Bounds().Dy() != 50 {
		t.Errorf("Expected original 100x50, got %dx%d", scaled.Bounds().Dx(), scaled.Bounds().Dy())
	}

	upscaled := scale(img, 400, nil, true)
	if upscaled.Bounds().Dx() != 400 || upscaled.Bounds().Dy() != 200 {
		t.Errorf("Expected 400x200, got %dx%d", upscaled.Bounds().Dx(), upscaled.Bounds().Dy())
	}
}

func TestApplyEffectsRejectsUnknownEffect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	_, err := ApplyEffects(img, []models.ImageEffect{{ID: "image_desaturate"}})
	if err == nil {
		t.Fatal("Expected error for unsupported effect")
	}
}

func TestDeriveRejectsNonImage(t *testing.T) {
	tmpDir := t.TempDir()

	srcPath := filepath.Join(tmpDir, "notes.jpg")
	if err := os.WriteFile(srcPath, []byte("definitely not an image"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	style, _ := NewImageStyle("any_10", "Any", Derivative{Width: 10})
	if err := Derive(style, srcPath, filepath.Join(tmpDir, "out.jpg"), 0); err == nil {
		t.Fatal("Expected error for non-image source")
	}
}

func TestDeriveEncodesByExtension(t *testing.T) {
	tmpDir := t.TempDir()
	srcPath := filepath.Join(tmpDir, "photo.png")
	writeTestImage(t, srcPath, 40, 20)

	style, _ := NewImageStyle("small_20", "Small", Derivative{Width: 20})

	tests := []struct {
		dst    string
		format string
	}{
		{"out.jpg", "jpeg"},
		{"out.JPEG", "jpeg"},
		{"out.png", "png"},
		{"out.gif", "gif"},
	}
	for _, tt := range tests {
		dstPath := filepath.Join(tmpDir, tt.dst)
		if err := Derive(style, srcPath, dstPath, 0); err != nil {
			t.Fatalf("Derive(%s) failed: %v", tt.dst, err)
		}
		if _, _, format := decodeSize(t, dstPath); format != tt.format {
			t.Errorf("%s: expected %s, got %s", tt.dst, tt.format, format)
		}
	}
}

func TestDeriveRejectsUnencodableDestination(t *testing.T) {
	tmpDir := t.TempDir()
	srcPath := filepath.Join(tmpDir, "photo.jpg")
	writeTestImage(t, srcPath, 40, 20)

	style, _ := NewImageStyle("small_20", "Small", Derivative{Width: 20})

	for _, dst := range []string{"out.webp", "out"} {
		dstPath := filepath.Join(tmpDir, dst)
		err := Derive(style, srcPath, dstPath, 0)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("%s: expected ErrUnsupportedFormat, got %v", dst, err)
		}
		if _, statErr := os.Stat(dstPath); !os.IsNotExist(statErr) {
			t.Errorf("%s: no file should be written", dst)
		}
	}
}
