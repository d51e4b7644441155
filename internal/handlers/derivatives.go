// SPDX-License-Identifier: MIT
package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/sitebuilder/internal/imagestyles"
	"github.com/thatcatcamp/sitebuilder/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// DerivativeOptions locate the original files and the derivative cache
type DerivativeOptions struct {
	FilesDir  string
	StylesDir string
	Quality   int
}

// ServeDerivativeHandler serves /styles/:style/public/*path, generating the
// derivative from the original file the first time it is requested
func ServeDerivativeHandler(db *gorm.DB, opts DerivativeOptions) gin.HandlerFunc {
	var group singleflight.Group

	return func(c *gin.Context) {
		styleName := c.Param("style")

		rel, ok := localPath(c.Param("path"))
		if !ok {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		if !imagestyles.Encodable(rel) {
			c.AbortWithStatus(http.StatusUnsupportedMediaType)
			return
		}

		style, err := imagestyles.GetImageStyle(db, styleName)
		if err != nil {
			if errors.Is(err, imagestyles.ErrNotFound) {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
			zap.L().Error("failed to load image style", zap.String("style", styleName), zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		dstPath := filepath.Join(opts.StylesDir, style.Name, rel)
		if _, err := os.Stat(dstPath); err == nil {
			c.File(dstPath)
			return
		}

		srcPath := filepath.Join(opts.FilesDir, rel)
		if info, err := os.Stat(srcPath); err != nil || info.IsDir() {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		// Concurrent requests for the same derivative share one generation
		_, err, _ = group.Do(dstPath, func() (any, error) {
			return nil, generate(style, srcPath, dstPath, opts.Quality)
		})
		if err != nil {
			zap.L().Error("failed to generate derivative",
				zap.String("style", style.Name),
				zap.String("path", rel),
				zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.File(dstPath)
	}
}

// generate renders into a temporary file next to dstPath and renames it into place
func generate(style *models.ImageStyle, srcPath, dstPath string, quality int) error {
	tmpPath := filepath.Join(filepath.Dir(dstPath), ".tmp-"+filepath.Base(dstPath))
	if err := imagestyles.Derive(style, srcPath, tmpPath, quality); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, dstPath)
}

// localPath turns a wildcard route parameter into a relative path that stays inside its root
func localPath(param string) (string, bool) {
	rel := strings.TrimPrefix(param, "/")
	if rel == "" {
		return "", false
	}
	for _, segment := range strings.Split(rel, "/") {
		if segment == ".." {
			return "", false
		}
	}

	rel = filepath.FromSlash(rel)
	if !filepath.IsLocal(rel) {
		return "", false
	}
	return rel, true
}
