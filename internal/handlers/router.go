package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/sitebuilder/internal/middleware"
	"gorm.io/gorm"
)

// StylesPrefix is the URL prefix of image style derivatives
const StylesPrefix = "/styles/"

// RouterOptions configure the HTTP routes
type RouterOptions struct {
	Derivatives DerivativeOptions
	Limiter     *middleware.RateLimiter // nil disables rate limiting
	IPFilter    *middleware.IPFilter    // nil admits every address
	HSTS        bool

	// TrustedProxies may set X-Forwarded-For; empty trusts none
	TrustedProxies []string
}

// HealthHandler reports that the server is up
func HealthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "sitebuilder",
	})
}

// NewRouter builds the gin engine serving health checks and derivatives
func NewRouter(db *gorm.DB, opts RouterOptions) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeadersMiddleware(opts.HSTS))
	if opts.IPFilter != nil {
		r.Use(middleware.IPFilterMiddleware(opts.IPFilter))
	}
	if opts.Limiter != nil {
		r.Use(middleware.RateLimitMiddleware(opts.Limiter, StylesPrefix))
	}

	r.GET("/health", HealthHandler)
	r.GET(StylesPrefix+":style/public/*path", ServeDerivativeHandler(db, opts.Derivatives))

	return r, nil
}
