package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := request(SecurityHeadersMiddleware(false), "GET", "/health", "10.0.0.1:1234")

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected nosniff, got %q", got)
	}
	if got := w.Header().Get("Content-Security-Policy"); got != imageCSP {
		t.Errorf("Unexpected CSP %q", got)
	}
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS should be off, got %q", got)
	}
}

func TestSecurityHeadersHSTS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/health", nil)
	SecurityHeadersMiddleware(true)(c)

	if got := w.Header().Get("Strict-Transport-Security"); got == "" {
		t.Error("Expected HSTS header")
	}
}
