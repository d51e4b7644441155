package middleware

import (
	"fmt"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IPFilter holds parsed CIDR block and allow lists
type IPFilter struct {
	blocked []*net.IPNet
	allowed []*net.IPNet
}

// NewIPFilter parses the block and allow lists. A bare IP is treated as a
// single-host range. An empty allow list admits every address not blocked.
func NewIPFilter(blocklist, allowlist []string) (*IPFilter, error) {
	blocked, err := parseRanges(blocklist)
	if err != nil {
		return nil, err
	}
	allowed, err := parseRanges(allowlist)
	if err != nil {
		return nil, err
	}
	return &IPFilter{blocked: blocked, allowed: allowed}, nil
}

func parseRanges(values []string) ([]*net.IPNet, error) {
	ranges := make([]*net.IPNet, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if !strings.Contains(value, "/") {
			ip := net.ParseIP(value)
			if ip == nil {
				return nil, fmt.Errorf("invalid IP address %q", value)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			value = fmt.Sprintf("%s/%d", value, bits)
		}
		_, ipNet, err := net.ParseCIDR(value)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR range %q: %w", value, err)
		}
		ranges = append(ranges, ipNet)
	}
	return ranges, nil
}

// Allowed reports whether ip passes the filter
func (f *IPFilter) Allowed(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, ipNet := range f.blocked {
		if ipNet.Contains(ip) {
			return false
		}
	}
	if len(f.allowed) == 0 {
		return true
	}
	for _, ipNet := range f.allowed {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// IPFilterMiddleware rejects requests from filtered addresses with 403
func IPFilterMiddleware(filter *IPFilter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := net.ParseIP(c.ClientIP())
		if !filter.Allowed(ip) {
			zap.L().Debug("request blocked by IP filter",
				zap.Stringer("ip", ip),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatus(403)
			return
		}
		c.Next()
	}
}
