package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// Cache-Control presets for read endpoints. Listings change often, raw PDF
// bytes never do.
const (
	CacheShort  = 60 * time.Second
	CacheMedium = 5 * time.Minute
	CacheLong   = time.Hour
)

// CacheControl sets a private max-age header on GET responses
func CacheControl(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("private, max-age=%d", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		if c.Request.Method == "GET" {
			c.Header("Cache-Control", value)
		}
		c.Next()
	}
}

// NoStore disables caching for auth and job endpoints
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
