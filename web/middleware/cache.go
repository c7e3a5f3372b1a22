// Package middleware provides request throttling and response caching headers for the task panel.
package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoStoreMiddleware stops browsers and proxies from keeping per-user pages, so
// the back button cannot show a dashboard after logout.
func NoStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}
