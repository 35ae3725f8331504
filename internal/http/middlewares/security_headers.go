package middlewares

import (
	"github.com/gin-gonic/gin"
)

const (
	defaultCSP = "default-src 'none'; frame-ancestors 'none'"
	// the usage page at / ships one inline stylesheet and nothing else
	usagePageCSP = "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("X-XSS-Protection", "0")
		if c.Request.URL.Path == "/" {
			c.Header("Content-Security-Policy", usagePageCSP)
		} else {
			c.Header("Content-Security-Policy", defaultCSP)
		}
		c.Next()
	}
}
