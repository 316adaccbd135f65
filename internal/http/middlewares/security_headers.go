package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// The API only ever returns JSON, so nothing may load from its responses.
var apiPolicy = contentSecurityPolicy("default-src 'none'")

// The docs page pulls Swagger UI from unpkg and boots it with an inline script.
var docsPolicy = contentSecurityPolicy(
	"default-src 'self'",
	"base-uri 'none'",
	"frame-ancestors 'none'",
	"object-src 'none'",
	"connect-src 'self'",
	"img-src 'self' data: https:",
	"font-src 'self' https://unpkg.com data:",
	"style-src 'self' 'unsafe-inline' https://unpkg.com",
	"script-src 'self' 'unsafe-inline' https://unpkg.com",
)

var staticSecurityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"X-XSS-Protection", "0"},
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Permissions-Policy", "camera=(), geolocation=(), microphone=()"},
}

func contentSecurityPolicy(directives ...string) string {
	return strings.Join(directives, "; ")
}

// SecurityHeaders sets the hardening headers on every response. Paths under docsPrefix get
// the looser policy the Swagger UI page needs; an empty prefix disables it.
func SecurityHeaders(docsPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range staticSecurityHeaders {
			h.Set(kv[0], kv[1])
		}

		policy := apiPolicy
		if docsPrefix != "" && strings.HasPrefix(c.Request.URL.Path, docsPrefix) {
			policy = docsPolicy
		}
		h.Set("Content-Security-Policy", policy)

		c.Next()
	}
}
