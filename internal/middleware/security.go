package middleware

import "github.com/gin-gonic/gin"

// apiHeaders are set on every response. The server only speaks JSON and
// WebSocket, so nothing may be framed, sniffed, cached or embedded.
var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders sets apiHeaders. Strict-Transport-Security is only sent
// on TLS connections.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range apiHeaders {
			c.Header(h[0], h[1])
		}

		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		c.Next()
	}
}
