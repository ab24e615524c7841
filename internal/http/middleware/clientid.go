package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientID extracts a stable identifier for the requesting client, used as
// the rate-limit key and in audit logs.
//
// Resolution order:
//  1. The first entry of X-Forwarded-For, trimmed. The leftmost value is the
//     originating client when the app sits behind a trusted proxy.
//  2. The host portion of the socket's remote address.
//  3. "unknown" when neither yields a non-empty value. Such clients share one
//     rate-limit bucket rather than bypassing the limit.
func ClientID(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(c.Request.RemoteAddr); addr != "" {
		return addr
	}
	return "unknown"
}
