// Package middleware provides HTTP middleware for the copilot service.
package middleware

import "github.com/gin-gonic/gin"

// Identity headers forwarded by the authenticating gateway. The engine
// never authenticates; it only binds identity to pending records and
// consults the role policy.
const (
	ClientIDHeader   = "X-Client-Id"
	ClientRoleHeader = "X-Client-Role"

	ClientIDKey   = "client_id"
	ClientRoleKey = "client_role"
)

// ClientIdentity copies the gateway identity headers into the gin context.
func ClientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ClientIDKey, c.GetHeader(ClientIDHeader))
		c.Set(ClientRoleKey, c.GetHeader(ClientRoleHeader))
		c.Next()
	}
}
