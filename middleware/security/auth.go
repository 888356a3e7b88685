package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"WeGap/tools/security"
)

// ContextUserID is the gin context key the middleware stores the
// authenticated user id under.
const ContextUserID = "auth_user_id"

// BearerAuth guards HTTP endpoints with a JWT bearer token. The
// websocket path does not use this: there the credential travels in the
// first frame so browser clients without header control can connect.
func BearerAuth(opts security.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := security.Verify(opts, token, "")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextUserID, claims.UserID())
		c.Next()
	}
}
