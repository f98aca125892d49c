package middleware

import "github.com/gin-gonic/gin"

// userIDKey stores the authenticated actor's id. A custom key type prevents
// collisions with other context values.
const userIDKey = contextKey("userID")

// GetUserIDFromContext returns the authenticated user id set by AuthMiddleware,
// checking both the Gin context and the underlying request context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if val, exists := c.Get(string(userIDKey)); exists {
		userID, ok := val.(string)
		return userID, ok
	}
	if val := c.Request.Context().Value(userIDKey); val != nil {
		userID, ok := val.(string)
		return userID, ok
	}
	return "", false
}
