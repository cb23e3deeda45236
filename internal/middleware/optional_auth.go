package middleware

import (
	"github.com/gin-gonic/gin"
)

// OptionalAuthMiddleware sets user_id when a valid bearer token is present and
// lets the request through anonymously otherwise.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenStr, ok := bearer(c)
		if !ok {
			c.Next()
			return
		}

		if userID, err := subject(tokenStr, key); err == nil {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}
