package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
	"github.com/AlexTsikhun/social-media-api/internal/user"
)

// RegisteredOnly blocks authenticated callers that have not created their local user yet.
func RegisteredOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		userID := c.GetString("user_id")

		if userID == "" {
			errs.Respond(c, errs.ErrUnauthenticated)
			logs.LogJSON("WARN", "Non-authenticated user reached registered route", map[string]interface{}{
				"route": route,
			})
			return
		}

		exists, err := user.ExistsByID(database.WithContext(c.Request.Context()), userID)
		if err != nil {
			errs.Respond(c, err)
			return
		}

		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User is not registered. Call POST /api/users/ first."})
			logs.LogJSON("WARN", "Unregistered user blocked", map[string]interface{}{
				"route":  route,
				"userID": userID,
			})
			return
		}

		c.Next()
	}
}
