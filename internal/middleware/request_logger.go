package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/social-media-api/internal/logs"
)

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := "INFO"
		switch {
		case status >= 500:
			level = "ERROR"
		case status >= 400:
			level = "WARN"
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		logs.LogJSON(level, "Request handled", map[string]interface{}{
			"route":      route,
			"userID":     c.GetString("user_id"),
			"method":     c.Request.Method,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
	}
}
