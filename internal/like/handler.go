package like

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/events"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
	"github.com/AlexTsikhun/social-media-api/internal/metrics"
	"github.com/AlexTsikhun/social-media-api/internal/target"
)

// ToggleLike POST /api/posts/:id/like/ and /api/comments/:id/like/
func ToggleLike(reg *target.Registry, kind target.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		userID := c.GetString("user_id")
		ref := target.Ref{Kind: kind, ID: c.Param("id")}

		result, err := Toggle(database.WithContext(c.Request.Context()), reg, ref, userID)
		if err != nil {
			errs.Respond(c, err)
			logs.LogJSON("WARN", "Like toggle failed", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
				"extra":  string(kind) + ":" + ref.ID,
			})
			return
		}

		metrics.RecordLike(string(kind), string(result))
		eventType := events.LikeAdded
		if result == Removed {
			eventType = events.LikeRemoved
		}
		events.Emit(c.Request.Context(), events.Event{
			Type:       eventType,
			ActorID:    userID,
			TargetType: string(kind),
			TargetID:   ref.ID,
		})

		c.JSON(http.StatusOK, gin.H{"message": result.Message()})
		logs.LogJSON("INFO", "Like toggled", map[string]interface{}{
			"route":  route,
			"userID": userID,
			"extra":  string(result) + " " + string(kind) + ":" + ref.ID,
		})
	}
}

// GetFans GET /api/posts/:id/likes/
func GetFans(reg *target.Registry, kind target.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := database.WithContext(c.Request.Context())
		ref := target.Ref{Kind: kind, ID: c.Param("id")}

		if err := reg.Resolve(db, ref); err != nil {
			errs.Respond(c, err)
			return
		}

		fans, err := Fans(db, ref)
		if err != nil {
			errs.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, fans)
	}
}
