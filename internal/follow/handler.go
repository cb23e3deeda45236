package follow

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/social-media-api/internal/access"
	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/events"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
	"github.com/AlexTsikhun/social-media-api/internal/metrics"
	"github.com/AlexTsikhun/social-media-api/internal/user"
)

// FollowUser makes the caller follow followedID and writes the response.
// Post, comment and edge actions all end here.
func FollowUser(c *gin.Context, followedID string) {
	route := c.FullPath()
	followerID := c.GetString("user_id")

	f, err := Create(database.WithContext(c.Request.Context()), followerID, followedID)
	if err != nil {
		errs.Respond(c, err)
		logs.LogJSON("WARN", "Follow rejected", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": followerID,
			"extra":  "followedID: " + followedID,
		})
		return
	}

	metrics.RecordFollow("created")
	events.Emit(c.Request.Context(), events.Event{
		Type:       events.FollowCreated,
		ActorID:    followerID,
		TargetType: "user",
		TargetID:   followedID,
	})

	c.JSON(http.StatusCreated, gin.H{"message": "You are now following this user."})
	logs.LogJSON("INFO", "Followed user", map[string]interface{}{
		"route":  route,
		"userID": followerID,
		"extra":  "follow: " + f.ID,
	})
}

func UnfollowUser(c *gin.Context, followedID string) {
	route := c.FullPath()
	followerID := c.GetString("user_id")

	if err := Delete(database.WithContext(c.Request.Context()), followerID, followedID); err != nil {
		errs.Respond(c, err)
		logs.LogJSON("WARN", "Unfollow rejected", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": followerID,
			"extra":  "followedID: " + followedID,
		})
		return
	}

	metrics.RecordFollow("deleted")
	events.Emit(c.Request.Context(), events.Event{
		Type:       events.FollowDeleted,
		ActorID:    followerID,
		TargetType: "user",
		TargetID:   followedID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "You have unfollowed this user."})
	logs.LogJSON("INFO", "Unfollowed user", map[string]interface{}{
		"route":  route,
		"userID": followerID,
		"extra":  "followedID: " + followedID,
	})
}

// Resource serves one following/followers listing and its per-edge actions.
// With Mine set the listing belongs to the caller, otherwise to :username.
type Resource struct {
	Side Side
	Mine bool
}

func (r Resource) query(c *gin.Context) (Query, error) {
	q := Query{Side: r.Side, Username: c.Query("username")}
	if r.Mine {
		q.OwnerID = c.GetString("user_id")
		return q, nil
	}

	owner, err := user.ByUsername(database.WithContext(c.Request.Context()), c.Param("username"))
	if err != nil {
		return q, err
	}
	q.OwnerID = owner.ID
	return q, nil
}

func (r Resource) edge(c *gin.Context) (*Edge, bool) {
	q, err := r.query(c)
	if err != nil {
		errs.Respond(c, err)
		return nil, false
	}
	q.Username = ""

	e, err := GetEdge(database.WithContext(c.Request.Context()), q, c.Param("id"))
	if err != nil {
		errs.Respond(c, err)
		return nil, false
	}
	return e, true
}

// List GET .../following/ and .../followers/
func (r Resource) List(c *gin.Context) {
	q, err := r.query(c)
	if err != nil {
		errs.Respond(c, err)
		return
	}

	edges, err := ListEdges(database.WithContext(c.Request.Context()), q)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, edges)
}

// Retrieve GET .../:id/
func (r Resource) Retrieve(c *gin.Context) {
	if e, ok := r.edge(c); ok {
		c.JSON(http.StatusOK, e)
	}
}

// Destroy DELETE .../:id/ (only the follower may remove an edge)
func (r Resource) Destroy(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	e, ok := r.edge(c)
	if !ok {
		return
	}
	if err := access.Authorize(c.Request.Method, userID, e); err != nil {
		errs.Respond(c, err)
		logs.LogJSON("WARN", "Edge delete forbidden", map[string]interface{}{
			"route":  route,
			"userID": userID,
			"extra":  "follow: " + e.ID,
		})
		return
	}

	if err := DeleteEdge(database.WithContext(c.Request.Context()), e.ID); err != nil {
		errs.Respond(c, err)
		return
	}

	metrics.RecordFollow("deleted")
	events.Emit(c.Request.Context(), events.Event{
		Type:       events.FollowDeleted,
		ActorID:    userID,
		TargetType: "user",
		TargetID:   e.FollowedID,
	})
	c.Status(http.StatusNoContent)
	logs.LogJSON("INFO", "Follow edge deleted", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  "follow: " + e.ID,
	})
}

// Follow POST .../:id/follow/
func (r Resource) Follow(c *gin.Context) {
	if e, ok := r.edge(c); ok {
		id, _ := e.Other(r.Side)
		FollowUser(c, id)
	}
}

// Unfollow POST .../:id/unfollow/
func (r Resource) Unfollow(c *gin.Context) {
	if e, ok := r.edge(c); ok {
		id, _ := e.Other(r.Side)
		UnfollowUser(c, id)
	}
}

// RedirectToProfile GET .../:id/redirect_to_profile/
func (r Resource) RedirectToProfile(c *gin.Context) {
	if e, ok := r.edge(c); ok {
		_, username := e.Other(r.Side)
		c.Redirect(http.StatusFound, ProfilePath(username))
	}
}

func ProfilePath(username string) string {
	return "/api/profile/" + url.PathEscape(username) + "/"
}
