package post

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/social-media-api/internal/access"
	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/follow"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
	"github.com/AlexTsikhun/social-media-api/internal/target"
	"github.com/AlexTsikhun/social-media-api/internal/user"
)

type commentDetail struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Post        ListItem  `json:"post"`
	CommentText string    `json:"comment_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// loadMyComment only finds the caller's own comments.
func loadMyComment(c *gin.Context) (*Comment, bool) {
	cm, err := GetComment(database.WithContext(c.Request.Context()), c.Param("id"))
	if err == nil && cm.UserID != c.GetString("user_id") {
		err = errs.NotFound("Comment not found")
	}
	if err != nil {
		errs.Respond(c, err)
		return nil, false
	}
	return cm, true
}

// commentedPost returns the post a comment was left on.
func commentedPost(c *gin.Context, cm *Comment) (*Post, bool) {
	if cm.TargetType != target.KindPost {
		errs.Respond(c, errs.NotFound("Post not found"))
		return nil, false
	}
	p, err := Get(database.WithContext(c.Request.Context()), cm.TargetID)
	if err != nil {
		errs.Respond(c, err)
		return nil, false
	}
	return p, true
}

// ListMyComments GET /api/my-profile/user-comments/
func ListMyComments(c *gin.Context) {
	views, err := ListUserComments(database.WithContext(c.Request.Context()), c.GetString("user_id"), c.Query("post_title"))
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetMyComment GET /api/my-profile/user-comments/:id/
func GetMyComment(c *gin.Context) {
	cm, ok := loadMyComment(c)
	if !ok {
		return
	}
	p, ok := commentedPost(c, cm)
	if !ok {
		return
	}

	db := database.WithContext(c.Request.Context())
	items, err := Serialize(db, []Post{*p})
	if err != nil {
		errs.Respond(c, err)
		return
	}
	author, err := user.ByID(db, cm.UserID)
	if err != nil {
		errs.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, commentDetail{
		ID:          cm.ID,
		User:        author.Username,
		Post:        items[0],
		CommentText: cm.Text,
		CreatedAt:   cm.CreatedAt,
	})
}

// DeleteMyComment DELETE /api/my-profile/user-comments/:id/
func DeleteMyComment(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	cm, ok := loadMyComment(c)
	if !ok {
		return
	}
	if err := access.Authorize(c.Request.Method, userID, cm); err != nil {
		errs.Respond(c, err)
		return
	}

	if err := DeleteComment(database.WithContext(c.Request.Context()), cm); err != nil {
		errs.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
	logs.LogJSON("INFO", "Comment deleted", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  "comment: " + cm.ID,
	})
}

// FollowCommentedAuthor POST /api/my-profile/user-comments/:id/follow/
func FollowCommentedAuthor(c *gin.Context) {
	if cm, ok := loadMyComment(c); ok {
		if p, ok := commentedPost(c, cm); ok {
			follow.FollowUser(c, p.UserID)
		}
	}
}

// UnfollowCommentedAuthor POST /api/my-profile/user-comments/:id/unfollow/
func UnfollowCommentedAuthor(c *gin.Context) {
	if cm, ok := loadMyComment(c); ok {
		if p, ok := commentedPost(c, cm); ok {
			follow.UnfollowUser(c, p.UserID)
		}
	}
}

// RedirectCommentToProfile GET /api/my-profile/user-comments/:id/redirect_to_profile/
func RedirectCommentToProfile(c *gin.Context) {
	if cm, ok := loadMyComment(c); ok {
		if p, ok := commentedPost(c, cm); ok {
			redirectToAuthor(c, p.UserID)
		}
	}
}
