package post

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/social-media-api/internal/access"
	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/events"
	"github.com/AlexTsikhun/social-media-api/internal/follow"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
	"github.com/AlexTsikhun/social-media-api/internal/metrics"
	"github.com/AlexTsikhun/social-media-api/internal/target"
	"github.com/AlexTsikhun/social-media-api/internal/user"
)

type postInput struct {
	Title   string `json:"title" binding:"required,max=255,notblank"`
	Content string `json:"content" binding:"required,notblank"`
	Image   string `json:"image" binding:"omitempty,url"`
}

type patchInput struct {
	Title   *string `json:"title" binding:"omitempty,max=255,notblank"`
	Content *string `json:"content" binding:"omitempty,notblank"`
	Image   *string `json:"image" binding:"omitempty,url"`
}

func (in patchInput) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.Image != nil {
		fields["image"] = *in.Image
	}
	return fields
}

type commentInput struct {
	CommentText string `json:"comment_text"`
}

// ParseFilter reads ?title, ?post_date (YYYY-MM-DD), ?limit and ?offset.
func ParseFilter(c *gin.Context) (Filter, error) {
	f := Filter{Title: c.Query("title"), Limit: DefaultLimit}

	if raw := c.Query("post_date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, errs.Field("post_date", "Enter a valid date.")
		}
		f.PostDate = &day
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = n
	}
	if n, err := strconv.Atoi(c.Query("offset")); err == nil {
		f.Offset = n
	}
	return f, nil
}

func listPosts(c *gin.Context, f Filter) {
	db := database.WithContext(c.Request.Context())

	posts, err := List(db, f)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	items, err := Serialize(db, posts)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListPosts GET /api/posts/
func ListPosts(c *gin.Context) {
	f, err := ParseFilter(c)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	listPosts(c, f)
}

// ListMyPosts GET /api/my-profile/user-posts/
func ListMyPosts(c *gin.Context) {
	f, err := ParseFilter(c)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	f.UserID = c.GetString("user_id")
	listPosts(c, f)
}

// CreatePost POST /api/posts/
func CreatePost(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	var input postInput
	if err := c.ShouldBindJSON(&input); err != nil {
		errs.Respond(c, errs.FromBinding(err))
		logs.LogJSON("WARN", "Invalid post payload", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	db := database.WithContext(c.Request.Context())
	p := &Post{
		UserID:  userID,
		Title:   strings.TrimSpace(input.Title),
		Content: input.Content,
		Image:   input.Image,
	}
	if err := Create(db, p); err != nil {
		errs.Respond(c, err)
		return
	}

	items, err := Serialize(db, []Post{*p})
	if err != nil {
		errs.Respond(c, err)
		return
	}

	metrics.RecordPost("created")
	events.Emit(c.Request.Context(), events.Event{
		Type:       events.PostCreated,
		ActorID:    userID,
		TargetType: string(target.KindPost),
		TargetID:   p.ID,
	})

	c.JSON(http.StatusCreated, items[0])
	logs.LogJSON("INFO", "Post created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  "post: " + p.ID,
	})
}

func loadPost(c *gin.Context) (*Post, bool) {
	p, err := Get(database.WithContext(c.Request.Context()), c.Param("id"))
	if err != nil {
		errs.Respond(c, err)
		return nil, false
	}
	return p, true
}

// loadOwnedPost also enforces ownership for unsafe methods.
func loadOwnedPost(c *gin.Context) (*Post, bool) {
	p, ok := loadPost(c)
	if !ok {
		return nil, false
	}
	userID := c.GetString("user_id")
	if err := access.Authorize(c.Request.Method, userID, p); err != nil {
		errs.Respond(c, err)
		logs.LogJSON("WARN", "Post write forbidden", map[string]interface{}{
			"route":  c.FullPath(),
			"userID": userID,
			"extra":  "post: " + p.ID,
		})
		return nil, false
	}
	return p, true
}

// GetPost GET /api/posts/:id/
func GetPost(c *gin.Context) {
	p, ok := loadPost(c)
	if !ok {
		return
	}

	d, err := SerializeDetail(database.WithContext(c.Request.Context()), p, c.GetString("user_id"))
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// UpdatePost PUT and PATCH /api/posts/:id/
func UpdatePost(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	p, ok := loadOwnedPost(c)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if c.Request.Method == http.MethodPut {
		var input postInput
		if err := c.ShouldBindJSON(&input); err != nil {
			errs.Respond(c, errs.FromBinding(err))
			return
		}
		fields = map[string]interface{}{
			"title":   strings.TrimSpace(input.Title),
			"content": input.Content,
			"image":   input.Image,
		}
	} else {
		var input patchInput
		if err := c.ShouldBindJSON(&input); err != nil {
			errs.Respond(c, errs.FromBinding(err))
			return
		}
		fields = input.fields()
	}

	db := database.WithContext(c.Request.Context())
	if err := Update(db, p, fields); err != nil {
		errs.Respond(c, err)
		return
	}

	items, err := Serialize(db, []Post{*p})
	if err != nil {
		errs.Respond(c, err)
		return
	}

	metrics.RecordPost("updated")
	c.JSON(http.StatusOK, items[0])
	logs.LogJSON("INFO", "Post updated", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  "post: " + p.ID,
	})
}

// DeletePost DELETE /api/posts/:id/
func DeletePost(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	p, ok := loadOwnedPost(c)
	if !ok {
		return
	}

	if err := Delete(database.WithContext(c.Request.Context()), p); err != nil {
		errs.Respond(c, err)
		return
	}

	metrics.RecordPost("deleted")
	events.Emit(c.Request.Context(), events.Event{
		Type:       events.PostDeleted,
		ActorID:    userID,
		TargetType: string(target.KindPost),
		TargetID:   p.ID,
	})

	c.Status(http.StatusNoContent)
	logs.LogJSON("INFO", "Post deleted", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  "post: " + p.ID,
	})
}

// FollowAuthor POST /api/posts/:id/follow/
func FollowAuthor(c *gin.Context) {
	if p, ok := loadPost(c); ok {
		follow.FollowUser(c, p.UserID)
	}
}

// UnfollowAuthor POST /api/posts/:id/unfollow/
func UnfollowAuthor(c *gin.Context) {
	if p, ok := loadPost(c); ok {
		follow.UnfollowUser(c, p.UserID)
	}
}

// RedirectToProfile GET /api/posts/:id/redirect_to_profile/
func RedirectToProfile(c *gin.Context) {
	p, ok := loadPost(c)
	if !ok {
		return
	}
	redirectToAuthor(c, p.UserID)
}

func redirectToAuthor(c *gin.Context, authorID string) {
	author, err := user.ByID(database.WithContext(c.Request.Context()), authorID)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.Redirect(http.StatusFound, follow.ProfilePath(author.Username))
}

// AddCommentHandler POST /api/posts/:id/add_comment/
func AddCommentHandler(reg *target.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		userID := c.GetString("user_id")

		db := database.WithContext(c.Request.Context())
		ref := target.Ref{Kind: target.KindPost, ID: c.Param("id")}

		// A missing post is reported before anything about the body.
		if err := reg.Resolve(db, ref); err != nil {
			errs.Respond(c, err)
			return
		}

		var input commentInput
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			errs.Respond(c, errs.FromBinding(err))
			return
		}

		cm, err := AddComment(db, reg, ref, userID, input.CommentText)
		if err != nil {
			errs.Respond(c, err)
			logs.LogJSON("WARN", "Comment rejected", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
			})
			return
		}

		author, err := user.ByID(db, userID)
		if err != nil {
			errs.Respond(c, err)
			return
		}

		metrics.RecordComment()
		events.Emit(c.Request.Context(), events.Event{
			Type:       events.CommentCreated,
			ActorID:    userID,
			TargetType: string(ref.Kind),
			TargetID:   ref.ID,
		})

		c.JSON(http.StatusCreated, CommentView{
			ID:          cm.ID,
			User:        author.Username,
			TargetType:  cm.TargetType,
			TargetID:    cm.TargetID,
			CommentText: cm.Text,
			CreatedAt:   cm.CreatedAt,
		})
		logs.LogJSON("INFO", "Comment created", map[string]interface{}{
			"route":  route,
			"userID": userID,
			"extra":  "comment: " + cm.ID,
		})
	}
}
