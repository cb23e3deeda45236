package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/follow"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
	"github.com/AlexTsikhun/social-media-api/internal/post"
	"github.com/AlexTsikhun/social-media-api/internal/user"
)

type updateInput struct {
	Bio    *string `json:"bio" binding:"omitempty,max=255"`
	Avatar *string `json:"avatar" binding:"omitempty,url"`
}

// view assembles a profile page. The owner also sees the email; other viewers get is_following.
func view(db *gorm.DB, u *user.User, viewerID string) (gin.H, error) {
	p, err := user.ProfileByUserID(db, u.ID)
	if err != nil {
		return nil, err
	}

	posts, err := post.List(db, post.Filter{UserID: u.ID, Limit: post.MaxLimit})
	if err != nil {
		return nil, err
	}
	items, err := post.Serialize(db, posts)
	if err != nil {
		return nil, err
	}
	postsCount, err := post.CountByUser(db, u.ID)
	if err != nil {
		return nil, err
	}
	followers, following, err := follow.Counts(db, u.ID)
	if err != nil {
		return nil, err
	}

	userData := gin.H{
		"id":       u.ID,
		"username": u.Username,
	}
	data := gin.H{
		"id":              p.ID,
		"user":            userData,
		"bio":             p.Bio,
		"avatar":          p.Avatar,
		"created_at":      p.CreatedAt,
		"updated_at":      p.UpdatedAt,
		"posts":           items,
		"posts_count":     postsCount,
		"followers_count": followers,
		"following_count": following,
	}

	if u.ID == viewerID {
		userData["email"] = u.Email
		return data, nil
	}

	isFollowing := false
	if viewerID != "" {
		if isFollowing, err = follow.IsFollowing(db, viewerID, u.ID); err != nil {
			return nil, err
		}
	}
	data["is_following"] = isFollowing
	return data, nil
}

// GetMyProfile GET /api/my-profile/
func GetMyProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	db := database.WithContext(c.Request.Context())

	u, err := user.ByID(db, userID)
	if err != nil {
		errs.Respond(c, err)
		return
	}

	data, err := view(db, u, userID)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// UpdateMyProfile PATCH /api/my-profile/
func UpdateMyProfile(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	db := database.WithContext(c.Request.Context())

	var input updateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		errs.Respond(c, errs.FromBinding(err))
		logs.LogJSON("WARN", "Invalid profile payload", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	u, err := user.ByID(db, userID)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	p, err := user.ProfileByUserID(db, userID)
	if err != nil {
		errs.Respond(c, err)
		return
	}

	fields := map[string]interface{}{}
	if input.Bio != nil {
		fields["bio"] = *input.Bio
	}
	if input.Avatar != nil {
		fields["avatar"] = *input.Avatar
	}
	if err := user.UpdateProfile(db, p, fields); err != nil {
		errs.Respond(c, err)
		logs.LogJSON("ERROR", "Profile update error", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	data, err := view(db, u, userID)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
	logs.LogJSON("INFO", "Profile updated", map[string]interface{}{
		"route":  route,
		"userID": userID,
	})
}

// GetProfile GET /api/profile/:username/
func GetProfile(c *gin.Context) {
	route := c.FullPath()
	username := c.Param("username")
	viewerID := c.GetString("user_id")
	db := database.WithContext(c.Request.Context())

	u, err := user.ByUsername(db, username)
	if err != nil {
		if errs.IsNotFound(err) {
			err = errs.NotFound("Profile not found")
		}
		errs.Respond(c, err)
		logs.LogJSON("WARN", "Profile not found", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": viewerID,
			"extra":  "username: " + username,
		})
		return
	}

	data, err := view(db, u, viewerID)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
