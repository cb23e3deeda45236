package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
)

type registerInput struct {
	Username string `json:"username" binding:"required,max=150,notblank"`
	Email    string `json:"email" binding:"omitempty,email,max=254"`
}

// Register POST /api/users/
// Stores the caller (identified by the token subject) locally with an empty profile.
func Register(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	db := database.WithContext(c.Request.Context())

	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		errs.Respond(c, errs.FromBinding(err))
		logs.LogJSON("WARN", "Invalid register payload", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	exists, err := ExistsByID(db, userID)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already registered"})
		logs.LogJSON("WARN", "User already registered", map[string]interface{}{
			"route":  route,
			"userID": userID,
		})
		return
	}

	taken, err := ExistsByUsername(db, input.Username)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	if taken {
		errs.Respond(c, errs.Field("username", msgUsernameTaken))
		return
	}

	u := &User{ID: userID, Username: input.Username, Email: input.Email}
	profile, err := Create(db, u)
	if err != nil {
		errs.Respond(c, err)
		logs.LogJSON("ERROR", "User registration failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": u, "profile": profile})
	logs.LogJSON("INFO", "User registered", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("username: %s", u.Username),
	})
}
