// Package router wires the HTTP surface of the API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/follow"
	"github.com/AlexTsikhun/social-media-api/internal/like"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
	"github.com/AlexTsikhun/social-media-api/internal/metrics"
	"github.com/AlexTsikhun/social-media-api/internal/middleware"
	"github.com/AlexTsikhun/social-media-api/internal/post"
	"github.com/AlexTsikhun/social-media-api/internal/profile"
	"github.com/AlexTsikhun/social-media-api/internal/ratelimit"
	"github.com/AlexTsikhun/social-media-api/internal/target"
	"github.com/AlexTsikhun/social-media-api/internal/user"
)

type Deps struct {
	JWTSecret string
	// Limiter is optional; writes are not throttled without it.
	Limiter *ratelimit.Limiter
}

func New(deps Deps) *gin.Engine {
	errs.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), metrics.Middleware())

	r.GET("/healthz", health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	reg := target.NewRegistry()
	post.RegisterTargets(reg)

	api := r.Group("/api")

	public := api.Group("", middleware.OptionalAuthMiddleware(deps.JWTSecret))
	public.GET("/posts/", post.ListPosts)
	public.GET("/posts/:id/", post.GetPost)
	public.GET("/posts/:id/likes/", like.GetFans(reg, target.KindPost))
	public.GET("/posts/:id/redirect_to_profile/", post.RedirectToProfile)
	public.GET("/comments/:id/likes/", like.GetFans(reg, target.KindComment))

	authed := api.Group("", middleware.AuthMiddleware(deps.JWTSecret))
	if deps.Limiter != nil {
		authed.Use(deps.Limiter.Middleware())
	}
	authed.POST("/users/", user.Register)

	member := authed.Group("", middleware.RegisteredOnly())

	member.POST("/posts/", post.CreatePost)
	member.PUT("/posts/:id/", post.UpdatePost)
	member.PATCH("/posts/:id/", post.UpdatePost)
	member.DELETE("/posts/:id/", post.DeletePost)
	member.POST("/posts/:id/like/", like.ToggleLike(reg, target.KindPost))
	member.POST("/posts/:id/add_comment/", post.AddCommentHandler(reg))
	member.POST("/posts/:id/follow/", post.FollowAuthor)
	member.POST("/posts/:id/unfollow/", post.UnfollowAuthor)
	member.POST("/comments/:id/like/", like.ToggleLike(reg, target.KindComment))

	member.GET("/my-profile/", profile.GetMyProfile)
	member.PATCH("/my-profile/", profile.UpdateMyProfile)

	member.GET("/my-profile/user-posts/", post.ListMyPosts)
	member.POST("/my-profile/user-posts/:id/add_comment/", post.AddCommentHandler(reg))
	member.POST("/my-profile/user-posts/:id/like/", like.ToggleLike(reg, target.KindPost))

	member.GET("/my-profile/user-comments/", post.ListMyComments)
	member.GET("/my-profile/user-comments/:id/", post.GetMyComment)
	member.DELETE("/my-profile/user-comments/:id/", post.DeleteMyComment)
	member.POST("/my-profile/user-comments/:id/follow/", post.FollowCommentedAuthor)
	member.POST("/my-profile/user-comments/:id/unfollow/", post.UnfollowCommentedAuthor)
	member.GET("/my-profile/user-comments/:id/redirect_to_profile/", post.RedirectCommentToProfile)

	edges(member.Group("/my-profile/user-following"), follow.Resource{Side: follow.Following, Mine: true})
	edges(member.Group("/my-profile/user-followers"), follow.Resource{Side: follow.Followers, Mine: true})

	member.GET("/profile/:username/", profile.GetProfile)
	edges(member.Group("/profile/:username/following"), follow.Resource{Side: follow.Following})
	edges(member.Group("/profile/:username/followers"), follow.Resource{Side: follow.Followers})

	return r
}

func edges(g *gin.RouterGroup, res follow.Resource) {
	g.GET("/", res.List)
	g.GET("/:id/", res.Retrieve)
	g.DELETE("/:id/", res.Destroy)
	g.POST("/:id/follow/", res.Follow)
	g.POST("/:id/unfollow/", res.Unfollow)
	g.GET("/:id/redirect_to_profile/", res.RedirectToProfile)
}

func health(c *gin.Context) {
	if err := database.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		logs.LogJSON("ERROR", "Database ping failed", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
