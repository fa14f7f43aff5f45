package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/auto-featured-image/pkg/auth"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type Handlers struct {
	Post  *PostHandler
	Media *MediaHandler
	RSS   *RSSHandler
}

func NewRouter(h Handlers, jwtSvc *auth.JWTService, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), ErrorMiddleware(log))

	api := router.Group("/api")
	{
		admin := api.Group("/admin")
		admin.Use(AuthMiddleware(jwtSvc))
		{
			posts := admin.Group("/posts", RequireScope(auth.ScopePosts))
			{
				posts.POST("", h.Post.CreatePost)
				posts.GET("", h.Post.ListPosts)
				posts.GET("/:id", h.Post.GetPost)
				posts.PUT("/:id/status", h.Post.UpdatePostStatus)
				posts.POST("/:id/featured-image", h.Post.AssignFeaturedImage)
			}

			attachments := admin.Group("/attachments", RequireScope(auth.ScopeMedia))
			{
				attachments.POST("", h.Media.UploadMedia)
				attachments.GET("", h.Media.ListMedia)
				attachments.PATCH("/:id", h.Media.RenameMedia)
				attachments.DELETE("/:id", h.Media.TrashMedia)
			}
		}

		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		api.GET("/feed.xml", h.RSS.GenerateRSS)
	}

	return router
}
