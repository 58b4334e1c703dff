package api

import (
	"Keystone/internal/api/middleware"
	"Keystone/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, logIndex string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, logIndex)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		userGroup.Use(middleware.AuthMiddleware())
		{
			userGroup.DELETE("/account", group.AccountHandler.DeleteAccount)
		}

		userFollowGroup := apiGroup.Group("/user-relation")
		{
			authOptGroup := userFollowGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("/status/:user_id", group.UserFollowHandler.Status)
				authOptGroup.GET("/:user_id/followers", group.UserFollowHandler.GetUserFollowers)
				authOptGroup.GET("/:user_id/followings", group.UserFollowHandler.GetUserFollowings)
			}

			authGroup := userFollowGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/follow/:user_id", group.UserFollowHandler.Toggle)
				authGroup.GET("/suggestions", group.SuggestionHandler.Suggest)
			}
		}
	}

	return r
}
