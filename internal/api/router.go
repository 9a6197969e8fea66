package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qingwen/novel_go_server/config"
	"github.com/qingwen/novel_go_server/internal/api/handler"
	"github.com/qingwen/novel_go_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	commentHandler   *handler.CommentHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	commentHandler *handler.CommentHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		commentHandler:   commentHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket 提醒推送
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 评论 - 公开读取（可选认证，登录后返回 my_vote）
		commentsPublic := api.Group("")
		commentsPublic.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			commentsPublic.GET("/novels/:id/comments", r.commentHandler.ListRoots)
			commentsPublic.GET("/comments/:id/replies", r.commentHandler.ListReplies)
		}

		// 评论 - 需要认证
		commentsAuth := api.Group("")
		commentsAuth.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			commentsAuth.POST("/novels/:id/comments", r.commentHandler.Create)
			commentsAuth.PUT("/comments/:id", r.commentHandler.Edit)
			commentsAuth.DELETE("/comments/:id", r.commentHandler.Delete)
			commentsAuth.POST("/comments/:id/vote", r.commentHandler.Vote)
			commentsAuth.PUT("/comments/:id/pin", r.commentHandler.Pin)
		}
	}

	return engine
}
