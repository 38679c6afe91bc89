package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/auth"
)

// Authenticator は Bearer トークンを要求するミドルウェアを提供します。
type Authenticator interface {
	RequireToken() gin.HandlerFunc
}

// Dependencies はルーティングに必要なサービス群です。
type Dependencies struct {
	Auth     Authenticator
	Users    UserService
	Tasks    TaskService
	Comments CommentService
	// Activity が nil の場合、アクティビティAPIは登録しません。
	Activity ActivityReader
	Limiter  auth.LoginLimiter
	DB       Pinger
	Paging   Pagination
}

var publicPaths = []string{
	"/health",
	"/docs/openapi.json",
	"/users/register",
	"/users/login",
}

// RegisterRoutes はすべてのエンドポイントを router に登録します。
// 登録・ログイン・ヘルスチェック・ドキュメント以外は認証が必要です。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	paging := deps.Paging
	if paging.DefaultSize <= 0 {
		paging = DefaultPagination
	}

	router.GET("/health", HealthHandler(deps.DB))
	router.GET("/docs/openapi.json", DocsHandler(router))

	users := router.Group("/users")
	{
		users.POST("/register", RegisterHandler(deps.Users))
		users.POST("/login", LoginHandler(deps.Users, deps.Limiter))

		protected := users.Group("")
		protected.Use(deps.Auth.RequireToken())
		protected.POST("/logout", LogoutHandler(deps.Users))
		protected.GET("/me", MeHandler)
		protected.GET("/email/:email", GetUserByEmailHandler(deps.Users))
		protected.GET("/:id", GetUserHandler(deps.Users))
		protected.PUT("/:id", UpdateUserHandler(deps.Users))
		protected.DELETE("/:id", DeleteUserHandler(deps.Users))
	}

	tasks := router.Group("/tasks", deps.Auth.RequireToken())
	{
		tasks.POST("", CreateTaskHandler(deps.Tasks))
		tasks.GET("/author", ListTasksByAuthorHandler(deps.Tasks, paging))
		tasks.GET("/assignee", ListTasksByAssigneeHandler(deps.Tasks, paging))
		tasks.GET("/:id", GetTaskHandler(deps.Tasks))
		tasks.PUT("/:id", UpdateTaskHandler(deps.Tasks))
		tasks.DELETE("/:id", DeleteTaskHandler(deps.Tasks))
		tasks.PATCH("/:id/status", UpdateTaskStatusHandler(deps.Tasks))
		if deps.Activity != nil {
			tasks.GET("/:id/activity", ActivityHandler(deps.Tasks, deps.Activity))
		}
	}

	comments := router.Group("/comments", deps.Auth.RequireToken())
	{
		comments.POST("", CreateCommentHandler(deps.Comments))
		comments.GET("/task/:taskId", ListCommentsHandler(deps.Comments, paging))
		comments.GET("/:id", GetCommentHandler(deps.Comments))
		comments.PUT("/:id", UpdateCommentHandler(deps.Comments))
		comments.DELETE("/:id", DeleteCommentHandler(deps.Comments))
	}
}
