package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/auth"
	"github.com/Benhap1/taskmanager/internal/models"
	"github.com/Benhap1/taskmanager/internal/service"
)

// CommentService はコメント関連ハンドラーが利用するサービスです。
type CommentService interface {
	Create(ctx context.Context, in service.CommentInput, actor *models.User) (*models.Comment, error)
	ListByTask(ctx context.Context, taskID int64, req models.PageRequest) (*models.Page[models.Comment], error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	Update(ctx context.Context, id int64, in service.CommentUpdateInput, actor *models.User) (*models.Comment, error)
	Delete(ctx context.Context, id int64, actor *models.User) error
}

// CreateCommentHandler は POST /comments のハンドラーを返します。
func CreateCommentHandler(svc CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			unauthorized(c)
			return
		}
		var in service.CommentInput
		if !bindJSON(c, &in) {
			return
		}
		comment, err := svc.Create(c.Request.Context(), in, actor)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, comment)
	}
}

// GetCommentHandler は GET /comments/:id のハンドラーを返します。
func GetCommentHandler(svc CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		comment, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			respondWithError(c, err)
			return
		}
		if comment == nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, comment)
	}
}

// ListCommentsHandler は GET /comments/task/:taskId のハンドラーを返します。
func ListCommentsHandler(svc CommentService, paging Pagination) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, ok := parseID(c, "taskId")
		if !ok {
			return
		}
		req, ok := paging.parse(c)
		if !ok {
			return
		}
		page, err := svc.ListByTask(c.Request.Context(), taskID, req)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// UpdateCommentHandler は PUT /comments/:id のハンドラーを返します。
func UpdateCommentHandler(svc CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			unauthorized(c)
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var in service.CommentUpdateInput
		if !bindJSON(c, &in) {
			return
		}
		comment, err := svc.Update(c.Request.Context(), id, in, actor)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, comment)
	}
}

// DeleteCommentHandler は DELETE /comments/:id のハンドラーを返します。
func DeleteCommentHandler(svc CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			unauthorized(c)
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id, actor); err != nil {
			respondWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
