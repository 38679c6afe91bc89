package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/auth"
	"github.com/Benhap1/taskmanager/internal/models"
	"github.com/Benhap1/taskmanager/internal/service"
)

// TaskService はタスク関連ハンドラーが利用するサービスです。
type TaskService interface {
	Create(ctx context.Context, in service.TaskInput, actor *models.User) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	ListByAuthor(ctx context.Context, authorEmail string, req models.PageRequest) (*models.Page[models.Task], error)
	ListByAssignee(ctx context.Context, assigneeEmail string, req models.PageRequest) (*models.Page[models.Task], error)
	Update(ctx context.Context, id int64, in service.TaskInput, actor *models.User) (*models.Task, error)
	Delete(ctx context.Context, id int64, actor *models.User) error
	UpdateStatus(ctx context.Context, id int64, actor *models.User, status models.Status) (*models.Task, error)
}

// CreateTaskHandler は POST /tasks のハンドラーを返します。
func CreateTaskHandler(svc TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := auth.CurrentUser(c)
		if !ok {
			unauthorized(c)
			return
		}
		var in service.TaskInput
		if !bindJSON(c, &in) {
			return
		}
		task, err := svc.Create(c.Request.Context(), in, actor)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, task)
	}
}

// GetTaskHandler は GET /tasks/:id のハンドラーを返します。
func GetTaskHandler(svc TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		task, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			respondWithError(c, err)
			return
		}
		if task == nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// UpdateTaskHandler は PUT /tasks/:id のハンドラーを返します。
func UpdateTaskHandler(svc TaskService) gin.HandlerFunc {
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
		var in service.TaskInput
		if !bindJSON(c, &in) {
			return
		}
		task, err := svc.Update(c.Request.Context(), id, in, actor)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// DeleteTaskHandler は DELETE /tasks/:id のハンドラーを返します。
func DeleteTaskHandler(svc TaskService) gin.HandlerFunc {
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

// UpdateTaskStatusHandler は PATCH /tasks/:id/status?status=X のハンドラーを返します。
func UpdateTaskStatusHandler(svc TaskService) gin.HandlerFunc {
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
		status := models.Status(c.Query("status"))
		task, err := svc.UpdateStatus(c.Request.Context(), id, actor, status)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// ListTasksByAuthorHandler は GET /tasks/author?authorEmail= のハンドラーを返します。
func ListTasksByAuthorHandler(svc TaskService, paging Pagination) gin.HandlerFunc {
	return listTasksHandler("authorEmail", paging, svc.ListByAuthor)
}

// ListTasksByAssigneeHandler は GET /tasks/assignee?assigneeEmail= のハンドラーを返します。
func ListTasksByAssigneeHandler(svc TaskService, paging Pagination) gin.HandlerFunc {
	return listTasksHandler("assigneeEmail", paging, svc.ListByAssignee)
}

type taskPager func(ctx context.Context, email string, req models.PageRequest) (*models.Page[models.Task], error)

func listTasksHandler(param string, paging Pagination, list taskPager) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.Query(param))
		if email == "" {
			invalidInput(c, param+" を指定してください。")
			return
		}
		req, ok := paging.parse(c)
		if !ok {
			return
		}
		page, err := list(c.Request.Context(), email, req)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
