package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/events"
)

// ActivityReader はタスクのアクティビティを読み出します。
type ActivityReader interface {
	List(ctx context.Context, taskID int64, limit int) ([]events.Event, error)
}

// ActivityHandler は GET /tasks/:id/activity のハンドラーを返します。
func ActivityHandler(tasks TaskService, activity ActivityReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				invalidInput(c, "limit には1以上の整数を指定してください。")
				return
			}
			limit = n
		}

		task, err := tasks.GetByID(c.Request.Context(), id)
		if err != nil {
			respondWithError(c, err)
			return
		}
		if task == nil {
			c.Status(http.StatusNotFound)
			return
		}

		items, err := activity.List(c.Request.Context(), task.ID, limit)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"taskId": task.ID,
			"events": items,
		})
	}
}
