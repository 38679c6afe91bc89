package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/models"
)

// Pagination はクエリの page/size の既定値と上限です。
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPagination は size=20、上限100です。
var DefaultPagination = Pagination{DefaultSize: 20, MaxSize: 100}

// parse は0始まりの page と size を読み取ります。上限を超える size は上限に丸めます。
func (p Pagination) parse(c *gin.Context) (models.PageRequest, bool) {
	req := models.PageRequest{Page: 0, Size: p.DefaultSize}

	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			invalidInput(c, "page には0以上の整数を指定してください。")
			return req, false
		}
		req.Page = page
	}
	if raw := strings.TrimSpace(c.Query("size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			invalidInput(c, "size には1以上の整数を指定してください。")
			return req, false
		}
		req.Size = size
	}
	if p.MaxSize > 0 && req.Size > p.MaxSize {
		req.Size = p.MaxSize
	}
	return req, true
}

// parseID はパスパラメーターのIDを読み取ります。失敗時は 400 を書き込みます。
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		invalidInput(c, name+" には正の整数を指定してください。")
		return 0, false
	}
	return id, true
}

// bindJSON はリクエストボディをデコードします。検証はサービス層で行います。
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		invalidInput(c, "JSON形式のリクエストボディを送信してください。")
		return false
	}
	return true
}
