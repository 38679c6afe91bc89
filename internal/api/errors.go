// Package api は gin のハンドラーとルーティングを提供します。
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/service"
)

// respondWithError はサービス層のエラーをHTTPレスポンスに変換します。
func respondWithError(c *gin.Context, err error) {
	var svcErr *service.Error
	switch {
	case errors.As(err, &svcErr):
		if svcErr.Code == service.CodeNotFound {
			c.Status(http.StatusNotFound)
			return
		}
		body := gin.H{
			"code":    svcErr.Code,
			"message": svcErr.Message,
		}
		if len(svcErr.Fields) > 0 {
			body["fields"] = svcErr.Fields
		}
		c.JSON(statusForCode(svcErr.Code), body)
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusRequestTimeout, gin.H{
			"code":    "REQUEST_CANCELED",
			"message": "リクエストがキャンセルされました。",
		})
	default:
		// gin のロガーがアクセスログと一緒に出力する
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "サーバー内部でエラーが発生しました。",
		})
	}
}

func statusForCode(code string) int {
	switch code {
	case service.CodeValidation, service.CodeInvalidArgument:
		return http.StatusBadRequest
	case service.CodeAccessDenied:
		return http.StatusForbidden
	case service.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case service.CodeEmailTaken:
		return http.StatusConflict
	case service.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func invalidInput(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    "INVALID_INPUT",
		"message": message,
	})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"code":    "UNAUTHORIZED",
		"message": "認証トークンが必要です",
	})
}
