package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/models"
)

const bearerPrefix = "bearer "

// RequireToken は Bearer トークンを検証し、ユーザーをコンテキストに格納するミドルウェアです。
func (m *Manager) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "認証トークンが必要です",
			})
			return
		}

		user, claims, err := m.Authenticate(c.Request.Context(), raw)
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) {
				m.logger.Printf("token authentication failed: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "認証処理に失敗しました",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "TOKEN_INVALID",
				"message": "トークンが無効か有効期限切れです",
			})
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// CurrentUser はミドルウェアが格納したユーザーを返します。
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentClaims はミドルウェアが格納したクレームを返します。
func CurrentClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
