package api

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/auth"
	"github.com/Benhap1/taskmanager/internal/models"
	"github.com/Benhap1/taskmanager/internal/service"
)

// UserService はユーザー関連ハンドラーが利用するサービスです。
type UserService interface {
	Register(ctx context.Context, in service.UserInput) (*models.User, error)
	Login(ctx context.Context, in service.LoginInput) (*auth.Token, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id int64, in service.UserInput, actor *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64, actor *models.User) (bool, error)
}

// RegisterHandler は POST /users/register のハンドラーを返します。
func RegisterHandler(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in service.UserInput
		if !bindJSON(c, &in) {
			return
		}
		user, err := svc.Register(c.Request.Context(), in)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// LoginHandler は POST /users/login のハンドラーを返します。
// クライアントIPごとに失敗回数を数え、上限に達すると一定時間 429 を返します。
func LoginHandler(svc UserService, limiter auth.LoginLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		if limiter != nil {
			retryAfter, err := limiter.Check(ctx, ip)
			if err != nil {
				respondWithError(c, err)
				return
			}
			if retryAfter > 0 {
				tooManyAttempts(c, retryAfter)
				return
			}
		}

		var in service.LoginInput
		if !bindJSON(c, &in) {
			return
		}

		token, err := svc.Login(ctx, in)
		if err != nil {
			if limiter == nil || !service.HasCode(err, service.CodeInvalidCredentials) {
				respondWithError(c, err)
				return
			}
			remaining, recErr := limiter.RecordFailure(ctx, ip)
			if recErr != nil {
				respondWithError(c, recErr)
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":              service.CodeInvalidCredentials,
				"message":           "メールアドレスまたはパスワードが正しくありません",
				"remainingAttempts": remaining,
			})
			return
		}

		if limiter != nil {
			if err := limiter.Reset(ctx, ip); err != nil {
				_ = c.Error(err)
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"token":     token.Value,
			"tokenType": "Bearer",
			"expiresAt": token.ExpiresAt,
		})
	}
}

func tooManyAttempts(c *gin.Context, retryAfter time.Duration) {
	// Retry-After は秒数で返す
	seconds := int64(math.Ceil(retryAfter.Seconds()))
	c.Header("Retry-After", strconv.FormatInt(seconds, 10))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"code":    "TOO_MANY_ATTEMPTS",
		"message": "一定時間後に再度お試しください",
	})
}

// LogoutHandler は POST /users/logout のハンドラーを返します。
func LogoutHandler(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.CurrentClaims(c)
		if !ok {
			unauthorized(c)
			return
		}
		if err := svc.Logout(c.Request.Context(), claims); err != nil {
			respondWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// MeHandler は GET /users/me のハンドラーです。
func MeHandler(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserHandler は GET /users/:id のハンドラーを返します。
func GetUserHandler(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		user, err := svc.GetByID(c.Request.Context(), id)
		respondWithUser(c, user, err)
	}
}

// GetUserByEmailHandler は GET /users/email/:email のハンドラーを返します。
func GetUserByEmailHandler(svc UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.Param("email"))
		if email == "" {
			invalidInput(c, "email を指定してください。")
			return
		}
		user, err := svc.GetByEmail(c.Request.Context(), email)
		respondWithUser(c, user, err)
	}
}

func respondWithUser(c *gin.Context, user *models.User, err error) {
	if err != nil {
		respondWithError(c, err)
		return
	}
	if user == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUserHandler は PUT /users/:id のハンドラーを返します。
func UpdateUserHandler(svc UserService) gin.HandlerFunc {
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
		var in service.UserInput
		if !bindJSON(c, &in) {
			return
		}
		user, err := svc.Update(c.Request.Context(), id, in, actor)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// DeleteUserHandler は DELETE /users/:id のハンドラーを返します。
func DeleteUserHandler(svc UserService) gin.HandlerFunc {
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
		deleted, err := svc.Delete(c.Request.Context(), id, actor)
		if err != nil {
			respondWithError(c, err)
			return
		}
		if !deleted {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
