// Package service はユーザー・タスク・コメントの業務ルール（所有者チェック等）を実装します。
package service

import (
	"context"
	"log"

	"github.com/Benhap1/taskmanager/internal/auth"
	"github.com/Benhap1/taskmanager/internal/events"
	"github.com/Benhap1/taskmanager/internal/models"
)

// UserStore はユーザーの永続化を担います。存在しない場合は (nil, nil) を返します。
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	UpdateUser(ctx context.Context, u *models.User) (bool, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

// TaskStore はタスクの永続化を担います。
type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) (bool, error)
	UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (bool, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	ListTasksByAuthor(ctx context.Context, authorID int64, page models.PageRequest) ([]models.Task, int64, error)
	ListTasksByAssignee(ctx context.Context, assigneeID int64, page models.PageRequest) ([]models.Task, int64, error)
}

// CommentStore はコメントの永続化を担います。
type CommentStore interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id int64) (*models.Comment, error)
	UpdateCommentText(ctx context.Context, id int64, text string) (bool, error)
	DeleteComment(ctx context.Context, id int64) (bool, error)
	ListCommentsByTask(ctx context.Context, taskID int64, page models.PageRequest) ([]models.Comment, int64, error)
}

// Hasher はパスワードのハッシュ化と照合を行います。
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// TokenIssuer はログイン成功時にトークンを発行します。
type TokenIssuer interface {
	Issue(email string) (*auth.Token, error)
}

// TokenRevoker はログアウト時にトークンを失効させます。
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *auth.Claims) error
}

const defaultPageSize = 20

func normalizePage(req models.PageRequest) models.PageRequest {
	if req.Page < 0 {
		req.Page = 0
	}
	if req.Size <= 0 {
		req.Size = defaultPageSize
	}
	return req
}

// publisher は発行失敗をログに残すだけで、呼び出し元の結果には影響させません。
type publisher struct {
	events.Publisher
	logger *log.Logger
}

func newPublisher(p events.Publisher, logger *log.Logger) publisher {
	if p == nil {
		p = events.Discard{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return publisher{Publisher: p, logger: logger}
}

func (p publisher) emit(ctx context.Context, typ events.Type, taskID int64, actor *models.User, details map[string]any) {
	event := events.Event{
		Type:       typ,
		TaskID:     taskID,
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Details:    details,
	}
	if err := p.Publish(ctx, event); err != nil {
		p.logger.Printf("failed to publish %s for task=%d: %v", typ, taskID, err)
	}
}
