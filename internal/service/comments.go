package service

import (
	"context"
	"log"
	"strings"

	"github.com/Benhap1/taskmanager/internal/events"
	"github.com/Benhap1/taskmanager/internal/models"
)

// CommentInput はコメント作成時の入力です。
type CommentInput struct {
	Text   string `json:"text" validate:"notblank,max=1000"`
	TaskID int64  `json:"taskId" validate:"required"`
}

// CommentUpdateInput はコメント編集時の入力です。所属タスクは変更できません。
type CommentUpdateInput struct {
	Text string `json:"text" validate:"notblank,max=1000"`
}

// TaskFinder はコメントの所属タスクを解決します。
type TaskFinder interface {
	GetByID(ctx context.Context, id int64) (*models.Task, error)
}

// CommentService はタスクへのコメントを扱います。
type CommentService struct {
	comments  CommentStore
	tasks     TaskFinder
	publisher publisher
}

// NewCommentService は CommentService を作成します。
func NewCommentService(comments CommentStore, tasks TaskFinder, p events.Publisher, logger *log.Logger) *CommentService {
	return &CommentService{
		comments:  comments,
		tasks:     tasks,
		publisher: newPublisher(p, logger),
	}
}

// Create は actor を作成者としてコメントを登録します。タスクが存在しなければ NOT_FOUND です。
func (s *CommentService) Create(ctx context.Context, in CommentInput, actor *models.User) (*models.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFound("タスクが見つかりません")
	}

	comment := &models.Comment{
		Text:   in.Text,
		TaskID: task.ID,
		Author: actor,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.publisher.emit(ctx, events.TypeCommentCreated, task.ID, actor, map[string]any{
		"commentId": comment.ID,
	})
	return comment, nil
}

// ListByTask はタスクのコメントを返します。タスクが存在しなければ空のページです。
func (s *CommentService) ListByTask(ctx context.Context, taskID int64, req models.PageRequest) (*models.Page[models.Comment], error) {
	req = normalizePage(req)
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return models.EmptyPage[models.Comment](req), nil
	}
	comments, total, err := s.comments.ListCommentsByTask(ctx, task.ID, req)
	if err != nil {
		return nil, err
	}
	return models.NewPage(comments, req, total), nil
}

// GetByID はコメントを返します。存在しなければ nil です。
func (s *CommentService) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	return s.comments.GetComment(ctx, id)
}

// Update はコメント本文を編集します。作成者のみ実行できます。
func (s *CommentService) Update(ctx context.Context, id int64, in CommentUpdateInput, actor *models.User) (*models.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	comment, err := s.requireAuthor(ctx, id, actor, "他のユーザーのコメントは編集できません")
	if err != nil {
		return nil, err
	}
	ok, err := s.comments.UpdateCommentText(ctx, id, in.Text)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("コメントが見つかりません")
	}
	s.publisher.emit(ctx, events.TypeCommentUpdated, comment.TaskID, actor, map[string]any{
		"commentId": comment.ID,
	})

	updated, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		comment.Text = in.Text
		return comment, nil
	}
	return updated, nil
}

// Delete はコメントを削除します。作成者のみ実行できます。
func (s *CommentService) Delete(ctx context.Context, id int64, actor *models.User) error {
	comment, err := s.requireAuthor(ctx, id, actor, "他のユーザーのコメントは削除できません")
	if err != nil {
		return err
	}
	ok, err := s.comments.DeleteComment(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("コメントが見つかりません")
	}
	s.publisher.emit(ctx, events.TypeCommentDeleted, comment.TaskID, actor, map[string]any{
		"commentId": comment.ID,
	})
	return nil
}

func (s *CommentService) requireAuthor(ctx context.Context, id int64, actor *models.User, denied string) (*models.Comment, error) {
	comment, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, notFound("コメントが見つかりません")
	}
	if actor == nil || comment.AuthorID() != actor.ID {
		return nil, accessDenied(denied)
	}
	return comment, nil
}
