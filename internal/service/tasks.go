package service

import (
	"context"
	"log"
	"strings"

	"github.com/Benhap1/taskmanager/internal/events"
	"github.com/Benhap1/taskmanager/internal/models"
)

// TaskInput はタスク作成・更新時の入力です。AssigneeID が nil なら担当者なしです。
type TaskInput struct {
	Title       string          `json:"title" validate:"notblank,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Status      models.Status   `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
	Priority    models.Priority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	AssigneeID  *int64          `json:"assigneeId"`
}

// TaskService はタスクの作成・編集・ステータス変更を扱います。
type TaskService struct {
	tasks     TaskStore
	users     UserStore
	publisher publisher
}

// NewTaskService は TaskService を作成します。p が nil の場合アクティビティは記録しません。
func NewTaskService(tasks TaskStore, users UserStore, p events.Publisher, logger *log.Logger) *TaskService {
	return &TaskService{
		tasks:     tasks,
		users:     users,
		publisher: newPublisher(p, logger),
	}
}

// Create は actor を作成者としてタスクを登録します。
func (s *TaskService) Create(ctx context.Context, in TaskInput, actor *models.User) (*models.Task, error) {
	task, err := s.buildTask(ctx, in)
	if err != nil {
		return nil, err
	}
	task.Author = actor
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	s.publisher.emit(ctx, events.TypeTaskCreated, task.ID, actor, map[string]any{
		"title":    task.Title,
		"status":   task.Status,
		"priority": task.Priority,
	})
	return task, nil
}

// GetByID はタスクを返します。存在しなければ nil です。
func (s *TaskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return s.tasks.GetTask(ctx, id)
}

// ListByAuthor は作成者のメールアドレスでタスクを検索します。
func (s *TaskService) ListByAuthor(ctx context.Context, authorEmail string, req models.PageRequest) (*models.Page[models.Task], error) {
	return s.listByUser(ctx, authorEmail, req, s.tasks.ListTasksByAuthor)
}

// ListByAssignee は担当者のメールアドレスでタスクを検索します。
func (s *TaskService) ListByAssignee(ctx context.Context, assigneeEmail string, req models.PageRequest) (*models.Page[models.Task], error) {
	return s.listByUser(ctx, assigneeEmail, req, s.tasks.ListTasksByAssignee)
}

type taskLister func(ctx context.Context, userID int64, req models.PageRequest) ([]models.Task, int64, error)

func (s *TaskService) listByUser(ctx context.Context, email string, req models.PageRequest, list taskLister) (*models.Page[models.Task], error) {
	req = normalizePage(req)
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return models.EmptyPage[models.Task](req), nil
	}
	tasks, total, err := list(ctx, user.ID, req)
	if err != nil {
		return nil, err
	}
	return models.NewPage(tasks, req, total), nil
}

// Update はタスクを編集します。作成者のみ実行でき、ID と作成者は保存済みの値を維持します。
func (s *TaskService) Update(ctx context.Context, id int64, in TaskInput, actor *models.User) (*models.Task, error) {
	existing, err := s.requireAuthor(ctx, id, actor, "他のユーザーのタスクは編集できません")
	if err != nil {
		return nil, err
	}
	task, err := s.buildTask(ctx, in)
	if err != nil {
		return nil, err
	}
	task.ID = existing.ID
	task.Author = existing.Author
	task.CreatedAt = existing.CreatedAt

	ok, err := s.tasks.UpdateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("タスクが見つかりません")
	}
	s.publisher.emit(ctx, events.TypeTaskUpdated, task.ID, actor, changedFields(existing, task))
	return task, nil
}

// Delete はタスクを削除します。作成者のみ実行できます。
func (s *TaskService) Delete(ctx context.Context, id int64, actor *models.User) error {
	if _, err := s.requireAuthor(ctx, id, actor, "他のユーザーのタスクは削除できません"); err != nil {
		return err
	}
	ok, err := s.tasks.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("タスクが見つかりません")
	}
	s.publisher.emit(ctx, events.TypeTaskDeleted, id, actor, nil)
	return nil
}

// UpdateStatus はステータスを変更します。担当者のみ実行できます。
func (s *TaskService) UpdateStatus(ctx context.Context, id int64, actor *models.User, status models.Status) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFound("タスクが見つかりません")
	}
	if actor == nil || task.AssigneeID() == 0 || task.AssigneeID() != actor.ID {
		return nil, accessDenied("担当者のみがステータスを変更できます")
	}

	if !status.Valid() {
		return nil, validationError(map[string]string{
			"status": "次のいずれかを指定してください: PENDING IN_PROGRESS COMPLETED CANCELLED",
		})
	}

	ok, err := s.tasks.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("タスクが見つかりません")
	}
	previous := task.Status
	task.Status = status
	s.publisher.emit(ctx, events.TypeTaskStatusChanged, id, actor, map[string]any{
		"from": previous,
		"to":   status,
	})
	return s.reload(ctx, task)
}

func (s *TaskService) requireAuthor(ctx context.Context, id int64, actor *models.User, denied string) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFound("タスクが見つかりません")
	}
	if actor == nil || task.AuthorID() != actor.ID {
		return nil, accessDenied(denied)
	}
	return task, nil
}

func (s *TaskService) buildTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	}
	if in.AssigneeID != nil {
		assignee, err := s.users.GetUser(ctx, *in.AssigneeID)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			return nil, validationError(map[string]string{"assigneeId": "指定された担当者が存在しません"})
		}
		task.Assignee = assignee
	}
	return task, nil
}

// reload は更新後のタイムスタンプを反映した行を返します。読み直せない場合は手元の値を返します。
func (s *TaskService) reload(ctx context.Context, task *models.Task) (*models.Task, error) {
	fresh, err := s.tasks.GetTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return task, nil
	}
	return fresh, nil
}

func changedFields(before, after *models.Task) map[string]any {
	changes := map[string]any{}
	if before.Title != after.Title {
		changes["title"] = after.Title
	}
	if before.Description != after.Description {
		changes["description"] = after.Description
	}
	if before.Status != after.Status {
		changes["status"] = after.Status
	}
	if before.Priority != after.Priority {
		changes["priority"] = after.Priority
	}
	if before.AssigneeID() != after.AssigneeID() {
		changes["assigneeId"] = after.AssigneeID()
	}
	return changes
}
