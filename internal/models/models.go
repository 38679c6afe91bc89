// Package models はユーザー・タスク・コメントのドメインモデルを定義します。
package models

import "time"

// Role はユーザーの役割を表します。
type Role string

const (
	RoleAuthor   Role = "AUTHOR"
	RoleAssignee Role = "ASSIGNEE"
)

// Valid は定義済みの役割かどうかを返します。
func (r Role) Valid() bool {
	return r == RoleAuthor || r == RoleAssignee
}

// Status はタスクの進行状態です。
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Valid は定義済みのステータスかどうかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Priority はタスクの優先度です。
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Valid は定義済みの優先度かどうかを返します。
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// User は登録済みユーザーです。PasswordHash はレスポンスに含めません。
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Task はタスク本体です。Author は作成後に変更されません。
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Author      *User     `json:"author"`
	Assignee    *User     `json:"assignee,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuthorID は作成者のIDを返します（未設定なら0）。
func (t *Task) AuthorID() int64 {
	if t == nil || t.Author == nil {
		return 0
	}
	return t.Author.ID
}

// AssigneeID は担当者のIDを返します（未割り当てなら0）。
func (t *Task) AssigneeID() int64 {
	if t == nil || t.Assignee == nil {
		return 0
	}
	return t.Assignee.ID
}

// Comment はタスクへのコメントです。
type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	TaskID    int64     `json:"taskId"`
	Author    *User     `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthorID はコメント作成者のIDを返します。
func (c *Comment) AuthorID() int64 {
	if c == nil || c.Author == nil {
		return 0
	}
	return c.Author.ID
}

// PageRequest は0始まりのページ指定です。
type PageRequest struct {
	Page int
	Size int
}

// Offset はSQLのOFFSETに使う値を返します。
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page はページングされた一覧結果です。
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage は総件数からページ情報を組み立てます。
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// EmptyPage は0件のページを返します。
func EmptyPage[T any](req PageRequest) *Page[T] {
	return NewPage[T](nil, req, 0)
}
