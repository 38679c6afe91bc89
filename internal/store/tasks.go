package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Benhap1/taskmanager/internal/models"
)

const taskSelect = `
	SELECT t.id, t.title, t.description, t.status, t.priority, t.created_at, t.updated_at,
	       a.id, a.email, a.role, a.created_at, a.updated_at,
	       s.id, s.email, s.role, s.created_at, s.updated_at
	FROM tasks t
	JOIN users a ON a.id = t.author_id
	LEFT JOIN users s ON s.id = t.assignee_id`

// CreateTask はタスクを登録します。Author は必須です。
func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	if t.AuthorID() == 0 {
		return errors.New("store: task author is required")
	}
	ts := now()
	id, err := db.insert(ctx, `
		INSERT INTO tasks (title, description, status, priority, author_id, assignee_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.AuthorID(), nullableID(t.AssigneeID()), ts, ts)
	if err != nil {
		return err
	}
	t.ID = id
	t.CreatedAt = ts
	t.UpdatedAt = ts
	return nil
}

// GetTask はIDでタスクを取得します。作成者と担当者も合わせて読み込みます。
func (db *DB) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := db.queryRow(ctx, taskSelect+` WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// UpdateTask はタスクの編集可能な項目を更新します。author_id は更新しません。
func (db *DB) UpdateTask(ctx context.Context, t *models.Task) (bool, error) {
	ts := now()
	result, err := db.exec(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, assignee_id = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority), nullableID(t.AssigneeID()), ts, t.ID)
	if err != nil {
		return false, err
	}
	ok, err := affected(result)
	if err != nil || !ok {
		return ok, err
	}
	t.UpdatedAt = ts
	return true, nil
}

// UpdateTaskStatus はステータスのみを更新します。
func (db *DB) UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (bool, error) {
	result, err := db.exec(ctx, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`, string(status), now(), id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// DeleteTask はタスクを削除します。コメントは連鎖削除されます。
func (db *DB) DeleteTask(ctx context.Context, id int64) (bool, error) {
	result, err := db.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// ListTasksByAuthor は作成者で絞り込んだタスク一覧をID昇順で返します。
func (db *DB) ListTasksByAuthor(ctx context.Context, authorID int64, page models.PageRequest) ([]models.Task, int64, error) {
	return db.listTasks(ctx, "t.author_id", authorID, page)
}

// ListTasksByAssignee は担当者で絞り込んだタスク一覧をID昇順で返します。
func (db *DB) ListTasksByAssignee(ctx context.Context, assigneeID int64, page models.PageRequest) ([]models.Task, int64, error) {
	return db.listTasks(ctx, "t.assignee_id", assigneeID, page)
}

// column は呼び出し側の定数のみを受け取ります。
func (db *DB) listTasks(ctx context.Context, column string, id int64, page models.PageRequest) ([]models.Task, int64, error) {
	total, err := db.count(ctx, `SELECT COUNT(*) FROM tasks t WHERE `+column+` = ?`, id)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	rows, err := db.query(ctx, taskSelect+` WHERE `+column+` = ? ORDER BY t.id ASC LIMIT ? OFFSET ?`,
		id, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{Author: &models.User{}}
	var (
		status, priority, authorRole string
		assigneeID                   sql.NullInt64
		assigneeEmail, assigneeRole  sql.NullString
		assigneeCreated, assigneeUpd sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &t.CreatedAt, &t.UpdatedAt,
		&t.Author.ID, &t.Author.Email, &authorRole, &t.Author.CreatedAt, &t.Author.UpdatedAt,
		&assigneeID, &assigneeEmail, &assigneeRole, &assigneeCreated, &assigneeUpd,
	)
	if err != nil {
		return nil, err
	}
	t.Status = models.Status(status)
	t.Priority = models.Priority(priority)
	t.Author.Role = models.Role(authorRole)
	if assigneeID.Valid {
		t.Assignee = &models.User{
			ID:        assigneeID.Int64,
			Email:     assigneeEmail.String,
			Role:      models.Role(assigneeRole.String),
			CreatedAt: assigneeCreated.Time,
			UpdatedAt: assigneeUpd.Time,
		}
	}
	return t, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
