package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Benhap1/taskmanager/internal/models"
)

const commentSelect = `
	SELECT c.id, c.text, c.task_id, c.created_at, c.updated_at,
	       a.id, a.email, a.role, a.created_at, a.updated_at
	FROM comments c
	JOIN users a ON a.id = c.author_id`

// CreateComment はタスクにコメントを追加します。
func (db *DB) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.AuthorID() == 0 {
		return errors.New("store: comment author is required")
	}
	ts := now()
	id, err := db.insert(ctx, `
		INSERT INTO comments (text, task_id, author_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.Text, c.TaskID, c.AuthorID(), ts, ts)
	if err != nil {
		return err
	}
	c.ID = id
	c.CreatedAt = ts
	c.UpdatedAt = ts
	return nil
}

// GetComment はIDでコメントを取得します。存在しない場合は nil を返します。
func (db *DB) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	row := db.queryRow(ctx, commentSelect+` WHERE c.id = ?`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// UpdateCommentText は本文のみを更新します。
func (db *DB) UpdateCommentText(ctx context.Context, id int64, text string) (bool, error) {
	result, err := db.exec(ctx, `UPDATE comments SET text = ?, updated_at = ? WHERE id = ?`, text, now(), id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// DeleteComment はコメントを削除します。
func (db *DB) DeleteComment(ctx context.Context, id int64) (bool, error) {
	result, err := db.exec(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// ListCommentsByTask はタスクのコメントを古い順に返します。
func (db *DB) ListCommentsByTask(ctx context.Context, taskID int64, page models.PageRequest) ([]models.Comment, int64, error) {
	total, err := db.count(ctx, `SELECT COUNT(*) FROM comments WHERE task_id = ?`, taskID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	rows, err := db.query(ctx, commentSelect+` WHERE c.task_id = ? ORDER BY c.id ASC LIMIT ? OFFSET ?`,
		taskID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{Author: &models.User{}}
	var role string
	err := row.Scan(
		&c.ID, &c.Text, &c.TaskID, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.ID, &c.Author.Email, &role, &c.Author.CreatedAt, &c.Author.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Author.Role = models.Role(role)
	return c, nil
}
