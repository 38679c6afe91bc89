package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Benhap1/taskmanager/internal/models"
)

const userColumns = `id, email, password_hash, role, created_at, updated_at`

// CreateUser はユーザーを登録し、採番したIDとタイムスタンプを u に反映します。
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	ts := now()
	id, err := db.insert(ctx, `
		INSERT INTO users (email, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, string(u.Role), ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	u.ID = id
	u.CreatedAt = ts
	u.UpdatedAt = ts
	return nil
}

// GetUser はIDでユーザーを取得します。存在しない場合は nil を返します。
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	row := db.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUserRow(row)
}

// GetUserByEmail はメールアドレスでユーザーを取得します。存在しない場合は nil を返します。
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUserRow(row)
}

// UserExists はIDのユーザーが存在するかを返します。
func (db *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	total, err := db.count(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// UpdateUser はユーザーを全項目置き換えます。対象が無ければ false を返します。
func (db *DB) UpdateUser(ctx context.Context, u *models.User) (bool, error) {
	ts := now()
	result, err := db.exec(ctx, `
		UPDATE users SET email = ?, password_hash = ?, role = ?, updated_at = ? WHERE id = ?`,
		u.Email, u.PasswordHash, string(u.Role), ts, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDuplicateEmail
		}
		return false, err
	}
	ok, err := affected(result)
	if err != nil || !ok {
		return ok, err
	}
	u.UpdatedAt = ts
	return true, nil
}

// DeleteUser はユーザーを削除します。作成したタスクとコメントも連鎖削除されます。
func (db *DB) DeleteUser(ctx context.Context, id int64) (bool, error) {
	result, err := db.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func scanUserRow(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return u, nil
}
