// Package store はユーザー・タスク・コメントをリレーショナルDBに永続化します。
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"

	"github.com/Benhap1/taskmanager/internal/config"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// ErrDuplicateEmail はメールアドレスの一意制約違反です。
var ErrDuplicateEmail = errors.New("store: email already registered")

// DB はデータベース接続とSQL方言をまとめたラッパーです。
type DB struct {
	*sql.DB
	driver string
}

// Open はドライバーに応じてDBへ接続し、スキーマを初期化します。
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: dsn is required")
	}
	dsn, err := normalizeDSN(driver, dsn)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == config.DriverSQLite {
		// SQLite は書き込みが直列化されるため、コネクションを1本に絞ってロック競合を避ける
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(20)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping %s: %w", driver, err)
	}

	db := &DB{DB: conn, driver: driver}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Driver は接続中のドライバー名を返します。
func (db *DB) Driver() string {
	return db.driver
}

func normalizeDSN(driver, dsn string) (string, error) {
	switch driver {
	case config.DriverSQLite:
		if !strings.Contains(dsn, "_foreign_keys") {
			dsn = appendQuery(dsn, "_foreign_keys=on")
		}
		return dsn, nil
	case config.DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("store: invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		// 値が変わらない UPDATE でも一致行数を返させる
		cfg.ClientFoundRows = true
		return cfg.FormatDSN(), nil
	case config.DriverPostgres:
		return dsn, nil
	default:
		return "", fmt.Errorf("store: unsupported driver %q", driver)
	}
}

func appendQuery(dsn, kv string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + kv
	}
	return dsn + "?" + kv
}

func (db *DB) migrate(ctx context.Context) error {
	name := "schema/sqlite.sql"
	switch db.driver {
	case config.DriverPostgres:
		name = "schema/postgres.sql"
	case config.DriverMySQL:
		name = "schema/mysql.sql"
	}
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return err
	}
	// MySQL は既定で複数ステートメントを受け付けないので1文ずつ流す
	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// rebind は `?` プレースホルダーを方言に合わせて書き換えます。
func (db *DB) rebind(query string) string {
	if db.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.QueryRowContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.rebind(query), args...)
}

// insert は INSERT を実行して採番されたIDを返します。
func (db *DB) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if db.driver == config.DriverPostgres {
		var id int64
		if err := db.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	result, err := db.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (db *DB) count(ctx context.Context, query string, args ...any) (int64, error) {
	var total int64
	if err := db.queryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// isUniqueViolation はドライバーごとの一意制約違反を判定します。
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func now() time.Time {
	return time.Now().UTC()
}
