// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 対応しているデータベースドライバー名です。
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

const minTokenSecretLength = 32

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// データベース設定
	DatabaseDriver string // sqlite3 / pgx / mysql
	DatabaseURL    string // ドライバーに渡すDSN

	// 認証設定
	TokenSecret string        // JWT署名用の秘密鍵
	TokenIssuer string        // JWTのiss
	TokenTTL    time.Duration // トークンの有効期間
	BcryptCost  int           // bcryptのコスト

	// Redis設定（空ならインメモリ実装にフォールバックし、アクティビティは無効）
	RedisURL      string
	ActivityTTL   time.Duration // タスクごとのアクティビティ保持期間
	ActivityLimit int           // タスクごとに保持するアクティビティ件数

	// ページング
	DefaultPageSize int
	MaxPageSize     int
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", DriverSQLite),
		DatabaseURL:    getEnv("DATABASE_URL", "taskmanager.db"),

		TokenSecret: getEnv("TOKEN_SECRET", ""),
		TokenIssuer: getEnv("TOKEN_ISSUER", "taskmanager"),
		TokenTTL:    getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		BcryptCost:  getEnvAsInt("BCRYPT_COST", 10),

		RedisURL:      getEnv("REDIS_URL", ""),
		ActivityTTL:   getEnvAsDuration("ACTIVITY_TTL", 7*24*time.Hour),
		ActivityLimit: getEnvAsInt("ACTIVITY_LIMIT", 100),

		DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     getEnvAsInt("MAX_PAGE_SIZE", 100),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.DefaultPageSize <= 0 || c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("invalid page size settings (default=%d, max=%d)", c.DefaultPageSize, c.MaxPageSize)
	}

	// ローカル開発では署名鍵は任意（起動時にランダム生成）
	if c.GinMode == "release" {
		if c.TokenSecret == "" {
			return fmt.Errorf("TOKEN_SECRET is required in release mode")
		}
		if len(c.TokenSecret) < minTokenSecretLength {
			return fmt.Errorf("TOKEN_SECRET must be at least %d bytes", minTokenSecretLength)
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in release mode")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は "24h" や "15m" 形式の環境変数を time.Duration として取得します。
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
