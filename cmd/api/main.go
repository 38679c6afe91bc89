// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/api"
	"github.com/Benhap1/taskmanager/internal/auth"
	"github.com/Benhap1/taskmanager/internal/config"
	"github.com/Benhap1/taskmanager/internal/service"
	"github.com/Benhap1/taskmanager/internal/store"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	tokens, err := newTokenService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	// Redis が無ければインメモリ実装にフォールバックする
	backend, err := setupBackend(cfg, log.Default())
	if err != nil {
		log.Fatalf("Failed to initialize redis backend: %v", err)
	}
	defer backend.Close()

	authManager, err := auth.NewManager(tokens, backend.revoker, db, log.Default())
	if err != nil {
		log.Fatalf("Failed to initialize auth manager: %v", err)
	}

	users := service.NewUserService(db, auth.NewPasswordHasher(cfg.BcryptCost), tokens, authManager)
	tasks := service.NewTaskService(db, db, backend.publisher, log.Default())
	comments := service.NewCommentService(db, tasks, backend.publisher, log.Default())

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定（Bearer 認証なのでクッキーは送らせない）
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{"Retry-After"}
	router.Use(cors.New(corsConfig))

	deps := api.Dependencies{
		Auth:     authManager,
		Users:    users,
		Tasks:    tasks,
		Comments: comments,
		Limiter:  backend.limiter,
		DB:       db,
		Paging: api.Pagination{
			DefaultSize: cfg.DefaultPageSize,
			MaxSize:     cfg.MaxPageSize,
		},
	}
	if backend.activity != nil {
		deps.Activity = backend.activity
	}
	api.RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting API server on %s (mode: %s, database: %s)", srv.Addr, cfg.GinMode, db.Driver())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

// newTokenService はトークンサービスを作成します。
// 開発時に TOKEN_SECRET が未設定なら起動ごとにランダムな鍵を使います。
func newTokenService(cfg *config.Config) (*auth.TokenService, error) {
	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		random, err := auth.RandomSecret()
		if err != nil {
			return nil, err
		}
		log.Printf("TOKEN_SECRET is not set; using a random secret (tokens will not survive restarts)")
		secret = random
	}
	return auth.NewTokenService(secret, cfg.TokenIssuer, cfg.TokenTTL)
}
