// Package auth は認証・認可機能を提供します。
package auth

import (
	"context"
	"errors"
	"log"

	"github.com/Benhap1/taskmanager/internal/models"
)

// ContextUserKey は、ハンドラー間で認証済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// ContextClaimsKey は検証済みトークンのクレームを保持するキーです。
const ContextClaimsKey = "auth.claims"

// UserLookup はトークンの主体からユーザーを引くためのインターフェースです。
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Manager はトークン検証とユーザー解決をまとめた構造体です。
type Manager struct {
	tokens  *TokenService
	revoker Revoker
	users   UserLookup
	logger  *log.Logger
}

// NewManager は認証マネージャーを作成します。revoker が nil の場合は失効チェックを行いません。
func NewManager(tokens *TokenService, revoker Revoker, users UserLookup, logger *log.Logger) (*Manager, error) {
	if tokens == nil {
		return nil, errors.New("tokens is nil")
	}
	if users == nil {
		return nil, errors.New("users is nil")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		tokens:  tokens,
		revoker: revoker,
		users:   users,
		logger:  logger,
	}, nil
}

// Authenticate はトークン文字列を検証し、対応するユーザーを返します。
func (m *Manager) Authenticate(ctx context.Context, tokenString string) (*models.User, *Claims, error) {
	claims, err := m.tokens.Verify(tokenString)
	if err != nil {
		return nil, nil, err
	}
	if m.revoker != nil && claims.ID != "" {
		revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, err
		}
		if revoked {
			return nil, nil, ErrInvalidToken
		}
	}
	user, err := m.users.GetUserByEmail(ctx, claims.Email())
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		// 削除済みユーザーのトークン
		return nil, nil, ErrInvalidToken
	}
	return user, claims, nil
}

// Revoke はトークンを有効期限まで失効させます。
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.revoker == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return m.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
