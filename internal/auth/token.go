package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken は署名・期限・形式のいずれかが不正なトークンです。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンに含めるクレームです。Subject にメールアドレスを入れます。
type Claims struct {
	jwt.RegisteredClaims
}

// Email はトークンの主体（メールアドレス）を返します。
func (c *Claims) Email() string {
	return c.Subject
}

// Token は発行済みトークンです。
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// TokenService は HS256 で署名した有効期限付きトークンを発行・検証します。
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService は TokenService を作成します。
func NewTokenService(secret []byte, issuer string, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// RandomSecret は開発用に使い捨ての署名鍵を生成します。
func RandomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Issue はメールアドレスを主体とするトークンを発行します。
func (s *TokenService) Issue(email string) (*Token, error) {
	if email == "" {
		return nil, errors.New("subject is empty")
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{
		Value:     signed,
		ID:        claims.ID,
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}

// Verify は署名・発行者・有効期限を検証し、クレームを返します。
// 失敗時は必ず ErrInvalidToken でラップしたエラーを返します。
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
