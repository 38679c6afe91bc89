package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher は bcrypt によるパスワードのハッシュ化と照合を行います。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher は PasswordHasher を作成します。範囲外のコストは既定値に丸めます。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードをソルト付きでハッシュ化します。
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("password is empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify はパスワードがハッシュと一致するかを返します。不正なハッシュでも false を返すだけです。
func (h *PasswordHasher) Verify(plaintext, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
