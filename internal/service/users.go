package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Benhap1/taskmanager/internal/auth"
	"github.com/Benhap1/taskmanager/internal/models"
	"github.com/Benhap1/taskmanager/internal/store"
)

// bcrypt が扱えるのは72バイトまで
const maxPasswordBytes = 72

// UserInput は登録・更新時の入力です。
type UserInput struct {
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Role     models.Role `json:"role"`
}

// LoginInput はログイン時の入力です。
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserService はユーザー登録・認証・プロフィール更新を扱います。
type UserService struct {
	users   UserStore
	hasher  Hasher
	tokens  TokenIssuer
	revoker TokenRevoker
}

// NewUserService は UserService を作成します。revoker が nil の場合ログアウトは何もしません。
func NewUserService(users UserStore, hasher Hasher, tokens TokenIssuer, revoker TokenRevoker) *UserService {
	return &UserService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		revoker: revoker,
	}
}

// Register はユーザーを登録します。役割が未指定なら ASSIGNEE になります。
func (s *UserService) Register(ctx context.Context, in UserInput) (*models.User, error) {
	user, err := s.buildUser(in)
	if err != nil {
		return nil, err
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, newError(CodeEmailTaken, "このメールアドレスは既に登録されています", err)
		}
		return nil, err
	}
	return user, nil
}

// Login は資格情報を検証してトークンを発行します。どちらが誤っているかは区別しません。
func (s *UserService) Login(ctx context.Context, in LoginInput) (*auth.Token, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, newError(CodeInvalidCredentials, "メールアドレスまたはパスワードが正しくありません", nil)
	}
	return s.tokens.Issue(user.Email)
}

// Logout は提示されたトークンを失効させます。
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoker == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims)
}

// GetByID はユーザーを返します。存在しなければ nil です。
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetUser(ctx, id)
}

// GetByEmail はユーザーを返します。存在しなければ nil です。
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetUserByEmail(ctx, normalizeEmail(email))
}

// Update はユーザーを全項目置き換えます。本人以外は更新できません。
func (s *UserService) Update(ctx context.Context, id int64, in UserInput, actor *models.User) (*models.User, error) {
	existing, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, notFound("ユーザーが見つかりません")
	}
	if actor == nil || actor.ID != existing.ID {
		return nil, accessDenied("他のユーザーは更新できません")
	}

	user, err := s.buildUser(in)
	if err != nil {
		return nil, err
	}
	user.ID = existing.ID
	user.CreatedAt = existing.CreatedAt

	ok, err := s.users.UpdateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, newError(CodeEmailTaken, "このメールアドレスは既に登録されています", err)
		}
		return nil, err
	}
	if !ok {
		return nil, notFound("ユーザーが見つかりません")
	}
	return user, nil
}

// Delete はユーザーを削除し、レコードが存在したかを返します。本人以外は削除できません。
func (s *UserService) Delete(ctx context.Context, id int64, actor *models.User) (bool, error) {
	exists, err := s.users.UserExists(ctx, id)
	if err != nil || !exists {
		return false, err
	}
	if actor == nil || actor.ID != id {
		return false, accessDenied("他のユーザーは削除できません")
	}
	return s.users.DeleteUser(ctx, id)
}

func (s *UserService) buildUser(in UserInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, validationError(map[string]string{"password": "72バイト以内で入力してください"})
	}

	role := in.Role
	if role == "" {
		role = models.RoleAssignee
	}
	if !role.Valid() {
		return nil, newError(CodeInvalidArgument, "role は AUTHOR または ASSIGNEE を指定してください", nil)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         role,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
