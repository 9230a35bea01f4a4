package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/recipeshare/internal/model"
	"github.com/hitoshi/recipeshare/internal/repository"
)

// Service はユーザー登録・ログインのビジネスロジックを提供する。
type Service struct {
	users    repository.UserRepository
	verifier PasswordVerifier
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, verifier PasswordVerifier) *Service {
	return &Service{
		users:    users,
		verifier: verifier,
	}
}

// Register は新規ユーザーを作成してPrincipalを返す。
// usernameが既に使われている場合はmodel.ErrUsernameTakenを返す。
// 事前チェックとINSERTの間で同名登録が競合した場合も、
// 一意制約違反がリポジトリで同じエラーに変換される。
func (s *Service) Register(ctx context.Context, username, password string) (*Principal, error) {
	username = strings.TrimSpace(username)

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, model.ErrUsernameTaken
	}

	stored, err := s.verifier.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password: %w", err)
	}

	id, err := s.users.Create(ctx, username, stored)
	if err != nil {
		return nil, err
	}

	slog.Info("new user registered",
		slog.Int64("user_id", id),
		slog.String("username", username),
	)

	principal := NewPrincipal(&model.User{ID: id, Username: username})
	return &principal, nil
}

// Login は認証情報を検証してPrincipalを返す。
// ユーザー不在・パスワード不一致はどちらもmodel.ErrInvalidCredentialsとして
// 区別せずに返す。
func (s *Service) Login(ctx context.Context, username, password string) (*Principal, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.ErrInvalidCredentials
	}

	if !s.verifier.Verify(user.Password, password) {
		return nil, model.ErrInvalidCredentials
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	principal := NewPrincipal(user)
	return &principal, nil
}

// FindByUsername はusernameでユーザーを取得する。見つからない場合はnilを返す。
// プロフィール表示用のパススルー。
func (s *Service) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.FindByUsername(ctx, username)
}
