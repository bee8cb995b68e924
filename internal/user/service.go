// Package user はユーザー一覧・サインアップ・ログインのドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/placeshare/internal/auth"
	"github.com/hitoshi/placeshare/internal/model"
	"github.com/hitoshi/placeshare/internal/repository"
	"github.com/hitoshi/placeshare/internal/security"
	"github.com/hitoshi/placeshare/internal/validation"
)

// 応答メッセージ
const (
	msgListFailed         = "Fetching users failed, please try again later."
	msgSignupFailed       = "Signing up failed, please try again later."
	msgUserExists         = "User exists already, please log in instead"
	msgHashFailed         = "Could not create user, please try again"
	msgLoginFailed        = "Logging in failed, please try again."
	msgInvalidCredentials = "Invalid credentials, could not log you in."
	msgCompareFailed      = "Could not log you in, please check your credentials and try again."
	msgLoginTokenFailed   = "Logging in failed, please try again later."
)

// SignupInput はサインアップの入力。Imageは保存済み画像のパス。
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Image    string
}

// LoginInput はログインの入力。
type LoginInput struct {
	Email    string
	Password string
}

// Session はサインアップ・ログイン成功時に返すセッション情報。
type Session struct {
	UserID string
	Email  string
	Token  string
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	hasher    auth.PasswordHasher
	tokens    auth.TokenIssuer
	sanitizer security.TextSanitizer
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	sanitizer security.TextSanitizer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// ListUsers は全ユーザーの公開情報を返す。
func (s *Service) ListUsers(ctx context.Context) ([]*model.PublicUser, error) {
	users, err := s.userRepo.FindAllPublic(ctx)
	if err != nil {
		return nil, model.NewInternalError(msgListFailed, err)
	}
	if users == nil {
		users = []*model.PublicUser{}
	}
	return users, nil
}

// Signup はユーザーを作成し、セッショントークンを発行する。
// メールアドレスは正規化してから検証・保存する。
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	if s.sanitizer != nil {
		name = strings.TrimSpace(s.sanitizer.Clean(name))
	}
	email := validation.NormalizeEmail(in.Email)

	if err := validation.SignupSchema.Validate(map[string]string{
		"name":     name,
		"email":    email,
		"password": in.Password,
	}); err != nil {
		return nil, model.NewInvalidInputsError(err)
	}
	if in.Image == "" {
		return nil, model.NewInvalidInputsError(errors.New("image is required"))
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, model.NewInternalError(msgSignupFailed, err)
	}
	if existing != nil {
		return nil, model.NewValidationError(msgUserExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, model.NewInternalError(msgHashFailed, err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Image:        in.Image,
		Places:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェック後に同じメールアドレスで登録された場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewValidationError(msgUserExists)
		}
		return nil, model.NewInternalError(msgSignupFailed, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, model.NewInternalError(msgSignupFailed, err)
	}

	s.logger.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID))

	return &Session{UserID: user.ID, Email: user.Email, Token: token}, nil
}

// Login は資格情報を検証し、セッショントークンを発行する。
// アカウントが存在しない場合は403、パスワード不一致は401とし、メッセージは同一にする。
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := validation.NormalizeEmail(in.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, model.NewInternalError(msgLoginFailed, err)
	}
	if user == nil {
		return nil, model.NewAuthError(http.StatusForbidden, msgInvalidCredentials)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, in.Password)
	if err != nil {
		return nil, model.NewInternalError(msgCompareFailed, err)
	}
	if !ok {
		return nil, model.NewAuthError(http.StatusUnauthorized, msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, model.NewInternalError(msgLoginTokenFailed, err)
	}

	return &Session{UserID: user.ID, Email: user.Email, Token: token}, nil
}
