package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/placeshare/internal/model"
)

// DefaultTokenTTL はセッショントークンのデフォルト有効期間。
const DefaultTokenTTL = time.Hour

// ErrInvalidToken はトークンの形式・署名・有効期限いずれかの検証失敗を表す。
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims はセッショントークンのペイロード。
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer はトークン発行のインターフェース。
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// TokenVerifier はトークン検証のインターフェース。
type TokenVerifier interface {
	Verify(token string) (*model.CallerIdentity, error)
}

// TokenManager はHS256署名のセッショントークンを発行・検証する。
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenManager はTokenManagerを生成する。ttlが0以下の場合はDefaultTokenTTLを使う。
func NewTokenManager(key string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		key: []byte(key),
		ttl: ttl,
		now: time.Now,
	}
}

// Issue はユーザーIDとメールアドレスを含むトークンを発行する。
func (m *TokenManager) Issue(userID, email string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、呼び出し元の識別情報を返す。
// 失敗理由は区別せず、常にErrInvalidTokenでラップしたエラーを返す。
func (m *TokenManager) Verify(token string) (*model.CallerIdentity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId claim", ErrInvalidToken)
	}

	return &model.CallerIdentity{UserID: claims.UserID, Email: claims.Email}, nil
}

var (
	_ TokenIssuer   = (*TokenManager)(nil)
	_ TokenVerifier = (*TokenManager)(nil)
)
