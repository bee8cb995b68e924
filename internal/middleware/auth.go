// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/placeshare/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// callerContextKey はリクエストコンテキストに呼び出し元を格納するためのキー。
var callerContextKey = contextKey("caller")

// TokenVerifier はBearerトークンの検証に必要なインターフェース。
type TokenVerifier interface {
	Verify(token string) (*model.CallerIdentity, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 検証に成功した呼び出し元をリクエストコンテキストに注入する。
// OPTIONSリクエストは検証せずに通過させる。
// ヘッダー欠落、形式不正、署名不一致、期限切れはすべて同じ403応答になる。
func NewAuthMiddleware(verifier TokenVerifier, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.Warn("authentication failed",
					slog.String("reason", "missing or malformed authorization header"),
					slog.String("path", r.URL.Path),
				)
				WriteAPIError(w, model.NewAuthenticationFailedError(nil))
				return
			}

			caller, err := verifier.Verify(token)
			if err != nil || caller == nil {
				reason := "empty caller"
				if err != nil {
					reason = err.Error()
				}
				logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
				)
				WriteAPIError(w, model.NewAuthenticationFailedError(err))
				return
			}

			setLoggedUserID(r.Context(), caller.UserID)
			next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), caller)))
		})
	}
}

// bearerToken は "Bearer <token>" 形式のヘッダー値からトークンを取り出す。
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// CallerFromContext はリクエストコンテキストから呼び出し元を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func CallerFromContext(ctx context.Context) (*model.CallerIdentity, bool) {
	caller, ok := ctx.Value(callerContextKey).(*model.CallerIdentity)
	if !ok || caller == nil || caller.UserID == "" {
		return nil, false
	}
	return caller, true
}

// ContextWithCaller はコンテキストに呼び出し元を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithCaller(ctx context.Context, caller *model.CallerIdentity) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}
