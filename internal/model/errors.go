// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"net/http"
)

// ErrorKind はAPIエラーの原因カテゴリを表す。
type ErrorKind string

const (
	// KindValidation は入力不備や業務ルール違反（重複登録、住所未検出など）。
	KindValidation ErrorKind = "validation"
	// KindAuth は認証・認可の失敗。どのチェックで失敗したかは呼び出し元に伝えない。
	KindAuth ErrorKind = "auth"
	// KindNotFound はエンティティまたはルートが存在しないことを表す。
	KindNotFound ErrorKind = "not_found"
	// KindInternal はストアやインフラの障害。
	KindInternal ErrorKind = "internal"
)

// DefaultErrorMessage はメッセージが設定されていないエラーに使う応答メッセージ。
const DefaultErrorMessage = "An unknown error occurred!"

// APIError は統一エラーフォーマットを表す。
// Messageのみがレスポンスに含まれ、Errは内部ログ用の原因として保持する。
type APIError struct {
	Kind    ErrorKind
	Status  int    // HTTPステータスコード
	Message string // ユーザー向けメッセージ
	Err     error  // 内部原因（レスポンスには含めない）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// Unwrap は内部原因を返す。
func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusCode はHTTPステータスコードを返す。未設定の場合は500を返す。
func (e *APIError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// ResponseMessage はレスポンスに書き込むメッセージを返す。
func (e *APIError) ResponseMessage() string {
	if e.Message == "" {
		return DefaultErrorMessage
	}
	return e.Message
}

// 定義済みメッセージ
const (
	MsgInvalidInputs        = "Invalid inputs passed, please check your data"
	MsgAuthenticationFailed = "Authentication failed!"
	MsgRouteNotFound        = "Could not find this route"
)

// NewValidationError は422の入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Status:  http.StatusUnprocessableEntity,
		Message: message,
	}
}

// NewInvalidInputsError は入力フィールドの検証失敗エラーを生成する。
func NewInvalidInputsError(cause error) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Status:  http.StatusUnprocessableEntity,
		Message: MsgInvalidInputs,
		Err:     cause,
	}
}

// NewAuthError は認証・認可エラーを生成する。statusには401または403を指定する。
func NewAuthError(status int, message string) *APIError {
	return &APIError{
		Kind:    KindAuth,
		Status:  status,
		Message: message,
	}
}

// NewAuthenticationFailedError はトークン検証失敗時の403エラーを生成する。
// 不正形式・期限切れ・署名不一致を区別しない。
func NewAuthenticationFailedError(cause error) *APIError {
	return &APIError{
		Kind:    KindAuth,
		Status:  http.StatusForbidden,
		Message: MsgAuthenticationFailed,
		Err:     cause,
	}
}

// NewNotFoundError は404エラーを生成する。
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: message,
	}
}

// NewRouteNotFoundError は未定義ルートへのアクセスエラーを生成する。
func NewRouteNotFoundError() *APIError {
	return NewNotFoundError(MsgRouteNotFound)
}

// NewInternalError は500エラーを生成する。causeはログにのみ出力される。
func NewInternalError(message string, cause error) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: message,
		Err:     cause,
	}
}
