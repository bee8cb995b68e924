// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、平文は保持しない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Image        string
	Places       []string // 所有するPlaceのID（追加順）
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser はユーザー一覧で公開される射影。
// パスワードハッシュのフィールドを持たない。
type PublicUser struct {
	ID     string
	Name   string
	Email  string
	Image  string
	Places []string
}

// CallerIdentity は認証済みリクエストの呼び出し元を表す。
// Authorization Guardがトークン検証後に生成し、ワークフローへ明示的に渡される。
type CallerIdentity struct {
	UserID string
	Email  string
}
