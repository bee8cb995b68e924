// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hitoshi/placeshare/internal/model"
)

var (
	// ErrDuplicateEmail はメールアドレスのユニーク制約違反を表す。
	ErrDuplicateEmail = errors.New("repository: email already registered")
	// ErrNotFound は更新・削除対象の行が存在しないことを表す。
	ErrNotFound = errors.New("repository: row not found")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを所有Place ID一覧付きで取得する。
	// 見つからない場合、またはIDがUUID形式でない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindAllPublic は全ユーザーの公開情報を返す。passwordカラムは読み出さない。
	FindAllPublic(ctx context.Context) ([]*model.PublicUser, error)

	// Create はPlace未所有のユーザーを作成する。
	// メールアドレスが登録済みの場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// PlaceRepository はPlaceデータの永続化インターフェース。
type PlaceRepository interface {
	// FindByID は指定IDのPlaceを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Place, error)

	// FindByIDWithCreator はPlaceと所有ユーザーを1クエリで取得する。見つからない場合はnilを返す。
	FindByIDWithCreator(ctx context.Context, id string) (*PlaceWithCreator, error)

	// ListByUser はユーザーが所有するPlaceを追加順に返す。
	// ユーザーが存在しない場合も空スライスを返す。
	ListByUser(ctx context.Context, userID string) ([]*model.Place, error)

	// CreateWithOwnerLink はPlaceの作成と所有者リンクの追加を同一トランザクションで行う。
	CreateWithOwnerLink(ctx context.Context, place *model.Place) error

	// Update はtitleとdescriptionを更新する。対象がない場合はErrNotFoundを返す。
	Update(ctx context.Context, place *model.Place) error

	// DeleteWithOwnerUnlink は所有者リンクの削除とPlaceの削除を同一トランザクションで行う。
	DeleteWithOwnerUnlink(ctx context.Context, placeID, ownerID string) error

	// ListImagePaths はユーザーとPlaceが参照している画像パスを重複なしで返す。
	ListImagePaths(ctx context.Context) ([]string, error)
}

// PlaceWithCreator はPlaceと所有ユーザーを結合した構造体。
type PlaceWithCreator struct {
	Place   *model.Place
	Creator *model.User
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
