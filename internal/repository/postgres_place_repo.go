package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/placeshare/internal/model"
)

const placeColumns = `p.id, p.title, p.description, p.address, p.lat, p.lng, p.image, p.creator_id, p.created_at, p.updated_at`

// PostgresPlaceRepo はPostgreSQLを使用したPlaceリポジトリ。
type PostgresPlaceRepo struct {
	db *sql.DB
}

// NewPostgresPlaceRepo はPostgresPlaceRepoを生成する。
func NewPostgresPlaceRepo(db *sql.DB) *PostgresPlaceRepo {
	return &PostgresPlaceRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(s rowScanner, extra ...any) (*model.Place, error) {
	p := &model.Place{}
	dest := []any{
		&p.ID, &p.Title, &p.Description, &p.Address,
		&p.Location.Lat, &p.Location.Lng, &p.Image, &p.CreatorID,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID は指定IDのPlaceを取得する。見つからない場合はnilを返す。
func (r *PostgresPlaceRepo) FindByID(ctx context.Context, id string) (*model.Place, error) {
	if !validID(id) {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+placeColumns+` FROM places p WHERE p.id = $1`,
		id,
	)
	place, err := scanPlace(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find place by ID: %w", err)
	}
	return place, nil
}

// FindByIDWithCreator はPlaceと所有ユーザーを取得する。
// 所有ユーザーのPlace ID一覧は読み出さない。
func (r *PostgresPlaceRepo) FindByIDWithCreator(ctx context.Context, id string) (*PlaceWithCreator, error) {
	if !validID(id) {
		return nil, nil
	}
	creator := &model.User{}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+placeColumns+`, u.id, u.name, u.email, u.image
		   FROM places p
		   JOIN users u ON u.id = p.creator_id
		  WHERE p.id = $1`,
		id,
	)
	place, err := scanPlace(row, &creator.ID, &creator.Name, &creator.Email, &creator.Image)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find place with creator: %w", err)
	}
	return &PlaceWithCreator{Place: place, Creator: creator}, nil
}

// ListByUser はユーザーが所有するPlaceを追加順に返す。
func (r *PostgresPlaceRepo) ListByUser(ctx context.Context, userID string) ([]*model.Place, error) {
	if !validID(userID) {
		return []*model.Place{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+placeColumns+`
		   FROM user_places up
		   JOIN places p ON p.id = up.place_id
		  WHERE up.user_id = $1
		  ORDER BY up.position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list places by user: %w", err)
	}
	defer rows.Close()

	places := []*model.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}
	return places, nil
}

// CreateWithOwnerLink はPlaceと所有者リンクを同一トランザクションで作成する。
// どちらかが失敗した場合は両方ともロールバックされる。
func (r *PostgresPlaceRepo) CreateWithOwnerLink(ctx context.Context, place *model.Place) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO places (id, title, description, address, lat, lng, image, creator_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		place.ID, place.Title, place.Description, place.Address,
		place.Location.Lat, place.Location.Lng, place.Image, place.CreatorID,
		place.CreatedAt, place.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert place: %w", err)
	}

	// 所有者のPlace集合の末尾に追加
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_places (user_id, place_id) VALUES ($1, $2)`,
		place.CreatorID, place.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to link place to owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update はPlaceのtitleとdescriptionを更新する。
func (r *PostgresPlaceRepo) Update(ctx context.Context, place *model.Place) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE places SET title = $1, description = $2, updated_at = $3 WHERE id = $4`,
		place.Title, place.Description, place.UpdatedAt, place.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update place: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithOwnerUnlink は所有者リンクとPlaceを同一トランザクションで削除する。
// user_places.place_idはON DELETE RESTRICTのため、リンクを先に削除する。
func (r *PostgresPlaceRepo) DeleteWithOwnerUnlink(ctx context.Context, placeID, ownerID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM user_places WHERE user_id = $1 AND place_id = $2`,
		ownerID, placeID,
	)
	if err != nil {
		return fmt.Errorf("failed to unlink place from owner: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM places WHERE id = $1`,
		placeID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListImagePaths はユーザーとPlaceが参照している画像パスを返す。
func (r *PostgresPlaceRepo) ListImagePaths(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT image FROM users UNION SELECT image FROM places`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list image paths: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan image path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate image paths: %w", err)
	}
	return paths, nil
}

// compile-time interface check
var _ PlaceRepository = (*PostgresPlaceRepo)(nil)
