// Package place はPlaceの取得・作成・更新・削除のドメインロジックを提供する。
package place

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/placeshare/internal/geocode"
	"github.com/hitoshi/placeshare/internal/metrics"
	"github.com/hitoshi/placeshare/internal/model"
	"github.com/hitoshi/placeshare/internal/repository"
	"github.com/hitoshi/placeshare/internal/security"
	"github.com/hitoshi/placeshare/internal/validation"
)

// 応答メッセージ
const (
	msgFindFailed           = "Something went wrong, could not find a place"
	msgPlaceNotFound        = "Could not find a place for the provided id."
	msgListFailed           = "Fetching places failed, please try again later."
	msgUserPlacesNotFound   = "Could not find a places for the provided user id."
	msgLocationNotFound     = "Could not find location for the specified address"
	msgCreateFailed         = "Creating place failed, please try again"
	msgCreateCommitFailed   = "Creating place failed, please try again."
	msgCreatorNotFound      = "Could not find user for provided id"
	msgUpdateFailed         = "Something went wrong, could not update place."
	msgUpdateNotAllowed     = "You are not allowed to edit this place."
	msgDeleteFailed         = "Something went wrong, could not delete place."
	msgDeleteTargetNotFound = "Could not find place for this id"
	msgDeleteNotAllowed     = "You are not allowed to delete this place."
)

// Geocoder は住所を座標に変換するインターフェース。
// 一致する地点がない場合はgeocode.ErrNoMatchを返す。
type Geocoder interface {
	Resolve(ctx context.Context, address string) (model.Location, error)
}

// ImageRemover は保存済み画像の削除インターフェース。
type ImageRemover interface {
	Remove(path string) error
}

// CreateInput はPlace作成の入力。Imageは保存済み画像のパス。
type CreateInput struct {
	Title       string
	Description string
	Address     string
	Image       string
}

// UpdateInput はPlace更新の入力。titleとdescriptionのみ変更できる。
type UpdateInput struct {
	Title       string
	Description string
}

// Service はPlaceのサービス層。
// 書き込み操作は呼び出し元の識別情報を明示的に受け取る。
type Service struct {
	placeRepo repository.PlaceRepository
	userRepo  repository.UserRepository
	geocoder  Geocoder
	images    ImageRemover
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	logger    *slog.Logger

	// goAsync は削除後の画像クリーンアップを起動する。テストで同期実行に差し替える。
	goAsync func(func())
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	placeRepo repository.PlaceRepository,
	userRepo repository.UserRepository,
	geocoder Geocoder,
	images ImageRemover,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		placeRepo: placeRepo,
		userRepo:  userRepo,
		geocoder:  geocoder,
		images:    images,
		sanitizer: sanitizer,
		metrics:   collector,
		logger:    logger,
		goAsync:   func(f func()) { go f() },
	}
}

// GetPlace は指定IDのPlaceを返す。
func (s *Service) GetPlace(ctx context.Context, placeID string) (*model.Place, error) {
	place, err := s.placeRepo.FindByID(ctx, placeID)
	if err != nil {
		return nil, model.NewInternalError(msgFindFailed, err)
	}
	if place == nil {
		return nil, model.NewNotFoundError(msgPlaceNotFound)
	}
	return place, nil
}

// ListPlacesByUser はユーザーが所有するPlaceを追加順に返す。
// ユーザーが存在しない場合とPlaceが0件の場合はどちらも404とする。
func (s *Service) ListPlacesByUser(ctx context.Context, userID string) ([]*model.Place, error) {
	places, err := s.placeRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, model.NewInternalError(msgListFailed, err)
	}
	if len(places) == 0 {
		return nil, model.NewNotFoundError(msgUserPlacesNotFound)
	}
	return places, nil
}

// CreatePlace は住所をジオコーディングし、Placeの作成と所有者へのリンク追加を
// 1つのトランザクションで行う。作成者は常に呼び出し元となる。
func (s *Service) CreatePlace(ctx context.Context, caller model.CallerIdentity, in CreateInput) (*model.Place, error) {
	in.Title = s.clean(in.Title)
	in.Description = s.clean(in.Description)
	in.Address = s.clean(in.Address)

	if err := validation.CreatePlaceSchema.Validate(map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"address":     in.Address,
	}); err != nil {
		return nil, model.NewInvalidInputsError(err)
	}
	if in.Image == "" {
		return nil, model.NewInvalidInputsError(errors.New("image is required"))
	}

	location, err := s.geocoder.Resolve(ctx, in.Address)
	if errors.Is(err, geocode.ErrNoMatch) {
		return nil, model.NewValidationError(msgLocationNotFound)
	}
	if err != nil {
		return nil, model.NewInternalError(msgCreateFailed, err)
	}

	creator, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, model.NewInternalError(msgCreateFailed, err)
	}
	if creator == nil {
		return nil, model.NewNotFoundError(msgCreatorNotFound)
	}

	now := time.Now()
	place := &model.Place{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Location:    location,
		Image:       in.Image,
		CreatorID:   creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.placeRepo.CreateWithOwnerLink(ctx, place); err != nil {
		s.metrics.RecordPlaceWrite(metrics.OpCreate, metrics.OutcomeFailure)
		return nil, model.NewInternalError(msgCreateCommitFailed, err)
	}
	s.metrics.RecordPlaceWrite(metrics.OpCreate, metrics.OutcomeSuccess)

	s.logger.InfoContext(ctx, "place created",
		slog.String("place_id", place.ID),
		slog.String("user_id", creator.ID),
	)

	return place, nil
}

// UpdatePlace はPlaceのtitleとdescriptionを更新する。作成者以外は401とする。
// 同じ入力で繰り返し実行しても永続化される状態は変わらない。
func (s *Service) UpdatePlace(ctx context.Context, caller model.CallerIdentity, placeID string, in UpdateInput) (*model.Place, error) {
	in.Title = s.clean(in.Title)
	in.Description = s.clean(in.Description)

	if err := validation.UpdatePlaceSchema.Validate(map[string]string{
		"title":       in.Title,
		"description": in.Description,
	}); err != nil {
		return nil, model.NewInvalidInputsError(err)
	}

	place, err := s.placeRepo.FindByID(ctx, placeID)
	if err != nil {
		return nil, model.NewInternalError(msgUpdateFailed, err)
	}
	if place == nil {
		return nil, model.NewNotFoundError(msgPlaceNotFound)
	}
	if place.CreatorID != caller.UserID {
		return nil, model.NewAuthError(http.StatusUnauthorized, msgUpdateNotAllowed)
	}

	place.Title = in.Title
	place.Description = in.Description
	place.UpdatedAt = time.Now()

	if err := s.placeRepo.Update(ctx, place); err != nil {
		s.metrics.RecordPlaceWrite(metrics.OpUpdate, metrics.OutcomeFailure)
		// 取得後に削除された場合
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFoundError(msgPlaceNotFound)
		}
		return nil, model.NewInternalError(msgUpdateFailed, err)
	}
	s.metrics.RecordPlaceWrite(metrics.OpUpdate, metrics.OutcomeSuccess)

	return place, nil
}

// DeletePlace は所有者リンクの削除とPlaceの削除を1つのトランザクションで行う。
// コミット後に画像ファイルを非同期で削除する。画像削除の失敗は呼び出し元に返さない。
func (s *Service) DeletePlace(ctx context.Context, caller model.CallerIdentity, placeID string) error {
	found, err := s.placeRepo.FindByIDWithCreator(ctx, placeID)
	if err != nil {
		return model.NewInternalError(msgDeleteFailed, err)
	}
	if found == nil || found.Place == nil {
		return model.NewNotFoundError(msgDeleteTargetNotFound)
	}
	if found.Creator == nil || found.Creator.ID != caller.UserID {
		return model.NewAuthError(http.StatusUnauthorized, msgDeleteNotAllowed)
	}

	if err := s.placeRepo.DeleteWithOwnerUnlink(ctx, found.Place.ID, found.Creator.ID); err != nil {
		s.metrics.RecordPlaceWrite(metrics.OpDelete, metrics.OutcomeFailure)
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewNotFoundError(msgDeleteTargetNotFound)
		}
		return model.NewInternalError(msgDeleteFailed, err)
	}
	s.metrics.RecordPlaceWrite(metrics.OpDelete, metrics.OutcomeSuccess)

	s.logger.InfoContext(ctx, "place deleted",
		slog.String("place_id", found.Place.ID),
		slog.String("user_id", found.Creator.ID),
	)

	if image := found.Place.Image; image != "" && s.images != nil {
		s.goAsync(func() { s.removeImage(found.Place.ID, image) })
	}

	return nil
}

func (s *Service) removeImage(placeID, path string) {
	if err := s.images.Remove(path); err != nil {
		s.metrics.RecordImageCleanupFailure()
		s.logger.Warn("failed to remove place image",
			slog.String("place_id", placeID),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) clean(v string) string {
	if s.sanitizer != nil {
		v = s.sanitizer.Clean(v)
	}
	return strings.TrimSpace(v)
}

