package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/placeshare/internal/middleware"
	"github.com/hitoshi/placeshare/internal/model"
	"github.com/hitoshi/placeshare/internal/place"
	"github.com/hitoshi/placeshare/internal/storage"
)

// PlaceServiceInterface はPlaceハンドラーが必要とするサービスインターフェース。
type PlaceServiceInterface interface {
	// GetPlace は指定IDのPlaceを返す。
	GetPlace(ctx context.Context, placeID string) (*placeResponse, error)
	// ListPlacesByUser はユーザーが所有するPlaceを返す。0件の場合は404エラーとなる。
	ListPlacesByUser(ctx context.Context, userID string) ([]placeResponse, error)
	// CreatePlace は呼び出し元を作成者とするPlaceを作成する。
	CreatePlace(ctx context.Context, caller model.CallerIdentity, in place.CreateInput) (*placeResponse, error)
	// UpdatePlace はtitleとdescriptionを更新する。
	UpdatePlace(ctx context.Context, caller model.CallerIdentity, placeID string, in place.UpdateInput) (*placeResponse, error)
	// DeletePlace はPlaceを削除する。
	DeletePlace(ctx context.Context, caller model.CallerIdentity, placeID string) error
}

// PlaceHandler はPlaceのHTTPハンドラー。
type PlaceHandler struct {
	service       PlaceServiceInterface
	images        ImageStore
	maxImageBytes int64
}

// NewPlaceHandler はPlaceHandlerを生成する。maxImageBytesが0以下の場合はstorage.DefaultMaxBytesを使う。
func NewPlaceHandler(service PlaceServiceInterface, images ImageStore, maxImageBytes int64) *PlaceHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = storage.DefaultMaxBytes
	}
	return &PlaceHandler{
		service:       service,
		images:        images,
		maxImageBytes: maxImageBytes,
	}
}

// locationResponse は座標のAPIレスポンス。
type locationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// placeResponse はPlaceのAPIレスポンス。
type placeResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Address     string           `json:"address"`
	Location    locationResponse `json:"location"`
	Creator     string           `json:"creator"`
}

// updatePlaceRequest はPlace更新リクエストのボディ。
type updatePlaceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GetPlace はPlaceを取得する。
// GET /api/places/:pid
func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPlace(r.Context(), chi.URLParam(r, "pid"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"place": p})
}

// ListPlacesByUser はユーザーが所有するPlace一覧を取得する。
// GET /api/places/user/:uid
func (h *PlaceHandler) ListPlacesByUser(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.ListPlacesByUser(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"places": places})
}

// CreatePlace はPlaceを作成する。
// POST /api/places (multipart: title, description, address, image)
func (h *PlaceHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewAuthenticationFailedError(nil))
		return
	}

	form, err := parseUploadForm(r, w, h.images, h.maxImageBytes)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	p, err := h.service.CreatePlace(r.Context(), *caller, place.CreateInput{
		Title:       form.value("title"),
		Description: form.value("description"),
		Address:     form.value("address"),
		Image:       form.imagePath,
	})
	if err != nil {
		discardUpload(r.Context(), h.images, form)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"place": p})
}

// UpdatePlace はPlaceのtitleとdescriptionを更新する。
// PATCH /api/places/:pid
func (h *PlaceHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewAuthenticationFailedError(nil))
		return
	}

	var req updatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteAPIError(w, model.NewInvalidInputsError(err))
		return
	}

	p, err := h.service.UpdatePlace(r.Context(), *caller, chi.URLParam(r, "pid"), place.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"place": p})
}

// DeletePlace はPlaceを削除する。
// DELETE /api/places/:pid
func (h *PlaceHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewAuthenticationFailedError(nil))
		return
	}

	if err := h.service.DeletePlace(r.Context(), *caller, chi.URLParam(r, "pid")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted place."})
}
