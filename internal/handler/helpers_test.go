package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/placeshare/internal/middleware"
	"github.com/hitoshi/placeshare/internal/model"
	"github.com/hitoshi/placeshare/internal/place"
	"github.com/hitoshi/placeshare/internal/user"
)

// --- モック定義 ---

// mockPlaceService はPlaceServiceInterfaceのモック実装。
type mockPlaceService struct {
	getPlaceFn         func(ctx context.Context, placeID string) (*placeResponse, error)
	listPlacesByUserFn func(ctx context.Context, userID string) ([]placeResponse, error)
	createPlaceFn      func(ctx context.Context, caller model.CallerIdentity, in place.CreateInput) (*placeResponse, error)
	updatePlaceFn      func(ctx context.Context, caller model.CallerIdentity, placeID string, in place.UpdateInput) (*placeResponse, error)
	deletePlaceFn      func(ctx context.Context, caller model.CallerIdentity, placeID string) error
}

func (m *mockPlaceService) GetPlace(ctx context.Context, placeID string) (*placeResponse, error) {
	if m.getPlaceFn != nil {
		return m.getPlaceFn(ctx, placeID)
	}
	return nil, model.NewNotFoundError("Could not find a place for the provided id.")
}

func (m *mockPlaceService) ListPlacesByUser(ctx context.Context, userID string) ([]placeResponse, error) {
	if m.listPlacesByUserFn != nil {
		return m.listPlacesByUserFn(ctx, userID)
	}
	return nil, model.NewNotFoundError("Could not find a places for the provided user id.")
}

func (m *mockPlaceService) CreatePlace(ctx context.Context, caller model.CallerIdentity, in place.CreateInput) (*placeResponse, error) {
	if m.createPlaceFn != nil {
		return m.createPlaceFn(ctx, caller, in)
	}
	return &placeResponse{ID: "p1", Title: in.Title, Creator: caller.UserID}, nil
}

func (m *mockPlaceService) UpdatePlace(ctx context.Context, caller model.CallerIdentity, placeID string, in place.UpdateInput) (*placeResponse, error) {
	if m.updatePlaceFn != nil {
		return m.updatePlaceFn(ctx, caller, placeID, in)
	}
	return &placeResponse{ID: placeID, Title: in.Title, Description: in.Description, Creator: caller.UserID}, nil
}

func (m *mockPlaceService) DeletePlace(ctx context.Context, caller model.CallerIdentity, placeID string) error {
	if m.deletePlaceFn != nil {
		return m.deletePlaceFn(ctx, caller, placeID)
	}
	return nil
}

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	listUsersFn func(ctx context.Context) ([]userResponse, error)
	signupFn    func(ctx context.Context, in user.SignupInput) (*authResponse, error)
	loginFn     func(ctx context.Context, in user.LoginInput) (*authResponse, error)
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]userResponse, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return []userResponse{}, nil
}

func (m *mockUserService) Signup(ctx context.Context, in user.SignupInput) (*authResponse, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, in)
	}
	return &authResponse{UserID: "u1", Email: in.Email, Token: "token"}, nil
}

func (m *mockUserService) Login(ctx context.Context, in user.LoginInput) (*authResponse, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, in)
	}
	return &authResponse{UserID: "u1", Email: in.Email, Token: "token"}, nil
}

// mockImageStore は保存・削除されたパスを記録するImageStore。
type mockImageStore struct {
	mu      sync.Mutex
	saveFn  func(ctx context.Context, r io.Reader) (string, error)
	saved   []string
	removed []string
}

func (m *mockImageStore) Save(ctx context.Context, r io.Reader) (string, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, r)
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := "uploads/images/test.png"
	m.saved = append(m.saved, path)
	return path, nil
}

func (m *mockImageStore) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, path)
	return nil
}

// --- テストヘルパー ---

// pngBytes は最小限のPNGシグネチャとIHDRチャンクを持つバイト列。
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89,
}

// withCaller はテスト用にリクエストコンテキストに呼び出し元を注入するヘルパー。
func withCaller(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithCaller(r.Context(), &model.CallerIdentity{UserID: userID, Email: userID + "@test.com"})
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// newMultipartRequest はテキストフィールドと任意の画像を含むmultipartリクエストを生成する。
func newMultipartRequest(t *testing.T, method, target string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		fw.Write(image)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close failed: %v", err)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// parseMessage はエラーレスポンスのmessageを返すヘルパー。
func parseMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result["message"]
}

// decodeBody はレスポンスボディを任意の型にデコードするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v\nbody: %s", err, w.Body.String())
	}
}
