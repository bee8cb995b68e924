package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/placeshare/internal/middleware"
	"github.com/hitoshi/placeshare/internal/model"
	"github.com/hitoshi/placeshare/internal/storage"
	"github.com/hitoshi/placeshare/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// ListUsers は全ユーザーの公開情報を返す。
	ListUsers(ctx context.Context) ([]userResponse, error)
	// Signup はユーザーを作成しトークンを発行する。
	Signup(ctx context.Context, in user.SignupInput) (*authResponse, error)
	// Login は資格情報を検証しトークンを発行する。
	Login(ctx context.Context, in user.LoginInput) (*authResponse, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service       UserServiceInterface
	images        ImageStore
	maxImageBytes int64
}

// NewUserHandler はUserHandlerを生成する。maxImageBytesが0以下の場合はstorage.DefaultMaxBytesを使う。
func NewUserHandler(service UserServiceInterface, images ImageStore, maxImageBytes int64) *UserHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = storage.DefaultMaxBytes
	}
	return &UserHandler{
		service:       service,
		images:        images,
		maxImageBytes: maxImageBytes,
	}
}

// userResponse はユーザー一覧の要素。パスワードは含めない。
type userResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Image  string   `json:"image"`
	Places []string `json:"places"`
}

// authResponse はサインアップ・ログイン成功時のレスポンス。
type authResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ListUsers はユーザー一覧を取得する。
// GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Signup はユーザーを登録する。
// POST /api/users/signup (multipart: name, email, password, image)
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	form, err := parseUploadForm(r, w, h.images, h.maxImageBytes)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp, err := h.service.Signup(r.Context(), user.SignupInput{
		Name:     form.value("name"),
		Email:    form.value("email"),
		Password: form.value("password"),
		Image:    form.imagePath,
	})
	if err != nil {
		discardUpload(r.Context(), h.images, form)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login はログインしてトークンを取得する。
// POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteAPIError(w, model.NewInvalidInputsError(err))
		return
	}

	resp, err := h.service.Login(r.Context(), user.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
