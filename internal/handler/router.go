package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/placeshare/internal/metrics"
	"github.com/hitoshi/placeshare/internal/middleware"
)

// imagesRoute はアップロード画像の公開パス。
const imagesRoute = "/uploads/images"

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	Logger            *slog.Logger

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// アップロード画像
	Images        ImageStore
	ImageDir      string
	ImageMaxBytes int64

	// Place
	PlaceService PlaceServiceInterface

	// ユーザー
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Metrics → Recovery → (Auth → RateLimit(General))
//
// サインアップ・ログインにはIP単位のRateLimit(Auth)を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（プリフライトはここで応答する）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewRecoveryMiddleware(logger))

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	placeHandler := NewPlaceHandler(deps.PlaceService, deps.Images, deps.ImageMaxBytes)
	userHandler := NewUserHandler(deps.UserService, deps.Images, deps.ImageMaxBytes)

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- アップロード画像 ---
	if deps.ImageDir != "" {
		r.Get(imagesRoute+"/*", imageFileHandler(deps.ImageDir))
	}

	// --- 認証不要のルート ---
	r.Get("/api/places/{pid}", placeHandler.GetPlace)
	r.Get("/api/places/user/{uid}", placeHandler.ListPlacesByUser)
	r.Get("/api/users", userHandler.ListUsers)

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())

		r.Post("/api/users/signup", userHandler.Signup)
		r.Post("/api/users/login", userHandler.Login)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, logger))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/api/places", placeHandler.CreatePlace)
		r.Patch("/api/places/{pid}", placeHandler.UpdatePlace)
		r.Delete("/api/places/{pid}", placeHandler.DeletePlace)
	})

	return r
}

// imageFileHandler は保存済み画像を配信する。ディレクトリ一覧は返さない。
func imageFileHandler(dir string) http.HandlerFunc {
	fs := http.StripPrefix(imagesRoute+"/", http.FileServer(http.Dir(dir)))
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, imagesRoute+"/")
		// サブディレクトリと一時ファイル（ドット始まり）は配信しない
		if name == "" || strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
			notFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}
}
