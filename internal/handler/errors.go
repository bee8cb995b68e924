package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/placeshare/internal/middleware"
	"github.com/hitoshi/placeshare/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// handleServiceError はサービス層から返されたエラーをHTTPレスポンスに変換する。
// 内部原因はログにのみ出力する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode() >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "request failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("message", apiErr.ResponseMessage()),
				slog.Any("error", apiErr.Err),
			)
		}
		middleware.WriteAPIError(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// notFound は未定義のルートとメソッドに404を返す。
func notFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteAPIError(w, model.NewRouteNotFoundError())
}
