package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityHeadersMiddleware_CommonHeaders(t *testing.T) {
	handler := NewSecurityHeadersMiddleware()(okHandler)

	for _, path := range []string{"/uploads/images/a.png", "/api/users"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		resp := w.Result()
		tests := []struct {
			header string
			want   string
		}{
			{"X-Content-Type-Options", "nosniff"},
			{"X-Frame-Options", "DENY"},
			{"Referrer-Policy", "strict-origin-when-cross-origin"},
			{"Cross-Origin-Resource-Policy", "cross-origin"},
		}
		for _, tt := range tests {
			if got := resp.Header.Get(tt.header); got != tt.want {
				t.Errorf("%s: %s = %q, want %q", path, tt.header, got, tt.want)
			}
		}
	}
}

// トークンを返し得るAPIレスポンスはキャッシュ禁止、画像はキャッシュ可能。
func TestSecurityHeadersMiddleware_APIResponsesNotCached(t *testing.T) {
	handler := NewSecurityHeadersMiddleware()(okHandler)

	tests := []struct {
		path      string
		wantCache string
		wantCSP   string
	}{
		{"/api/users/login", "no-store", apiContentSecurityPolicy},
		{"/api/places/p1", "no-store", apiContentSecurityPolicy},
		{"/uploads/images/a.png", "", ""},
		{"/apiary", "", ""},
		{"/health", "", ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

		if got := w.Header().Get("Cache-Control"); got != tt.wantCache {
			t.Errorf("%s: Cache-Control = %q, want %q", tt.path, got, tt.wantCache)
		}
		if got := w.Header().Get("Content-Security-Policy"); got != tt.wantCSP {
			t.Errorf("%s: Content-Security-Policy = %q, want %q", tt.path, got, tt.wantCSP)
		}
	}
}
