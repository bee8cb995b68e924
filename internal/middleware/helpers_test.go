package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/hitoshi/placeshare/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	if buf == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// mockVerifier はTokenVerifierのテスト用実装。
type mockVerifier struct {
	verifyFn func(token string) (*model.CallerIdentity, error)
}

func (m *mockVerifier) Verify(token string) (*model.CallerIdentity, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil, errors.New("not configured")
}

// tokenVerifier は "valid-token" のみを受け付けるVerifierを返す。
func tokenVerifier(userID string) *mockVerifier {
	return &mockVerifier{
		verifyFn: func(token string) (*model.CallerIdentity, error) {
			if token == "valid-token" {
				return &model.CallerIdentity{UserID: userID, Email: userID + "@test.com"}, nil
			}
			return nil, errors.New("signature is invalid")
		},
	}
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body.Message
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})
