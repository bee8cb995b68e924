package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/placeshare/internal/model"
	"github.com/hitoshi/placeshare/internal/user"
)

// --- GET /api/users ---

func TestUserHandler_ListUsers_Success(t *testing.T) {
	svc := &mockUserService{
		listUsersFn: func(ctx context.Context) ([]userResponse, error) {
			return []userResponse{
				{ID: "u1", Name: "Max", Email: "max@test.com", Image: "uploads/images/max.png", Places: []string{"p1"}},
			}, nil
		},
	}
	h := NewUserHandler(svc, &mockImageStore{}, 0)

	w := httptest.NewRecorder()
	h.ListUsers(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("response must not contain password: %s", w.Body.String())
	}

	var body struct {
		Users []map[string]any `json:"users"`
	}
	decodeBody(t, w, &body)
	if len(body.Users) != 1 {
		t.Fatalf("len = %d, want 1", len(body.Users))
	}
	for _, key := range []string{"id", "name", "email", "image", "places"} {
		if _, ok := body.Users[0][key]; !ok {
			t.Errorf("user missing %q", key)
		}
	}
}

func TestUserHandler_ListUsers_Empty(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, &mockImageStore{}, 0)

	w := httptest.NewRecorder()
	h.ListUsers(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	if strings.TrimSpace(w.Body.String()) != `{"users":[]}` {
		t.Errorf("body = %s, want {\"users\":[]}", w.Body.String())
	}
}

// --- POST /api/users/signup ---

func TestUserHandler_Signup_Success(t *testing.T) {
	var got user.SignupInput
	svc := &mockUserService{
		signupFn: func(ctx context.Context, in user.SignupInput) (*authResponse, error) {
			got = in
			return &authResponse{UserID: "u1", Email: "a@b.com", Token: "signed-token"}, nil
		},
	}
	h := NewUserHandler(svc, &mockImageStore{}, 0)

	req := newMultipartRequest(t, http.MethodPost, "/api/users/signup", map[string]string{
		"name":     "Max",
		"email":    "a@b.com",
		"password": "secret1",
	}, pngBytes)
	w := httptest.NewRecorder()
	h.Signup(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", w.Code, w.Body.String())
	}
	if got.Name != "Max" || got.Email != "a@b.com" || got.Password != "secret1" || got.Image == "" {
		t.Errorf("input = %+v", got)
	}

	var body map[string]string
	decodeBody(t, w, &body)
	if body["userId"] != "u1" || body["email"] != "a@b.com" || body["token"] != "signed-token" {
		t.Errorf("body = %v", body)
	}
}

func TestUserHandler_Signup_DuplicateRemovesUpload(t *testing.T) {
	svc := &mockUserService{
		signupFn: func(ctx context.Context, in user.SignupInput) (*authResponse, error) {
			return nil, model.NewValidationError("User exists already, please log in instead")
		},
	}
	images := &mockImageStore{}
	h := NewUserHandler(svc, images, 0)

	req := newMultipartRequest(t, http.MethodPost, "/api/users/signup", map[string]string{
		"name":     "Max",
		"email":    "a@b.com",
		"password": "secret1",
	}, pngBytes)
	w := httptest.NewRecorder()
	h.Signup(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	if msg := parseMessage(t, w); msg != "User exists already, please log in instead" {
		t.Errorf("message = %q", msg)
	}
	if len(images.removed) != 1 {
		t.Errorf("removed = %v, want 1 entry", images.removed)
	}
}

// --- POST /api/users/login ---

func TestUserHandler_Login_Success(t *testing.T) {
	var got user.LoginInput
	svc := &mockUserService{
		loginFn: func(ctx context.Context, in user.LoginInput) (*authResponse, error) {
			got = in
			return &authResponse{UserID: "u1", Email: "a@b.com", Token: "signed-token"}, nil
		},
	}
	h := NewUserHandler(svc, &mockImageStore{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(`{"email":"a@b.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.Email != "a@b.com" || got.Password != "secret1" {
		t.Errorf("input = %+v", got)
	}
	var body map[string]string
	decodeBody(t, w, &body)
	if body["token"] != "signed-token" {
		t.Errorf("token = %q", body["token"])
	}
}

func TestUserHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"アカウントなし", model.NewAuthError(http.StatusForbidden, "Invalid credentials, could not log you in."), http.StatusForbidden},
		{"パスワード不一致", model.NewAuthError(http.StatusUnauthorized, "Invalid credentials, could not log you in."), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{
				loginFn: func(ctx context.Context, in user.LoginInput) (*authResponse, error) {
					return nil, tt.err
				},
			}
			h := NewUserHandler(svc, &mockImageStore{}, 0)

			req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(`{"email":"a@b.com","password":"nope"}`))
			w := httptest.NewRecorder()
			h.Login(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if msg := parseMessage(t, w); msg != "Invalid credentials, could not log you in." {
				t.Errorf("message = %q", msg)
			}
		})
	}
}

func TestUserHandler_Login_InvalidJSON(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, &mockImageStore{}, 0)

	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(`not json`)))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}
