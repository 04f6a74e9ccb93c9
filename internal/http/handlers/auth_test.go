package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/apperr"
	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/http/handlers"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	registerFn func(ctx context.Context, in auth.RegisterInput) (auth.Session, error)
	loginFn    func(ctx context.Context, email, password string) (auth.Session, error)
	profileFn  func(ctx context.Context, id auth.Identity) (account.Profile, error)
	validateFn func(token string) (auth.Identity, error)
}

func (f *fakeAuth) Register(ctx context.Context, in auth.RegisterInput) (auth.Session, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, in)
	}
	return auth.Session{}, nil
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (auth.Session, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return auth.Session{}, nil
}

func (f *fakeAuth) Profile(ctx context.Context, id auth.Identity) (account.Profile, error) {
	if f.profileFn != nil {
		return f.profileFn(ctx, id)
	}
	return account.Profile{}, nil
}

func (f *fakeAuth) RequireAuthenticated(token string) (auth.Identity, error) {
	if f.validateFn != nil {
		return f.validateFn(token)
	}
	return auth.Identity{}, apperr.Authentication("Not authorized, token failed")
}

func (f *fakeAuth) RequirePrivileged(token string) (auth.Identity, error) {
	id, err := f.RequireAuthenticated(token)
	if err != nil {
		return auth.Identity{}, err
	}
	if !id.IsAdmin {
		return auth.Identity{}, apperr.Authorization("Not authorized as an admin")
	}
	return id, nil
}

func setupAuthRouter(f *fakeAuth) *gin.Engine {
	h := handlers.NewAuthHandler(f, nil)
	m := middlewares.NewAuthMiddleware(f)

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.POST("/api/users/register", h.Register)
	r.POST("/api/users/login", h.Login)
	r.GET("/api/users/profile", m.RequireAuth(), h.Profile)
	return r
}

func doJSON(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error handlers.APIError `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.APIError {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body not JSON: %v body=%s", err, w.Body.String())
	}
	return body.Error
}

func TestRegisterHandler(t *testing.T) {
	session := auth.Session{
		Token:     "tok",
		ExpiresAt: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		Identity:  auth.Identity{AccountID: "u1", Email: "a@x.com", Name: "A"},
	}

	tests := []struct {
		name       string
		body       string
		registerFn func(ctx context.Context, in auth.RegisterInput) (auth.Session, error)
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name: "created",
			body: `{"name":"A","email":"a@x.com","password":"secret1"}`,
			registerFn: func(_ context.Context, in auth.RegisterInput) (auth.Session, error) {
				if in.IsAdmin {
					t.Errorf("isAdmin should default to false")
				}
				return session, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short_password",
			body:       `{"name":"A","email":"a@x.com","password":"abc"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "password_too_long",
			body:       `{"name":"A","email":"a@x.com","password":"` + strings.Repeat("p", 73) + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "bad_email",
			body:       `{"name":"A","email":"nope","password":"secret1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name: "user_exists",
			body: `{"name":"A","email":"a@x.com","password":"secret1"}`,
			registerFn: func(context.Context, auth.RegisterInput) (auth.Session, error) {
				return auth.Session{}, apperr.Validation("User already exists")
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "User already exists",
		},
		{
			name: "insert_race",
			body: `{"name":"A","email":"a@x.com","password":"secret1"}`,
			registerFn: func(context.Context, auth.RegisterInput) (auth.Session, error) {
				return auth.Session{}, apperr.Conflict("User already exists", account.ErrEmailTaken)
			},
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name: "storage_down",
			body: `{"name":"A","email":"a@x.com","password":"secret1"}`,
			registerFn: func(context.Context, auth.RegisterInput) (auth.Session, error) {
				return auth.Session{}, apperr.Internal("Could not create user", context.DeadlineExceeded)
			},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Could not create user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupAuthRouter(&fakeAuth{registerFn: tt.registerFn})
			w := doJSON(r, http.MethodPost, "/api/users/register", tt.body, nil)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusCreated {
				var got auth.Session
				if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
					t.Fatalf("bad body: %v", err)
				}
				if got.Token != "tok" || got.Identity.AccountID != "u1" {
					t.Fatalf("unexpected session %+v", got)
				}
				return
			}

			apiErr := decodeError(t, w)
			if tt.wantCode != "" && apiErr.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", apiErr.Code, tt.wantCode)
			}
			if tt.wantMsg != "" && apiErr.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
			if apiErr.RequestID == "" {
				t.Fatalf("error envelope should carry the request id")
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	f := &fakeAuth{
		loginFn: func(_ context.Context, email, password string) (auth.Session, error) {
			if email == "a@x.com" && password == "secret1" {
				return auth.Session{Token: "tok", Identity: auth.Identity{AccountID: "u1"}}, nil
			}
			return auth.Session{}, apperr.Authentication("Invalid email or password")
		},
	}
	r := setupAuthRouter(f)

	w := doJSON(r, http.MethodPost, "/api/users/login", `{"email":"a@x.com","password":"secret1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/api/users/login", `{"email":"a@x.com","password":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if msg := decodeError(t, w).Message; msg != "Invalid email or password" {
		t.Fatalf("message = %q", msg)
	}
}

func TestProfileHandler(t *testing.T) {
	f := &fakeAuth{
		validateFn: func(token string) (auth.Identity, error) {
			switch token {
			case "good":
				return auth.Identity{AccountID: "u1"}, nil
			case "gone":
				return auth.Identity{AccountID: "u2"}, nil
			}
			return auth.Identity{}, apperr.Authentication("Not authorized, token failed")
		},
		profileFn: func(_ context.Context, id auth.Identity) (account.Profile, error) {
			if id.AccountID == "u1" {
				return account.Profile{ID: "u1", Name: "A", Email: "a@x.com"}, nil
			}
			return account.Profile{}, apperr.NotFound("User")
		},
	}
	r := setupAuthRouter(f)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "ok", token: "good", status: http.StatusOK},
		{name: "missing_token", status: http.StatusUnauthorized},
		{name: "bad_token", token: "bad", status: http.StatusUnauthorized},
		{name: "account_deleted", token: "gone", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.token != "" {
				headers["Authorization"] = "Bearer " + tt.token
			}
			w := doJSON(r, http.MethodGet, "/api/users/profile", "", headers)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.status, w.Body.String())
			}
		})
	}
}
