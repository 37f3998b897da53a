package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hsarchitects/internal/session"
)

// newTestSession creates a session.Data value suitable for testing.
func newTestSession(role string) *session.Data {
	return &session.Data{
		UserID:   "u-1",
		Username: "maria",
		Name:     "Maria",
		Role:     role,
	}
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// stubSessions returns a fixed session, or an error.
type stubSessions struct {
	data *session.Data
	err  error
}

func (s stubSessions) Create(context.Context, http.ResponseWriter, *session.Data) (string, error) {
	return "", nil
}
func (s stubSessions) Get(context.Context, *http.Request) (*session.Data, error) { return s.data, s.err }
func (s stubSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	return nil
}
func (s stubSessions) DestroyUser(context.Context, string) error { return nil }

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession("admin")
		got := SessionFromCtx(WithSession(context.Background(), sess))
		if got != sess {
			t.Fatalf("got %+v, want %+v", got, sess)
		}
	})

	t.Run("returns nil without session", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestLoadSession(t *testing.T) {
	tests := []struct {
		name     string
		sessions stubSessions
		wantUser string
	}{
		{"session loaded", stubSessions{data: newTestSession("editor")}, "maria"},
		{"no session", stubSessions{}, ""},
		{"store error treated as anonymous", stubSessions{err: errors.New("valkey down")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			handler := LoadSession(tt.sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if s := SessionFromCtx(r.Context()); s != nil {
					gotUser = s.Username
				}
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/categories", nil))

			if gotUser != tt.wantUser {
				t.Errorf("user in context: got %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	t.Run("rejects anonymous with JSON 401", func(t *testing.T) {
		next, called := okHandler()
		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/categories", nil))

		if *called {
			t.Error("next handler should not be called")
		}
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q", ct)
		}
		if !strings.Contains(rr.Body.String(), `"error":"Unauthorized"`) {
			t.Errorf("body: got %q", rr.Body.String())
		}
	})

	t.Run("passes authenticated", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodPost, "/api/categories", nil)
		req = req.WithContext(WithSession(req.Context(), newTestSession("editor")))
		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, req)

		if !*called || rr.Code != http.StatusOK {
			t.Errorf("expected pass-through, got status %d", rr.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Data
		wantStatus int
	}{
		{"no session", nil, http.StatusForbidden},
		{"editor", newTestSession("editor"), http.StatusForbidden},
		{"admin", newTestSession("admin"), http.StatusOK},
		{"superuser", &session.Data{Username: "admin", Role: "admin", Superuser: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.sess != nil {
				req = req.WithContext(WithSession(req.Context(), tt.sess))
			}
			rr := httptest.NewRecorder()
			RequireAdmin(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if *called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("next called = %v", *called)
			}
		})
	}
}
