// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"hsarchitects/internal/auth"
	"hsarchitects/internal/handlers"
	"hsarchitects/internal/middleware"
	"hsarchitects/internal/session"
	"hsarchitects/internal/store/memstore"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

type testRouter struct {
	handler  chi.Router
	sessions *session.MemoryStore
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()
	repos := memstore.New()
	sessions := session.NewMemoryStore()
	passwords := auth.NewPasswordsWith(auth.Bcrypt{Cost: 4})
	authenticator := auth.NewAuthenticator(repos.Users, passwords, "admin", "super-secret-pass")

	return &testRouter{
		handler: New(Deps{
			Sessions:       sessions,
			Content:        handlers.NewContent(repos),
			Users:          handlers.NewUsers(repos.Users, passwords, sessions),
			Auth:           handlers.NewAuth(authenticator, sessions, repos.Users, "HS Architects"),
			Media:          handlers.NewMedia(nil),
			AllowedOrigins: []string{"https://hs.test"},
		}),
		sessions: sessions,
	}
}

// login opens a session directly in the store and returns the request
// cookies an authenticated browser would send.
func (tr *testRouter) login(t *testing.T, role string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	data := &session.Data{UserID: "u-" + role, Username: role, Role: role}
	if _, err := tr.sessions.Create(context.Background(), w, data); err != nil {
		t.Fatal(err)
	}
	return append(w.Result().Cookies(), &http.Cookie{Name: middleware.CSRFCookieName, Value: "token"})
}

func (tr *testRouter) serve(method, target, body string, cookies []*http.Cookie, csrf string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	if csrf != "" {
		req.Header.Set(middleware.CSRFHeaderName, csrf)
	}
	w := httptest.NewRecorder()
	tr.handler.ServeHTTP(w, req)
	return w
}

func TestHealthThroughRouter(t *testing.T) {
	tr := newTestRouter(t)
	w := tr.serve(http.MethodGet, "/health", "", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("GET /health: got %d, want 200", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestPublicReads(t *testing.T) {
	tr := newTestRouter(t)
	for _, target := range []string{
		"/api/categories",
		"/api/projects",
		"/api/home-grid",
		"/api/contact",
		"/api/settings",
		"/api/settings?key=site_title",
	} {
		t.Run(target, func(t *testing.T) {
			w := tr.serve(http.MethodGet, target, "", nil, "")
			if w.Code != http.StatusOK {
				t.Errorf("got %d, want 200: %s", w.Code, w.Body.String())
			}
		})
	}

	w := tr.serve(http.MethodGet, "/api/categories/unknown", "", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown category: got %d, want 404", w.Code)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	tr := newTestRouter(t)
	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/categories"},
		{http.MethodPut, "/api/projects"},
		{http.MethodDelete, "/api/categories?id=x"},
		{http.MethodGet, "/api/messages"},
		{http.MethodPut, "/api/home-grid"},
		{http.MethodPut, "/api/contact"},
		{http.MethodPut, "/api/settings"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/auth/session"},
		{http.MethodPost, "/api/cloudinary/upload-image"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := tr.serve(tt.method, tt.target, "{}", nil, "")
			if w.Code != http.StatusUnauthorized {
				t.Errorf("got %d, want 401", w.Code)
			}
		})
	}
}

func TestUsersRequireAdmin(t *testing.T) {
	tr := newTestRouter(t)

	editor := tr.login(t, "editor")
	if w := tr.serve(http.MethodGet, "/api/users", "", editor, ""); w.Code != http.StatusForbidden {
		t.Errorf("editor GET /api/users: got %d, want 403", w.Code)
	}
	if w := tr.serve(http.MethodPost, "/api/users/2fa-reset?id=x", "", editor, "token"); w.Code != http.StatusForbidden {
		t.Errorf("editor 2fa reset: got %d, want 403", w.Code)
	}
	// Editors still manage content.
	if w := tr.serve(http.MethodGet, "/api/messages", "", editor, ""); w.Code != http.StatusOK {
		t.Errorf("editor GET /api/messages: got %d, want 200", w.Code)
	}

	admin := tr.login(t, "admin")
	if w := tr.serve(http.MethodGet, "/api/users", "", admin, ""); w.Code != http.StatusOK {
		t.Errorf("admin GET /api/users: got %d, want 200", w.Code)
	}
}

func TestCSRFOnAuthenticatedWrites(t *testing.T) {
	tr := newTestRouter(t)
	cookies := tr.login(t, "admin")
	body := `{"name":"Residential","slug":"residential","description":"Homes"}`

	w := tr.serve(http.MethodPost, "/api/categories", body, cookies, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("missing token: got %d, want 403", w.Code)
	}

	w = tr.serve(http.MethodPost, "/api/categories", body, cookies, "wrong")
	if w.Code != http.StatusForbidden {
		t.Errorf("wrong token: got %d, want 403", w.Code)
	}

	w = tr.serve(http.MethodPost, "/api/categories", body, cookies, "token")
	if w.Code != http.StatusCreated {
		t.Errorf("valid token: got %d, want 201: %s", w.Code, w.Body.String())
	}

	w = tr.serve(http.MethodGet, "/api/categories/residential", "", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("created category not readable: got %d", w.Code)
	}
}

func TestAnonymousWrites(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.serve(http.MethodPost, "/api/messages", `{"email":"a@b.co","message":"Hello"}`, nil, "")
	if w.Code != http.StatusCreated {
		t.Errorf("contact form: got %d, want 201: %s", w.Code, w.Body.String())
	}

	w = tr.serve(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"super-secret-pass"}`, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("login: got %d, want 200: %s", w.Code, w.Body.String())
	}
	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			found = true
		}
	}
	if !found {
		t.Error("login did not set the session cookie")
	}
}

func TestMessageRateLimit(t *testing.T) {
	tr := newTestRouter(t)
	body := `{"email":"a@b.co","message":"Hello"}`

	var last int
	for i := 0; i <= messageLimit; i++ {
		last = tr.serve(http.MethodPost, "/api/messages", body, nil, "").Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("request %d: got %d, want 429", messageLimit+1, last)
	}
}

func TestCORSPreflight(t *testing.T) {
	tr := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/categories", nil)
	req.Header.Set("Origin", "https://hs.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	tr.handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://hs.test" {
		t.Errorf("allow-origin: got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow-credentials: got %q", got)
	}
}
