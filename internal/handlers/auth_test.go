package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"hsarchitects/internal/middleware"
	"hsarchitects/internal/session"
)

type loginBody struct {
	Success           bool   `json:"success"`
	Role              string `json:"role"`
	Name              string `json:"name"`
	Message           string `json:"message"`
	TwoFactorRequired bool   `json:"twoFactorRequired"`
}

func login(t *testing.T, env *testEnv, body map[string]any) (*httptest.ResponseRecorder, loginBody) {
	t.Helper()
	rec := do(t, env.auth.Login, http.MethodPost, "/api/auth/login", body, nil)
	return rec, decode[loginBody](t, rec)
}

func TestLoginSuperuserAlwaysSucceeds(t *testing.T) {
	env := newTestEnv(t)
	// A stored user with the same name must not shadow the env super-admin.
	createUser(t, env, testAdminUser, "stored-password", "editor")

	rec, body := login(t, env, map[string]any{"username": testAdminUser, "password": testAdminPass})
	expectStatus(t, rec, http.StatusOK)
	if !body.Success || body.Role != "admin" || body.Name != "Administrator" {
		t.Errorf("body = %+v", body)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != session.CookieName || !cookies[0].HttpOnly {
		t.Fatalf("session cookie = %+v", cookies)
	}
	if env.sessions.Len() != 1 {
		t.Errorf("sessions = %d, want 1", env.sessions.Len())
	}
}

func TestLoginStoredUser(t *testing.T) {
	env := newTestEnv(t)
	createUser(t, env, "alice", "alice-password", "editor")

	rec, body := login(t, env, map[string]any{"username": "ALICE", "password": "alice-password"})
	expectStatus(t, rec, http.StatusOK)
	if !body.Success || body.Role != "editor" || body.Name != "Test alice" {
		t.Errorf("body = %+v", body)
	}

	rec, body = login(t, env, map[string]any{"username": "alice", "password": "wrong-password"})
	expectStatus(t, rec, http.StatusUnauthorized)
	if body.Success || body.Message != "Invalid username or password" {
		t.Errorf("body = %+v", body)
	}

	rec, _ = login(t, env, map[string]any{"username": "nobody", "password": "whatever"})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestLoginMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	rec := do(t, env.auth.Login, http.MethodPost, "/api/auth/login", "{", nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestTwoFactorFlow(t *testing.T) {
	env := newTestEnv(t)
	u := createUser(t, env, "alice", "alice-password", "editor")
	self := &session.Data{UserID: u.ID, Username: u.Username, Role: "editor"}

	rec := do(t, env.auth.TwoFASetup, http.MethodPost, "/api/auth/2fa/setup", nil, self)
	expectStatus(t, rec, http.StatusOK)
	setup := decode[map[string]string](t, rec)
	secret := setup["secret"]
	if secret == "" || !strings.HasPrefix(setup["qrCode"], "data:image/png;base64,") {
		t.Fatalf("setup = %v", setup)
	}
	if !strings.Contains(setup["otpauthUrl"], "issuer=HS") {
		t.Errorf("otpauthUrl = %q", setup["otpauthUrl"])
	}

	rec = do(t, env.auth.TwoFAEnable, http.MethodPost, "/api/auth/2fa/enable", map[string]any{"code": "000000"}, self)
	expectError(t, rec, http.StatusBadRequest, "Invalid authentication code")

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	rec = do(t, env.auth.TwoFAEnable, http.MethodPost, "/api/auth/2fa/enable", map[string]any{"code": code}, self)
	expectStatus(t, rec, http.StatusOK)

	// Password alone is no longer enough.
	rec, body := login(t, env, map[string]any{"username": "alice", "password": "alice-password"})
	expectStatus(t, rec, http.StatusUnauthorized)
	if !body.TwoFactorRequired || body.Success {
		t.Errorf("body = %+v", body)
	}

	rec, _ = login(t, env, map[string]any{"username": "alice", "password": "alice-password", "code": "000000"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec, body = login(t, env, map[string]any{"username": "alice", "password": "alice-password", "code": code})
	expectStatus(t, rec, http.StatusOK)
	if !body.Success {
		t.Errorf("body = %+v", body)
	}

	rec = do(t, env.auth.TwoFASetup, http.MethodPost, "/api/auth/2fa/setup", nil, self)
	expectError(t, rec, http.StatusBadRequest, "Two-factor authentication is already enabled")

	rec = do(t, env.auth.TwoFADisable, http.MethodPost, "/api/auth/2fa/disable", map[string]any{"code": code}, self)
	expectStatus(t, rec, http.StatusOK)

	rec, _ = login(t, env, map[string]any{"username": "alice", "password": "alice-password"})
	expectStatus(t, rec, http.StatusOK)
}

func TestTwoFactorUnavailableForSuperuser(t *testing.T) {
	env := newTestEnv(t)
	rec := do(t, env.auth.TwoFASetup, http.MethodPost, "/api/auth/2fa/setup", nil, adminSession)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestSessionAndLogout(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := login(t, env, map[string]any{"username": testAdminUser, "password": testAdminPass})
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookie)
	data, err := env.sessions.Get(context.Background(), req)
	if err != nil || data == nil {
		t.Fatalf("session lookup: %v, %v", data, err)
	}
	req = req.WithContext(middleware.WithSession(req.Context(), data))
	w := httptest.NewRecorder()
	env.auth.Session(w, req)
	expectStatus(t, w, http.StatusOK)
	info := decode[map[string]any](t, w)
	if info["username"] != testAdminUser || info["role"] != "admin" || info["superuser"] != true {
		t.Errorf("session = %v", info)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	env.auth.Logout(w, req)
	expectStatus(t, w, http.StatusOK)
	if env.sessions.Len() != 0 {
		t.Errorf("sessions = %d after logout", env.sessions.Len())
	}
}
