package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"hsarchitects/internal/auth"
	"hsarchitects/internal/middleware"
	"hsarchitects/internal/models"
	"hsarchitects/internal/session"
	"hsarchitects/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	authenticator *auth.Authenticator
	sessions      session.Manager
	users         store.UserRepository
	issuer        string
}

// NewAuth creates a new Auth handler group. issuer is the name shown in
// authenticator apps.
func NewAuth(authenticator *auth.Authenticator, sessions session.Manager, users store.UserRepository, issuer string) *Auth {
	return &Auth{
		authenticator: authenticator,
		sessions:      sessions,
		users:         users,
		issuer:        issuer,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type loginResponse struct {
	Success           bool   `json:"success"`
	Role              string `json:"role,omitempty"`
	Name              string `json:"name,omitempty"`
	Message           string `json:"message,omitempty"`
	TwoFactorRequired bool   `json:"twoFactorRequired,omitempty"`
}

const msgInvalidLogin = "Invalid username or password"

// Login checks the credentials and opens a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeLogin(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, loginResponse{Message: msgInvalidBody})
		return
	}

	id, err := a.authenticator.Login(r.Context(), req.Username, req.Password, strings.TrimSpace(req.Code))
	switch {
	case errors.Is(err, auth.ErrTwoFactorRequired):
		writeJSON(w, http.StatusUnauthorized, loginResponse{TwoFactorRequired: true})
		return
	case errors.Is(err, auth.ErrInvalidTwoFactorCode):
		writeJSON(w, http.StatusUnauthorized, loginResponse{TwoFactorRequired: true, Message: "Invalid authentication code"})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		slog.Info("login failed", "username", models.NormalizeUsername(req.Username), "remote_addr", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, loginResponse{Message: msgInvalidLogin})
		return
	case err != nil:
		slog.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, loginResponse{Message: "Server error"})
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    id.UserID,
		Username:  id.Username,
		Name:      id.Name,
		Role:      string(id.Role),
		Superuser: id.Superuser,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, loginResponse{Message: "Server error"})
		return
	}

	slog.Info("login succeeded", "username", id.Username, "role", id.Role, "superuser", id.Superuser)
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Role: string(id.Role), Name: id.Name})
}

func decodeLogin(w http.ResponseWriter, r *http.Request, dst *loginRequest) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(body).Decode(dst)
}

// Session describes the current session. The CSRF token is echoed so the
// admin UI can send it back in X-CSRF-Token.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	twoFactor := false
	if sess.UserID != "" {
		user, err := a.users.FindByID(r.Context(), sess.UserID)
		if err != nil {
			slog.Error("find session user failed", "error", err)
		} else if user != nil {
			twoFactor = user.TOTPEnabled
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated":    true,
		"username":         sess.Username,
		"name":             sess.Name,
		"role":             sess.Role,
		"superuser":        sess.Superuser,
		"twoFactorEnabled": twoFactor,
		"csrfToken":        middleware.GetCSRFToken(r),
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	writeSuccess(w)
}

// storedUser loads the stored account behind the session. The environment
// super-admin has none and cannot enroll in 2FA.
func (a *Auth) storedUser(w http.ResponseWriter, r *http.Request) *models.User {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil
	}
	if sess.UserID == "" {
		writeError(w, http.StatusBadRequest, "Two-factor authentication is not available for the built-in administrator")
		return nil
	}
	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("find user for 2fa failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return nil
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return nil
	}
	return user
}

// TwoFASetup generates a TOTP secret and returns it with a QR code. The
// secret is stored but not active until TwoFAEnable confirms a code.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	user := a.storedUser(w, r)
	if user == nil {
		return
	}
	if user.TOTPEnabled {
		writeError(w, http.StatusBadRequest, "Two-factor authentication is already enabled")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.issuer,
		AccountName: user.Username,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := a.users.SetTOTPSecret(r.Context(), user.ID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":     key.Secret(),
		"otpauthUrl": key.URL(),
		"qrCode":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAEnable activates the pending secret once the user proves they can
// produce codes from it.
func (a *Auth) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := a.storedUser(w, r)
	if user == nil {
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "Two-factor setup has not been started")
		return
	}
	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		writeError(w, http.StatusBadRequest, "Invalid authentication code")
		return
	}

	if err := a.users.EnableTOTP(r.Context(), user.ID); err != nil {
		slog.Error("enable totp failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	slog.Info("2fa enabled", "username", user.Username)
	writeSuccess(w)
}

// TwoFADisable turns 2FA off after checking a current code.
func (a *Auth) TwoFADisable(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := a.storedUser(w, r)
	if user == nil {
		return
	}
	if !user.TOTPEnabled || user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "Two-factor authentication is not enabled")
		return
	}
	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		writeError(w, http.StatusBadRequest, "Invalid authentication code")
		return
	}

	if err := a.users.ResetTOTP(r.Context(), user.ID); err != nil {
		slog.Error("disable totp failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	slog.Info("2fa disabled", "username", user.Username)
	writeSuccess(w)
}
