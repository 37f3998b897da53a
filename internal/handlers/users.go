// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"hsarchitects/internal/auth"
	"hsarchitects/internal/middleware"
	"hsarchitects/internal/models"
	"hsarchitects/internal/session"
	"hsarchitects/internal/store"
)

// minPasswordLen applies to new passwords only; existing hashes are never
// re-checked.
const minPasswordLen = 8

// Users groups the user management handlers. All of them require the admin
// role.
type Users struct {
	users     store.UserRepository
	passwords *auth.Passwords
	sessions  session.Manager
}

// NewUsers creates a new Users handler group.
func NewUsers(users store.UserRepository, passwords *auth.Passwords, sessions session.Manager) *Users {
	return &Users{users: users, passwords: passwords, sessions: sessions}
}

type userCreateRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=200"`
	Name     string `json:"name" validate:"max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=admin editor"`
}

type userUpdateRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password"`
}

// List returns every stored user, newest first, without password hashes.
func (u *Users) List(w http.ResponseWriter, r *http.Request) {
	list, err := u.users.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create adds a stored user. Usernames are compared case-insensitively.
func (u *Users) Create(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = models.NormalizeUsername(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	existing, err := u.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		slog.Error("find user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "Username already exists")
		return
	}

	hash, err := u.passwords.Hash(req.Password)
	if err != nil {
		slog.Error("hash password failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	role := models.RoleEditor
	if req.Role != "" {
		role = models.Role(req.Role)
	}

	created, err := u.users.Create(r.Context(), &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		writeStoreError(w, err, "create user", "User not found", "Username already exists", "Failed to create user")
		return
	}

	slog.Info("user created", "admin", actor(r), "new_user", created.Username, "role", created.Role)
	writeJSON(w, http.StatusCreated, created)
}

// Update changes a user's name, role, active flag or password. Omitted
// fields keep their values. Deactivation, role changes and password changes
// revoke the user's sessions.
func (u *Users) Update(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if req.Role != nil && !models.Role(*req.Role).Valid() {
		writeError(w, http.StatusBadRequest, "role must be one of: admin editor")
		return
	}
	if req.Password != nil && *req.Password != "" && len(*req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if isSelf(r, req.ID) && req.IsActive != nil && !*req.IsActive {
		writeError(w, http.StatusForbidden, "Cannot deactivate your own account")
		return
	}

	user, err := u.users.FindByID(r.Context(), req.ID)
	if err != nil {
		slog.Error("find user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	revoke := false
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil && models.Role(*req.Role) != user.Role {
		user.Role = models.Role(*req.Role)
		revoke = true
	}
	if req.IsActive != nil {
		if user.IsActive && !*req.IsActive {
			revoke = true
		}
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := u.passwords.Hash(*req.Password)
		if err != nil {
			slog.Error("hash password failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
		user.PasswordHash = hash
		revoke = true
	}

	updated, err := u.users.Update(r.Context(), user)
	if err != nil {
		writeStoreError(w, err, "update user", "User not found", "", "Failed to update user")
		return
	}
	if revoke {
		u.revokeSessions(r.Context(), updated.ID)
	}

	slog.Info("user updated", "admin", actor(r), "user", updated.Username)
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a stored user and ends their sessions.
func (u *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if isSelf(r, id) {
		writeError(w, http.StatusForbidden, "Cannot delete your own account")
		return
	}
	if err := u.users.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "delete user", "User not found", "", "Failed to delete user")
		return
	}
	u.revokeSessions(r.Context(), id)

	slog.Info("user deleted", "admin", actor(r), "user_id", id)
	writeSuccess(w)
}

// ResetTwoFactor clears another user's TOTP enrollment.
func (u *Users) ResetTwoFactor(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if isSelf(r, id) {
		writeError(w, http.StatusForbidden, "Cannot reset your own 2FA")
		return
	}
	if err := u.users.ResetTOTP(r.Context(), id); err != nil {
		writeStoreError(w, err, "reset 2fa", "User not found", "", "Failed to reset two-factor authentication")
		return
	}

	slog.Info("2fa reset by admin", "admin", actor(r), "target_user", id)
	writeSuccess(w)
}

// revokeSessions logs failures only; the write itself already succeeded.
func (u *Users) revokeSessions(ctx context.Context, userID string) {
	if err := u.sessions.DestroyUser(ctx, userID); err != nil {
		slog.Warn("revoke user sessions failed", "error", err, "user_id", userID)
	}
}

func isSelf(r *http.Request, userID string) bool {
	sess := middleware.SessionFromCtx(r.Context())
	return sess != nil && sess.UserID != "" && sess.UserID == userID
}

func actor(r *http.Request) string {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		return sess.Username
	}
	return ""
}
