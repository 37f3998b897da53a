// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pquerna/otp/totp"

	"hsarchitects/internal/models"
)

var (
	// ErrInvalidCredentials covers unknown users, wrong passwords and
	// deactivated accounts alike.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTwoFactorRequired is returned when the password is correct but the
	// account has 2FA enabled and no code was supplied.
	ErrTwoFactorRequired = errors.New("two-factor code required")

	// ErrInvalidTwoFactorCode is returned when the supplied TOTP code is wrong.
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")
)

// SuperuserName is the display name of the environment-configured admin.
const SuperuserName = "Administrator"

// Identity is the authenticated principal stored in the session.
type Identity struct {
	UserID    string
	Username  string
	Name      string
	Role      models.Role
	Superuser bool
}

// IsAdmin reports whether the identity may manage users.
func (i *Identity) IsAdmin() bool {
	return i.Superuser || i.Role == models.RoleAdmin
}

// UserLookup is the part of the user repository the authenticator needs.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, u *models.User) (*models.User, error)
}

// Authenticator checks login attempts against the environment super-admin
// first and the stored users second.
type Authenticator struct {
	users         UserLookup
	passwords     *Passwords
	adminUsername string
	adminPassword string

	dummyOnce sync.Once
	dummy     string
}

// NewAuthenticator creates an Authenticator. The environment super-admin is
// disabled when adminUsername or adminPassword is empty.
func NewAuthenticator(users UserLookup, passwords *Passwords, adminUsername, adminPassword string) *Authenticator {
	return &Authenticator{
		users:         users,
		passwords:     passwords,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

// Passwords returns the password hasher used for stored users.
func (a *Authenticator) Passwords() *Passwords {
	return a.passwords
}

// Login verifies username, password and, when the account requires it, the
// TOTP code.
func (a *Authenticator) Login(ctx context.Context, username, password, code string) (*Identity, error) {
	if a.matchesSuperuser(username, password) {
		return &Identity{
			Username:  a.adminUsername,
			Name:      SuperuserName,
			Role:      models.RoleAdmin,
			Superuser: true,
		}, nil
	}

	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil || !user.IsActive {
		a.burn(password)
		return nil, ErrInvalidCredentials
	}

	ok, rehash, err := a.passwords.Verify(user.PasswordHash, password)
	if err != nil {
		slog.Warn("stored password hash unreadable", "user", user.Username, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if user.TOTPEnabled && user.TOTPSecret != nil {
		if code == "" {
			return nil, ErrTwoFactorRequired
		}
		if !totp.Validate(code, *user.TOTPSecret) {
			return nil, ErrInvalidTwoFactorCode
		}
	}

	if rehash {
		a.upgrade(ctx, user, password)
	}

	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	}, nil
}

// matchesSuperuser compares both fields in constant time and without
// short-circuiting.
func (a *Authenticator) matchesSuperuser(username, password string) bool {
	if a.adminUsername == "" || a.adminPassword == "" {
		return false
	}
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.adminUsername))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.adminPassword))
	return u&p == 1
}

// upgrade replaces a hash in a non-preferred scheme. Failure only costs the
// upgrade; the login still succeeds.
func (a *Authenticator) upgrade(ctx context.Context, user *models.User, password string) {
	hash, err := a.passwords.Hash(password)
	if err != nil {
		slog.Warn("password rehash failed", "user", user.Username, "error", err)
		return
	}
	user.PasswordHash = hash
	if _, err := a.users.Update(ctx, user); err != nil {
		slog.Warn("password rehash not saved", "user", user.Username, "error", err)
		return
	}
	slog.Info("password hash upgraded", "user", user.Username)
}

// burn spends roughly the cost of a real verification so unknown usernames
// do not answer faster than wrong passwords.
func (a *Authenticator) burn(password string) {
	a.dummyOnce.Do(func() {
		a.dummy, _ = a.passwords.Hash("not-a-real-password")
	})
	if a.dummy != "" {
		a.passwords.Verify(a.dummy, password)
	}
}
