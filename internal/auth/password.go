// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package auth verifies admin-panel credentials: password hashing behind the
// Hasher interface, the environment super-admin, stored users and their
// optional TOTP second factor.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes passwords and verifies them against hashes in its own
// encoding.
type Hasher interface {
	// Name identifies the scheme ("argon2id", "bcrypt", ...).
	Name() string
	Hash(password string) (string, error)
	Verify(encoded, password string) (bool, error)
	// Owns reports whether encoded looks like a hash this scheme produced.
	Owns(encoded string) bool
}

// ErrMalformedHash is returned when a hash claims a scheme but cannot be
// parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// Argon2id hashes with the memory-hard Argon2id KDF and encodes results in
// the PHC string format: $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>.
type Argon2id struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2id is the parameter set used for new hashes.
var DefaultArgon2id = Argon2id{Time: 3, Memory: 64 * 1024, Threads: 2, KeyLen: 32, SaltLen: 16}

const argon2Prefix = "$argon2id$"

func (Argon2id) Name() string { return "argon2id" }

func (a Argon2id) Hash(password string) (string, error) {
	salt := make([]byte, a.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2id salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, a.Time, a.Memory, a.Threads, a.KeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, a.Memory, a.Time, a.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key with the parameters stored in encoded, so hashes
// made with older parameter sets keep working.
func (Argon2id) Verify(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func (Argon2id) Owns(encoded string) bool {
	return strings.HasPrefix(encoded, argon2Prefix)
}

// Bcrypt hashes with bcrypt at the given cost.
type Bcrypt struct {
	Cost int
}

func (Bcrypt) Name() string { return "bcrypt" }

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func (Bcrypt) Verify(encoded, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrMalformedHash
	}
}

func (Bcrypt) Owns(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// legacyHash verifies the unsalted 32-bit string hash stored by the previous
// site. It never produces new hashes; accounts using it are upgraded on their
// next successful login.
type legacyHash struct{}

var legacyPattern = regexp.MustCompile(`^-?[0-9a-f]{1,8}$`)

func (legacyHash) Name() string { return "legacy" }

func (legacyHash) Hash(string) (string, error) {
	return "", errors.New("legacy hashes are verify-only")
}

func (legacyHash) Verify(encoded, password string) (bool, error) {
	got := legacyDigest(password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(encoded)) == 1, nil
}

func (legacyHash) Owns(encoded string) bool {
	return legacyPattern.MatchString(encoded)
}

// legacyDigest is h = h*31 + c over UTF-16 code units with 32-bit
// wrap-around, rendered as signed hexadecimal.
func legacyDigest(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return strconv.FormatInt(int64(h), 16)
}

// Passwords hashes with a preferred scheme and verifies any known one.
type Passwords struct {
	preferred Hasher
	known     []Hasher
}

// NewPasswords returns a Passwords hashing with the named scheme
// ("argon2id" or "bcrypt").
func NewPasswords(scheme string) (*Passwords, error) {
	switch scheme {
	case "", "argon2id":
		return NewPasswordsWith(DefaultArgon2id), nil
	case "bcrypt":
		return NewPasswordsWith(Bcrypt{Cost: bcrypt.DefaultCost}), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", scheme)
	}
}

// NewPasswordsWith returns a Passwords hashing with preferred.
func NewPasswordsWith(preferred Hasher) *Passwords {
	known := []Hasher{preferred}
	for _, h := range []Hasher{DefaultArgon2id, Bcrypt{}, legacyHash{}} {
		if h.Name() != preferred.Name() {
			known = append(known, h)
		}
	}
	return &Passwords{preferred: preferred, known: known}
}

// Hash hashes password with the preferred scheme.
func (p *Passwords) Hash(password string) (string, error) {
	return p.preferred.Hash(password)
}

// Verify checks password against encoded. rehash is true when the password
// matched but encoded uses a scheme other than the preferred one.
func (p *Passwords) Verify(encoded, password string) (ok, rehash bool, err error) {
	for _, h := range p.known {
		if !h.Owns(encoded) {
			continue
		}
		ok, err := h.Verify(encoded, password)
		if err != nil || !ok {
			return false, false, err
		}
		return true, h.Name() != p.preferred.Name(), nil
	}
	return false, false, nil
}
