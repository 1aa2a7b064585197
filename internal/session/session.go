// Package session keeps cookie sessions for authenticated users.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// CookieName is the cookie carrying the session token.
const CookieName = "session_id"

// Lifetime is how long a session stays valid after login.
const Lifetime = 8 * time.Hour

// tokenBytes is the entropy of a token; the hex form is twice as long.
const tokenBytes = 32

var (
	// ErrTokenCollision means a freshly generated token was already stored.
	ErrTokenCollision = errors.New("session token collision")
	// ErrEntropy means the random source failed.
	ErrEntropy = errors.New("session entropy source failed")
)

// User is the snapshot of the authenticated user kept for the session.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// IDString renders the id for logging context.
func (u User) IDString() string { return strconv.FormatInt(u.ID, 10) }

// Role is "admin" or "user".
func (u User) Role() string {
	if u.Admin {
		return "admin"
	}
	return "user"
}

// Store maps tokens to users. Resolve, Invalidate and PurgeExpired never
// fail from the caller's point of view; Create fails only when no token can
// be issued.
type Store interface {
	Create(ctx context.Context, user User) (string, error)
	Resolve(ctx context.Context, token string) (User, bool)
	Invalidate(ctx context.Context, token string)
	PurgeExpired(ctx context.Context) int
}

// NewToken returns 256 random bits as 64 lowercase hex characters.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return hex.EncodeToString(buf), nil
}

// HashCredential returns the SHA-256 hex digest of secret. Stored password
// digests are compared against this value.
func HashCredential(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
