// Package middleware provides HTTP middleware for the warehouse ledger.
package middleware

import (
	"context"
	"net/http"

	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/errors"
	"github.com/wareledger/wareledger/internal/logging"
	"github.com/wareledger/wareledger/internal/session"
)

// Level is the authorization a route requires.
type Level int

const (
	// Public routes never look at the session.
	Public Level = iota
	// Authenticated routes need any valid session.
	Authenticated
	// Admin routes need a session whose user is an administrator.
	Admin
)

func (l Level) String() string {
	switch l {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

const (
	msgAuthRequired  = "Требуется авторизация"
	msgAdminRequired = "Требуются права администратора"
)

type sessionKey struct{}

// WithSession stores the resolved session user on ctx.
func WithSession(ctx context.Context, user session.User) context.Context {
	return context.WithValue(ctx, sessionKey{}, user)
}

// SessionFrom returns the session user stored by WithSession.
func SessionFrom(ctx context.Context) (session.User, bool) {
	user, ok := ctx.Value(sessionKey{}).(session.User)
	return user, ok
}

// TokenFromRequest returns the session cookie value, or "".
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Authorizer gates requests on the session cookie.
type Authorizer struct {
	sessions session.Store
	logger   *logging.Logger
}

// NewAuthorizer creates an authorizer over the session store.
func NewAuthorizer(sessions session.Store, logger *logging.Logger) *Authorizer {
	if logger == nil {
		logger = logging.NewDefault("auth")
	}
	return &Authorizer{sessions: sessions, logger: logger}
}

// Authorize checks r against level. Public requests return immediately
// without consulting the store. On success the returned request carries the
// session user, the audit actor and the logging user.
func (a *Authorizer) Authorize(r *http.Request, level Level) (*http.Request, error) {
	if level == Public {
		return r, nil
	}

	token := TokenFromRequest(r)
	user, ok := a.sessions.Resolve(r.Context(), token)
	if !ok {
		a.logger.LogSecurityEvent(r.Context(), "authentication_required", map[string]interface{}{
			"path":       r.URL.Path,
			"method":     r.Method,
			"had_cookie": token != "",
		})
		return r, errors.Unauthorized(msgAuthRequired)
	}
	if level == Admin && !user.Admin {
		a.logger.LogSecurityEvent(r.Context(), "admin_required", map[string]interface{}{
			"path":     r.URL.Path,
			"method":   r.Method,
			"username": user.Username,
		})
		return r, errors.Forbidden(msgAdminRequired)
	}

	ctx := WithSession(r.Context(), user)
	ctx = logging.WithUser(ctx, user.IDString(), user.Role())
	ctx = audit.WithActor(ctx, audit.Actor{ID: user.ID, Username: user.Username})
	return r.WithContext(ctx), nil
}
