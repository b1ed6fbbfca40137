package authz

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/hermes-renovation/hermes/internal/shared"
)

// UserSource looks up account facts needed to build a principal.
type UserSource interface {
	FindPrincipal(ctx context.Context, userID int64) (Principal, error)
}

// Resolver turns a session into a Principal. Missing, malformed, or stale
// credentials resolve to the anonymous principal, never an error: several
// endpoints accept anonymous callers.
type Resolver struct {
	users  UserSource
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(users UserSource, logger *slog.Logger) *Resolver {
	return &Resolver{users: users, logger: logger}
}

// Resolve builds the principal for the current request.
func (r *Resolver) Resolve(ctx context.Context, sess *shared.Session) Principal {
	if sess == nil {
		return Anonymous()
	}
	raw := sess.User()
	if raw == "" {
		return Anonymous()
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		if r.logger != nil {
			r.logger.Warn("session carries invalid user id", slog.String("value", raw))
		}
		return Anonymous()
	}
	p, err := r.users.FindPrincipal(ctx, id)
	if err != nil {
		return Anonymous()
	}
	return p
}
