package models

import (
	"context"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

// User is the already-authenticated caller identity. Identity issuance and
// profile storage live outside this service; the auth middleware extracts
// id, name and role from the access token and nothing more.
type User struct {
	ID   uuid.UUID      `json:"id"`
	Name string         `json:"name"`
	Role types.UserRole `json:"role"`
}

var anonymous = &User{}

// AnonymousUser is the identity used before authentication.
func AnonymousUser() *User {
	return anonymous
}

func (u *User) IsAnonymous() bool {
	return u == anonymous
}

type userCtxKey struct{}

// WithUser injects the caller identity into the context.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the caller identity, or nil if none was set.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}
