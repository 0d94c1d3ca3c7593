package common

import "context"

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the authenticated principal attached to a request.
type Identity struct {
	ID   string
	Name string
	Role string
}

// WithIdentity stores the identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the identity from the context, if present.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
