package auth

import "context"

type identityContextKey struct{}

// WithIdentity attaches a verified identity to the request context. Only the
// gate calls this; downstream handlers read it back and must not re-validate.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}
