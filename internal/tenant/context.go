package tenant

import "context"

type contextKey string

const ctxIdentity contextKey = "tenant_identity"

// WithIdentity injects the resolved identity into the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

// FromContext returns the resolved identity, if resolution ran.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ctxIdentity).(Identity)
	return id, ok
}
