package sessiongate

import "context"

type principalContextKey struct{}

// WithPrincipal attaches a verified principal to ctx. Intended for
// middleware that has already gone through Engine verification; handlers
// read it back with [PrincipalFromContext].
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal stored by [WithPrincipal].
// The second result is false when the request never passed verification.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
