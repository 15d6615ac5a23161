package auth

import "context"

type claimsContextKey struct{}

// SetClaimsContext stores validated claims on the request context for
// downstream handlers. Exactly one Claims value exists per request; the
// value lives and dies with that request.
func SetClaimsContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext retrieves the validated claims stored on the request
// context, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*Claims)
	return claims, ok && claims != nil
}
