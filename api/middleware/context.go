package middleware

import "context"

type (
	cartSessionKey struct{}
	requestIDKey   struct{}
)

// CartSessionFromContext returns the cart session key attached by
// CartSession, or "" outside a shopper route.
func CartSessionFromContext(ctx context.Context) string {
	key, _ := ctx.Value(cartSessionKey{}).(string)
	return key
}

func WithCartSession(ctx context.Context, sessionKey string) context.Context {
	return context.WithValue(ctx, cartSessionKey{}, sessionKey)
}

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
