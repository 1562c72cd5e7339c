package auth

import "context"

type payloadKey struct{}

// WithPayload returns a copy of ctx carrying the authenticated payload.
func WithPayload(ctx context.Context, payload TokenPayload) context.Context {
	return context.WithValue(ctx, payloadKey{}, payload)
}

// PayloadFromContext returns the authenticated payload stored by WithPayload.
func PayloadFromContext(ctx context.Context) (TokenPayload, bool) {
	payload, ok := ctx.Value(payloadKey{}).(TokenPayload)
	return payload, ok
}
