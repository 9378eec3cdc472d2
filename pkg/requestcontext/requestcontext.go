// Package requestcontext carries request-scoped values (caller identity, request
// ID, request time, client metadata) through context.Context.
package requestcontext

import (
	"context"
	"time"

	id "onboard/pkg/domain"
)

type (
	ctxKeyRequestID   struct{}
	ctxKeyUserID      struct{}
	ctxKeyHR          struct{}
	ctxKeyTime        struct{}
	ctxKeyClientIP    struct{}
	ctxKeyUserAgent   struct{}
	ctxKeyBearerToken struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, requestID)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return v
}

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, ctxKeyUserID{}, userID)
}

// UserID returns the authenticated caller, or the nil ID outside RequireAuth.
func UserID(ctx context.Context) id.UserID {
	v, _ := ctx.Value(ctxKeyUserID{}).(id.UserID)
	return v
}

// WithHR marks the caller as an HR actor.
func WithHR(ctx context.Context, isHR bool) context.Context {
	return context.WithValue(ctx, ctxKeyHR{}, isHR)
}

func IsHR(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyHR{}).(bool)
	return v
}

// WithBearerToken keeps the raw credential so outbound calls made on the
// caller's behalf can forward it.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyBearerToken{}, token)
}

func BearerToken(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyBearerToken{}).(string)
	return v
}

// WithTime pins "now" for everything downstream of the request.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ctxKeyTime{}, t)
}

// Now returns the request-scoped time, falling back to the wall clock for
// non-HTTP callers.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ctxKeyTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyClientIP{}, clientIP)
	return context.WithValue(ctx, ctxKeyUserAgent{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyClientIP{}).(string)
	return v
}

func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUserAgent{}).(string)
	return v
}
