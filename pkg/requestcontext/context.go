// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	userID := requestcontext.UserID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithDeviceID(ctx, "android-abc123")
package requestcontext

import (
	"context"
	"time"

	id "hadir/pkg/domain"
)

type (
	userIDKey            struct{}
	roleKey              struct{}
	deviceIDKey          struct{}
	deviceFingerprintKey struct{}
	clientIPKey          struct{}
	userAgentKey         struct{}
	requestIDKey         struct{}
	requestTimeKey       struct{}
)

// UserID retrieves the authenticated user ID from the context.
// Returns the zero value (nil UUID) if not set.
func UserID(ctx context.Context) id.UserID {
	if userID, ok := ctx.Value(userIDKey{}).(id.UserID); ok {
		return userID
	}
	return id.UserID{}
}

// WithUserID injects a user ID into the context.
func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// Role retrieves the authenticated user's role from the context.
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey{}).(string); ok {
		return role
	}
	return ""
}

// WithRole injects a role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// DeviceID retrieves the client-reported device identifier from the context.
func DeviceID(ctx context.Context) string {
	if deviceID, ok := ctx.Value(deviceIDKey{}).(string); ok {
		return deviceID
	}
	return ""
}

// WithDeviceID injects a device identifier into a context.
// Useful for service unit tests that don't run the full middleware chain.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDKey{}, deviceID)
}

// DeviceFingerprint retrieves the client-computed device fingerprint.
func DeviceFingerprint(ctx context.Context) string {
	if fp, ok := ctx.Value(deviceFingerprintKey{}).(string); ok {
		return fp
	}
	return ""
}

// WithDeviceFingerprint injects a device fingerprint into a context.
func WithDeviceFingerprint(ctx context.Context, fingerprint string) context.Context {
	return context.WithValue(ctx, deviceFingerprintKey{}, fingerprint)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. All time-policy decisions
// read the clock through here, so tests pin the instant they need.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
