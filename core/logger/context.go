package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
)

type ctxKey int

const (
	ctxKeyLogger ctxKey = iota
	ctxKeyRID
	ctxKeyPhone
)

// WithLogger stores a scoped logger in the context.
func WithLogger(ctx context.Context, logg *slog.Logger) context.Context {
	if logg == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyLogger, logg)
}

// FromContext returns the context-scoped logger, or nil when absent.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	if logg, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok {
		return logg
	}
	return nil
}

// WithRID attaches a request id to the context.
func WithRID(ctx context.Context, rid string) context.Context {
	if rid == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyRID, rid)
}

// RIDFrom returns the request id stored in the context, or "".
func RIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if rid, ok := ctx.Value(ctxKeyRID).(string); ok {
		return rid
	}
	return ""
}

// WithPhone attaches a subscriber phone number to the context.
func WithPhone(ctx context.Context, phone string) context.Context {
	if phone == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyPhone, phone)
}

// PhoneFrom returns the phone number stored in the context, or "".
func PhoneFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if phone, ok := ctx.Value(ctxKeyPhone).(string); ok {
		return phone
	}
	return ""
}

// NewRID produces a short random request id.
func NewRID() string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "rid-unavailable"
	}
	return hex.EncodeToString(buf[:])
}
