package clock

import (
	"context"
	"time"
)

type asOfKey struct{}

// WithAsOf makes SystemClock report t for calls made with the returned
// context. Used to evaluate rules as of a past or future date.
func WithAsOf(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, asOfKey{}, t.UTC())
}

// AsOf returns the instant set by WithAsOf.
func AsOf(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(asOfKey{}).(time.Time)
	return t, ok
}

type SystemClock struct{}

func (SystemClock) Now(ctx context.Context) time.Time {
	if t, ok := AsOf(ctx); ok {
		return t
	}
	return time.Now().UTC()
}
