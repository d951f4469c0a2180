package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/railzwaylabs/pricestack/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestSystemClockHonoursAsOf(t *testing.T) {
	at := time.Date(2024, 12, 24, 10, 0, 0, 0, time.UTC)
	ctx := clock.WithAsOf(context.Background(), at)

	assert.Equal(t, at, clock.SystemClock{}.Now(ctx))
	assert.WithinDuration(t, time.Now().UTC(), clock.SystemClock{}.Now(context.Background()), time.Second)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, at, clock.Fixed(at).Now(context.Background()))
}
