package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeper_SweepEvictsExpired(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestMemoryCache(time.Minute)
	c.Set(ctx, "a", sampleResponse("a"))
	clock.Advance(2 * time.Minute)

	s := NewSweeper(c, time.Minute, discardLogger())
	s.Sweep()

	assert.Equal(t, 0, c.Len())
}

func TestSweeper_RunsOnSchedule(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestMemoryCache(time.Minute)
	c.Set(ctx, "a", sampleResponse("a"))
	clock.Advance(2 * time.Minute)

	s := NewSweeper(c, time.Second, discardLogger())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return c.Len() == 0 }, 5*time.Second, 50*time.Millisecond)
}
