package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTracker(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker(time.Hour)

	occupied, err := tracker.IsOccupied(ctx, "Focus Room")
	require.NoError(t, err)
	assert.False(t, occupied)

	require.NoError(t, tracker.Occupy(ctx, "Focus Room", "member-1"))

	occupied, err = tracker.IsOccupied(ctx, "Focus Room")
	require.NoError(t, err)
	assert.True(t, occupied)

	occupants, err := tracker.Occupants(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Focus Room": "member-1"}, occupants)

	require.NoError(t, tracker.Release(ctx, "Focus Room"))

	occupied, err = tracker.IsOccupied(ctx, "Focus Room")
	require.NoError(t, err)
	assert.False(t, occupied)
}

func TestMemoryTrackerExpiry(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker(time.Minute)

	current := time.Date(2025, time.January, 27, 9, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return current }

	require.NoError(t, tracker.Occupy(ctx, "Innovation Hub", "member-2"))

	occupied, err := tracker.IsOccupied(ctx, "Innovation Hub")
	require.NoError(t, err)
	assert.True(t, occupied)

	current = current.Add(2 * time.Minute)

	occupied, err = tracker.IsOccupied(ctx, "Innovation Hub")
	require.NoError(t, err)
	assert.False(t, occupied, "expired marks should read as free")

	occupants, err := tracker.Occupants(ctx)
	require.NoError(t, err)
	assert.Empty(t, occupants)
}

func TestMemoryTrackerReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker(0)

	require.NoError(t, tracker.Release(ctx, "never occupied"))
}
