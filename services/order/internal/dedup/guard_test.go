package dedup

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, g Guard) {
	t.Helper()
	ctx := context.Background()
	id := "evt_" + uuid.NewString()

	seen, err := g.Seen(ctx, id)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, g.Mark(ctx, id))

	seen, err = g.Seen(ctx, id)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = g.Seen(ctx, "evt_"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, seen, "marks are per event id")
}

func TestMemoryGuard(t *testing.T) {
	t.Parallel()
	exercise(t, NewMemory())
}

func TestMemoryGuard_MarksExpireAndAreSwept(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryTTL(time.Hour)
	m.now = func() time.Time { return clock }

	for _, id := range []string{"evt_1", "evt_2", "evt_3"} {
		require.NoError(t, m.Mark(ctx, id))
	}
	assert.Equal(t, 3, m.Len())

	clock = clock.Add(61 * time.Minute)
	seen, err := m.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen, "expired mark")

	require.NoError(t, m.Mark(ctx, "evt_4"))
	assert.Equal(t, 1, m.Len(), "expired marks are dropped")

	seen, err = m.Seen(ctx, "evt_4")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRedisGuard(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	g, err := NewRedisGuard(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	exercise(t, g)
}

func TestNewRedisGuard_BadURL(t *testing.T) {
	t.Parallel()
	_, err := NewRedisGuard("not-a-url")
	assert.Error(t, err)
}
