package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"uny-compass-be/pkg/contextwindow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextCache_EmptySession(t *testing.T) {
	c := NewContextCache()

	got, err := c.GetContext(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestContextCache_KeepsLastFourTurns(t *testing.T) {
	ctx := context.Background()
	c := NewContextCache()

	for i := 1; i <= 5; i++ {
		require.NoError(t, c.Add(ctx, 1, fmt.Sprintf("m%d", i), i%2 == 1))
	}

	got, err := c.GetContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Assistant: m2\nUser: m3\nAssistant: m4\nUser: m5\n\n", got)
}

func TestContextCache_TruncatesLongContent(t *testing.T) {
	ctx := context.Background()
	c := NewContextCache()

	require.NoError(t, c.Add(ctx, 1, strings.Repeat("x", 300), true))

	got, err := c.GetContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "User: "+strings.Repeat("x", 150)+"...\n\n", got)
}

func TestContextCache_ExpiresOldEntries(t *testing.T) {
	ctx := context.Background()
	c := NewContextCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Add(ctx, 1, "old question", true))
	now = now.Add(20 * time.Minute)
	require.NoError(t, c.Add(ctx, 1, "new answer", false))
	now = now.Add(15 * time.Minute)

	got, err := c.GetContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Assistant: new answer\n\n", got)
}

func TestContextCache_ClearAndStats(t *testing.T) {
	ctx := context.Background()
	c := NewContextCache()

	require.NoError(t, c.Add(ctx, 2, "a", true))
	require.NoError(t, c.Add(ctx, 2, "b", false))
	require.NoError(t, c.Add(ctx, 1, "c", true))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, []uint{1, 2}, stats.Sessions)
	assert.Equal(t, 3, stats.TotalMessages)

	require.NoError(t, c.Clear(ctx, 2))

	got, err := c.GetContext(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 1, stats.TotalMessages)
}

func TestContextCache_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	c := NewContextCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Add(ctx, 9, fmt.Sprintf("turn %d", i), i%2 == 0)
		}(i)
	}
	wg.Wait()

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalMessages)
}

func TestContextCache_SeedKeepsTimestamps(t *testing.T) {
	ctx := context.Background()
	c := NewContextCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Add(ctx, 1, "replaced", true))
	require.NoError(t, c.Seed(ctx, 1, []contextwindow.Entry{
		contextwindow.NewEntry("q1", true, now.Add(-25*time.Minute)),
		contextwindow.NewEntry("a1", false, now.Add(-time.Minute)),
	}))

	got, err := c.GetContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "User: q1\nAssistant: a1\n\n", got)

	now = now.Add(10 * time.Minute)
	got, err = c.GetContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Assistant: a1\n\n", got, "seeded entries age from their own timestamps")

	require.NoError(t, c.Seed(ctx, 1, nil))
	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSessions)
}
