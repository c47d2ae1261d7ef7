package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SameLimiterPerKey(t *testing.T) {
	m := NewManager(Config{RequestsPerSecond: 10, Burst: 1})
	assert.Same(t, m.GetLimiter("openfigi"), m.GetLimiter("openfigi"))
	assert.NotSame(t, m.GetLimiter("openfigi"), m.GetLimiter("gleif"))
}

func TestManager_Unlimited(t *testing.T) {
	m := NewManager(Config{})
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, m.Wait(ctx, "k"))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestManager_ConfigureOverridesDefaults(t *testing.T) {
	m := NewManager(Config{})
	m.Configure("slow", Config{RequestsPerSecond: 0.5, Burst: 1})

	lim := m.GetLimiter("slow")
	assert.InDelta(t, 0.5, float64(lim.Limit()), 1e-9)
	assert.Equal(t, 1, lim.Burst())
	assert.True(t, lim.Allow())
	assert.False(t, lim.Allow(), "second request within the window is blocked")
}

func TestManager_WaitHonoursContext(t *testing.T) {
	m := NewManager(Config{RequestsPerSecond: 0.01, Burst: 1})
	require.NoError(t, m.Wait(context.Background(), "k"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, m.Wait(ctx, "k"))
}
