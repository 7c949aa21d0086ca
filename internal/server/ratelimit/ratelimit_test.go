package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(maxRequests int, window time.Duration) *Limiter {
	return NewLimiter(&Config{
		Enabled:     true,
		MaxRequests: maxRequests,
		Window:      window,
	})
}

func TestLimiter_AdmitsUpToMaxRequests(t *testing.T) {
	limiter := newTestLimiter(10, time.Minute)
	defer limiter.Stop()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		allowed, info := limiter.AllowAt("127.0.0.1", base.Add(time.Duration(i)*time.Second))
		require.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.AllowAt("127.0.0.1", base.Add(10*time.Second))
	assert.False(t, allowed, "11th request inside the window should be rejected")
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_AdmitsAfterWindowElapses(t *testing.T) {
	limiter := newTestLimiter(10, time.Minute)
	defer limiter.Stop()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		allowed, _ := limiter.AllowAt("10.0.0.1", base)
		require.True(t, allowed)
	}

	allowed, info := limiter.AllowAt("10.0.0.1", base.Add(61*time.Second))
	assert.True(t, allowed, "request 61s later should be admitted")
	assert.Equal(t, 9, info.Remaining, "old attempts should have been pruned")
}

func TestLimiter_RejectedAttemptsCount(t *testing.T) {
	limiter := newTestLimiter(2, time.Minute)
	defer limiter.Stop()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.AllowAt("c", base)
	limiter.AllowAt("c", base.Add(10*time.Second))

	// Rejected, but still recorded at t=50s.
	allowed, _ := limiter.AllowAt("c", base.Add(50*time.Second))
	require.False(t, allowed)

	// At t=65s the first attempt has aged out, leaving t=10s, t=50s and this one.
	allowed, _ = limiter.AllowAt("c", base.Add(65*time.Second))
	assert.False(t, allowed, "rejected attempt at t=50s should still count")

	// At t=111s only the t=65s attempt remains in the window.
	allowed, _ = limiter.AllowAt("c", base.Add(111*time.Second))
	assert.True(t, allowed)
}

func TestLimiter_SlidingNotFixed(t *testing.T) {
	limiter := newTestLimiter(3, time.Minute)
	defer limiter.Stop()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	// Three attempts late in one minute.
	for _, s := range []int{50, 55, 59} {
		allowed, _ := limiter.AllowAt("c", base.Add(time.Duration(s)*time.Second))
		require.True(t, allowed)
	}

	// A fixed per-minute bucket would reset at t=60s; the trailing window does not.
	allowed, _ := limiter.AllowAt("c", base.Add(61*time.Second))
	assert.False(t, allowed)
}

func TestLimiter_RetryAfter(t *testing.T) {
	limiter := newTestLimiter(2, time.Minute)
	defer limiter.Stop()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.AllowAt("c", base)
	limiter.AllowAt("c", base.Add(20*time.Second))

	allowed, info := limiter.AllowAt("c", base.Add(30*time.Second))
	require.False(t, allowed)
	// Stamps are t=0,20,30; t=0 and t=20 must age out, the latter just after t=80s.
	assert.Equal(t, 50*time.Second+time.Nanosecond, info.RetryAfter)
	assert.Equal(t, base.Add(time.Minute), info.ResetTime)
}

func TestLimiter_RetryAtRetryAfterIsAdmitted(t *testing.T) {
	limiter := newTestLimiter(2, time.Minute)
	defer limiter.Stop()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.AllowAt("c", base)
	limiter.AllowAt("c", base)

	rejectedAt := base.Add(10 * time.Second)
	allowed, info := limiter.AllowAt("c", rejectedAt)
	require.False(t, allowed)

	allowed, _ = limiter.AllowAt("c", rejectedAt.Add(info.RetryAfter))
	assert.True(t, allowed, "a client retrying exactly after RetryAfter should be admitted")
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	limiter := newTestLimiter(1, time.Minute)
	defer limiter.Stop()

	now := time.Now()
	allowed, _ := limiter.AllowAt("a", now)
	assert.True(t, allowed)
	allowed, _ = limiter.AllowAt("a", now)
	assert.False(t, allowed)

	allowed, _ = limiter.AllowAt("b", now)
	assert.True(t, allowed, "a different client should have its own window")
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:     true,
		MaxRequests: 1,
		Window:      time.Minute,
		Whitelist:   map[string]bool{"127.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1")
		if !allowed {
			t.Fatalf("whitelisted client rejected on request %d", i+1)
		}
		assert.Equal(t, 0, info.Limit, "whitelisted clients get no limit headers")
	}
	assert.Equal(t, 0, limiter.Len(), "whitelisted clients are not tracked")
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:     true,
		MaxRequests: 100,
		Window:      time.Minute,
		Blacklist:   map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("192.168.1.1")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("127.0.0.1")
		require.True(t, allowed)
	}
}

func TestLimiter_SweepEvictsEmptyLogs(t *testing.T) {
	limiter := newTestLimiter(10, time.Minute)
	defer limiter.Stop()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.AllowAt("old", base)
	limiter.AllowAt("recent", base.Add(50*time.Second))
	require.Equal(t, 2, limiter.Len())

	evicted := limiter.Sweep(base.Add(90 * time.Second))
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, limiter.Len())

	// The surviving client keeps its history.
	_, info := limiter.AllowAt("recent", base.Add(91*time.Second))
	assert.Equal(t, 8, info.Remaining)
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	limiter := newTestLimiter(100, time.Minute)
	defer limiter.Stop()

	now := time.Now()
	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.AllowAt("shared", now); allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), admitted.Load(), "exactly MaxRequests attempts should be admitted")
}

func TestLimiter_ConcurrentClients(t *testing.T) {
	limiter := newTestLimiter(5, time.Minute)
	defer limiter.Stop()

	var wg sync.WaitGroup
	for c := 0; c < 20; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				allowed, _ := limiter.Allow(fmt.Sprintf("client-%d", c))
				assert.True(t, allowed)
			}
		}(c)
	}
	wg.Wait()
	assert.Equal(t, 20, limiter.Len())
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		MaxRequests:     1,
		Window:          time.Minute,
		CleanupInterval: time.Millisecond,
	})
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_MAX_REQUESTS", "RATE_LIMIT_WINDOW", "RATE_LIMIT_CLEANUP_INTERVAL", "RATE_LIMIT_WHITELIST", "RATE_LIMIT_BLACKLIST"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.MaxRequests)
	assert.Equal(t, time.Minute, cfg.Window)
	assert.Empty(t, cfg.Whitelist)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "25")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	t.Setenv("RATE_LIMIT_BLACKLIST", "::1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.Window)
	assert.True(t, cfg.Whitelist["10.0.0.1"])
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.True(t, cfg.Blacklist["::1"])
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Malformed(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"RATE_LIMIT_ENABLED", "sometimes"},
		{"RATE_LIMIT_MAX_REQUESTS", "ten"},
		{"RATE_LIMIT_MAX_REQUESTS", "0"},
		{"RATE_LIMIT_WINDOW", "1 minute"},
		{"RATE_LIMIT_WINDOW", "-1s"},
		{"RATE_LIMIT_WHITELIST", "10.0.0.1,office"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
