// Package ratelimit provides per-client rate limiting using a sliding window log.
package ratelimit

import (
	"sync"
	"time"
)

// requestLog holds the attempt timestamps of one client in chronological order.
type requestLog struct {
	stamps []time.Time
}

// prune drops every timestamp strictly older than cutoff.
// Stamps are appended in order, so the survivors are a suffix of the slice.
func (rl *requestLog) prune(cutoff time.Time) {
	i := 0
	for i < len(rl.stamps) && rl.stamps[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return
	}
	// Copy into a fresh slice so the pruned prefix can be collected.
	rl.stamps = append([]time.Time(nil), rl.stamps[i:]...)
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter tracks a request log per client and admits at most MaxRequests
// attempts within any trailing Window.
type Limiter struct {
	logs   map[string]*requestLog // Client ID -> log
	mu     sync.Mutex
	config *Config
	now    func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	MaxRequests     int
	Window          time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
}

// DefaultConfig returns ten requests per minute with a five minute sweep.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		MaxRequests:     10,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
	}
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &Limiter{
		logs:   make(map[string]*requestLog),
		config: config,
		now:    time.Now,
	}

	// Start cleanup goroutine if enabled
	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Allow records an attempt from clientID at the limiter's current time.
func (l *Limiter) Allow(clientID string) (bool, Info) {
	return l.AllowAt(clientID, l.now())
}

// AllowAt records an attempt from clientID at now and reports whether it is
// within the limit. Rejected attempts are recorded too, so a client that keeps
// retrying stays blocked until its attempts age out of the window.
func (l *Limiter) AllowAt(clientID string, now time.Time) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.logs[clientID]
	if !ok {
		entry = &requestLog{}
		l.logs[clientID] = entry
	}

	entry.prune(now.Add(-l.config.Window))
	entry.stamps = append(entry.stamps, now)

	count := len(entry.stamps)
	allowed := count <= l.config.MaxRequests

	// The window frees a slot once the oldest counted attempt ages out.
	resetTime := entry.stamps[0].Add(l.config.Window)
	remaining := max(l.config.MaxRequests-count, 0)

	var retryAfter time.Duration
	if !allowed {
		// The next attempt fits once stamps [0, count-MaxRequests] have aged out.
		// prune keeps a stamp equal to the cutoff, so it leaves one tick later.
		blocking := entry.stamps[count-l.config.MaxRequests]
		retryAfter = max(blocking.Add(l.config.Window).Sub(now)+time.Nanosecond, 0)
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      l.config.MaxRequests,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

// Len returns the number of clients currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.logs)
}

// cleanup periodically evicts clients with no attempts inside the window.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.Sweep(l.now())
		case <-l.cleanupStop:
			return
		}
	}
}

// Sweep prunes every log against now and removes logs left empty.
func (l *Limiter) Sweep(now time.Time) int {
	cutoff := now.Add(-l.config.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, entry := range l.logs {
		entry.prune(cutoff)
		if len(entry.stamps) == 0 {
			delete(l.logs, key)
			evicted++
		}
	}
	return evicted
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
