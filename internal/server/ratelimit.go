package server

import (
	"context"
	"sync"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/config"
)

// RequestLimiter throttles preview requests per IP. Generating a dungeon is
// far more expensive than a message, so a client that floods previews is
// locked out, with the lockout doubling each time up to a maximum.
type RequestLimiter struct {
	mu              sync.Mutex
	clients         map[string]*requestInfo
	maxRequests     int
	window          time.Duration
	lockout         time.Duration
	maxLockout      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

type requestInfo struct {
	windowStart  time.Time
	requests     int
	lockedUntil  time.Time
	lockoutCount int // for exponential backoff
}

// NewRequestLimiter creates a limiter from cfg. MaxRequests <= 0 disables it.
func NewRequestLimiter(cfg config.RateLimitConfig) *RequestLimiter {
	rl := &RequestLimiter{
		clients:         make(map[string]*requestInfo),
		maxRequests:     cfg.MaxRequests,
		window:          time.Duration(cfg.WindowSeconds) * time.Second,
		lockout:         time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:      time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		cleanupInterval: 5 * time.Minute,
		now:             time.Now,
	}

	if rl.window <= 0 {
		rl.window = 10 * time.Second
	}
	if rl.lockout <= 0 {
		rl.lockout = 5 * time.Second
	}
	if rl.maxLockout < rl.lockout {
		rl.maxLockout = max(rl.lockout, 120*time.Second)
	}

	return rl
}

// Allow records a request from ip. When it returns false the caller must
// reject the request; retry is how long the IP stays locked.
func (rl *RequestLimiter) Allow(ip string) (ok bool, retry time.Duration) {
	if rl.maxRequests <= 0 {
		return true, 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.clients[ip]
	if !exists {
		info = &requestInfo{windowStart: now}
		rl.clients[ip] = info
	}

	if now.Before(info.lockedUntil) {
		return false, info.lockedUntil.Sub(now)
	}

	if now.Sub(info.windowStart) >= rl.window {
		info.windowStart = now
		info.requests = 0
	}

	info.requests++
	if info.requests <= rl.maxRequests {
		return true, 0
	}

	info.lockoutCount++
	d := rl.lockoutDuration(info.lockoutCount)
	info.lockedUntil = now.Add(d)
	info.requests = 0
	info.windowStart = info.lockedUntil
	return false, d
}

// lockoutDuration doubles the base lockout for every earlier lockout, capped
// at maxLockout.
func (rl *RequestLimiter) lockoutDuration(count int) time.Duration {
	d := rl.lockout
	for i := 1; i < count; i++ {
		// Check before multiplying to avoid overflow.
		if d >= rl.maxLockout/2 {
			return rl.maxLockout
		}
		d *= 2
	}
	return min(d, rl.maxLockout)
}

// Tracked returns the number of IPs with limiter state.
func (rl *RequestLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// cleanupLoop periodically drops idle entries until ctx is cancelled.
func (rl *RequestLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup removes entries that have been idle and unlocked for 10 minutes.
// Dropping an entry also resets its backoff.
func (rl *RequestLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	for ip, info := range rl.clients {
		if info.lockedUntil.Before(cutoff) && info.windowStart.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}
