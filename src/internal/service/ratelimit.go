// FILE: src/internal/service/ratelimit.go
package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-client rate limiting for the extraction
// endpoint.
type RateLimiter struct {
	clients         sync.Map // map[string]*clientLimiter
	requestsPerSec  float64
	burstSize       int
	cleanupInterval time.Duration
	done            chan struct{}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new per-client rate limiter.
func NewRateLimiter(requestsPerSec float64, burstSize int, cleanupIntervalSec int64) *RateLimiter {
	rl := &RateLimiter{
		requestsPerSec:  requestsPerSec,
		burstSize:       burstSize,
		cleanupInterval: time.Duration(cleanupIntervalSec) * time.Second,
		done:            make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether the client may proceed.
func (rl *RateLimiter) Allow(clientIP string) bool {
	return rl.getLimiter(clientIP).Allow()
}

// getLimiter returns the rate limiter for a client
func (rl *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	if val, ok := rl.clients.Load(clientIP); ok {
		client := val.(*clientLimiter)
		client.lastSeen = time.Now()
		return client.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(rl.requestsPerSec), rl.burstSize)
	client := &clientLimiter{
		limiter:  limiter,
		lastSeen: time.Now(),
	}

	rl.clients.Store(clientIP, client)
	return limiter
}

// cleanup removes old client limiters
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.removeOldClients()
		}
	}
}

// removeOldClients removes limiters that haven't been seen recently
func (rl *RateLimiter) removeOldClients() {
	threshold := time.Now().Add(-rl.cleanupInterval * 2)

	rl.clients.Range(func(key, value any) bool {
		client := value.(*clientLimiter)
		if client.lastSeen.Before(threshold) {
			rl.clients.Delete(key)
		}
		return true
	})
}

// Stop gracefully shuts down the rate limiter
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// ActiveClients returns the number of tracked clients.
func (rl *RateLimiter) ActiveClients() int {
	count := 0
	rl.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
