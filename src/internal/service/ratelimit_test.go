// FILE: src/internal/service/ratelimit_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2, 300)
	defer rl.Stop()

	// Burst of 2, then the bucket is empty.
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// Other clients have their own bucket.
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiter_ActiveClients(t *testing.T) {
	rl := NewRateLimiter(10, 20, 300)
	defer rl.Stop()

	assert.Equal(t, 0, rl.ActiveClients())

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.2")
	assert.Equal(t, 2, rl.ActiveClients())
}

func TestRateLimiter_RemoveOldClients(t *testing.T) {
	rl := NewRateLimiter(10, 20, 300)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	assert.Equal(t, 1, rl.ActiveClients())

	// The client was just seen; the sweep must keep it.
	rl.removeOldClients()
	assert.Equal(t, 1, rl.ActiveClients())
}
