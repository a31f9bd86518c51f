package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(10, time.Second)

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow("conn-1"), "request %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow("conn-1"), "11th request should be denied")
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	limiter := NewRateLimiter(2, 100*time.Millisecond)

	assert.True(t, limiter.Allow("conn-1"))
	assert.True(t, limiter.Allow("conn-1"))
	assert.False(t, limiter.Allow("conn-1"))

	time.Sleep(150 * time.Millisecond)

	assert.True(t, limiter.Allow("conn-1"), "request after the window should be allowed")
}

// Test: Limits are per connection
// Why: One noisy client must not silence the channel
func TestRateLimiter_MultipleConnections(t *testing.T) {
	limiter := NewRateLimiter(5, time.Second)

	for i := 0; i < 5; i++ {
		limiter.Allow("conn-1")
	}
	assert.False(t, limiter.Allow("conn-1"))

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow("conn-2"), "conn-2 request %d", i+1)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter := NewRateLimiter(10, 100*time.Millisecond)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("conn-%d", i))
	}

	limiter.mu.Lock()
	assert.Len(t, limiter.requests, 5)
	limiter.mu.Unlock()

	time.Sleep(200 * time.Millisecond)
	limiter.Cleanup()

	limiter.mu.Lock()
	assert.Empty(t, limiter.requests)
	limiter.mu.Unlock()
}

func TestRateLimiter_RemoveConnection(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	assert.True(t, limiter.Allow("conn-1"))
	assert.False(t, limiter.Allow("conn-1"))

	limiter.RemoveConnection("conn-1")
	assert.True(t, limiter.Allow("conn-1"))
}

func TestConnectionHealth_IsInactive(t *testing.T) {
	health := NewConnectionHealth()

	assert.False(t, health.IsInactive("conn-1", time.Minute), "untracked connections are not inactive")

	health.UpdateActivity("conn-1")
	assert.False(t, health.IsInactive("conn-1", time.Minute))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, health.IsInactive("conn-1", 10*time.Millisecond))
}

func TestConnectionHealth_GetInactiveConnections(t *testing.T) {
	health := NewConnectionHealth()
	health.UpdateActivity("old")
	time.Sleep(30 * time.Millisecond)
	health.UpdateActivity("new")

	assert.Equal(t, []string{"old"}, health.GetInactiveConnections(20*time.Millisecond))

	health.RemoveConnection("old")
	assert.Empty(t, health.GetInactiveConnections(20*time.Millisecond))
}

func TestValidateMessageType(t *testing.T) {
	for _, typ := range []string{"ping", "join", "say", "dm", "react"} {
		assert.NoError(t, ValidateMessageType(typ), typ)
	}

	err := ValidateMessageType("execute_move")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_MESSAGE_TYPE")
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("a-name-that-is-far-too-long"))
	assert.Error(t, ValidateUsername("alice@lobby"), "'@' is reserved for dm authors")
}

func TestValidateChannel(t *testing.T) {
	assert.NoError(t, ValidateChannel("word-games_2"))
	assert.Equal(t, "lobby", NormalizeChannel("  Lobby "))

	for _, bad := range []string{"", "has space", "UPPER", "emoji🎲", "a-channel-name-well-over-the-limit"} {
		err := ValidateChannel(bad)
		assert.Error(t, err, bad)
		if err != nil {
			assert.Contains(t, err.Error(), "CHANNEL_INVALID")
		}
	}
}

func TestErrorPayload(t *testing.T) {
	assert.Equal(t, ErrorMessage{Code: "RATE_LIMITED", Message: "Too many messages"},
		errorPayload("RATE_LIMITED: Too many messages"))
	assert.Equal(t, ErrorMessage{Message: "Setting \"rounds\": bad"},
		errorPayload("Setting \"rounds\": bad"))
}
