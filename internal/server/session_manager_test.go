package server

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test 1: A created session can be looked up by its token
// Why: Rejoining relies on the token alone
func TestSessionManager_CreateAndGet(t *testing.T) {
	sm := NewSessionManager()

	session := sm.CreateSession("alice", "lobby")
	assert.NotEmpty(t, session.Token)

	got, err := sm.GetSession(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "lobby", got.Channel)
}

// Test 2: Unknown tokens are rejected
// Why: A client must not take over another player's name with a guess
func TestSessionManager_GetUnknown(t *testing.T) {
	sm := NewSessionManager()

	_, err := sm.GetSession("missing")
	assert.True(t, errors.Is(err, ErrTokenNotFound))
	assert.Contains(t, err.Error(), "TOKEN_NOT_FOUND")
}

func TestSessionManager_Remove(t *testing.T) {
	sm := NewSessionManager()
	session := sm.CreateSession("bob", "lobby")

	sm.RemoveSession(session.Token)

	_, err := sm.GetSession(session.Token)
	assert.Error(t, err)
	assert.Equal(t, 0, sm.Len())
}

func TestSessionManager_PruneIdle(t *testing.T) {
	sm := NewSessionManager()
	sm.StoreSession(SessionInfo{Token: "stale", Username: "old", Channel: "lobby", LastSeen: time.Now().Add(-2 * time.Hour)})
	fresh := sm.CreateSession("new", "lobby")

	assert.Equal(t, 1, sm.PruneIdle(time.Hour))

	_, err := sm.GetSession(fresh.Token)
	assert.NoError(t, err)
	_, err = sm.GetSession("stale")
	assert.Error(t, err)
}

func TestSessionManager_Touch(t *testing.T) {
	sm := NewSessionManager()
	sm.StoreSession(SessionInfo{Token: "t", Username: "old", LastSeen: time.Now().Add(-2 * time.Hour)})

	sm.Touch("t")
	sm.Touch("missing")

	assert.Equal(t, 0, sm.PruneIdle(time.Hour))
}

// Test: Concurrent session creation
// Why: Every websocket goroutine writes to the same manager
func TestSessionManager_Concurrent(t *testing.T) {
	sm := NewSessionManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := sm.CreateSession(fmt.Sprintf("user-%d", i), "lobby")
			_, _ = sm.GetSession(s.Token)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, sm.Len())
}
