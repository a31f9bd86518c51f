package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrTokenNotFound = errors.New("TOKEN_NOT_FOUND: Invalid session token")

// SessionInfo lets a client rejoin as the same player after reconnecting.
// Why: a dropped socket mid-round must not cost the player their submissions
type SessionInfo struct {
	Token    string
	Username string
	Channel  string
	LastSeen time.Time
}

type SessionManager struct {
	sessions map[string]SessionInfo // Token -> SessionInfo
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]SessionInfo),
	}
}

// CreateSession issues a new token for username in channel.
func (sm *SessionManager) CreateSession(username, channel string) SessionInfo {
	info := SessionInfo{
		Token:    uuid.New().String(),
		Username: username,
		Channel:  channel,
		LastSeen: time.Now(),
	}
	sm.StoreSession(info)
	return info
}

func (sm *SessionManager) StoreSession(info SessionInfo) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[info.Token] = info
}

func (sm *SessionManager) GetSession(token string) (SessionInfo, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[token]
	if !exists {
		return SessionInfo{}, ErrTokenNotFound
	}
	return session, nil
}

// Touch marks the session as used now.
func (sm *SessionManager) Touch(token string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[token]; ok {
		s.LastSeen = time.Now()
		sm.sessions[token] = s
	}
}

func (sm *SessionManager) RemoveSession(token string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, token)
}

// PruneIdle drops sessions unused for longer than maxIdle and returns how
// many were removed.
// Why: tokens are never revoked by clients, so idle ones only go this way
func (sm *SessionManager) PruneIdle(maxIdle time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for token, s := range sm.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(sm.sessions, token)
			removed++
		}
	}
	return removed
}

func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
