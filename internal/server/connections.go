package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/sync/errgroup"

	"wordgames-server/internal/game"
)

// writeTimeout bounds a single broadcast write to one client.
const writeTimeout = 5 * time.Second

// Member is who a connection speaks for once it joined a channel.
type Member struct {
	Token    string
	Username string
	Channel  string
}

type ConnectionManager struct {
	connections map[string]*websocket.Conn // connectionID → socket
	members     map[string]Member          // connectionID → joined member
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		members:     make(map[string]Member),
	}
}

func (cm *ConnectionManager) AddConnection(id string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
}

func (cm *ConnectionManager) RemoveConnection(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.connections, id)
	delete(cm.members, id)
}

// Join attaches member to connection id. If the member's token is already
// attached to another connection, that connection's id is returned so the
// caller can close it.
// Why: one token speaks through one socket, or every message would be echoed twice
func (cm *ConnectionManager) Join(id string, member Member) (previous string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for connID, m := range cm.members {
		if m.Token == member.Token && connID != id {
			previous = connID
			delete(cm.members, connID)
		}
	}
	cm.members[id] = member
	return previous
}

// Member returns who connection id joined as.
func (cm *ConnectionManager) Member(id string) (Member, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	m, ok := cm.members[id]
	return m, ok
}

// UsernameTaken reports whether another session already speaks as username
// in channel.
func (cm *ConnectionManager) UsernameTaken(channel, username, token string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for _, m := range cm.members {
		if m.Channel == channel && m.Username == username && m.Token != token {
			return true
		}
	}
	return false
}

// GetConnection returns websocket for connectionID
func (cm *ConnectionManager) GetConnection(connectionID string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[connectionID]
}

// Members lists the usernames joined to channel, sorted.
func (cm *ConnectionManager) Members(channel string) []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	var names []string
	for _, m := range cm.members {
		if m.Channel == channel {
			names = append(names, m.Username)
		}
	}
	sort.Strings(names)
	return names
}

func (cm *ConnectionManager) channelSockets(channel string) []*websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	var socks []*websocket.Conn
	for connID, m := range cm.members {
		if m.Channel != channel {
			continue
		}
		if conn := cm.connections[connID]; conn != nil {
			socks = append(socks, conn)
		}
	}
	return socks
}

// Broadcast writes msg to every connection joined to channel. A failed
// write does not stop delivery to the others.
func (cm *ConnectionManager) Broadcast(ctx context.Context, channel string, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Type, err)
	}

	// Why snapshot the sockets: writes must not hold cm.mu while a slow client blocks
	var g errgroup.Group
	for _, conn := range cm.channelSockets(channel) {
		g.Go(func() error {
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			defer cancel()
			return conn.Write(wctx, websocket.MessageText, data)
		})
	}
	return g.Wait()
}

// Send delivers game output to a channel.
func (cm *ConnectionManager) Send(ctx context.Context, channel string, msg *game.Message) error {
	return cm.Broadcast(ctx, channel, ServerMessage{
		Type: "message",
		Payload: ChatMessage{
			Channel: channel,
			Kind:    string(msg.Kind),
			Text:    msg.Text(),
			Markers: msg.Markers,
		},
	})
}
