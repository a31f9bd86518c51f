package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordgames-server/internal/game"
)

// scriptedInstance replays a fixed list of steps.
type scriptedInstance struct {
	id      string
	channel string
	steps   []game.Step
	err     error // returned after the steps run out, when set

	mu     sync.Mutex
	pos    int
	closed bool
	plays  []string
	votes  []string
}

func newScripted(id, channel string, steps ...game.Step) *scriptedInstance {
	return &scriptedInstance{id: id, channel: channel, steps: steps}
}

func (s *scriptedInstance) ID() string      { return s.id }
func (s *scriptedInstance) Game() string    { return "scripted" }
func (s *scriptedInstance) Channel() string { return s.channel }
func (s *scriptedInstance) String() string  { return s.id }

func (s *scriptedInstance) Phase() game.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return game.PhaseTerminated
	}
	return game.PhaseRoundPlay
}

func (s *scriptedInstance) Next(context.Context) (game.Step, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return game.Step{}, false, nil
	}
	if s.pos < len(s.steps) {
		st := s.steps[s.pos]
		s.pos++
		return st, true, nil
	}
	if s.err != nil {
		return game.Step{}, false, s.err
	}
	return game.Step{}, false, nil
}

func (s *scriptedInstance) Play(player, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays = append(s.plays, player+":"+text)
}

func (s *scriptedInstance) Vote(voter, marker string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = append(s.votes, voter+":"+marker)
}

func (s *scriptedInstance) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *scriptedInstance) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Test 1: A second game in the same channel is refused
// Why: One game per channel; the running game must be untouched
func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	first := newScripted("one", "lobby")
	second := newScripted("two", "lobby")

	require.NoError(t, r.Register(first))
	err := r.Register(second)
	assert.True(t, errors.Is(err, game.ErrActiveSession))

	got, ok := r.Lookup("lobby")
	assert.True(t, ok)
	assert.Same(t, first, got)

	assert.NoError(t, r.Register(newScripted("three", "other")))
	assert.Len(t, r.Active(), 2)
}

// Test 2: Unregister only frees the channel for the owning instance
// Why: A finished game must not evict a newer one in the same channel
func TestRegistry_UnregisterOwnerOnly(t *testing.T) {
	r := NewRegistry()
	first := newScripted("one", "lobby")
	require.NoError(t, r.Register(first))

	r.Unregister(first)
	r.Unregister(first)
	_, ok := r.Lookup("lobby")
	assert.False(t, ok)

	second := newScripted("two", "lobby")
	require.NoError(t, r.Register(second))
	r.Unregister(first)

	got, ok := r.Lookup("lobby")
	assert.True(t, ok)
	assert.Same(t, second, got)
}

// Test 3: Flags follow acquire and release, and release is idempotent
// Why: Phases release on every exit path, sometimes twice
func TestRegistry_Flags(t *testing.T) {
	r := NewRegistry()
	inst := newScripted("one", "lobby")
	require.NoError(t, r.Register(inst))

	assert.False(t, r.HasFlag(game.FlagPlay, "lobby"))

	release := r.Acquire(game.FlagPlay, "lobby")
	assert.True(t, r.HasFlag(game.FlagPlay, "lobby"))
	assert.False(t, r.HasFlag(game.FlagVoting, "lobby"))

	target, ok := r.InputTarget(game.FlagPlay, "lobby")
	assert.True(t, ok)
	assert.Same(t, inst, target)
	_, ok = r.InputTarget(game.FlagVoting, "lobby")
	assert.False(t, ok)

	release()
	assert.False(t, r.HasFlag(game.FlagPlay, "lobby"))

	again := r.Acquire(game.FlagPlay, "lobby")
	release()
	assert.True(t, r.HasFlag(game.FlagPlay, "lobby"), "a stale release must not drop a newer hold")
	again()
	assert.False(t, r.HasFlag(game.FlagPlay, "lobby"))
}

func TestRegistry_FlaggedSorted(t *testing.T) {
	r := NewRegistry()
	r.Acquire(game.FlagDirect, "zeta")
	r.Acquire(game.FlagDirect, "alpha")
	r.Acquire(game.FlagPlay, "beta")

	assert.Equal(t, []string{"alpha", "zeta"}, r.Flagged(game.FlagDirect))
	assert.Empty(t, r.Flagged(game.FlagVoting))
}

// Test 4: Unregistering drops the channel's flags
// Why: A game that dies without releasing must not keep routing input
func TestRegistry_UnregisterClearsFlags(t *testing.T) {
	r := NewRegistry()
	inst := newScripted("one", "lobby")
	require.NoError(t, r.Register(inst))
	release := r.Acquire(game.FlagVoting, "lobby")
	r.Acquire(game.FlagPlay, "other")

	r.Unregister(inst)
	assert.False(t, r.HasFlag(game.FlagVoting, "lobby"))
	assert.True(t, r.HasFlag(game.FlagPlay, "other"))

	release()
}

// Test 5: Concurrent registration for one channel has a single winner
// Why: No two instances may ever hold the same channel
func TestRegistry_ConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	var wins atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Register(newScripted("x", "lobby")) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
