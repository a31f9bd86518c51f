package game_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"wordgames-server/internal/dictionary"
	"wordgames-server/internal/game"
)

// fakeFlags counts flags currently held per kind.
type fakeFlags struct {
	mu   sync.Mutex
	held map[game.Flag]int
}

func newFakeFlags() *fakeFlags {
	return &fakeFlags{held: make(map[game.Flag]int)}
}

func (f *fakeFlags) Acquire(flag game.Flag, channel string) func() {
	f.mu.Lock()
	f.held[flag]++
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.held[flag]--
			f.mu.Unlock()
		})
	}
}

func (f *fakeFlags) count(flag game.Flag) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.held[flag]
}

func (f *fakeFlags) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.held {
		n += c
	}
	return n
}

type recordCall struct {
	Game    string
	Outcome game.Outcome
	Players []string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordCall
	err   error
}

func (r *fakeRecorder) IncrementResult(_ context.Context, g string, outcome game.Outcome, players []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordCall{Game: g, Outcome: outcome, Players: append([]string(nil), players...)})
	return r.err
}

func (r *fakeRecorder) playersFor(outcome game.Outcome) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if c.Outcome == outcome {
			out = append(out, c.Players...)
		}
	}
	return out
}

func testDeps(dict *dictionary.Dictionary, flags *fakeFlags, rec *fakeRecorder) game.Deps {
	logger := zerolog.Nop()
	return game.Deps{
		Dictionary: dict,
		Flags:      flags,
		Recorder:   rec,
		Rand:       rand.New(rand.NewSource(1)),
		Logger:     &logger,
	}
}

// step advances inst once and fails the test on error.
func step(t *testing.T, inst game.Instance) game.Step {
	t.Helper()
	s, more, err := inst.Next(context.Background())
	require.NoError(t, err)
	require.True(t, more, "game ended early in phase %s", inst.Phase())
	return s
}
