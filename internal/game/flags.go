package game

import "sync"

// Flag names a class of external input a channel currently accepts.
type Flag string

const (
	// FlagPlay routes channel messages to the instance as submissions.
	FlagPlay Flag = "play"
	// FlagDirect routes direct messages to the instance as submissions.
	FlagDirect Flag = "direct"
	// FlagVoting routes reactions in the channel to the instance as votes.
	FlagVoting Flag = "voting"
)

// Flagger hands out eligibility flags. The returned release func must be
// safe to call more than once.
type Flagger interface {
	Acquire(flag Flag, channel string) (release func())
}

type nopFlagger struct{}

func (nopFlagger) Acquire(Flag, string) func() { return func() {} }

// heldFlags tracks the flags acquired for the current phase so that every
// exit path, including errors, can release them.
type heldFlags struct {
	mu       sync.Mutex
	releases []func()
}

func (h *heldFlags) acquire(f Flagger, channel string, flags ...Flag) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, flag := range flags {
		h.releases = append(h.releases, f.Acquire(flag, channel))
	}
}

func (h *heldFlags) releaseAll() {
	h.mu.Lock()
	releases := h.releases
	h.releases = nil
	h.mu.Unlock()

	for _, release := range releases {
		release()
	}
}
