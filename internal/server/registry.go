package server

import (
	"fmt"
	"sort"
	"sync"

	"wordgames-server/internal/game"
)

// Registry maps channels to their running game and tracks which channels
// currently accept each kind of input. At most one instance holds a channel
// at any time.
type Registry struct {
	instances map[string]game.Instance // channel → instance
	holds     map[flagKey]map[uint64]struct{}
	nextHold  uint64
	mu        sync.RWMutex
}

type flagKey struct {
	flag    game.Flag
	channel string
}

func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[string]game.Instance),
		holds:     make(map[flagKey]map[uint64]struct{}),
	}
}

// Register claims inst's channel. If the channel already runs a game the
// existing one is left untouched and ErrActiveSession is returned.
func (r *Registry) Register(inst game.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.instances[inst.Channel()]; ok {
		return fmt.Errorf("%w (%s in %s)", game.ErrActiveSession, existing.Game(), inst.Channel())
	}
	r.instances[inst.Channel()] = inst
	return nil
}

// Unregister frees inst's channel and drops any flags still held for it.
// It does nothing when the channel belongs to a different instance, so it
// is safe to call more than once.
func (r *Registry) Unregister(inst game.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.instances[inst.Channel()]; !ok || current != inst {
		return
	}
	delete(r.instances, inst.Channel())
	for key := range r.holds {
		if key.channel == inst.Channel() {
			delete(r.holds, key)
		}
	}
}

// Lookup returns the game running in channel.
func (r *Registry) Lookup(channel string) (game.Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[channel]
	return inst, ok
}

// Active returns every running instance.
func (r *Registry) Active() []game.Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel() < out[j].Channel() })
	return out
}

// Acquire marks channel as accepting flag until the returned func is called.
// The release func is idempotent and never affects holds taken after it.
func (r *Registry) Acquire(flag game.Flag, channel string) func() {
	key := flagKey{flag: flag, channel: channel}

	r.mu.Lock()
	r.nextHold++
	id := r.nextHold
	if r.holds[key] == nil {
		r.holds[key] = make(map[uint64]struct{})
	}
	r.holds[key][id] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if holders, ok := r.holds[key]; ok {
				delete(holders, id)
				if len(holders) == 0 {
					delete(r.holds, key)
				}
			}
		})
	}
}

// HasFlag reports whether channel currently accepts flag.
func (r *Registry) HasFlag(flag game.Flag, channel string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.holds[flagKey{flag: flag, channel: channel}]) > 0
}

// Flagged lists the channels currently accepting flag, sorted.
func (r *Registry) Flagged(flag game.Flag) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var channels []string
	for key, holders := range r.holds {
		if key.flag == flag && len(holders) > 0 {
			channels = append(channels, key.channel)
		}
	}
	sort.Strings(channels)
	return channels
}

// InputTarget returns the instance in channel when it accepts flag.
func (r *Registry) InputTarget(flag game.Flag, channel string) (game.Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.holds[flagKey{flag: flag, channel: channel}]) == 0 {
		return nil, false
	}
	inst, ok := r.instances[channel]
	return inst, ok
}
