// Package game runs timed word game sessions.
//
// An Instance owns one game in one channel. It is a finite state machine:
// each call to Next performs one phase transition, returns the message that
// transition produced and how long to wait before the next call. Whoever
// drives the instance (see server.Runner) does the waiting, so many
// instances can progress side by side while each one stays strictly
// sequential.
//
// Play and Vote may be called from any goroutine at any time; they are
// ignored unless the instance is in a phase that accepts that input.
package game

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordgames-server/internal/dictionary"
)

// DefaultWarmup is the pause announced before each round and kept after it.
const DefaultWarmup = 5 * time.Second

// Step is the output of one transition.
type Step struct {
	Message *Message
	Wait    time.Duration
}

// Instance is a running game bound to one channel.
type Instance interface {
	ID() string
	Game() string
	Channel() string
	Phase() Phase

	// Next performs one transition. It returns false once the game is over.
	Next(ctx context.Context) (Step, bool, error)

	// Play submits free text from player.
	Play(player, text string)
	// Vote records voter's reaction.
	Vote(voter, marker string)

	// Close releases every flag the instance holds and terminates it.
	// It is safe to call more than once.
	Close()
}

// Outcome is a column of the per-game statistics.
type Outcome string

const (
	OutcomeWin  Outcome = "wins"
	OutcomeLoss Outcome = "losses"
)

// ResultRecorder persists win/loss counts.
type ResultRecorder interface {
	IncrementResult(ctx context.Context, game string, outcome Outcome, players []string) error
}

// NameResolver maps player ids to display names for tables.
type NameResolver interface {
	DisplayName(playerID string) string
}

// Deps are the collaborators an instance uses.
type Deps struct {
	Dictionary *dictionary.Dictionary
	Flags      Flagger
	Recorder   ResultRecorder
	Names      NameResolver
	Policy     WinPolicy
	Warmup     time.Duration
	Rand       *mrand.Rand
	Logger     *zerolog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Flags == nil {
		d.Flags = nopFlagger{}
	}
	if d.Policy.MinScorers == 0 {
		d.Policy = SinglePlayerWins
	}
	if d.Warmup == 0 {
		d.Warmup = DefaultWarmup
	}
	if d.Rand == nil {
		d.Rand = newRand()
	}
	if d.Logger == nil {
		d.Logger = &log.Logger
	}
	return d
}

// Factory builds an instance for channel from the user's raw configuration.
type Factory func(channel, rawConfig string, deps Deps) (Instance, error)

// Kind describes a playable game.
type Kind struct {
	Name  string
	Brief string
	Rules string
	Make  Factory
}

var catalog = map[string]Kind{}

func register(k Kind) { catalog[k.Name] = k }

// Lookup returns the game kind registered under name.
func Lookup(name string) (Kind, error) {
	k, ok := catalog[name]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %s", ErrUnknownGame, name)
	}
	return k, nil
}

// Kinds lists every registered game by name.
func Kinds() []Kind {
	out := make([]Kind, 0, len(catalog))
	for _, k := range catalog {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func newRand() *mrand.Rand {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return mrand.New(mrand.NewSource(time.Now().UnixNano()))
	}
	return mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
}

// base is the lifecycle shared by every game variant.
type base struct {
	id      string
	game    string
	channel string
	rounds  int
	deps    Deps
	log     zerolog.Logger

	mu     sync.Mutex
	phase  Phase
	round  int
	scores *ScoreBoard

	held heldFlags
}

func (b *base) init(game, channel string, rounds int, deps Deps) {
	deps = deps.withDefaults()
	b.id = uuid.New().String()
	b.game = game
	b.channel = channel
	b.rounds = rounds
	b.deps = deps
	b.log = deps.Logger.With().
		Str("game", game).
		Str("channel", channel).
		Str("instance", b.id).
		Logger()
	b.phase = PhaseIdle
	b.scores = NewScoreBoard()
}

func (b *base) ID() string      { return b.id }
func (b *base) Game() string    { return b.game }
func (b *base) Channel() string { return b.channel }

func (b *base) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Scores returns a copy of the standings so far.
func (b *base) Scores() []Standing {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scores.Standings()
}

func (b *base) String() string {
	return fmt.Sprintf("%s %s: rounds(%d)", b.game, b.channel, b.rounds)
}

// enterLocked moves to the target phase. b.mu must be held.
func (b *base) enterLocked(to Phase) error {
	if !b.phase.CanTransitionTo(to) {
		return fmt.Errorf("INVALID_TRANSITION: %s -> %s", b.phase, to)
	}
	b.log.Debug().Str("from", string(b.phase)).Str("to", string(to)).Msg("phase transition")
	b.phase = to
	return nil
}

func (b *base) enter(to Phase) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enterLocked(to)
}

func (b *base) acquire(flags ...Flag) {
	b.held.acquire(b.deps.Flags, b.channel, flags...)
}

func (b *base) release() {
	b.held.releaseAll()
}

// Close releases flags and terminates the instance.
func (b *base) Close() {
	b.release()
	b.mu.Lock()
	b.phase = PhaseTerminated
	b.mu.Unlock()
}

// warmup starts the next round, announcing the game before the first one.
func (b *base) warmup() (Step, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enterLocked(PhaseWarmup); err != nil {
		return Step{}, err
	}
	b.round++

	msg := notice(KindWarmup, "Round %d is starting in %s seconds...", b.round, seconds(b.deps.Warmup))
	if b.round == 1 {
		msg.Header = fmt.Sprintf("A game of %s is starting! See !help %s if you wish to see the rules.\n%s",
			b.game, b.game, msg.Header)
	}
	return Step{Message: msg, Wait: b.deps.Warmup}, nil
}

// afterRound either warms up the next round or finalizes the game.
func (b *base) afterRound(ctx context.Context) (Step, error) {
	b.mu.Lock()
	more := b.round < b.rounds
	b.mu.Unlock()
	if more {
		return b.warmup()
	}
	return b.finalize(ctx)
}

// finalize ranks the players, records wins and losses and produces the
// closing message.
func (b *base) finalize(ctx context.Context) (Step, error) {
	b.mu.Lock()
	if err := b.enterLocked(PhaseGameFinalize); err != nil {
		b.mu.Unlock()
		return Step{}, err
	}
	res, err := b.scores.Final(b.deps.Policy)
	b.mu.Unlock()

	if err != nil {
		return Step{Message: notice(KindFinal, "Game over. Not enough players? 😥")}, nil
	}

	b.record(ctx, OutcomeWin, res.Winners)
	b.record(ctx, OutcomeLoss, res.Losers)

	winners := make([]string, len(res.Winners))
	for i, p := range res.Winners {
		winners[i] = b.name(p)
	}
	rows := make([][]string, len(res.Standings))
	for i, s := range res.Standings {
		rows[i] = []string{b.name(s.Player), fmt.Sprint(s.Score)}
	}
	return Step{Message: &Message{
		Kind:   KindFinal,
		Header: fmt.Sprintf("Game over. Congratz to the winner(s), %s. 🎉", strings.Join(winners, ", ")),
		Body:   renderTable([]string{"[Users", "Score]"}, rows),
		Syntax: "ini",
	}}, nil
}

// record writes results without letting storage failures end the game.
func (b *base) record(ctx context.Context, outcome Outcome, players []string) {
	if b.deps.Recorder == nil || len(players) == 0 {
		return
	}
	if err := b.deps.Recorder.IncrementResult(ctx, b.game, outcome, players); err != nil {
		b.log.Error().Err(err).Str("outcome", string(outcome)).Strs("players", players).
			Msg("failed to record game result")
	}
}

// terminate ends the game normally after the final message.
func (b *base) terminate() (Step, bool, error) {
	b.release()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.phase == PhaseTerminated {
		return Step{}, false, nil
	}
	if err := b.enterLocked(PhaseTerminated); err != nil {
		return Step{}, false, err
	}
	return Step{}, false, nil
}

// abort is the error path of Next: flags go back and the instance stops.
func (b *base) abort(err error) {
	b.log.Warn().Err(err).Msg("game aborted")
	b.Close()
}

func (b *base) name(player string) string {
	if b.deps.Names == nil {
		return player
	}
	if n := b.deps.Names.DisplayName(player); n != "" {
		return n
	}
	return player
}

func seconds(d time.Duration) string {
	return fmt.Sprint(int(d.Seconds()))
}
