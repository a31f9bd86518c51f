package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"wordgames-server/internal/boggle"
)

// GridGameName is the catalog name of the board word-search game.
const GridGameName = "boggle"

const gridRules = `Boggle is a word game of 16 or 25 dice.
There are letters on the 6 sides of the die.

A round of boggle starts with the shuffling and rolling of the dice into a 4x4 or 5x5 square.
Players must find words formed on the board.
Words are formed by connecting letters on the board with their adjacent or diagonal letters.

Words are scored by their length, the longer the word, the larger the score!
3,4 = 1 pts
5 = 2 pts
6 = 3 pts
7 = 5 pts
8+ = 11 pts

In the 5x5 version, 3 letter words are disallowed.

After a set of rounds, the player with the most points is the winner.`

func init() {
	register(Kind{
		Name:  GridGameName,
		Brief: `Start a boggle game. Settings (json): {"rounds":[1,16], "timer":[10,600], "size":[3,9]}`,
		Rules: gridRules,
		Make: func(channel, raw string, deps Deps) (Instance, error) {
			cfg, err := ParseGridConfig(raw)
			if err != nil {
				return nil, err
			}
			return NewGridGame(channel, cfg, deps), nil
		},
	})
}

// BoardSource rolls the board for a round.
type BoardSource func(size int) (boggle.Board, error)

// GridOption customizes a GridGame.
type GridOption func(*GridGame)

// WithBoards replaces dice rolling, mostly for tests.
func WithBoards(src BoardSource) GridOption {
	return func(g *GridGame) { g.boards = src }
}

// GridGame is the board word-search game.
type GridGame struct {
	base
	cfg    GridConfig
	boards BoardSource

	// Round state, guarded by base.mu.
	board  boggle.Board
	solved boggle.WordSet
	plays  *Submissions
}

// NewGridGame builds a grid game. cfg is used as given; ParseGridConfig
// is responsible for bounds.
func NewGridGame(channel string, cfg GridConfig, deps Deps, opts ...GridOption) *GridGame {
	g := &GridGame{cfg: cfg, plays: NewSubmissions()}
	g.init(GridGameName, channel, cfg.Rounds, deps)
	g.boards = func(size int) (boggle.Board, error) {
		return boggle.Roll(g.deps.Rand, size)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GridGame) String() string {
	return fmt.Sprintf("%s: rounds(%d), timer(%d), size(%d)", g.channel, g.cfg.Rounds, g.cfg.Timer, g.cfg.Size)
}

// Play records every whitespace separated word in text, lowercased.
func (g *GridGame) Play(player, text string) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseRoundPlay {
		return
	}
	g.plays.Add(player, words...)
}

// Vote is not part of the grid game.
func (g *GridGame) Vote(string, string) {}

// Next performs one phase transition.
func (g *GridGame) Next(ctx context.Context) (step Step, more bool, err error) {
	defer func() {
		if err != nil {
			g.abort(err)
		}
	}()

	switch g.Phase() {
	case PhaseIdle:
		step, err = g.warmup()
	case PhaseWarmup:
		step, err = g.startRound()
	case PhaseRoundPlay:
		step, err = g.endRound()
	case PhaseRoundScoring:
		step, err = g.afterRound(ctx)
	case PhaseGameFinalize, PhaseTerminated:
		return g.terminate()
	default:
		err = fmt.Errorf("INVALID_PHASE: grid game cannot be in %s", g.Phase())
	}
	if err != nil {
		return Step{}, false, err
	}
	return step, true, nil
}

func (g *GridGame) startRound() (Step, error) {
	board, err := g.boards(g.cfg.Size)
	if err != nil {
		if errors.Is(err, boggle.ErrNoDice) {
			return Step{}, &UnimplementedConfigError{Setting: "size", Value: g.cfg.Size, Err: err}
		}
		return Step{}, fmt.Errorf("roll board: %w", err)
	}
	started := time.Now()
	solved := boggle.Solve(board, g.deps.Dictionary)
	g.log.Debug().Int("words", len(solved)).Dur("took", time.Since(started)).Msg("board solved")

	g.mu.Lock()
	if err := g.enterLocked(PhaseRoundPlay); err != nil {
		g.mu.Unlock()
		return Step{}, err
	}
	g.board = board
	g.solved = solved
	g.plays = NewSubmissions()
	g.mu.Unlock()

	g.acquire(FlagPlay)

	timer := time.Duration(g.cfg.Timer) * time.Second
	return Step{
		Message: &Message{
			Kind:   KindBoard,
			Header: fmt.Sprintf("Boggle! You have %s minutes to find words.", minutes(timer)),
			Body:   board.String(),
			Syntax: "css",
		},
		Wait: timer,
	}, nil
}

func (g *GridGame) endRound() (Step, error) {
	g.release()

	g.mu.Lock()
	if err := g.enterLocked(PhaseRoundScoring); err != nil {
		g.mu.Unlock()
		return Step{}, err
	}
	results := ScoreRound(g.plays, g.solved)
	for _, r := range results {
		g.scores.Add(r.Player, r.Points)
	}
	g.board = boggle.Board{}
	g.solved = nil
	g.plays = NewSubmissions()
	g.mu.Unlock()

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{g.name(r.Player), r.Best, fmt.Sprint(r.Points)}
	}
	return Step{
		Message: &Message{
			Kind:   KindRoundResults,
			Header: "Round over.",
			Body:   renderTable([]string{"[Users", "Best Word", "Score]"}, rows),
			Syntax: "ini",
		},
		Wait: g.deps.Warmup,
	}, nil
}

// RoundScore is one player's result for a round.
type RoundScore struct {
	Player string
	Best   string
	Points int
}

// ScoreRound scores each player's words against the solved set. Only players
// with at least one valid word appear. Results are ordered by points,
// highest first, keeping submission order between equal scores.
func ScoreRound(plays *Submissions, solved boggle.WordSet) []RoundScore {
	var out []RoundScore
	for _, player := range plays.Players() {
		r := RoundScore{Player: player}
		for _, w := range plays.Words(player) {
			if !solved.Contains(w) {
				continue
			}
			r.Points += boggle.Points(w)
			if len(w) > len(r.Best) {
				r.Best = w
			}
		}
		if r.Best != "" {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}
