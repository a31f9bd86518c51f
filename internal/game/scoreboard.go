package game

import "sort"

// ScoreBoard accumulates points per player for a whole game. Players are
// kept in the order they first scored so ties rank stably.
type ScoreBoard struct {
	scores map[string]int
	order  []string
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{scores: make(map[string]int)}
}

// Add credits points to player. Non-positive amounts are ignored so scores
// never decrease.
func (sb *ScoreBoard) Add(player string, points int) {
	if points <= 0 {
		return
	}
	if _, ok := sb.scores[player]; !ok {
		sb.order = append(sb.order, player)
	}
	sb.scores[player] += points
}

// Score returns player's total.
func (sb *ScoreBoard) Score(player string) int { return sb.scores[player] }

// Len returns the number of players who scored.
func (sb *ScoreBoard) Len() int { return len(sb.order) }

// Standing is one row of the final table.
type Standing struct {
	Player string
	Score  int
}

// Standings returns players by descending score.
func (sb *ScoreBoard) Standings() []Standing {
	out := make([]Standing, len(sb.order))
	for i, p := range sb.order {
		out[i] = Standing{Player: p, Score: sb.scores[p]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// WinPolicy decides when a finished game has a winner.
type WinPolicy struct {
	// MinScorers is how many players must have scored for the game to count.
	// 1 lets a lone player win; 2 requires an opponent.
	MinScorers int
}

var (
	// SinglePlayerWins counts a game that only one player scored in.
	SinglePlayerWins = WinPolicy{MinScorers: 1}
	// OpponentRequired needs at least two scorers before anyone wins.
	OpponentRequired = WinPolicy{MinScorers: 2}
)

// Result is the outcome of a finished game.
type Result struct {
	Standings []Standing
	Winners   []string
	Losers    []string
}

// Final ranks the board. Winners are everyone tied at the top score; every
// other scorer is a loser. It returns ErrNotEnoughPlayers when fewer players
// scored than the policy requires.
func (sb *ScoreBoard) Final(policy WinPolicy) (Result, error) {
	need := max(policy.MinScorers, 1)
	if sb.Len() < need {
		return Result{}, ErrNotEnoughPlayers
	}

	standings := sb.Standings()
	top := standings[0].Score
	res := Result{Standings: standings}
	for _, s := range standings {
		if s.Score == top {
			res.Winners = append(res.Winners, s.Player)
		} else {
			res.Losers = append(res.Losers, s.Player)
		}
	}
	return res, nil
}
