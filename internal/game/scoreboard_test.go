package game_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordgames-server/internal/game"
)

func TestScoreBoard_NeverDecreases(t *testing.T) {
	sb := game.NewScoreBoard()

	sb.Add("alice", 3)
	sb.Add("alice", -5)
	sb.Add("alice", 0)
	sb.Add("bob", 0)

	assert.Equal(t, 3, sb.Score("alice"))
	assert.Equal(t, 1, sb.Len(), "zero points do not make a scorer")
}

func TestScoreBoard_StandingsStable(t *testing.T) {
	sb := game.NewScoreBoard()
	sb.Add("alice", 2)
	sb.Add("bob", 5)
	sb.Add("carol", 2)

	assert.Equal(t, []game.Standing{
		{Player: "bob", Score: 5},
		{Player: "alice", Score: 2},
		{Player: "carol", Score: 2},
	}, sb.Standings())
}

func TestScoreBoard_FinalTiedWinners(t *testing.T) {
	sb := game.NewScoreBoard()
	sb.Add("alice", 4)
	sb.Add("bob", 4)
	sb.Add("carol", 1)

	res, err := sb.Final(game.SinglePlayerWins)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, res.Winners)
	assert.Equal(t, []string{"carol"}, res.Losers)
}

func TestScoreBoard_FinalNobodyScored(t *testing.T) {
	_, err := game.NewScoreBoard().Final(game.SinglePlayerWins)
	assert.True(t, errors.Is(err, game.ErrNotEnoughPlayers))
}

func TestScoreBoard_SinglePlayerPolicy(t *testing.T) {
	sb := game.NewScoreBoard()
	sb.Add("alice", 1)

	res, err := sb.Final(game.SinglePlayerWins)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, res.Winners)
	assert.Empty(t, res.Losers)

	_, err = sb.Final(game.OpponentRequired)
	assert.True(t, errors.Is(err, game.ErrNotEnoughPlayers))
}
