package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wordgames-server/internal/game"
)

func TestPhaseTransitions(t *testing.T) {
	allowed := []struct{ from, to game.Phase }{
		{game.PhaseIdle, game.PhaseWarmup},
		{game.PhaseWarmup, game.PhaseRoundPlay},
		{game.PhaseRoundPlay, game.PhaseRoundScoring},
		{game.PhaseRoundPlay, game.PhaseVotingOpen},
		{game.PhaseVotingOpen, game.PhaseVotingTally},
		{game.PhaseVotingTally, game.PhaseWarmup},
		{game.PhaseRoundScoring, game.PhaseGameFinalize},
		{game.PhaseGameFinalize, game.PhaseTerminated},
		{game.PhaseRoundPlay, game.PhaseTerminated},
	}
	for _, tt := range allowed {
		assert.True(t, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	denied := []struct{ from, to game.Phase }{
		{game.PhaseIdle, game.PhaseRoundPlay},
		{game.PhaseWarmup, game.PhaseRoundScoring},
		{game.PhaseVotingOpen, game.PhaseWarmup},
		{game.PhaseTerminated, game.PhaseWarmup},
		{game.PhaseTerminated, game.PhaseTerminated},
	}
	for _, tt := range denied {
		assert.False(t, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPhaseAcceptsInput(t *testing.T) {
	assert.True(t, game.PhaseRoundPlay.AcceptsInput())
	assert.True(t, game.PhaseVotingOpen.AcceptsInput())
	assert.False(t, game.PhaseWarmup.AcceptsInput())
	assert.False(t, game.PhaseVotingTally.AcceptsInput())
}

func TestMessageText(t *testing.T) {
	m := game.Message{Header: "Round over.", Body: "a  1\n", Syntax: "ini"}
	assert.Equal(t, "Round over.\n```ini\na  1\n```", m.Text())

	assert.Equal(t, "hello", game.Message{Header: "hello"}.Text())
}
