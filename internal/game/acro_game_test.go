package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordgames-server/internal/acro"
	"wordgames-server/internal/game"
)

func newTestAcro(flags *fakeFlags, rec *fakeRecorder, rounds int) *game.AcroGame {
	cfg := game.AcroConfig{Rounds: rounds, Timer: 20, VoteTimer: 10, Min: 3, Max: 3}
	return game.NewAcroGame("chan-1", cfg, testDeps(nil, flags, rec),
		game.WithAcronyms(func() acro.Acronym { return "cat" }))
}

// markerOf finds the ballot marker assigned to author.
func markerOf(t *testing.T, s game.Step, g *game.AcroGame, author string) string {
	t.Helper()
	subs := g.Submissions()
	for i, sub := range subs {
		if sub.Author == author {
			return s.Message.Markers[i]
		}
	}
	t.Fatalf("no ballot entry for %s", author)
	return ""
}

// Test 1: One round with a valid and an invalid phrase, a vote and a win
// Why: Covers every acro phase and the flags each one holds
func TestAcroGame_FullFlow(t *testing.T) {
	flags := newFakeFlags()
	rec := &fakeRecorder{}
	g := newTestAcro(flags, rec, 1)

	s := step(t, g)
	assert.Equal(t, game.PhaseWarmup, g.Phase())
	assert.Contains(t, s.Message.Header, "A game of acro is starting!")

	s = step(t, g)
	assert.Equal(t, game.PhaseRoundPlay, g.Phase())
	assert.Equal(t, game.KindAcronym, s.Message.Kind)
	assert.Equal(t, "C A T", s.Message.Body)
	assert.Equal(t, 1, flags.count(game.FlagPlay))
	assert.Equal(t, 1, flags.count(game.FlagDirect))

	g.Play("p1", "cool apple tart")
	g.Play("p2", "bad words")
	g.Play("p3", "cats are terrible")
	g.Play("p3", "  Cats  Are   Tiny ")

	assert.Equal(t, []acro.Submission{
		{Author: "p1", Phrase: "cool apple tart"},
		{Author: "p3", Phrase: "Cats Are Tiny"},
	}, g.Submissions())

	s = step(t, g)
	assert.Equal(t, game.PhaseVotingOpen, g.Phase())
	assert.Equal(t, game.KindBallot, s.Message.Kind)
	require.Len(t, s.Message.Markers, 2)
	assert.Equal(t, 0, flags.count(game.FlagPlay))
	assert.Equal(t, 0, flags.count(game.FlagDirect))
	assert.Equal(t, 1, flags.count(game.FlagVoting))

	g.Play("p2", "cool apple tart")
	p1 := markerOf(t, s, g, "p1")
	p3 := markerOf(t, s, g, "p3")
	g.Vote("p1", p1) // own phrase
	g.Vote("p2", p3)
	g.Vote("p2", p1) // replaces
	g.Vote("p4", "not-a-marker")

	s = step(t, g)
	assert.Equal(t, game.PhaseVotingTally, g.Phase())
	assert.Equal(t, game.KindVoteResults, s.Message.Kind)
	assert.Contains(t, s.Message.Header, "p1 (+5)")
	assert.Equal(t, 0, flags.total())

	s = step(t, g)
	assert.Equal(t, game.PhaseGameFinalize, g.Phase())
	assert.Equal(t, []string{"p1"}, rec.playersFor(game.OutcomeWin))
	assert.Empty(t, rec.playersFor(game.OutcomeLoss))
}

// Test 2: Two phrases tied at the top both earn tie points
// Why: Ties share the round at a reduced score
func TestAcroGame_TiedVote(t *testing.T) {
	g := newTestAcro(newFakeFlags(), &fakeRecorder{}, 1)
	step(t, g)
	step(t, g)

	g.Play("a", "cool apple tart")
	g.Play("b", "cat ate toast")
	g.Play("c", "crazy angry tiger")
	s := step(t, g)

	ma, mb, mc := markerOf(t, s, g, "a"), markerOf(t, s, g, "b"), markerOf(t, s, g, "c")
	g.Vote("v1", ma)
	g.Vote("v2", ma)
	g.Vote("v3", mb)
	g.Vote("v4", mb)
	g.Vote("v5", mc)
	step(t, g)

	assert.Equal(t, []game.Standing{{Player: "a", Score: 3}, {Player: "b", Score: 3}}, g.Scores())
}

// Test 3: Nobody votes
// Why: A phrase needs at least one vote to score
func TestAcroGame_NoVotes(t *testing.T) {
	g := newTestAcro(newFakeFlags(), &fakeRecorder{}, 1)
	step(t, g)
	step(t, g)
	g.Play("a", "cool apple tart")
	step(t, g)

	s := step(t, g)
	assert.Contains(t, s.Message.Header, "Nobody voted")
	assert.Empty(t, g.Scores())

	s = step(t, g)
	assert.Contains(t, s.Message.Header, "Not enough players")
}

// Test 4: Without submissions the round skips voting
// Why: An empty ballot has nothing to vote on
func TestAcroGame_NoSubmissionsSkipsVoting(t *testing.T) {
	flags := newFakeFlags()
	g := newTestAcro(flags, &fakeRecorder{}, 2)
	step(t, g)
	step(t, g)

	s := step(t, g)
	assert.Equal(t, game.PhaseVotingTally, g.Phase())
	assert.Equal(t, game.KindNotice, s.Message.Kind)
	assert.Equal(t, 0, flags.total())

	g.Vote("v", acro.Markers[0])

	s = step(t, g)
	assert.Equal(t, game.PhaseWarmup, g.Phase())
	assert.Contains(t, s.Message.Header, "Round 2")
}

// Test 5: Closing during voting releases the voting flag
// Why: Reactions must stop routing to a dead game
func TestAcroGame_CloseDuringVoting(t *testing.T) {
	flags := newFakeFlags()
	g := newTestAcro(flags, &fakeRecorder{}, 1)
	step(t, g)
	step(t, g)
	g.Play("a", "cool apple tart")
	step(t, g)
	require.Equal(t, 1, flags.count(game.FlagVoting))

	g.Close()
	assert.Equal(t, 0, flags.total())
	assert.Equal(t, game.PhaseTerminated, g.Phase())
}
